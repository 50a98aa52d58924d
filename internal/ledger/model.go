package ledger

import (
	"time"

	"gorm.io/gorm"
)

// State 是单个identity的抽奖机会账本。
// 它只能通过Ledger的Claim/Consume两个操作被修改。
type State struct {
	// SpinsBanked 是当前已积攒、尚未使用的抽奖次数。
	SpinsBanked int `json:"spinsBanked"`

	// LastClaimDay 是最近一次成功claim的本地日期键 (YYYY-MM-DD)，从未claim过则为空。
	LastClaimDay string `json:"lastClaimDay"`

	// LastClaimAt 是最近一次成功claim的时间，零值表示从未claim。
	LastClaimAt time.Time `json:"lastClaimAt"`

	// LastAttemptAt 是最近一次claim尝试（无论成败）的时间，用于去抖。
	LastAttemptAt time.Time `json:"lastAttemptAt"`
}

// Record 是State在数据库中的持久化形式，每个identity一行。
// 每次变更都整行重写，与浏览器端localStorage的单键JSON语义一致。
type Record struct {
	// Identity 是账本的主键，来自客户端Cookie中的UUID。
	Identity string `gorm:"primarykey;type:varchar(36)"`

	SpinsBanked   int
	LastClaimDay  string `gorm:"type:varchar(10)"`
	LastClaimAt   time.Time
	LastAttemptAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailClaim 是一次成功的邮箱claim的持久化记录，只追加、从不删除。
type EmailClaim struct {
	gorm.Model

	// Email 是归一化（trim+小写）后的邮箱，唯一。
	Email string `gorm:"uniqueIndex;type:varchar(254)" json:"email"`
}

func (r Record) toState() State {
	return State{
		SpinsBanked:   r.SpinsBanked,
		LastClaimDay:  r.LastClaimDay,
		LastClaimAt:   r.LastClaimAt,
		LastAttemptAt: r.LastAttemptAt,
	}
}
