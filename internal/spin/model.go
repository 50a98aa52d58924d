package spin

import (
	"time"

	"gorm.io/gorm"
)

// WinRecord 是一次抽奖结果的持久化记录，仅用于展示，不参与任何门控逻辑。
type WinRecord struct {
	gorm.Model

	// Identity 是中奖者的浏览器identity（Cookie UUID）。
	Identity string `gorm:"index;type:varchar(36)" json:"-"`

	// Label 是实际展示给用户的奖品名称（以解码结果为准）。
	Label string `json:"label"`

	// Segment 是指针最终停住的扇区下标。
	Segment int `json:"segment"`

	// DrawnIndex 是加权抽取原本选中的下标。
	// 正常情况下与Segment一致；抖动越界时两者会相邻错开。
	DrawnIndex int `json:"-"`

	// Rotation 是归一化后的最终旋转角。
	Rotation float64 `json:"-"`
}

// WinEntry 是对外展示的中奖条目，最新的在前。
type WinEntry struct {
	Label string    `json:"label"`
	Time  time.Time `json:"time"`
}
