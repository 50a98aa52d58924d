package ledger

import "errors"

// ErrStorageUnavailable 表示账本后端不可达或数据损坏。
// 上层必须降级为"没有抽奖机会"，既不崩溃，也绝不放行一次抽奖。
var ErrStorageUnavailable = errors.New("账本存储不可用")

// Reason 枚举了claim被拒绝的原因。
type Reason string

const (
	// ReasonNone 表示操作成功。
	ReasonNone Reason = ""
	// ReasonDebounced 表示距上次尝试不足去抖窗口，稍后重试即可。
	ReasonDebounced Reason = "DEBOUNCED"
	// ReasonAlreadyClaimed 表示今天已经claim过，属于正常状态而非故障。
	ReasonAlreadyClaimed Reason = "ALREADY_CLAIMED"
	// ReasonEmailUsed 表示该邮箱在门控窗口内已被使用过。
	ReasonEmailUsed Reason = "EMAIL_USED"
)
