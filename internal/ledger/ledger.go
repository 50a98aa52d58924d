package ledger

import (
	"sync"
	"time"
)

// DefaultDebounce 是claim去抖窗口：窗口内的两次尝试被视为同一次逻辑尝试。
const DefaultDebounce = 2 * time.Second

// dayKeyLayout 是本地日期键的格式。"今天"按本地挂钟的年月日计算，
// 而不是距上次claim的滚动24小时：23:59和次日00:01属于两天。
const dayKeyLayout = "2006-01-02"

// Ledger 是按identity记账的"每日一次claim"状态机。
// 同一identity的所有变更都经由内部互斥锁串行化，
// 存储后端只需要提供原子的整份读写。
type Ledger struct {
	mu       sync.Mutex
	store    Store
	loc      *time.Location
	debounce time.Duration
}

// ClaimResult 是一次claim操作的结果。
type ClaimResult struct {
	OK          bool
	SpinsBanked int
	Reason      Reason
}

// ConsumeResult 是一次consume操作的结果。
type ConsumeResult struct {
	OK          bool
	SpinsBanked int
}

// StateView 是对外展示的账本状态。
type StateView struct {
	SpinsBanked  int       `json:"spinsBanked"`
	ClaimedToday bool      `json:"claimedToday"`
	NextClaimAt  time.Time `json:"nextClaimAt,omitzero"`
}

// New 创建一个账本。loc决定"今天"的时区，传nil则使用time.Local。
func New(store Store, loc *time.Location, debounce time.Duration) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Ledger{store: store, loc: loc, debounce: debounce}
}

// DayKey 返回t在账本时区下的日期键。
func (l *Ledger) DayKey(t time.Time) string {
	return t.In(l.loc).Format(dayKeyLayout)
}

// nextMidnight 返回t之后的下一个本地零点。
func (l *Ledger) nextMidnight(t time.Time) time.Time {
	local := t.In(l.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, l.loc)
}

// Claim 尝试为identity解锁今天的抽奖机会。
// 去抖窗口内的重复尝试直接拒绝，但仍会刷新尝试时间戳——
// 这样连点/网络重试不会造成重复入账。
func (l *Ledger) Claim(identity string, now time.Time) (ClaimResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(identity)
	if err != nil {
		return ClaimResult{}, err
	}

	if !state.LastAttemptAt.IsZero() && now.Sub(state.LastAttemptAt) < l.debounce {
		state.LastAttemptAt = now
		if err := l.store.Save(identity, state); err != nil {
			return ClaimResult{}, err
		}
		return ClaimResult{OK: false, SpinsBanked: state.SpinsBanked, Reason: ReasonDebounced}, nil
	}

	state.LastAttemptAt = now

	todayKey := l.DayKey(now)
	if state.LastClaimDay == todayKey {
		if err := l.store.Save(identity, state); err != nil {
			return ClaimResult{}, err
		}
		return ClaimResult{OK: false, SpinsBanked: state.SpinsBanked, Reason: ReasonAlreadyClaimed}, nil
	}

	state.SpinsBanked++
	state.LastClaimAt = now
	state.LastClaimDay = todayKey
	if err := l.store.Save(identity, state); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{OK: true, SpinsBanked: state.SpinsBanked, Reason: ReasonNone}, nil
}

// Consume 消耗一次已积攒的抽奖机会。余额为零时失败且不做任何变更，
// 这个零值检查就是consume对重复提交的幂等保护。
func (l *Ledger) Consume(identity string, now time.Time) (ConsumeResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(identity)
	if err != nil {
		return ConsumeResult{}, err
	}

	if state.SpinsBanked <= 0 {
		return ConsumeResult{OK: false, SpinsBanked: 0}, nil
	}

	state.SpinsBanked--
	if err := l.store.Save(identity, state); err != nil {
		return ConsumeResult{}, err
	}
	return ConsumeResult{OK: true, SpinsBanked: state.SpinsBanked}, nil
}

// State 返回identity的当前账本视图，不做任何变更。
func (l *Ledger) State(identity string, now time.Time) (StateView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(identity)
	if err != nil {
		return StateView{}, err
	}

	claimedToday := state.LastClaimDay == l.DayKey(now)
	view := StateView{
		SpinsBanked:  state.SpinsBanked,
		ClaimedToday: claimedToday,
	}
	if claimedToday {
		view.NextClaimAt = l.nextMidnight(now)
	}
	return view, nil
}
