package spin

import (
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/email"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/prize"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/wheel"
)

// RNG 是抽奖流程需要的随机数来源。
type RNG interface {
	IntN(n int) int
	Float64() float64
}

// ClaimKind 区分一次claim的最终裁决。
type ClaimKind string

const (
	ClaimOK             ClaimKind = "OK"
	ClaimInvalidEmail   ClaimKind = "INVALID_EMAIL"
	ClaimTldUnavailable ClaimKind = "TLD_UNAVAILABLE"
	ClaimEmailUsed      ClaimKind = "EMAIL_USED"
	ClaimAlreadyToday   ClaimKind = "ALREADY_CLAIMED"
	ClaimDebounced      ClaimKind = "DEBOUNCED"
	ClaimInFlight       ClaimKind = "IN_FLIGHT"
	ClaimStorageDown    ClaimKind = "STORAGE_UNAVAILABLE"
)

// ClaimOutcome 是一次claim的完整结果。
type ClaimOutcome struct {
	Kind        ClaimKind
	Message     string
	SpinsBanked int
	Email       string // 归一化后的邮箱，仅在通过校验后填写
	Day         string // claim当天的日期键，仅在成功时填写
	Seq         uint64 // 本identity单调递增的尝试序号，客户端用它丢弃过期响应
}

// SpinOutcome 是一次抽奖的完整结果。
type SpinOutcome struct {
	OK          bool
	NoSpin      bool // 余额为零导致的拒绝
	Label       string
	Segment     int
	DrawnIndex  int
	Rotation    float64 // 未归一化的最终旋转角，供前端动画使用
	SpinsBanked int
	DurationMs  int
}

// Orchestrator 把邮箱校验、账本、加权抽取和旋转引擎组合成完整的抽奖流程。
// 所有可变状态都是它的字段，按实例构造，模块内没有隐藏全局量。
type Orchestrator struct {
	validator *email.Validator
	ledger    *ledger.Ledger
	emails    ledger.EmailStore
	selector  *prize.Selector
	engine    *wheel.Engine
	wins      WinStore
	rng       RNG

	mu       sync.Mutex
	inFlight map[string]bool
	seq      map[string]uint64
}

// NewOrchestrator 组装一个抽奖编排器。
func NewOrchestrator(
	validator *email.Validator,
	claimLedger *ledger.Ledger,
	emails ledger.EmailStore,
	selector *prize.Selector,
	engine *wheel.Engine,
	wins WinStore,
	rng RNG,
) *Orchestrator {
	return &Orchestrator{
		validator: validator,
		ledger:    claimLedger,
		emails:    emails,
		selector:  selector,
		engine:    engine,
		wins:      wins,
		rng:       rng,
		inFlight:  make(map[string]bool),
		seq:       make(map[string]uint64),
	}
}

// beginAttempt 登记一次claim尝试。同一identity已有尝试在进行时直接拒绝
// （不排队），否则分配单调递增的尝试序号。
func (o *Orchestrator) beginAttempt(identity string) (uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[identity] {
		return o.seq[identity], false
	}
	o.inFlight[identity] = true
	o.seq[identity]++
	return o.seq[identity], true
}

func (o *Orchestrator) endAttempt(identity string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, identity)
}

// Claim 执行完整的claim流程：
// 邮箱语法校验 → 今日门控预查 → 邮箱去重登记 → 账本入账。
// 邮箱登记发生在入账之前，因此"邮箱已用"不会烧掉当天的claim资格。
func (o *Orchestrator) Claim(identity, rawEmail string, now time.Time) ClaimOutcome {
	seq, ok := o.beginAttempt(identity)
	if !ok {
		return ClaimOutcome{Kind: ClaimInFlight, Message: "Wird bereits geprueft.", Seq: seq}
	}
	defer o.endAttempt(identity)

	result := o.validator.Validate(rawEmail)
	if !result.OK {
		if result.Kind == email.KindTldUnavailable {
			// TLD列表缺失是基础设施问题，必须整体阻断claim，
			// 不能伪装成"邮箱非法"
			return ClaimOutcome{Kind: ClaimTldUnavailable, Message: result.Message, Seq: seq}
		}
		return ClaimOutcome{Kind: ClaimInvalidEmail, Message: result.Message, Seq: seq}
	}
	normalized := result.Normalized

	// 预查今日门控，避免在已claim的日子里白白烧掉一个新邮箱
	view, err := o.ledger.State(identity, now)
	if err != nil {
		return o.storageDown(seq, err)
	}
	if view.ClaimedToday {
		return ClaimOutcome{
			Kind:        ClaimAlreadyToday,
			Message:     "Heute schon geclaimt. Morgen wieder.",
			SpinsBanked: view.SpinsBanked,
			Seq:         seq,
		}
	}

	fresh, err := o.emails.ClaimEmail(normalized, now)
	if err != nil {
		return o.storageDown(seq, err)
	}
	if !fresh {
		return ClaimOutcome{
			Kind:        ClaimEmailUsed,
			Message:     "Diese E-Mail wurde bereits verwendet.",
			SpinsBanked: view.SpinsBanked,
			Seq:         seq,
		}
	}

	claim, err := o.ledger.Claim(identity, now)
	if err != nil {
		return o.storageDown(seq, err)
	}
	switch {
	case claim.OK:
		return ClaimOutcome{
			Kind:        ClaimOK,
			Message:     "OK – 1 Dreh freigeschaltet",
			SpinsBanked: claim.SpinsBanked,
			Email:       normalized,
			Day:         o.ledger.DayKey(now),
			Seq:         seq,
		}
	case claim.Reason == ledger.ReasonDebounced:
		return ClaimOutcome{
			Kind:        ClaimDebounced,
			Message:     "Bitte kurz warten.",
			SpinsBanked: claim.SpinsBanked,
			Seq:         seq,
		}
	default:
		return ClaimOutcome{
			Kind:        ClaimAlreadyToday,
			Message:     "Heute schon geclaimt. Morgen wieder.",
			SpinsBanked: claim.SpinsBanked,
			Seq:         seq,
		}
	}
}

func (o *Orchestrator) storageDown(seq uint64, err error) ClaimOutcome {
	fmt.Printf("claim失败: 存储不可用: %v\n", err)
	return ClaimOutcome{Kind: ClaimStorageDown, Message: "Service derzeit nicht verfuegbar.", Seq: seq}
}

// Spin 消耗一次抽奖机会并执行完整的一次抽奖。
// 展示和记录一律以Decode的结果为准：编码时叠加的抖动可能在边界处
// 把落点推过扇区分界，此时与抽取下标的分歧只记日志，不做纠正。
func (o *Orchestrator) Spin(identity string, currentRotation float64, now time.Time) (SpinOutcome, error) {
	consume, err := o.ledger.Consume(identity, now)
	if err != nil {
		return SpinOutcome{}, err
	}
	if !consume.OK {
		return SpinOutcome{NoSpin: true}, nil
	}

	drawnIndex := o.selector.Pick(o.rng)
	finalRotation := o.engine.Encode(drawnIndex, currentRotation, o.rng)
	segment := o.engine.Decode(finalRotation)

	if segment != drawnIndex {
		fmt.Printf("抽奖诊断: 解码扇区(%d)与抽取下标(%d)不一致，以解码结果为准。identity: %s\n",
			segment, drawnIndex, identity)
	}

	label := o.selector.Label(segment)
	record := WinRecord{
		Identity:   identity,
		Label:      label,
		Segment:    segment,
		DrawnIndex: drawnIndex,
		Rotation:   wheel.Normalize(finalRotation),
	}
	if err := o.wins.Add(record); err != nil {
		// 记录失败不影响抽奖结果本身
		fmt.Printf("警告: %v\n", err)
	}

	// 动画时长与原始前端一致: 4200ms + 最多800ms随机
	durationMs := 4200 + o.rng.IntN(801)

	return SpinOutcome{
		OK:          true,
		Label:       label,
		Segment:     segment,
		DrawnIndex:  drawnIndex,
		Rotation:    finalRotation,
		SpinsBanked: consume.SpinsBanked,
		DurationMs:  durationMs,
	}, nil
}

// DayKey 返回now在账本时区下的日期键。
func (o *Orchestrator) DayKey(now time.Time) string {
	return o.ledger.DayKey(now)
}

// State 返回identity的账本视图。
func (o *Orchestrator) State(identity string, now time.Time) (ledger.StateView, error) {
	return o.ledger.State(identity, now)
}

// RecentWins 返回identity最近的中奖条目。
func (o *Orchestrator) RecentWins(identity string, limit int) ([]WinEntry, error) {
	return o.wins.Recent(identity, limit)
}

// Prizes 返回奖品表，供前端绘制转盘。
func (o *Orchestrator) Prizes() []prize.Prize {
	return o.selector.Prizes()
}
