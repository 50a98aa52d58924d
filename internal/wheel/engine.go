package wheel

import (
	"fmt"
	"math"
)

// Tau 是一个完整圆周 (2π)。
const Tau = 2 * math.Pi

// pointerAngle 是指针相对未旋转转盘的固定角度，位于12点钟方向。
// 绘制从3点钟方向开始，没有额外偏移。
const (
	pointerAngle = -math.Pi / 2
	drawOffset   = 0.0
)

// RNG 是旋转编码需要的随机数来源。
// math/rand/v2 的 *rand.Rand 满足该接口。
type RNG interface {
	IntN(n int) int
	Float64() float64
}

// Engine 将奖品下标和转盘旋转角互相转换。
// 它只依赖转盘几何常量，本身无状态。
type Engine struct {
	segmentCount   int
	segmentAngle   float64
	minTurns       int
	maxTurns       int
	jitterFraction float64
}

// NewEngine 创建一个旋转引擎。
// segmentCount是扇区数；minTurns/maxTurns是动画附加整圈数的闭区间；
// jitterFraction是落点抖动占扇区宽度的比例（±）。
func NewEngine(segmentCount, minTurns, maxTurns int, jitterFraction float64) (*Engine, error) {
	if segmentCount <= 0 {
		return nil, fmt.Errorf("扇区数必须为正数")
	}
	if minTurns < 0 || maxTurns < minTurns {
		return nil, fmt.Errorf("整圈数区间 [%d, %d] 不合法", minTurns, maxTurns)
	}
	if jitterFraction < 0 || jitterFraction >= 0.5 {
		return nil, fmt.Errorf("抖动比例 %f 必须在 [0, 0.5) 内", jitterFraction)
	}
	return &Engine{
		segmentCount:   segmentCount,
		segmentAngle:   Tau / float64(segmentCount),
		minTurns:       minTurns,
		maxTurns:       maxTurns,
		jitterFraction: jitterFraction,
	}, nil
}

// Normalize 将任意角度归一化到 [0, 2π)。
func Normalize(angle float64) float64 {
	return math.Mod(math.Mod(angle, Tau)+Tau, Tau)
}

// SegmentCount 返回扇区数。
func (e *Engine) SegmentCount() int {
	return e.segmentCount
}

// SegmentAngle 返回单个扇区的宽度。
func (e *Engine) SegmentAngle() float64 {
	return e.segmentAngle
}

// Encode 计算使目标扇区停在指针下的最终旋转角。
// 结果相对currentRotation单调递增（转盘永不回转）：
// 在指向扇区中点的最短正向角差上，再叠加[minTurns, maxTurns]的随机整圈
// 和±jitterFraction个扇区宽度的抖动。整圈不改变落点扇区；抖动可能在
// 边界处把落点推进相邻扇区，Decode才是最终裁决。
func (e *Engine) Encode(targetIndex int, currentRotation float64, rng RNG) float64 {
	mid := float64(targetIndex)*e.segmentAngle + e.segmentAngle/2
	desired := Normalize(pointerAngle - (mid + drawOffset))

	turns := e.minTurns + rng.IntN(e.maxTurns-e.minTurns+1)
	jitter := (rng.Float64()*2 - 1) * e.jitterFraction * e.segmentAngle

	normalizedStart := Normalize(currentRotation)
	delta := desired - normalizedStart
	if delta < 0 {
		delta += Tau
	}
	delta += float64(turns)*Tau + jitter

	return currentRotation + delta
}

// Decode 从最终旋转角还原指针下的扇区下标。
// 这是"实际展示给用户的奖品"的权威判定。
func (e *Engine) Decode(finalRotation float64) int {
	angleUnderPointer := Normalize(pointerAngle - (finalRotation + drawOffset))
	index := int(math.Floor(angleUnderPointer / e.segmentAngle))
	if index < 0 {
		return 0
	}
	if index >= e.segmentCount {
		return e.segmentCount - 1
	}
	return index
}

// Progress 是动画进度到旋转角的纯映射（ease-out cubic）。
// 宿主环境负责帧调度，引擎只负责把流逝时间换算成当前角度。
func Progress(elapsed, duration, startRotation, finalRotation float64) float64 {
	if duration <= 0 {
		return finalRotation
	}
	t := elapsed / duration
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	eased := 1 - math.Pow(1-t, 3)
	return startRotation + (finalRotation-startRotation)*eased
}
