package prize

import (
	"fmt"

	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/tree"
)

// RNG 是选择器需要的随机数来源。
// math/rand/v2 的 *rand.Rand 满足该接口，测试中可注入确定性实现。
type RNG interface {
	Float64() float64
}

// Selector 在固定的奖品表上执行加权随机抽取。
// 权重在构造时一次性载入线段树，之后的抽取是只读操作。
type Selector struct {
	prizes []Prize
	tree   *tree.SegmentTree
}

// NewSelector 从奖品表构造选择器。
func NewSelector(prizes []Prize) (*Selector, error) {
	if len(prizes) == 0 {
		return nil, fmt.Errorf("奖品表不能为空")
	}

	st, err := tree.NewSegmentTree(len(prizes))
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(prizes))
	for i, p := range prizes {
		if p.Weight <= 0 {
			return nil, fmt.Errorf("奖品 #%d (%s) 的权重必须为正数", i, p.Label)
		}
		weights[i] = p.Weight
	}
	if err := st.Rebuild(weights); err != nil {
		return nil, err
	}

	return &Selector{prizes: prizes, tree: st}, nil
}

// Pick 抽取一个奖品下标。
// 在[0, 总权重)上取均匀随机数r，返回第一个前缀和大于等于r的下标。
// 浮点累加在上边界产生的舍入缺口一律由最后一个下标吸收——
// 这是显式约定：奖品顺序决定了谁承接边界上的浮点误差。
func (s *Selector) Pick(rng RNG) int {
	r := rng.Float64() * s.tree.TotalSum()

	index, err := s.tree.Find(r)
	if err != nil || index >= len(s.prizes) {
		return len(s.prizes) - 1
	}
	return index
}

// Prizes 返回只读的奖品表。
func (s *Selector) Prizes() []Prize {
	return s.prizes
}

// Count 返回奖品（扇区）数量。
func (s *Selector) Count() int {
	return len(s.prizes)
}

// Label 返回指定下标的奖品名称。
func (s *Selector) Label(index int) string {
	if index < 0 || index >= len(s.prizes) {
		return ""
	}
	return s.prizes[index].Label
}
