package prize

import (
	"fmt"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/config"
)

// Prize 是转盘上的一个奖品扇区。
// 奖品在切片中的顺序决定了它在转盘上的扇区位置，属于对外契约。
type Prize struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// TableFromConfig 从配置构造奖品表，并校验权重不变量。
func TableFromConfig(cfgs []config.PrizeConfig) ([]Prize, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("奖品表不能为空")
	}
	prizes := make([]Prize, len(cfgs))
	for i, c := range cfgs {
		if c.Weight <= 0 {
			return nil, fmt.Errorf("奖品 #%d (%s) 的权重必须为正数", i, c.Label)
		}
		prizes[i] = Prize{Label: c.Label, Weight: c.Weight}
	}
	return prizes, nil
}
