package startup

import (
	"fmt"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/config"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/spin"
)

// cacheEnabled 记录本次部署是否使用Redis邮箱缓存（database后端）。
// 健康检查的热重建只在该后端下有意义。
var cacheEnabled bool

// InitializeApplication 是应用首次启动时执行的总入口。
func InitializeApplication(cfg *config.Config) error {
	fmt.Println("开始应用首次初始化...")

	cacheEnabled = cfg.Claim.Backend == "database"

	if cacheEnabled {
		if err := ledger.PrimeCachedDB(); err != nil {
			return err
		}
	} else {
		if err := ledger.PrimeDB(); err != nil {
			return err
		}
	}
	if err := spin.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建Redis缓存（Redis重启恢复后由健康检查调用）。
func RebuildCache() error {
	if !cacheEnabled {
		return nil
	}
	fmt.Println("开始缓存热重建...")
	if err := ledger.RebuildEmailCache(); err != nil {
		return err
	}
	fmt.Println("缓存热重建完成。")
	return nil
}
