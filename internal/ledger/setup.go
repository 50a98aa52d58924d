package ledger

import (
	"fmt"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/database"
)

// PrimeDB 负责迁移ledger模块的数据库表结构。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Record{}, &EmailClaim{}); err != nil {
		return fmt.Errorf("无法迁移ledger表: %w", err)
	}
	fmt.Println("Ledger数据库表迁移成功。")
	return nil
}

// WarmupCache 预热Redis中的邮箱claim缓存。
func WarmupCache() error {
	return RebuildEmailCache()
}

// PrimeCachedDB 是ledger模块的初始化总入口。
func PrimeCachedDB() error {
	if err := PrimeDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
