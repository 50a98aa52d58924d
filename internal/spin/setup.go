package spin

import (
	"fmt"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/database"
)

// PrimeDB 负责迁移spin模块的数据库表结构。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&WinRecord{}); err != nil {
		return fmt.Errorf("无法迁移win_records表: %w", err)
	}
	fmt.Println("Spin数据库表迁移成功。")
	return nil
}
