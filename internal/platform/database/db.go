package database

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的GORM数据库实例
var DB *gorm.DB

// InitDB 根据配置初始化数据库连接。
// 开发环境默认使用SQLite，正式部署可切换到Postgres。
func InitDB(cfg config.DatabaseConfig) {
	var err error

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 生产环境保持Silent
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true, // 统一各驱动的重复键错误
	})

	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}

// IsDuplicateKeyError 判断一个错误是否由唯一约束冲突引起。
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
