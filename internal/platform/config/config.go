package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Wheel    WheelConfig    `mapstructure:"wheel"`
	Claim    ClaimConfig    `mapstructure:"claim"`
	Tld      TldConfig      `mapstructure:"tld"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode      string     `mapstructure:"mode"` // debug / release
	Address   string     `mapstructure:"address"`
	StaticDir string     `mapstructure:"staticDir"` // 转盘前端静态文件目录，空则不挂载
	Cors      CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"` // sqlite / postgres
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PrizeConfig 定义了转盘上的一个奖品扇区。
// 顺序即扇区顺序，不可随意调整。
type PrizeConfig struct {
	Label  string  `mapstructure:"label"`
	Weight float64 `mapstructure:"weight"`
}

// WheelConfig 定义了转盘本身的配置
type WheelConfig struct {
	Prizes         []PrizeConfig `mapstructure:"prizes"`
	MinTurns       int           `mapstructure:"minTurns"`       // 动画附加的最少整圈数
	MaxTurns       int           `mapstructure:"maxTurns"`       // 动画附加的最多整圈数（含）
	JitterFraction float64       `mapstructure:"jitterFraction"` // 落点抖动占扇区宽度的比例 (±)
}

// ClaimConfig 定义了claim流程的配置
type ClaimConfig struct {
	Backend     string `mapstructure:"backend"`     // database / file / memory
	DebounceMs  int    `mapstructure:"debounceMs"`  // 去抖窗口（毫秒）
	EmailTTLMin int    `mapstructure:"emailTtlMin"` // memory后端中邮箱记录的保留时长（分钟）
	EmailsFile  string `mapstructure:"emailsFile"`  // file后端的追加文件路径
	WinHistoryN int    `mapstructure:"winHistoryN"` // 展示用中奖记录条数上限
}

// TldConfig 定义了TLD列表资源的配置
type TldConfig struct {
	File            string `mapstructure:"file"`            // 本地tlds.json路径
	RefreshURL      string `mapstructure:"refreshUrl"`      // 远程刷新地址，空则不刷新
	RefreshInterval int    `mapstructure:"refreshInterval"` // 刷新间隔（小时）
}

// AdminConfig 定义了管理接口的配置
type AdminConfig struct {
	Token string `mapstructure:"token"` // Bearer令牌，空则禁用管理接口
}

// setDefaults 写入与原始部署一致的默认值，使配置文件缺失时也能以开发模式启动。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "wheel.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("wheel.minTurns", 4)
	v.SetDefault("wheel.maxTurns", 7)
	v.SetDefault("wheel.jitterFraction", 0.35)
	v.SetDefault("wheel.prizes", []map[string]interface{}{
		{"label": "80% Rabatt", "weight": 0.4},
		{"label": "3% Rabatt", "weight": 35},
		{"label": "5% Rabatt", "weight": 30},
		{"label": "10% Rabatt", "weight": 20},
		{"label": "15% Rabatt", "weight": 10},
		{"label": "25% Rabatt", "weight": 4.6},
	})

	v.SetDefault("claim.backend", "database")
	v.SetDefault("claim.debounceMs", 2000)
	v.SetDefault("claim.emailTtlMin", 10)
	v.SetDefault("claim.emailsFile", "emails.txt")
	v.SetDefault("claim.winHistoryN", 6)

	v.SetDefault("tld.file", "tlds.json")
	v.SetDefault("tld.refreshUrl", "")
	v.SetDefault("tld.refreshInterval", 24)
}

// LoadConfig 函数负责查找、加载和解析配置文件。
// 它会在 ./config 和 . 中查找名为 config.yaml 的文件，
// 并允许通过环境变量覆盖任意配置项（例如 SERVER_ADDRESS、ADMIN_TOKEN）。
func LoadConfig() (*Config, error) {
	// .env 仅用于本地开发，文件不存在不是错误
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fmt.Println("未找到config.yaml，使用默认配置启动。")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// validate 检查配置中必须满足的不变量。
func validate(cfg *Config) error {
	if len(cfg.Wheel.Prizes) == 0 {
		return errors.New("配置错误: wheel.prizes 不能为空")
	}
	for i, p := range cfg.Wheel.Prizes {
		if p.Weight <= 0 {
			return fmt.Errorf("配置错误: 奖品 #%d (%s) 的权重必须为正数", i, p.Label)
		}
	}
	if cfg.Wheel.MinTurns < 0 || cfg.Wheel.MaxTurns < cfg.Wheel.MinTurns {
		return errors.New("配置错误: wheel.minTurns/maxTurns 不合法")
	}
	if cfg.Wheel.JitterFraction < 0 || cfg.Wheel.JitterFraction >= 0.5 {
		// 抖动超过半个扇区宽度时，落点必然可能越过相邻扇区边界
		return errors.New("配置错误: wheel.jitterFraction 必须在 [0, 0.5) 内")
	}
	switch cfg.Claim.Backend {
	case "database", "file", "memory":
	default:
		return fmt.Errorf("配置错误: 未知的claim后端 '%s'", cfg.Claim.Backend)
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("配置错误: 未知的数据库驱动 '%s'", cfg.Database.Driver)
	}
	return nil
}
