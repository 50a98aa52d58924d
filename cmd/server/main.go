package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/api"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/admin"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/email"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/config"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/database"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/health"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/shutdown"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/startup"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/prize"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/spin"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/tld"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/wheel"
	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/lifecycle"
	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// stdRNG 委托给math/rand/v2（自动播种）。
type stdRNG struct{}

func (stdRNG) IntN(n int) int   { return rand.IntN(n) }
func (stdRNG) Float64() float64 { return rand.Float64() }

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database)

	useRedis := cfg.Claim.Backend == "database"
	if useRedis {
		database.InitRedis(cfg.Database.Redis)
		// 阻塞式获取初始Run ID
		health.InitializeRunID()
	}

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(cfg); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// TLD列表加载失败不是致命错误：claim路径会被整体阻断，
	// 服务照常启动以便暴露健康状态
	tlds := tld.NewSet()
	if err := tld.LoadFromFile(tlds, cfg.Tld.File); err != nil {
		fmt.Printf("警告: %v。在列表可用前，所有claim都会被拒绝。\n", err)
	}

	// 生命周期管理器与后台服务
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	refreshHandle, err := gracefulMgr.NewServiceHandle("tld-refresher")
	if err != nil {
		panic(err)
	}
	go tld.StartRefresher(tlds, cfg.Tld, refreshHandle)

	if useRedis {
		fmt.Println("正在执行启动后健康检查...")
		health.PerformCheck()

		healthHandle, err := gracefulMgr.NewServiceHandle("redis-health-checker")
		if err != nil {
			panic(err)
		}
		go health.StartRedisHealthCheck(healthHandle)
	}

	// 组装抽奖域
	prizes, err := prize.TableFromConfig(cfg.Wheel.Prizes)
	if err != nil {
		panic(fmt.Sprintf("奖品表不合法: %v", err))
	}
	selector, err := prize.NewSelector(prizes)
	if err != nil {
		panic(fmt.Sprintf("无法构造奖品选择器: %v", err))
	}
	engine, err := wheel.NewEngine(selector.Count(), cfg.Wheel.MinTurns, cfg.Wheel.MaxTurns, cfg.Wheel.JitterFraction)
	if err != nil {
		panic(fmt.Sprintf("无法构造旋转引擎: %v", err))
	}

	var emailStore ledger.EmailStore
	switch cfg.Claim.Backend {
	case "database":
		emailStore = ledger.NewDBEmailStore()
	case "file":
		fileStore, err := ledger.OpenFileEmailStore(cfg.Claim.EmailsFile)
		if err != nil {
			panic(fmt.Sprintf("无法打开邮箱记录文件: %v", err))
		}
		emailStore = fileStore
	default:
		emailStore = ledger.NewMemoryEmailStore(time.Duration(cfg.Claim.EmailTTLMin) * time.Minute)
	}

	claimLedger := ledger.New(
		ledger.NewGormStore(database.DB),
		time.Local,
		time.Duration(cfg.Claim.DebounceMs)*time.Millisecond,
	)

	orchestrator := spin.NewOrchestrator(
		email.NewValidator(tlds),
		claimLedger,
		emailStore,
		selector,
		engine,
		spin.NewGormWinStore(database.DB),
		stdRNG{},
	)

	// HTTP层
	gin.SetMode(ginMode(cfg.Server.Mode))
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.Server.StaticDir != "" {
		// 转盘前端的静态资源（index.html、tlds.json等）
		r.Static("/widget", cfg.Server.StaticDir)
	}

	api.SetupRoutes(r, spin.NewHandler(orchestrator, cfg.Claim.WinHistoryN), admin.NewHandler(cfg.Admin.Token), tlds)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}

// ginMode 把配置中的运行模式映射到gin的模式常量。
func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
