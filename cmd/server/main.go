package main

import (
	"time"

	"github.com/fundlab/mfs/internal/blobstore"
	"github.com/fundlab/mfs/internal/chain"
	"github.com/fundlab/mfs/internal/config"
	"github.com/fundlab/mfs/internal/ledger"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/fundlab/mfs/internal/logic"
	"github.com/fundlab/mfs/internal/repository"
	"github.com/fundlab/mfs/internal/router"
	"github.com/fundlab/mfs/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	setupLogger(cfg)
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化状态机
	l := ledger.New(cfg.Engine.FeeAccount)
	engine := logic.NewEngine(db, l,
		logic.WithVotingPeriod(time.Duration(cfg.Engine.VotingPeriodHours)*time.Hour))

	// 可选：链上镜像模式
	if cfg.Chain.Enabled {
		chainClient, err := chain.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		monitor, err := chain.NewMonitor(chainClient, engine, cfg.Chain.PoolSize)
		if err != nil {
			logger.Fatal("Failed to create chain monitor: %v", err)
		}
		if err := monitor.Start(); err != nil {
			logger.Fatal("Failed to start chain monitor: %v", err)
		}
		defer monitor.Stop()
	}

	// 可选：内容存储网关
	var store blobstore.Store
	if cfg.Blob.PinURL != "" {
		store = blobstore.NewHTTPStore(cfg.Blob.GatewayURL, cfg.Blob.PinURL, cfg.Blob.APIKey)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(engine, store, cfg)

	// 启动定时任务
	manager := task.Start(engine, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// setupLogger 根据配置初始化默认日志器
func setupLogger(cfg *config.Config) {
	level := logger.ParseLogLevel(cfg.Log.Level)

	if cfg.Log.Output == "file" && cfg.Log.File != "" {
		fileLogger, err := logger.NewWithFileRotation(level, cfg.Log.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
		return
	}

	stdLogger, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(stdLogger)
}
