package config

import (
	"github.com/fundlab/mfs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// EngineConfig 状态机配置
type EngineConfig struct {
	VotingPeriodHours int    `mapstructure:"voting_period_hours"` // 投票窗口（小时），默认120（5天）
	FeeAccount        string `mapstructure:"fee_account"`         // 平台手续费账户地址
}

// ChainConfig 链上镜像配置（可选，从已部署合约回放事件）
type ChainConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RpcUrl        string `mapstructure:"rpc_url"`       // RPC节点URL
	ContractAddr  string `mapstructure:"contract_addr"` // 工厂合约地址
	StartBlock    uint64 `mapstructure:"start_block"`   // 起始区块号
	Confirmations int    `mapstructure:"confirmations"` // 确认区块数
	PoolSize      int    `mapstructure:"pool_size"`     // 日志处理协程池大小
}

// BlobConfig 内容寻址存储网关配置
type BlobConfig struct {
	GatewayURL string `mapstructure:"gateway_url"` // 读取网关
	PinURL     string `mapstructure:"pin_url"`     // 上传接口
	APIKey     string `mapstructure:"api_key"`
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mfs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "milestone_funding")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("engine.voting_period_hours", 120)
	viper.SetDefault("engine.fee_account", "0x0000000000000000000000000000000000000fee")
	viper.SetDefault("chain.enabled", false)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("chain.pool_size", 4)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
