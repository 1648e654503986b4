package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Server  ServerConfig   `mapstructure:"server"`
	Workers []WorkerConfig `mapstructure:"workers"`
	Engine  EngineConfig   `mapstructure:"engine"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// ServerConfig API 服务配置（apiserver / callback_consumer 共用）
type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	ClassifyQueue string `mapstructure:"classify_queue"`
	CallbackQueue string `mapstructure:"callback_queue"`
	NotifyChannel string `mapstructure:"notify_channel"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name          string           `mapstructure:"name"`
	QueueName     string           `mapstructure:"queue_name"`
	CallbackQueue string           `mapstructure:"callback_queue"` // 回调队列名称
	Subscriber    SubscriberConfig `mapstructure:"subscriber"`
	Processor     ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// EngineConfig 分类引擎规则配置
// 一次加载后在整个运行期间只读，禁止运行中重载
type EngineConfig struct {
	WarehouseColumns   []string          `mapstructure:"warehouse_columns"`    // 仓库列标识
	SiteColumns        []string          `mapstructure:"site_columns"`         // 现场（Site）列标识
	OffshoreBaseColumn string            `mapstructure:"offshore_base_column"` // 海上基地（MOSB）列标识
	MetadataColumns    []string          `mapstructure:"metadata_columns"`     // 元数据列（最终位置兜底扫描时跳过）
	PriorityChain      []ChainHopConfig  `mapstructure:"priority_chain"`       // 仓库优先级链（起点 → 终点）
	WarehousePriority  []string          `mapstructure:"warehouse_priority"`   // 静态仓库优先级列表
	SitePriority       []string          `mapstructure:"site_priority"`        // 现场优先级列表
	BucketMode         string            `mapstructure:"bucket_mode"`          // "four" 或 "five"
	NaNFlowDefault     *int              `mapstructure:"nan_flow_default"`     // 触碰计数缺失时的默认 Flow Code（0 或 1，不填用 1）
	Tolerance          ToleranceConfig   `mapstructure:"tolerance"`            // 分布校验容差
	BatchConcurrency   int               `mapstructure:"batch_concurrency"`    // 批量分类并发分片数
	ExpectedCounts     map[string][]int  `mapstructure:"expected_counts"`      // 按 vendor 的目标分布（含 "combined"）
}

// ChainHopConfig 优先级链单跳配置
type ChainHopConfig struct {
	Origin      string `mapstructure:"origin"`
	Destination string `mapstructure:"destination"`
}

// ToleranceConfig 容差配置
type ToleranceConfig struct {
	Floor        int             `mapstructure:"floor"`         // 绝对容差下限（条数）
	Relative     float64         `mapstructure:"relative"`      // 相对容差（比例）
	BucketFloors map[string]int  `mapstructure:"bucket_floors"` // 按桶覆盖的下限（key 为 Flow Code 字符串）
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}
