// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"

	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/service"
	"github.com/haierkeys/link-editor-service/pkg/workerpool"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File      string                             `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig                       `yaml:"server"`
	Log       LogConfig                          `yaml:"log"`
	Database  dao.DatabaseConfig                 `yaml:"database"`
	App       AppSettings                        `yaml:"app"`
	Editor    EditorConfig                       `yaml:"editor"`
	LinkTypes map[string]domain.LinkTypeSettings `yaml:"link-types"`
	Content   ContentConfig                      `yaml:"content"`
	Tracer    TracerConfig                       `yaml:"tracer"`
	Limiter   LimiterConfig                      `yaml:"limiter"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics、expvar、pprof）
	PrivateHttpListen string `yaml:"private-http-listen" default:":9101"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置，每个打开的编辑会话占用一个 worker，worker 数量即同时打开的会话上限
	// 队列只是交给空闲 worker 前的缓冲，会话不会排队等待 worker
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"100"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"100"`
}

// EditorConfig 编辑会话配置
type EditorConfig struct {
	// EnabledLinkOptions 会话中可编辑的链接选项，为空表示全部
	EnabledLinkOptions []string `yaml:"enabled-link-options"`
	// SessionTTL 打开会话的最长存活时间，支持格式：30m、2h、1d
	SessionTTL string `yaml:"session-ttl" default:"2h"`
	// ClosedRetention 已结束会话保留时间，0 表示永久保留
	ClosedRetention string `yaml:"closed-retention" default:"7d"`
	// ExpireInterval 过期检查间隔
	ExpireInterval string `yaml:"expire-interval" default:"1m"`
	// PurgeCron 清理已结束会话的 cron 表达式（分 时 日 月 周）
	PurgeCron string `yaml:"purge-cron" default:"0 3 * * *"`
}

// ContentConfig 内容扫描配置
type ContentConfig struct {
	// MaxLinks 单次扫描返回的最大链接数
	MaxLinks int `yaml:"max-links" default:"500"`
	// Concurrency 并行分类的链接数
	Concurrency int `yaml:"concurrency" default:"8"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// LimiterConfig 限流配置，按路由前缀配置令牌桶
type LimiterConfig struct {
	Rules []LimiterRule `yaml:"rules"`
}

// LimiterRule 单个路由前缀的令牌桶
type LimiterRule struct {
	// Key 路由前缀，例如 /api/editor
	Key string `yaml:"key"`
	// FillInterval 放入令牌的间隔，支持格式：1s、1m
	FillInterval string `yaml:"fill-interval" default:"1s"`
	// Capacity 令牌桶容量
	Capacity int64 `yaml:"capacity" default:"100"`
	// Quantum 每次放入的令牌数
	Quantum int64 `yaml:"quantum" default:"100"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置内容并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}

	c.Database.RunMode = c.Server.RunMode
	return c, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	return &service.ServiceConfig{
		Editor: service.EditorServiceConfig{
			EnabledLinkOptions: c.Editor.EnabledLinkOptions,
			SessionTTL:         c.Editor.SessionTTL,
			ClosedRetention:    c.Editor.ClosedRetention,
		},
		LinkTypes: c.LinkTypes,
		Content: service.ContentServiceConfig{
			MaxLinks:    c.Content.MaxLinks,
			Concurrency: c.Content.Concurrency,
		},
	}
}
