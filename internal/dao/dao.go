// Package dao implements the data access layer
package dao

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/haierkeys/link-editor-service/internal/model"
	"github.com/haierkeys/link-editor-service/pkg/fileurl"
	"github.com/haierkeys/link-editor-service/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite、mysql、postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径，":memory:" 表示内存数据库
	Path string `yaml:"path" default:"storage/database/link-editor.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机，格式 host:port
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集（mysql）
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间（mysql）
	ParseTime bool `yaml:"parse-time" default:"true"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode" default:"disable"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
	// RunMode 运行模式，debug 时输出 SQL
	RunMode string `yaml:"-"`
}

// Dao 数据访问对象
type Dao struct {
	Db     *gorm.DB
	config *DatabaseConfig
	logger *zap.Logger

	// onceKeys 记录已迁移的表
	onceKeys sync.Map
}

// Option Dao 选项
type Option func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// New 创建 Dao
func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{Db: db, config: &DatabaseConfig{AutoMigrate: true}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// migrate runs the migration of a model once per Dao when auto migrate is on
func (d *Dao) migrate(key string) error {
	if !d.config.AutoMigrate {
		return nil
	}
	if _, loaded := d.onceKeys.LoadOrStore(key+"#migrated", true); loaded {
		return nil
	}
	if err := model.AutoMigrate(d.Db, key); err != nil {
		d.onceKeys.Delete(key + "#migrated")
		d.logger.Error("auto migrate failed", zap.String("model", key), zap.Error(err))
		return err
	}
	return nil
}

// NewDBEngine 创建数据库连接
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := userDialector(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	// an in-memory sqlite database exists per connection
	if c.Type == "sqlite" && c.Path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	return db, nil
}

func userDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		host, port, err := net.SplitHostPort(c.Host)
		if err != nil {
			host, port = c.Host, "5432"
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Local",
			host, port, c.UserName, c.Password, c.Name, c.SSLMode,
		)), nil
	case "sqlite", "":
		if c.Path != ":memory:" && !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}
