// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/linktype"
	"github.com/haierkeys/link-editor-service/internal/metrics"
	"github.com/haierkeys/link-editor-service/internal/service"
	pkgapp "github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/workerpool"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件，承载编辑会话的等待任务
	workerPool *workerpool.Pool

	// 链接类型注册表
	Registry *domain.Registry

	// Repository 层
	EditorSessionRepo domain.EditorSessionRepository

	// Service 层
	LinkService    service.LinkService
	EditorService  service.EditorService
	ContentService service.ContentService

	shutdownOnce sync.Once
	shuttingDown atomic.Bool
	shutdownErr  error

	// StartTime 容器创建时间，用于健康检查的运行时长
	StartTime time.Time
}

// NewApp builds the registry, worker pool, repositories and services on top of the
// given configuration, logger and database. All three are required.
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	registry, err := linktype.NewRegistry()
	if err != nil {
		return nil, errors.Wrap(err, "register link types")
	}
	a.Registry = registry

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)
	metrics.ObserveWorkerPool(a.workerPool)

	// 初始化 DAO（使用依赖注入）
	dbConfig := cfg.Database
	a.Dao = dao.New(db,
		dao.WithConfig(&dbConfig),
		dao.WithLogger(logger),
	)

	// 初始化 Repository 层
	a.EditorSessionRepo = dao.NewEditorSessionRepository(a.Dao)

	// 初始化 Service 层（依赖注入）
	svcConfig := cfg.GetServiceConfig()
	a.LinkService = service.NewLinkService(registry, svcConfig, logger)
	a.ContentService = service.NewContentService(registry, svcConfig, logger)
	a.EditorService, err = service.NewEditorService(a.EditorSessionRepo, registry, a.workerPool, svcConfig, logger)
	if err != nil {
		_ = a.workerPool.Shutdown(context.Background())
		return nil, err
	}

	logger.Info("App container initialized successfully",
		zap.Int("linkTypes", len(registry.LinkTypes())),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers))

	return a, nil
}

func (a *App) closeDB() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "close database")
	}
	a.logger.Info("database connection closed")
	return nil
}

func (a *App) Config() *AppConfig {
	return a.config
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version returns the build information of the binary
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{Version: Version, GitTag: GitTag, BuildTime: BuildTime}
}

// WorkerPool is the pool that runs the session await tasks
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// Shutdown ends every open editor session, waits for their outcomes to be stored and
// then closes the database. Only the first call does the work; later calls return its result.
// A nil ctx waits at most DefaultShutdownTimeout.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		if ctx == nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
		}
		a.shuttingDown.Store(true)
		a.logger.Info("app container shutting down")

		var errs []error
		if err := a.EditorService.Shutdown(ctx); err != nil {
			a.logger.Warn("editor service shutdown error", zap.Error(err))
			errs = append(errs, errors.Wrap(err, "editor service shutdown"))
		}
		if err := a.closeDB(); err != nil {
			errs = append(errs, err)
		}
		a.shutdownErr = stderrors.Join(errs...)
		if a.shutdownErr != nil {
			a.logger.Warn("app container shutdown completed with errors", zap.Error(a.shutdownErr))
			return
		}
		a.logger.Info("app container shutdown completed")
	})
	return a.shutdownErr
}

// IsShuttingDown reports whether Shutdown has been called
func (a *App) IsShuttingDown() bool {
	return a.shuttingDown.Load()
}
