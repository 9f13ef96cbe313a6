package task

import (
	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/pkg/safe_close"
	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, a *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       a,
	}
}

// RegisterTasks 通过注册表创建并添加所有任务
func (m *Manager) RegisterTasks() error {
	for _, f := range registered() {
		t, err := f.factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.String("task", f.name), zap.Error(err))
			return err
		}
		if t == nil {
			m.logger.Debug("task disabled", zap.String("task", f.name))
			continue
		}
		m.scheduler.AddTask(t)
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() error {
	return m.scheduler.Start()
}
