package task

import (
	"context"
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/service"
	"github.com/haierkeys/link-editor-service/pkg/logger"
	"github.com/haierkeys/link-editor-service/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionExpireTask 关闭超过存活时间的编辑会话
type SessionExpireTask struct {
	editor   service.EditorService
	logger   *zap.Logger
	interval time.Duration
}

func (t *SessionExpireTask) Name() string {
	return "EditorSessionExpire"
}

func (t *SessionExpireTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *SessionExpireTask) IsStartupRun() bool {
	return true
}

func (t *SessionExpireTask) Run(ctx context.Context) error {
	n, err := t.editor.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.Info("task log",
			zap.String("task", t.Name()),
			zap.Int(logger.FieldCount, n))
	}
	return nil
}

// NewSessionExpireTask 创建会话过期任务，未配置会话存活时间时不启用
func NewSessionExpireTask(a *app.App) (Task, error) {
	cfg := a.Config().Editor
	if cfg.SessionTTL == "" || cfg.SessionTTL == "0" {
		return nil, nil
	}
	interval, err := util.ParseDuration(cfg.ExpireInterval)
	if err != nil {
		return nil, errors.Wrap(err, "editor.expire-interval")
	}
	return &SessionExpireTask{editor: a.EditorService, logger: a.Logger(), interval: interval}, nil
}

// SessionPurgeTask 删除超过保留时间的已结束会话
type SessionPurgeTask struct {
	editor   service.EditorService
	logger   *zap.Logger
	schedule string
}

func (t *SessionPurgeTask) Name() string {
	return "EditorSessionPurge"
}

func (t *SessionPurgeTask) LoopInterval() time.Duration {
	return 0
}

func (t *SessionPurgeTask) IsStartupRun() bool {
	return false
}

func (t *SessionPurgeTask) Schedule() string {
	return t.schedule
}

func (t *SessionPurgeTask) Run(ctx context.Context) error {
	n, err := t.editor.PurgeClosed(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("task log",
		zap.String("task", t.Name()),
		zap.Int64(logger.FieldCount, n))
	return nil
}

// NewSessionPurgeTask 创建会话清理任务，未配置保留时间时不启用
func NewSessionPurgeTask(a *app.App) (Task, error) {
	cfg := a.Config().Editor
	if cfg.ClosedRetention == "" || cfg.ClosedRetention == "0" || cfg.PurgeCron == "" {
		return nil, nil
	}
	if _, err := ParseSchedule(cfg.PurgeCron); err != nil {
		return nil, errors.Wrap(err, "editor.purge-cron")
	}
	return &SessionPurgeTask{editor: a.EditorService, logger: a.Logger(), schedule: cfg.PurgeCron}, nil
}

func init() {
	Register("EditorSessionExpire", NewSessionExpireTask)
	Register("EditorSessionPurge", NewSessionPurgeTask)
}
