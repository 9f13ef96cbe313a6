package task

import (
	"context"
	"time"

	"github.com/haierkeys/link-editor-service/pkg/safe_close"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask is a task scheduled by a five field cron expression instead of an interval
// CronTask 按 cron 表达式（分 时 日 月 周）调度的任务
type CronTask interface {
	Task
	Schedule() string
}

// cronParser 解析五段式 cron 表达式
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule 解析 cron 表达式
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse cron expression %q", expr)
	}
	return schedule, nil
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		cron:   cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务
func (s *Scheduler) Start() error {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return nil
	}

	s.logger.Info("tasks starting ", zap.Int("count", len(s.tasks)))

	hasCron := false
	for _, task := range s.tasks {
		if ct, ok := task.(CronTask); ok && ct.Schedule() != "" {
			if err := s.addCronTask(ct); err != nil {
				return err
			}
			hasCron = true
			continue
		}
		s.startTask(task)
	}

	if hasCron {
		s.cron.Start()
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			<-s.cron.Stop().Done()
			s.logger.Info("cron tasks stopped")
		})
	}
	return nil
}

// runOnce 执行一次任务，捕获 panic
func (s *Scheduler) runOnce(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

func (s *Scheduler) addCronTask(task CronTask) error {
	schedule, err := ParseSchedule(task.Schedule())
	if err != nil {
		return errors.Wrapf(err, "task %s", task.Name())
	}
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.runOnce(task, "cronRun")
	}))
	if task.IsStartupRun() {
		go s.runOnce(task, "startupRun")
	}
	return nil
}

// startTask 启动单个间隔任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			go s.runOnce(task, "startupRun")
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		// 定时执行
		for {
			select {
			case <-ticker.C:
				s.runOnce(task, "loopRun")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}
