// Package workerpool 提供固定数量 worker 的任务池
// 编辑会话的结果等待任务通过 TrySubmit 运行在这里，只有存在空闲 worker 时才会接受，
// 因此 worker 数量即同时打开会话的上限
package workerpool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 任务开始前 context 已取消
	ErrTaskCancelled = errors.New("task was cancelled")
	// ErrNoIdleWorker 所有 worker 都已被占用或预留
	ErrNoIdleWorker = errors.New("worker pool has no idle worker")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 并发 worker 数量，默认 100
	MaxWorkers int
	// QueueSize 等待队列长度，默认 100
	QueueSize int
	// WarningPercent 活跃 worker 占比达到该值时输出告警，默认 0.8
	WarningPercent float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     100,
		QueueSize:      100,
		WarningPercent: 0.8,
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = def.MaxWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.WarningPercent <= 0 || c.WarningPercent > 1 {
		c.WarningPercent = def.WarningPercent
	}
}

// Task is the unit of work; ctx is cancelled when a shutdown times out
type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	task   Task
	result chan<- error
}

// Pool runs tasks on a fixed set of workers fed by a bounded queue
type Pool struct {
	config Config
	logger *zap.Logger

	jobs    chan job
	workers sync.WaitGroup
	// pending counts accepted tasks that have not finished, queued ones included
	pending atomic.Int64
	active  atomic.Int64
	done    atomic.Int64
	failed  atomic.Int64

	// abort is cancelled when Shutdown gives up waiting
	abort  context.Context
	cancel context.CancelFunc

	// mu guards closed and the send side of jobs
	mu     sync.RWMutex
	closed bool
}

// New starts cfg.MaxWorkers workers. A nil cfg uses DefaultConfig and a nil logger a nop logger.
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	c.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}

	abort, cancel := context.WithCancel(context.Background())
	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
		abort:  abort,
		cancel: cancel,
	}

	p.workers.Add(c.MaxWorkers)
	for i := 0; i < c.MaxWorkers; i++ {
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))
	return p
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for j := range p.jobs {
		p.execute(j)
	}
}

func (p *Pool) execute(j job) {
	active := p.active.Add(1)

	if limit := int64(float64(p.config.MaxWorkers) * p.config.WarningPercent); active >= limit {
		p.logger.Warn("worker pool approaching capacity",
			zap.Int64("activeCount", active),
			zap.Int("maxWorkers", p.config.MaxWorkers))
	}

	err := ErrTaskCancelled
	if j.ctx.Err() == nil && p.abort.Err() == nil {
		err = p.run(j)
	}
	p.active.Add(-1)
	p.pending.Add(-1)

	if err != nil {
		p.failed.Add(1)
	} else {
		p.done.Add(1)
	}
	if j.result != nil {
		j.result <- err
	}
}

// run calls the task with a context that ends on the caller's cancel or an aborted shutdown.
// A panic becomes the task error so the worker survives.
func (p *Pool) run(j job) (err error) {
	ctx, stop := context.WithCancel(j.ctx)
	defer stop()
	unlink := context.AfterFunc(p.abort, stop)
	defer unlink()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker pool task panic", zap.Any("panic", r), zap.Stack("stack"))
			err = errors.Errorf("task panic: %v", r)
		}
	}()
	return j.task(ctx)
}

// SubmitAsync queues task without waiting. It fails fast when the queue is full or the pool is closed.
func (p *Pool) SubmitAsync(ctx context.Context, task Task) error {
	p.pending.Add(1)
	return p.enqueue(job{ctx: ctx, task: task})
}

// TrySubmit queues task only when a worker is free to pick it up right away, so the task never
// waits behind others. It returns ErrNoIdleWorker when every worker is busy or already reserved.
func (p *Pool) TrySubmit(ctx context.Context, task Task) error {
	limit := int64(p.config.MaxWorkers)
	for {
		n := p.pending.Load()
		if n >= limit {
			return ErrNoIdleWorker
		}
		if p.pending.CompareAndSwap(n, n+1) {
			break
		}
	}
	return p.enqueue(job{ctx: ctx, task: task})
}

// enqueue expects pending to be incremented for j already and undoes it on failure
func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.pending.Add(-1)
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		p.pending.Add(-1)
		return ErrWorkerPoolFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running ones.
// When ctx ends first the running tasks' contexts are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info("worker pool shutting down",
		zap.Int64("activeCount", p.active.Load()),
		zap.Int("queuedCount", len(p.jobs)))

	finished := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.cancel()
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("worker pool shutdown timeout, cancelling running tasks")
		return ctx.Err()
	}
}

// Stats is a point in time view of the pool
type Stats struct {
	MaxWorkers    int   `json:"maxWorkers"`
	Active        int64 `json:"active"`
	Pending       int64 `json:"pending"`
	Queued        int   `json:"queued"`
	QueueCapacity int   `json:"queueCapacity"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
	Closed        bool  `json:"closed"`
}

// Stats returns the current counters
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()

	return Stats{
		MaxWorkers:    p.config.MaxWorkers,
		Active:        p.active.Load(),
		Pending:       p.pending.Load(),
		Queued:        len(p.jobs),
		QueueCapacity: p.config.QueueSize,
		Completed:     p.done.Load(),
		Failed:        p.failed.Load(),
		Closed:        closed,
	}
}
