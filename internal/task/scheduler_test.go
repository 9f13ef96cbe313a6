package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	startup  bool
	schedule string
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	return nil
}

type countingCronTask struct {
	countingTask
}

func (t *countingCronTask) Schedule() string { return t.schedule }

type panickingTask struct{ countingTask }

func (t *panickingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	panic("task failure")
}

func TestSchedulerIntervalTask(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &countingTask{interval: 10 * time.Millisecond, startup: true}
	s.AddTask(task)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestSchedulerRecoversPanics(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &panickingTask{countingTask{interval: 10 * time.Millisecond}}
	s.AddTask(task)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestSchedulerCronTask(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &countingCronTask{countingTask{schedule: "0 3 * * *", startup: true}}
	s.AddTask(task)
	require.NoError(t, s.Start())
	require.Len(t, s.cron.Entries(), 1)

	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	s.AddTask(&countingCronTask{countingTask{schedule: "every day"}})
	assert.Error(t, s.Start())
}

func TestParseSchedule(t *testing.T) {
	schedule, err := ParseSchedule("0 3 * * *")
	require.NoError(t, err)

	from := time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC), schedule.Next(from))

	_, err = ParseSchedule("* * *")
	assert.Error(t, err)
}

func newTestApp(t *testing.T, yaml string) *app.App {
	t.Helper()
	cfg, err := app.ParseConfig([]byte("database:\n  path: \":memory:\"\n" + yaml))
	require.NoError(t, err)
	db, err := dao.NewDBEngine(cfg.Database)
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestManagerRegistersEditorTasks(t *testing.T) {
	a := newTestApp(t, "")
	m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
	require.NoError(t, m.RegisterTasks())

	names := make([]string, 0, len(m.scheduler.tasks))
	for _, task := range m.scheduler.tasks {
		names = append(names, task.Name())
	}
	assert.Equal(t, []string{"EditorSessionExpire", "EditorSessionPurge"}, names)
}

func TestEditorTasksDisabled(t *testing.T) {
	a := newTestApp(t, "editor:\n  session-ttl: \"0\"\n  closed-retention: \"0\"\n")

	expire, err := NewSessionExpireTask(a)
	require.NoError(t, err)
	assert.Nil(t, expire)

	purge, err := NewSessionPurgeTask(a)
	require.NoError(t, err)
	assert.Nil(t, purge)
}

func TestEditorTasksRun(t *testing.T) {
	a := newTestApp(t, "")

	expire, err := NewSessionExpireTask(a)
	require.NoError(t, err)
	assert.NoError(t, expire.Run(context.Background()))

	purge, err := NewSessionPurgeTask(a)
	require.NoError(t, err)
	assert.NoError(t, purge.Run(context.Background()))
}
