package app

import (
	"context"
	"testing"

	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("server:\n  run-mode: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.RunMode)
	assert.Equal(t, ":9100", cfg.Server.HttpPort)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "debug", cfg.Database.RunMode)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "2h", cfg.Editor.SessionTTL)
	assert.Equal(t, "0 3 * * *", cfg.Editor.PurgeCron)
	assert.Equal(t, 500, cfg.Content.MaxLinks)
	assert.True(t, cfg.Tracer.Enabled)
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
editor:
  enabled-link-options: [title, targetBlank]
  session-ttl: 30m
link-types:
  Fns.LinkEditor:Web:
    position: 2
    enabled: false
limiter:
  rules:
    - key: /api/editor
      capacity: 5
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "targetBlank"}, cfg.Editor.EnabledLinkOptions)
	assert.Equal(t, "30m", cfg.Editor.SessionTTL)

	web := cfg.LinkTypes["Fns.LinkEditor:Web"]
	assert.Equal(t, 2, web.Position)
	assert.False(t, web.IsEnabled())

	require.Len(t, cfg.Limiter.Rules, 1)
	assert.Equal(t, int64(5), cfg.Limiter.Rules[0].Capacity)
	assert.Equal(t, "1s", cfg.Limiter.Rules[0].FillInterval)

	svc := cfg.GetServiceConfig()
	assert.Equal(t, "30m", svc.Editor.SessionTTL)
	assert.Equal(t, cfg.LinkTypes, svc.LinkTypes)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("server: ["))
	assert.Error(t, err)
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := ParseConfig([]byte("database:\n  path: \":memory:\"\n"))
	require.NoError(t, err)

	db, err := dao.NewDBEngine(cfg.Database)
	require.NoError(t, err)

	a, err := NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	return a
}

func TestNewAppWiresServices(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NotNil(t, a.Registry)
	assert.Len(t, a.Registry.LinkTypes(), 1)

	session, err := a.EditorService.Open(ctx, &dto.EditorOpenRequest{
		InitialValue: &dto.LinkDTO{Href: "https://example.com"},
	})
	require.NoError(t, err)
	assert.True(t, session.IsOpen)

	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, a.IsShuttingDown())
	assert.NoError(t, a.Shutdown(ctx), "second shutdown is a no-op")
}

func TestNewAppRequiresDependencies(t *testing.T) {
	_, err := NewApp(nil, zap.NewNop(), nil)
	assert.Error(t, err)
}
