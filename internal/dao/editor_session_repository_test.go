package dao

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) domain.EditorSessionRepository {
	t.Helper()
	db, err := NewDBEngine(DatabaseConfig{Type: "sqlite", Path: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewEditorSessionRepository(New(db, WithConfig(&DatabaseConfig{AutoMigrate: true})))
}

func TestEditorSessionRepositoryLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	session := &domain.EditorSession{
		ID:                 "s1",
		Status:             domain.EditorSessionOpen,
		InitialValue:       &domain.Link{Href: "https://old.example", Options: domain.LinkOptions{Title: "Old"}},
		EnabledLinkOptions: []domain.LinkOption{domain.LinkOptionTitle},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.EditorSessionOpen, got.Status)
	assert.Equal(t, session.InitialValue, got.InitialValue)
	assert.Equal(t, session.EnabledLinkOptions, got.EnabledLinkOptions)
	assert.Nil(t, got.Result)
	assert.Nil(t, got.ClosedAt)

	result := &domain.Link{Href: "https://new.example", Options: domain.LinkOptions{TargetBlank: true}}
	require.NoError(t, repo.Close(ctx, "s1", domain.EditorSessionApplied, "Fns.LinkEditor:Web", result))

	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.EditorSessionApplied, got.Status)
	assert.Equal(t, "Fns.LinkEditor:Web", got.LinkTypeID)
	assert.Equal(t, result, got.Result)
	require.NotNil(t, got.ClosedAt)

	// closing twice keeps the first outcome
	require.NoError(t, repo.Close(ctx, "s1", domain.EditorSessionExpired, "", nil))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.EditorSessionApplied, got.Status)
}

func TestEditorSessionRepositoryNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrEditorSessionNotFound)
}

func TestEditorSessionRepositoryListAndPurge(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for _, s := range []*domain.EditorSession{
		{ID: "old-open", Status: domain.EditorSessionOpen, CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now},
		{ID: "new-open", Status: domain.EditorSessionOpen, CreatedAt: now, UpdatedAt: now},
		{ID: "closed", Status: domain.EditorSessionOpen, CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now},
	} {
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.Close(ctx, "closed", domain.EditorSessionDismissed, "", nil))

	open, err := repo.ListOpenBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "old-open", open[0].ID)

	n, err := repo.DeleteClosedBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteClosedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "closed")
	assert.ErrorIs(t, err, domain.ErrEditorSessionNotFound)
}
