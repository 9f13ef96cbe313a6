package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/linktype"
	"github.com/stretchr/testify/require"
)

type mockEditorSessionRepo struct {
	domain.EditorSessionRepository
	mu       sync.Mutex
	sessions map[string]*domain.EditorSession
}

func newMockEditorSessionRepo() *mockEditorSessionRepo {
	return &mockEditorSessionRepo{sessions: make(map[string]*domain.EditorSession)}
}

func (m *mockEditorSessionRepo) Create(ctx context.Context, session *domain.EditorSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *mockEditorSessionRepo) Get(ctx context.Context, id string) (*domain.EditorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrEditorSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockEditorSessionRepo) Close(ctx context.Context, id string, status domain.EditorSessionStatus, linkTypeID string, result *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status.IsClosed() {
		return nil
	}
	now := time.Now()
	s.Status = status
	s.LinkTypeID = linkTypeID
	s.Result = result
	s.UpdatedAt = now
	s.ClosedAt = &now
	return nil
}

func (m *mockEditorSessionRepo) ListOpenBefore(ctx context.Context, before time.Time) ([]*domain.EditorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.EditorSession
	for _, s := range m.sessions {
		if !s.Status.IsClosed() && s.CreatedAt.Before(before) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockEditorSessionRepo) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.ClosedAt != nil && s.ClosedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *mockEditorSessionRepo) status(id string) domain.EditorSessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id].Status
}

func testRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	r, err := linktype.NewRegistry()
	require.NoError(t, err)
	return r
}
