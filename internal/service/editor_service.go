package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/metrics"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/logger"
	"github.com/haierkeys/link-editor-service/pkg/timex"
	"github.com/haierkeys/link-editor-service/pkg/util"
	"github.com/haierkeys/link-editor-service/pkg/workerpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// persistTimeout bounds the write that records a finished session
const persistTimeout = 10 * time.Second

// EditorService 链接编辑会话业务服务接口
type EditorService interface {
	// Open starts an editor session
	Open(ctx context.Context, params *dto.EditorOpenRequest) (*dto.EditorSessionDTO, error)
	// Get returns a session, open or closed
	Get(ctx context.Context, id string) (*dto.EditorSessionDTO, error)
	// Apply closes the session with a new link
	Apply(ctx context.Context, id string, params *dto.EditorApplyRequest) (*dto.EditorSessionDTO, error)
	// Unset closes the session removing the link
	Unset(ctx context.Context, id string) (*dto.EditorSessionDTO, error)
	// Dismiss closes the session without changes
	Dismiss(ctx context.Context, id string) (*dto.EditorSessionDTO, error)
	// Subscribe calls fn with the current state and every change until the returned function is called
	Subscribe(ctx context.Context, id string, fn func(*dto.EditorStateMessage)) (func(), error)
	// ExpireStale closes sessions open longer than the session TTL
	ExpireStale(ctx context.Context) (int, error)
	// PurgeClosed deletes closed sessions older than the retention time
	PurgeClosed(ctx context.Context) (int64, error)
	// Shutdown expires every open session and waits for them to be recorded
	Shutdown(ctx context.Context) error
}

// editorSession is an open session held in memory until its result is recorded
type editorSession struct {
	id        string
	editor    *domain.Editor
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	// done is closed once the result has been written to the repository
	done chan struct{}

	expired atomic.Bool
}

type editorService struct {
	repo    domain.EditorSessionRepository
	types   linkTypes
	pool    *workerpool.Pool
	logger  *zap.Logger
	enabled []domain.LinkOption

	sessionTTL      time.Duration
	closedRetention time.Duration

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*editorSession
}

// NewEditorService 创建编辑会话服务
// 每个打开的会话占用 pool 的一个 worker 直到关闭，没有空闲 worker 时 Open 返回 ErrorTooManyRequests
func NewEditorService(repo domain.EditorSessionRepository, registry *domain.Registry, pool *workerpool.Pool, cfg *ServiceConfig, log *zap.Logger) (EditorService, error) {
	if log == nil {
		log = zap.NewNop()
	}

	enabled, err := optionsFromStrings(cfg.Editor.EnabledLinkOptions)
	if err != nil {
		return nil, errors.Wrap(err, "editor: enabled link options")
	}
	if len(enabled) == 0 {
		enabled = domain.AllLinkOptions
	}

	ttl, err := parseDurationOrZero(cfg.Editor.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, "editor: session ttl")
	}
	retention, err := parseDurationOrZero(cfg.Editor.ClosedRetention)
	if err != nil {
		return nil, errors.Wrap(err, "editor: closed retention")
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &editorService{
		repo:            repo,
		types:           linkTypes{registry: registry, settings: cfg.LinkTypes},
		pool:            pool,
		logger:          log,
		enabled:         enabled,
		sessionTTL:      ttl,
		closedRetention: retention,
		baseCtx:         baseCtx,
		baseCancel:      baseCancel,
		sessions:        make(map[string]*editorSession),
	}, nil
}

func parseDurationOrZero(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return util.ParseDuration(s)
}

func (s *editorService) Open(ctx context.Context, params *dto.EditorOpenRequest) (*dto.EditorSessionDTO, error) {
	requested, err := optionsFromStrings(params.EnabledLinkOptions)
	if err != nil {
		return nil, err
	}
	enabled := s.enabled
	if len(requested) > 0 {
		enabled = domain.IntersectLinkOptions(requested, s.enabled)
	}

	now := time.Now()
	session := &domain.EditorSession{
		ID:                 uuid.NewString(),
		Status:             domain.EditorSessionOpen,
		InitialValue:       linkFromDTO(params.InitialValue),
		EnabledLinkOptions: enabled,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	editor := domain.NewEditor()
	ch, err := editor.Open(session.InitialValue, domain.EditorOptions{EnabledLinkOptions: enabled})
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	sctx, cancel := context.WithCancel(s.baseCtx)
	es := &editorSession{
		id:        session.ID,
		editor:    editor,
		createdAt: now,
		ctx:       sctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[es.id] = es
	s.mu.Unlock()

	metrics.EditorSessionsOpen.Inc()
	if err := s.pool.TrySubmit(context.Background(), s.await(es, ch)); err != nil {
		metrics.EditorSessionsOpen.Dec()
		s.forget(es.id)
		cancel()
		_ = editor.Dismiss()
		_ = s.repo.Close(ctx, es.id, domain.EditorSessionDismissed, "", nil)
		if errors.Is(err, workerpool.ErrWorkerPoolClosed) {
			return nil, code.ErrorServiceClosing
		}
		s.logger.Warn("editor session rejected", zap.Error(err))
		return nil, code.ErrorTooManyRequests.WithDetails(err.Error())
	}

	s.logger.Debug("editor session opened", zap.String(logger.FieldSessionID, es.id))
	return s.openDTO(es), nil
}

// await waits for the edit to end, then records the result and drops the session from memory
func (s *editorService) await(es *editorSession, ch <-chan domain.EditResult) func(context.Context) error {
	return func(context.Context) error {
		defer close(es.done)
		defer es.cancel()

		var res domain.EditResult
		select {
		case res = <-ch:
		case <-es.ctx.Done():
			// a concurrent transaction may have resolved the edit first; either way the result is on ch
			_ = es.editor.Dismiss()
			res = <-ch
		}

		status := domain.StatusFromResult(res)
		if !res.Change && es.expired.Load() {
			status = domain.EditorSessionExpired
		}
		var linkTypeID string
		if status == domain.EditorSessionApplied {
			linkTypeID = res.LinkTypeID
		}

		pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		err := s.repo.Close(pctx, es.id, status, linkTypeID, res.Value)

		s.forget(es.id)
		metrics.EditorSessionsOpen.Dec()
		metrics.EditorSessionsClosed.WithLabelValues(string(status)).Inc()

		if err != nil {
			s.logger.Error("editor session close failed",
				zap.String(logger.FieldSessionID, es.id),
				zap.String(logger.FieldStatus, string(status)),
				zap.Error(err))
			return err
		}
		s.logger.Debug("editor session closed",
			zap.String(logger.FieldSessionID, es.id),
			zap.String(logger.FieldStatus, string(status)),
			zap.String(logger.FieldLinkType, linkTypeID))
		return nil
	}
}

func (s *editorService) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *editorService) session(id string) (*editorSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	es, ok := s.sessions[id]
	return es, ok
}

func (s *editorService) Get(ctx context.Context, id string) (*dto.EditorSessionDTO, error) {
	es, ok := s.session(id)
	if !ok {
		return s.stored(ctx, id)
	}
	if es.editor.State().IsOpen {
		return s.openDTO(es), nil
	}
	// closed but not yet recorded
	return s.closed(ctx, es)
}

func (s *editorService) stored(ctx context.Context, id string) (*dto.EditorSessionDTO, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEditorSessionNotFound) {
			return nil, code.ErrorEditorNotFound.WithDetails(id)
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return sessionToDTO(session), nil
}

func (s *editorService) Apply(ctx context.Context, id string, params *dto.EditorApplyRequest) (*dto.EditorSessionDTO, error) {
	es, err := s.openSession(ctx, id)
	if err != nil {
		return nil, err
	}

	link := linkFromDTO(&params.Link)
	lt, _, err := s.types.resolve(params.LinkTypeID, *link)
	if err != nil {
		return nil, err
	}

	if _, err := es.editor.ApplyFrom(lt.ID(), *link, lt.SupportedLinkOptions()); err != nil {
		return nil, s.transactionError(id, err)
	}
	return s.closed(ctx, es)
}

func (s *editorService) Unset(ctx context.Context, id string) (*dto.EditorSessionDTO, error) {
	es, err := s.openSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := es.editor.Unset(); err != nil {
		return nil, s.transactionError(id, err)
	}
	return s.closed(ctx, es)
}

func (s *editorService) Dismiss(ctx context.Context, id string) (*dto.EditorSessionDTO, error) {
	es, err := s.openSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := es.editor.Dismiss(); err != nil {
		return nil, s.transactionError(id, err)
	}
	return s.closed(ctx, es)
}

// openSession returns the in-memory session, or the reason there is none
func (s *editorService) openSession(ctx context.Context, id string) (*editorSession, error) {
	if es, ok := s.session(id); ok {
		return es, nil
	}
	if _, err := s.stored(ctx, id); err != nil {
		return nil, err
	}
	return nil, code.ErrorEditorClosed.WithDetails(id)
}

func (s *editorService) transactionError(id string, err error) error {
	if errors.Is(err, domain.ErrEditorNotOpen) {
		return code.ErrorEditorClosed.WithDetails(id)
	}
	return code.ErrorServerInternal.WithDetails(err.Error())
}

// closed waits until the session result is recorded and returns the stored session
func (s *editorService) closed(ctx context.Context, es *editorSession) (*dto.EditorSessionDTO, error) {
	select {
	case <-es.done:
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "editor: wait for session close")
	}
	return s.stored(ctx, es.id)
}

func (s *editorService) Subscribe(ctx context.Context, id string, fn func(*dto.EditorStateMessage)) (func(), error) {
	es, err := s.openSession(ctx, id)
	if err != nil {
		return nil, err
	}

	unsubscribe := es.editor.Subscribe(func(state domain.EditorState) {
		fn(stateToMessage(id, state))
	})
	fn(stateToMessage(id, es.editor.State()))
	return unsubscribe, nil
}

func (s *editorService) ExpireStale(ctx context.Context) (int, error) {
	if s.sessionTTL <= 0 {
		return 0, nil
	}
	before := time.Now().Add(-s.sessionTTL)

	s.mu.RLock()
	var stale []*editorSession
	for _, es := range s.sessions {
		if es.createdAt.Before(before) {
			stale = append(stale, es)
		}
	}
	s.mu.RUnlock()

	for _, es := range stale {
		es.expired.Store(true)
		es.cancel()
	}

	// sessions left open by a previous process have no waiter
	orphans, err := s.repo.ListOpenBefore(ctx, before)
	if err != nil {
		return len(stale), code.ErrorDBQuery.WithDetails(err.Error())
	}
	count := len(stale)
	for _, session := range orphans {
		if _, ok := s.session(session.ID); ok {
			continue
		}
		if err := s.repo.Close(ctx, session.ID, domain.EditorSessionExpired, "", nil); err != nil {
			return count, code.ErrorDBQuery.WithDetails(err.Error())
		}
		metrics.EditorSessionsClosed.WithLabelValues(string(domain.EditorSessionExpired)).Inc()
		count++
	}
	return count, nil
}

func (s *editorService) PurgeClosed(ctx context.Context) (int64, error) {
	if s.closedRetention <= 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteClosedBefore(ctx, time.Now().Add(-s.closedRetention))
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return n, nil
}

func (s *editorService) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	for _, es := range s.sessions {
		es.expired.Store(true)
	}
	s.mu.RUnlock()

	s.baseCancel()
	return s.pool.Shutdown(ctx)
}

func (s *editorService) openDTO(es *editorSession) *dto.EditorSessionDTO {
	state := es.editor.State()
	return &dto.EditorSessionDTO{
		ID:                 es.id,
		Status:             string(domain.EditorSessionOpen),
		IsOpen:             state.IsOpen,
		InitialValue:       linkToDTO(state.InitialValue),
		Value:              linkToDTO(state.Value),
		EnabledLinkOptions: optionsToStrings(state.EnabledLinkOptions),
		CreatedAt:          timex.Time(es.createdAt),
		UpdatedAt:          timex.Time(es.createdAt),
	}
}

func sessionToDTO(session *domain.EditorSession) *dto.EditorSessionDTO {
	out := &dto.EditorSessionDTO{
		ID:                 session.ID,
		Status:             string(session.Status),
		IsOpen:             !session.Status.IsClosed(),
		InitialValue:       linkToDTO(session.InitialValue),
		Value:              linkToDTO(session.InitialValue),
		EnabledLinkOptions: optionsToStrings(session.EnabledLinkOptions),
		LinkTypeID:         session.LinkTypeID,
		CreatedAt:          timex.Time(session.CreatedAt),
		UpdatedAt:          timex.Time(session.UpdatedAt),
	}
	switch session.Status {
	case domain.EditorSessionApplied:
		out.Value = linkToDTO(session.Result)
	case domain.EditorSessionUnset:
		out.Value = nil
	}
	if session.ClosedAt != nil {
		closedAt := timex.Time(*session.ClosedAt)
		out.ClosedAt = &closedAt
	}
	return out
}

func stateToMessage(id string, state domain.EditorState) *dto.EditorStateMessage {
	return &dto.EditorStateMessage{
		SessionID:          id,
		IsOpen:             state.IsOpen,
		InitialValue:       linkToDTO(state.InitialValue),
		Value:              linkToDTO(state.Value),
		EnabledLinkOptions: optionsToStrings(state.EnabledLinkOptions),
	}
}
