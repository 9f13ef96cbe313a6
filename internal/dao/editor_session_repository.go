package dao

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// editorSessionRepository implements domain.EditorSessionRepository interface
type editorSessionRepository struct {
	dao *Dao
}

var _ domain.EditorSessionRepository = (*editorSessionRepository)(nil)

// NewEditorSessionRepository creates an EditorSessionRepository instance
func NewEditorSessionRepository(dao *Dao) domain.EditorSessionRepository {
	return &editorSessionRepository{dao: dao}
}

// getDB returns the connection and ensures the table is migrated
func (r *editorSessionRepository) getDB(ctx context.Context) (*gorm.DB, error) {
	if err := r.dao.migrate("EditorSession"); err != nil {
		return nil, err
	}
	return r.dao.Db.WithContext(ctx), nil
}

func encodeLink(l *domain.Link) (string, error) {
	if l == nil {
		return "", nil
	}
	data, err := sonic.MarshalString(l)
	if err != nil {
		return "", errors.Wrap(err, "encode link")
	}
	return data, nil
}

func decodeLink(s string) (*domain.Link, error) {
	if s == "" {
		return nil, nil
	}
	var l domain.Link
	if err := sonic.UnmarshalString(s, &l); err != nil {
		return nil, errors.Wrap(err, "decode link")
	}
	return &l, nil
}

// toModel converts domain model to database model
func (r *editorSessionRepository) toModel(s *domain.EditorSession) (*model.EditorSession, error) {
	initial, err := encodeLink(s.InitialValue)
	if err != nil {
		return nil, err
	}
	result, err := encodeLink(s.Result)
	if err != nil {
		return nil, err
	}
	options, err := sonic.MarshalString(s.EnabledLinkOptions)
	if err != nil {
		return nil, errors.Wrap(err, "encode link options")
	}
	return &model.EditorSession{
		ID:                 s.ID,
		Status:             string(s.Status),
		InitialValue:       initial,
		EnabledLinkOptions: options,
		LinkTypeID:         s.LinkTypeID,
		Result:             result,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		ClosedAt:           s.ClosedAt,
	}, nil
}

// toDomain converts database model to domain model
func (r *editorSessionRepository) toDomain(m *model.EditorSession) (*domain.EditorSession, error) {
	initial, err := decodeLink(m.InitialValue)
	if err != nil {
		return nil, err
	}
	result, err := decodeLink(m.Result)
	if err != nil {
		return nil, err
	}
	var options []domain.LinkOption
	if m.EnabledLinkOptions != "" {
		if err := sonic.UnmarshalString(m.EnabledLinkOptions, &options); err != nil {
			return nil, errors.Wrap(err, "decode link options")
		}
	}
	return &domain.EditorSession{
		ID:                 m.ID,
		Status:             domain.EditorSessionStatus(m.Status),
		InitialValue:       initial,
		EnabledLinkOptions: options,
		LinkTypeID:         m.LinkTypeID,
		Result:             result,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		ClosedAt:           m.ClosedAt,
	}, nil
}

// Create creates a session record
func (r *editorSessionRepository) Create(ctx context.Context, session *domain.EditorSession) error {
	m, err := r.toModel(session)
	if err != nil {
		return err
	}
	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Create(m).Error, "create editor session")
}

// Get gets a session by id
func (r *editorSessionRepository) Get(ctx context.Context, id string) (*domain.EditorSession, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	var m model.EditorSession
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEditorSessionNotFound
		}
		return nil, errors.Wrap(err, "get editor session")
	}
	return r.toDomain(&m)
}

// Close marks an open session as closed; sessions already closed are left unchanged
func (r *editorSessionRepository) Close(ctx context.Context, id string, status domain.EditorSessionStatus, linkTypeID string, result *domain.Link) error {
	encoded, err := encodeLink(result)
	if err != nil {
		return err
	}
	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	err = db.Model(&model.EditorSession{}).
		Where("id = ? AND status = ?", id, string(domain.EditorSessionOpen)).
		Updates(map[string]any{
			"status":       string(status),
			"link_type_id": linkTypeID,
			"result":       encoded,
			"updated_at":   now,
			"closed_at":    now,
		}).Error
	return errors.Wrap(err, "close editor session")
}

// ListOpenBefore lists open sessions created before the given time, oldest first
func (r *editorSessionRepository) ListOpenBefore(ctx context.Context, before time.Time) ([]*domain.EditorSession, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	var modelList []*model.EditorSession
	err = db.Where("status = ? AND created_at < ?", string(domain.EditorSessionOpen), before).
		Order("created_at ASC").
		Find(&modelList).Error
	if err != nil {
		return nil, errors.Wrap(err, "list open editor sessions")
	}

	results := make([]*domain.EditorSession, 0, len(modelList))
	for _, m := range modelList {
		s, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, nil
}

// DeleteClosedBefore hard deletes sessions closed before the given time
func (r *editorSessionRepository) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return 0, err
	}
	res := db.Where("status <> ? AND closed_at < ?", string(domain.EditorSessionOpen), before).
		Delete(&model.EditorSession{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete closed editor sessions")
	}
	return res.RowsAffected, nil
}
