package service

import (
	"context"

	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/internal/metrics"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/form"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/haierkeys/link-editor-service/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LinkService 链接类型业务服务接口
type LinkService interface {
	// LinkTypes lists enabled link types in configured order
	LinkTypes(ctx context.Context, t i18n.Func, params *dto.LinkTypeListRequest) ([]*dto.LinkTypeDTO, error)
	// Resolve picks a link type for the href and parses it into that type's model
	Resolve(ctx context.Context, t i18n.Func, params *dto.LinkResolveRequest) (*dto.LinkResolveDTO, error)
	// Editor returns the editing form of a link type, seeded from href when given
	Editor(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkEditorRequest) (*dto.LinkEditorDTO, error)
	// ChangeField runs a field's parser against the submitted values
	ChangeField(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkFieldChangeRequest) (*dto.LinkFieldChangeDTO, error)
	// Convert validates the form values and serializes them into a link
	Convert(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkConvertRequest) (*dto.LinkDTO, error)
}

type linkService struct {
	types  linkTypes
	logger *zap.Logger
}

// NewLinkService 创建链接类型服务
func NewLinkService(registry *domain.Registry, cfg *ServiceConfig, log *zap.Logger) LinkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &linkService{
		types:  linkTypes{registry: registry, settings: cfg.LinkTypes},
		logger: log,
	}
}

func (s *linkService) LinkTypes(ctx context.Context, t i18n.Func, params *dto.LinkTypeListRequest) ([]*dto.LinkTypeDTO, error) {
	link := domain.Link{Href: params.Href}
	sorted := s.types.registry.SortedAndFiltered(s.types.settings)

	res := make([]*dto.LinkTypeDTO, 0, len(sorted))
	for _, lt := range sorted {
		header := lt.TabHeader(t)
		res = append(res, &dto.LinkTypeDTO{
			ID:                   lt.ID(),
			TabHeader:            dto.TabHeaderDTO{Icon: header.Icon, Label: header.Label},
			SupportedLinkOptions: optionsToStrings(lt.SupportedLinkOptions()),
			Suitable:             params.Href != "" && lt.IsSuitableFor(link),
		})
	}
	return res, nil
}

func (s *linkService) Resolve(ctx context.Context, t i18n.Func, params *dto.LinkResolveRequest) (*dto.LinkResolveDTO, error) {
	lt, model, err := s.types.resolve(params.LinkTypeID, domain.Link{Href: params.Href})
	if err != nil {
		linkTypeID := params.LinkTypeID
		if lt != nil {
			linkTypeID = lt.ID()
		}
		metrics.LinkResolves.WithLabelValues(linkTypeID, resultLabel(err)).Inc()
		s.logger.Debug("resolve failed",
			zap.String(logger.FieldLinkType, linkTypeID),
			zap.String(logger.FieldHref, params.Href),
			zap.Error(err))
		return nil, err
	}

	preview, err := lt.Preview(model, t)
	if err != nil {
		return nil, code.ErrorModelInvalid.WithDetails(err.Error())
	}
	metrics.LinkResolves.WithLabelValues(lt.ID(), metrics.ResultOK).Inc()

	header := lt.TabHeader(t)
	return &dto.LinkResolveDTO{
		LinkTypeID: lt.ID(),
		Model:      model,
		TabHeader:  dto.TabHeaderDTO{Icon: header.Icon, Label: header.Label},
		Preview:    dto.PreviewDTO{Icon: preview.Icon, Title: preview.Title},
	}, nil
}

func (s *linkService) Editor(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkEditorRequest) (*dto.LinkEditorDTO, error) {
	lt, err := s.types.get(linkTypeID)
	if err != nil {
		return nil, err
	}

	var model domain.Model
	if params.Href != "" {
		if model, err = lt.ResolveModel(domain.Link{Href: params.Href}); err != nil {
			return nil, resolveError(err)
		}
	}

	ed, err := lt.Editor(model, t)
	if err != nil {
		return nil, code.ErrorModelInvalid.WithDetails(err.Error())
	}
	return &dto.LinkEditorDTO{
		LinkTypeID: lt.ID(),
		Label:      ed.Label,
		LabelFor:   ed.LabelFor,
		Prefix:     ed.Form.Prefix(),
		Fields:     ed.Form.View(),
	}, nil
}

func (s *linkService) ChangeField(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkFieldChangeRequest) (*dto.LinkFieldChangeDTO, error) {
	ed, err := s.loadEditor(linkTypeID, t, params.Values, false)
	if err != nil {
		return nil, err
	}

	res, err := ed.Form.Change(params.Field, params.Value)
	if err != nil {
		return nil, formError(err)
	}
	s.logger.Debug("field changed",
		zap.String(logger.FieldLinkType, linkTypeID),
		zap.String(logger.FieldField, params.Field),
		zap.Int(logger.FieldCount, len(res.Overrides)))

	return &dto.LinkFieldChangeDTO{
		Values:    ed.Form.Values(),
		Overrides: res.Overrides,
		Fields:    ed.Form.View(),
	}, nil
}

func (s *linkService) Convert(ctx context.Context, t i18n.Func, linkTypeID string, params *dto.LinkConvertRequest) (*dto.LinkDTO, error) {
	ed, err := s.loadEditor(linkTypeID, t, params.Values, true)
	if err != nil {
		return nil, err
	}

	if errs := ed.Form.Validate(t); len(errs) > 0 {
		metrics.LinkConverts.WithLabelValues(linkTypeID, metrics.ResultInvalid).Inc()
		return nil, code.ErrorValidation.WithData(errs)
	}

	lt, _ := s.types.get(linkTypeID)
	model, err := lt.ModelFromValues(ed.Form.Values())
	if err != nil {
		metrics.LinkConverts.WithLabelValues(linkTypeID, metrics.ResultError).Inc()
		return nil, code.ErrorModelInvalid.WithDetails(err.Error())
	}
	link, err := lt.ConvertModelToLink(model)
	if err != nil {
		metrics.LinkConverts.WithLabelValues(linkTypeID, metrics.ResultError).Inc()
		return nil, code.ErrorModelInvalid.WithDetails(err.Error())
	}

	link.Options = linkFromDTO(&dto.LinkDTO{Options: params.Options}).Options.Filter(lt.SupportedLinkOptions())
	metrics.LinkConverts.WithLabelValues(linkTypeID, metrics.ResultOK).Inc()
	return linkToDTO(&link), nil
}

// loadEditor builds a fresh editor form of the link type and loads the submitted values into it.
// Values already returned by ChangeField are stored as is; raw values are run through the field parsers.
func (s *linkService) loadEditor(linkTypeID string, t i18n.Func, values map[string]string, raw bool) (*domain.EditorForm, error) {
	lt, err := s.types.get(linkTypeID)
	if err != nil {
		return nil, err
	}
	ed, err := lt.Editor(nil, t)
	if err != nil {
		return nil, code.ErrorModelInvalid.WithDetails(err.Error())
	}
	if len(values) > 0 {
		load := ed.Form.Load
		if raw {
			load = ed.Form.Submit
		}
		if err := load(values); err != nil {
			return nil, formError(err)
		}
	}
	return ed, nil
}

func formError(err error) error {
	if errors.Is(err, form.ErrFieldNotFound) {
		return code.ErrorFieldNotFound.WithDetails(err.Error())
	}
	return code.ErrorInvalidParams.WithDetails(err.Error())
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, code.ErrorUnsupportedHref):
		return metrics.ResultUnsupported
	case errors.Is(err, code.ErrorLinkTypeNotFound):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
