package service

import (
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/dto"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// linkTypes resolves registered link types with their settings applied
type linkTypes struct {
	registry *domain.Registry
	settings map[string]domain.LinkTypeSettings
}

func (l linkTypes) enabled(id string) bool {
	s, ok := l.settings[id]
	return !ok || s.IsEnabled()
}

// get returns an enabled link type
func (l linkTypes) get(id string) (domain.LinkType, error) {
	lt, ok := l.registry.Get(id)
	if !ok || !l.enabled(id) {
		return nil, code.ErrorLinkTypeNotFound.WithDetails(id)
	}
	return lt, nil
}

// forHref returns the first enabled link type, in registration order, suitable for href
func (l linkTypes) forHref(href string) domain.LinkType {
	link := domain.Link{Href: href}
	for _, lt := range l.registry.LinkTypes() {
		if l.enabled(lt.ID()) && lt.IsSuitableFor(link) {
			return lt
		}
	}
	return nil
}

// resolve picks the link type (by id, or by href when id is empty) and parses the link
func (l linkTypes) resolve(id string, link domain.Link) (domain.LinkType, domain.Model, error) {
	var lt domain.LinkType
	if id != "" {
		var err error
		if lt, err = l.get(id); err != nil {
			return nil, nil, err
		}
	} else if lt = l.forHref(link.Href); lt == nil {
		return nil, nil, code.ErrorUnsupportedHref.WithDetails(link.Href)
	}

	model, err := lt.ResolveModel(link)
	if err != nil {
		return lt, nil, resolveError(err)
	}
	return lt, model, nil
}

func resolveError(err error) error {
	var lte *domain.LinkTypeError
	if errors.As(err, &lte) {
		return code.ErrorUnsupportedHref.WithDetails(lte.Message)
	}
	return code.ErrorModelInvalid.WithDetails(err.Error())
}

func linkToDTO(l *domain.Link) *dto.LinkDTO {
	if l == nil {
		return nil
	}
	out := &dto.LinkDTO{Href: l.Href}
	_ = copier.Copy(&out.Options, &l.Options)
	return out
}

func linkFromDTO(d *dto.LinkDTO) *domain.Link {
	if d == nil {
		return nil
	}
	out := &domain.Link{Href: d.Href}
	_ = copier.Copy(&out.Options, &d.Options)
	return out
}

func optionsToStrings(opts []domain.LinkOption) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, string(o))
	}
	return out
}

// optionsFromStrings rejects unknown option names
func optionsFromStrings(names []string) ([]domain.LinkOption, error) {
	out := make([]domain.LinkOption, 0, len(names))
	for _, name := range names {
		o := domain.LinkOption(name)
		if !o.IsValid() {
			return nil, code.ErrorInvalidParams.WithDetails("unknown link option " + name)
		}
		out = append(out, o)
	}
	return out, nil
}
