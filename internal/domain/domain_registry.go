package domain

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrLinkTypeExists is returned when an id is registered twice
var ErrLinkTypeExists = errors.New("link type already registered")

// LinkTypeSettings are per link type editor settings
// LinkTypeSettings 单个链接类型的编辑器设置
type LinkTypeSettings struct {
	// Enabled nil 表示启用
	Enabled  *bool `yaml:"enabled" json:"enabled,omitempty"`
	Position int   `yaml:"position" json:"position"`
}

// IsEnabled 是否启用
func (s LinkTypeSettings) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Registry holds link types in registration order
// Registry 按注册顺序保存链接类型
type Registry struct {
	mu    sync.RWMutex
	types []LinkType
	index map[string]int
}

// NewRegistry creates a registry and registers the given link types in order
func NewRegistry(types ...LinkType) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, lt := range types {
		if err := r.Register(lt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a link type
// Register 注册链接类型
func (r *Registry) Register(lt LinkType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[lt.ID()]; ok {
		return errors.Wrapf(ErrLinkTypeExists, "%s", lt.ID())
	}
	r.index[lt.ID()] = len(r.types)
	r.types = append(r.types, lt)
	return nil
}

// LinkTypes returns all link types in registration order
// LinkTypes 按注册顺序返回所有链接类型
func (r *Registry) LinkTypes() []LinkType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LinkType(nil), r.types...)
}

// Get 根据 ID 获取链接类型
func (r *Registry) Get(id string) (LinkType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.types[i], true
}

// ForHref returns the first link type suitable for the href, or nil
// ForHref 返回第一个可处理该 href 的链接类型，没有时返回 nil
func (r *Registry) ForHref(href string) LinkType {
	link := Link{Href: href}
	for _, lt := range r.LinkTypes() {
		if lt.IsSuitableFor(link) {
			return lt
		}
	}
	return nil
}

// SortedAndFiltered drops disabled link types and orders the rest by position;
// equal positions keep registration order. Types without settings sit at position 0.
// SortedAndFiltered 过滤禁用的链接类型并按 position 排序，position 相同时保持注册顺序
func (r *Registry) SortedAndFiltered(settings map[string]LinkTypeSettings) []LinkType {
	all := r.LinkTypes()
	out := make([]LinkType, 0, len(all))
	for _, lt := range all {
		if s, ok := settings[lt.ID()]; ok && !s.IsEnabled() {
			continue
		}
		out = append(out, lt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return settings[out[i].ID()].Position < settings[out[j].ID()].Position
	})
	return out
}
