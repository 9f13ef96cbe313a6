// Package linktype wires the built-in link types
// Package linktype 注册内置链接类型
package linktype

import (
	"github.com/haierkeys/link-editor-service/internal/domain"
	"github.com/haierkeys/link-editor-service/internal/linktype/web"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
)

// Builtin returns the built-in link types in registration order
func Builtin() []domain.LinkType {
	return []domain.LinkType{
		web.LinkType,
	}
}

// Catalogs returns the message catalogs of the built-in link types
func Catalogs() []i18n.Catalog {
	return []i18n.Catalog{
		web.Messages,
	}
}

// NewRegistry 创建包含内置链接类型的注册表
func NewRegistry() (*domain.Registry, error) {
	return domain.NewRegistry(Builtin()...)
}
