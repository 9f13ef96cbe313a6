package model

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AutoMigrate migrates the table of the named model, or every table when key is empty
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "EditorSession":
		return errors.Wrap(db.AutoMigrate(&EditorSession{}), "migrate editor_session")
	case "":
		return AutoMigrate(db, "EditorSession")
	}
	return errors.Errorf("unknown model %q", key)
}
