// Package sqlite contains the concrete implementation of the persistence
// layer using GORM over a device-local SQLite file.
package sqlite

import (
	"questlink/config"
	"questlink/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the local store and migrates the two credential tables.
func New(cfg *config.Config) (*gorm.DB, error) {
	path := cfg.Storage.Path
	if path == "" {
		path = "questlink.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite store")
	}

	if err := db.AutoMigrate(&model.CredentialModel{}, &model.UserProfileModel{}); err != nil {
		return nil, errors.Wrap(err, "migrate credential tables")
	}

	return db, nil
}
