package db

import (
	"github.com/trettofejr/LumenFi/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Contest{},
		&models.ContestEntry{},
		&models.ContestRange{},
		&models.PrizeClaim{},
	)
}
