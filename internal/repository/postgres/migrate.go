package postgres

import (
	"house_admin/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables of every record kind.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.IntakeRecord{},
		&model.House{},
		&model.Member{},
		&model.ArchivedMember{},
	)
}
