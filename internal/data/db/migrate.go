package db

import (
	"fmt"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Learning progress
		// =========================
		&types.Course{},
		&types.LearningLesson{},
		&types.LearningRecord{},

		// =========================
		// Points ledger + boards
		// =========================
		&types.PointsRecord{},
		&types.PointsBoard{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
