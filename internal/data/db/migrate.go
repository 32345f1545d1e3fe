package db

import (
	"fmt"

	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/domain/catalog"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Canonical catalog
		// =========================
		&types.Game{},

		// =========================
		// Dictionaries
		// =========================
		&types.Company{},
		&types.Category{},
		&types.Genre{},

		// =========================
		// Associations (unique on pair)
		// =========================
		&types.GameDeveloper{},
		&types.GamePublisher{},
		&types.GameCategory{},
		&types.GameGenre{},

		// =========================
		// Job bookkeeping
		// =========================
		&types.JobRun{},
	)
}

// AutoMigrateCatalogs creates the source catalog tables. Production reads tables owned by
// the scrapers, so this only runs in dev and test mode.
func AutoMigrateCatalogs(db *gorm.DB) error {
	return db.AutoMigrate(catalog.All()...)
}

func EnsureGameIndexes(db *gorm.DB) error {
	// Resolver candidate scan: name equality ordered by id.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_ga_games_name_id ON ga_games(name, id);`).Error; err != nil {
		return fmt.Errorf("create idx_ga_games_name_id: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_job_run_type_created ON job_run(job_type, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_job_run_type_created: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll(withCatalogs bool) error {
	s.log.Info("Auto migrating tables...", "driver", s.driver, "catalogs", withCatalogs)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if withCatalogs {
		if err := AutoMigrateCatalogs(s.db); err != nil {
			s.log.Error("Catalog migration failed", "error", err)
			return err
		}
	}
	if err := EnsureGameIndexes(s.db); err != nil {
		s.log.Error("Game index migration failed", "error", err)
		return err
	}
	return nil
}
