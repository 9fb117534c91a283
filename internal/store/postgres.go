package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eyupilis/tracker-all-trader-sub001/internal/models"
)

// OpenPostgres opens a gorm connection to the primary Postgres database and
// tunes the underlying connection pool for a long-running ingestion
// process.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AutoMigrateAll creates or updates every table this engine owns.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.LeadTrader{},
		&models.RawIngest{},
		&models.PositionSnapshot{},
		&models.Event{},
		&models.PositionState{},
		&models.SymbolAggregation{},
		&models.TraderScore{},
		&models.SimulatedPosition{},
		&models.Portfolio{},
		&models.PortfolioSnapshot{},
		&models.PortfolioMetric{},
		&models.AutoTriggerRule{},
		&models.InsightsRule{},
		&models.ConsensusSnapshot{},
	)
}
