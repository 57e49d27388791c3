package database

import (
	"fmt"
	"time"

	"portfoliotracker/src/database/migrations"
	"portfoliotracker/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MainDB is the primary read/write database connection used by the application.
var MainDB *gorm.DB

// InitMainDB initializes the main database connection and brings the schema up
// to date. This should be called once at application startup (e.g. in main()).
func InitMainDB() error {
	config := GetConfig()

	dialector, err := openDialector(config)
	if err != nil {
		return err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	MainDB = db

	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	// The legacy single-column portfolios table must be renamed aside before
	// AutoMigrate sees it, otherwise AutoMigrate would try to evolve the old
	// shape in place. Legacy handling is best-effort: old data is worth
	// preserving but must never block startup.
	if err := migrations.PrepareLegacyPortfoliosTable(MainDB); err != nil {
		logrus.WithError(err).Error("[database] failed to prepare legacy portfolios table, continuing")
	}

	if err := MainDB.AutoMigrate(
		&model.Profile{},
		&model.PortfolioRecord{},
		&model.HoldingRecord{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	if err := migrations.Run(MainDB); err != nil {
		logrus.WithError(err).Error("[database] data migrations failed, continuing")
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}

func openDialector(config Config) (gorm.Dialector, error) {
	switch config.Driver {
	case "sqlite":
		return sqlite.Open(config.DatabaseURL), nil
	case "postgres":
		return postgres.Open(config.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}
