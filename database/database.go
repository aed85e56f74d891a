package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/viktsys/itchvwap/config"
	"github.com/viktsys/itchvwap/logging"
	"github.com/viktsys/itchvwap/models"
)

var DB *gorm.DB

func InitDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=America/New_York",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// The server issues short read queries; the ingest path writes in
	// large batches. The same modest pool covers both.
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := DB.AutoMigrate(&models.Security{}, &models.HourlyVWAP{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := OptimizeIndexes(DB); err != nil {
		logging.Logger.Warn("failed to optimize indexes", zap.Error(err))
	}

	logging.Logger.Info("database connected and migrated")
	return nil
}

// SaveRun persists one pipeline run: the registered securities and the
// emitted hourly rows, stamped with the capture's trading date.
func SaveRun(date time.Time, secs []models.Security, rows []models.HourlyVWAP, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 2000
	}
	for i := range secs {
		secs[i].TradingDate = date
	}
	for i := range rows {
		rows[i].TradingDate = date
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if len(secs) > 0 {
			if err := tx.CreateInBatches(secs, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
