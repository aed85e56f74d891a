package database

import (
	"fmt"

	"gorm.io/gorm"
)

// OptimizeIndexes creates the composite indexes the API's aggregate
// queries lean on. AutoMigrate covers the basic per-column indexes;
// these are the ordered variants.
func OptimizeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_vwaps_symbol_date
		ON hourly_vwaps (symbol, trading_date DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create hourly_vwaps symbol index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_vwaps_symbol_hour
		ON hourly_vwaps (symbol, hour)
	`).Error; err != nil {
		return fmt.Errorf("failed to create hourly_vwaps hour index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_securities_date_stock
		ON securities (trading_date DESC, stock_id)
	`).Error; err != nil {
		return fmt.Errorf("failed to create securities index: %w", err)
	}

	return nil
}
