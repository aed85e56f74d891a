package models

import (
	"time"
)

// Security is a listed security registered by the feed's stock
// directory for one trading date.
type Security struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TradingDate time.Time `gorm:"index:idx_security_date_stock" json:"trading_date"`
	StockID     uint16    `gorm:"index:idx_security_date_stock" json:"stock_id"`
	Symbol      string    `gorm:"size:8;index" json:"symbol"`
	CreatedAt   time.Time `json:"created_at"`
}

// HourlyVWAP is one emitted VWAP row: a security's volume-weighted
// average price over one hour-of-day bucket.
type HourlyVWAP struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TradingDate time.Time `gorm:"index:idx_vwap_date_stock" json:"trading_date"`
	StockID     uint16    `gorm:"index:idx_vwap_date_stock" json:"stock_id"`
	Symbol      string    `gorm:"size:8;index" json:"symbol"`
	Hour        uint8     `json:"hour"`
	Volume      uint64    `json:"volume"`
	VWAP        float64   `json:"vwap"`
	CreatedAt   time.Time `json:"created_at"`
}

// VWAPStats is the aggregated view returned by the API.
type VWAPStats struct {
	Symbol      string  `json:"symbol"`
	MaxVWAP     float64 `json:"max_vwap"`
	TotalVolume uint64  `json:"total_volume"`
}
