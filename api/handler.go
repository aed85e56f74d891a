package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viktsys/itchvwap/database"
	"github.com/viktsys/itchvwap/models"
)

type QueryParams struct {
	Symbol string `form:"symbol" binding:"required"`
	Hour   *int   `form:"hour"`
	Date   string `form:"date"`
}

// GetVWAPStats returns the maximum hourly VWAP and total traded volume
// for one symbol over trading dates on or after the start date (eight
// days back when none is given), optionally narrowed to a single hour.
func GetVWAPStats(c *gin.Context) {
	var params QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, ok := parseStartDate(c, params.Date)
	if !ok {
		return
	}

	stats, err := calculateStats(params, startDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetHourlyVWAP returns the persisted hourly rows for one symbol on or
// after the start date, ordered by trading date and then hour.
func GetHourlyVWAP(c *gin.Context) {
	var params QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, ok := parseStartDate(c, params.Date)
	if !ok {
		return
	}

	query := database.DB.
		Where("symbol = ? AND trading_date >= ?", params.Symbol, startDate).
		Order("trading_date, hour")
	if params.Hour != nil {
		query = query.Where("hour = ?", *params.Hour)
	}

	var rows []models.HourlyVWAP
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}

func parseStartDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		// Default to the last week of captures.
		return time.Now().AddDate(0, 0, -8), true
	}
	startDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return startDate, true
}

func calculateStats(params QueryParams, startDate time.Time) (*models.VWAPStats, error) {
	db := database.DB

	type statsResult struct {
		MaxVWAP     float64
		TotalVolume uint64
	}

	var result statsResult
	query := db.Model(&models.HourlyVWAP{}).
		Select("COALESCE(MAX(vwap), 0) as max_vwap, COALESCE(SUM(volume), 0) as total_volume").
		Where("symbol = ? AND trading_date >= ?", params.Symbol, startDate)
	if params.Hour != nil {
		query = query.Where("hour = ?", *params.Hour)
	}

	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	return &models.VWAPStats{
		Symbol:      params.Symbol,
		MaxVWAP:     result.MaxVWAP,
		TotalVolume: result.TotalVolume,
	}, nil
}

func SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/api/vwap", GetHourlyVWAP)
	r.GET("/api/vwap/stats", GetVWAPStats)

	return r
}
