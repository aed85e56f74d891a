package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BytesParsed counts feed bytes consumed by the decoder.
	BytesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_bytes_parsed_total",
			Help: "Feed bytes consumed by the decoder",
		},
	)

	// MessagesTotal counts decoded messages by type tag.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itchvwap_messages_total",
			Help: "Decoded messages by ITCH type tag",
		},
		[]string{"type"},
	)

	// TradesApplied counts trade events added to the hourly buckets.
	TradesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_trades_applied_total",
			Help: "Trade events applied to hourly buckets",
		},
	)

	// TradesBroken counts reversals applied for broken trades.
	TradesBroken = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_trades_broken_total",
			Help: "Broken-trade reversals applied",
		},
	)

	// NonPrintableSkipped counts executions excluded from the VWAP.
	NonPrintableSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_nonprintable_skipped_total",
			Help: "Non-printable executions excluded from the VWAP",
		},
	)

	// MissingOrderRefs counts executions whose order id had no resting
	// price on record.
	MissingOrderRefs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_missing_order_refs_total",
			Help: "Executions referencing an unknown order id",
		},
	)

	// RowsEmitted counts VWAP rows written to the CSV sink.
	RowsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itchvwap_rows_emitted_total",
			Help: "VWAP rows written to the CSV sink",
		},
	)

	// WatermarkHour tracks the aggregator's next unemitted hour.
	WatermarkHour = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itchvwap_watermark_hour",
			Help: "Next unemitted hour-of-day bucket",
		},
	)
)
