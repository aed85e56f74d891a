package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viktsys/itchvwap/config"
	"github.com/viktsys/itchvwap/database"
	"github.com/viktsys/itchvwap/ingest"
	"github.com/viktsys/itchvwap/logging"
)

const csvHeader = "STOCK_SYMBOL,STOCK_ID,HOUR_AFTER_MIDNIGHT,VWAP\n"

var (
	outputPath  string
	persist     bool
	tradingDate string
)

var ingestCMD = &cobra.Command{
	Use:   "ingest [itch-file]",
	Short: "Compute hourly VWAPs from an ITCH 5.0 capture",
	Long: `Memory-map the given TotalView-ITCH 5.0 capture (or the configured
default when omitted), stream it through the decode/aggregate pipeline and
write one CSV row per security per hour in which it traded. With --persist the
emitted rows are also written to Postgres for the API server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		path := cfg.ITCHFile
		if len(args) == 1 {
			path = args[0]
		}

		out := os.Stdout
		if outputPath != "-" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}
		w := bufio.NewWriter(out)
		defer w.Flush()

		if _, err := w.WriteString(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}

		mapped, err := ingest.OpenMapped(path)
		if err != nil {
			return err
		}
		defer mapped.Close()

		logging.Logger.Info("starting ingestion",
			zap.String("file", path),
			zap.Int("bytes", len(mapped.Bytes())),
			zap.Int("queue_size", cfg.QueueSize))

		start := time.Now()
		summary, err := ingest.Run(mapped.Bytes(), w, cfg.QueueSize, logging.Logger)
		if err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}

		logging.Logger.Info("ingestion completed",
			zap.Int64("messages", summary.Messages),
			zap.Int("securities", len(summary.Securities)),
			zap.Int("rows", len(summary.Rows)),
			zap.Duration("took", time.Since(start)))

		if persist {
			date, err := resolveTradingDate(tradingDate)
			if err != nil {
				return err
			}
			if err := database.InitDB(cfg); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := database.SaveRun(date, summary.Securities, summary.Rows, cfg.BatchSize); err != nil {
				return fmt.Errorf("failed to persist run: %w", err)
			}
			logging.Logger.Info("run persisted", zap.Time("trading_date", date))
		}

		return nil
	},
}

func resolveTradingDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid trading date %q, use YYYY-MM-DD: %w", raw, err)
	}
	return date, nil
}

func init() {
	ingestCMD.Flags().StringVarP(&outputPath, "output", "o", "-", "CSV output path, - for stdout")
	ingestCMD.Flags().BoolVar(&persist, "persist", false, "write emitted rows to the database")
	ingestCMD.Flags().StringVar(&tradingDate, "date", "", "trading date of the capture (YYYY-MM-DD)")
}
