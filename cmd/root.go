package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viktsys/itchvwap/logging"
)

var verbose bool

var rootCMD = &cobra.Command{
	Use:   "itchvwap",
	Short: "Hourly VWAP extraction from NASDAQ TotalView-ITCH 5.0 captures",
	Long: `A CLI application for computing hourly Volume-Weighted Average Prices
from NASDAQ TotalView-ITCH 5.0 binary captures. The ingest command streams a
memory-mapped capture through the parse/aggregate pipeline and emits one CSV
row per security per traded hour; the server command serves persisted rows
through a REST API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitLogger(verbose)
	},
}

func Execute() {
	defer logging.Sync()
	if err := rootCMD.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human-readable debug logging")
	rootCMD.AddCommand(ingestCMD)
	rootCMD.AddCommand(serverCMD)
}
