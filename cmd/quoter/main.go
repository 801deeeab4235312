package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "V3 pool swap quoter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture pool state at a block",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("pool", "", "pool address")
	snapshotCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	snapshotCmd.Flags().Int("word-radius", 2, "tickBitmap words to fetch on each side of the current tick")
	snapshotCmd.Flags().String("out", "./data/snapshot.jsonl", "output JSONL path")
	snapshotCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Simulate a swap against a captured snapshot",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("snapshot", "", "input snapshot JSONL path")
	quoteCmd.Flags().String("rpc", "", "RPC URL for a live snapshot when no file is given")
	quoteCmd.Flags().String("pool", "", "pool address for a live snapshot")
	quoteCmd.Flags().Uint64("block", 0, "block number for a live snapshot, 0 means latest")
	quoteCmd.Flags().Int("word-radius", 2, "tickBitmap words to fetch on each side of the current tick")
	quoteCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	quoteCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	quoteCmd.Flags().String("amount", "", "swap amount (decimal)")
	quoteCmd.Flags().Bool("exact-out", false, "treat amount as desired output instead of input")
	quoteCmd.Flags().Bool("zero-for-one", true, "sell token0 for token1")
	quoteCmd.Flags().String("price-limit", "", "optional sqrt price limit (Q64.96 decimal)")
	quoteCmd.Flags().Bool("trace", false, "include a per-range step trace")
	quoteCmd.Flags().String("out", "./data/quotes.jsonl", "output JSONL path")
	quoteCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "Evaluate a single swap step within one liquidity range",
		RunE:  runStep,
	}

	stepCmd.Flags().String("sqrt-price", "", "current sqrt price (Q64.96 decimal)")
	stepCmd.Flags().String("target", "", "target sqrt price (Q64.96 decimal)")
	stepCmd.Flags().String("liquidity", "", "active liquidity")
	stepCmd.Flags().String("amount", "", "remaining amount (decimal)")
	stepCmd.Flags().Bool("exact-out", false, "treat amount as desired output instead of input")
	stepCmd.Flags().Uint32("fee", 0, "fee in hundredths of a bip")
	stepCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(stepCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
