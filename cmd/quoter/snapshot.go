package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapQuoter/internal/chain"
	"swapQuoter/internal/config"
	"swapQuoter/internal/dex"
	"swapQuoter/internal/storage"
	"swapQuoter/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("invalid pool address %q", cfg.Pool)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := dex.NewStateReader(chainClient, dex.ReaderConfig{
		WordRadius: cfg.WordRadius,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryBackoff,
	}, logger)

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", cfg.Pool),
		zap.Uint64("block", cfg.Block),
		zap.Int("word_radius", cfg.WordRadius),
		zap.String("out", cfg.Out),
	)

	snap, err := reader.Snapshot(ctx, common.HexToAddress(cfg.Pool), cfg.Block)
	if err != nil {
		return err
	}

	sink := storage.NewJsonlSnapshotSink(cfg.Out)
	if err := sink.PutSnapshot(snap); err != nil {
		return err
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.UpsertSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}

	logger.Info("snapshot written",
		zap.Uint64("block", snap.BlockNumber),
		zap.String("sqrt_price_x96", snap.SqrtPriceX96),
		zap.Int32("tick", snap.Tick),
		zap.Int("ticks", len(snap.Ticks)),
	)

	return nil
}
