package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapQuoter/internal/chain"
	"swapQuoter/internal/config"
	"swapQuoter/internal/dex"
	"swapQuoter/internal/engine"
	"swapQuoter/internal/model"
	"swapQuoter/internal/storage"
	"swapQuoter/internal/storage/postgres"
	"swapQuoter/internal/swapmath"
)

// loadSnapshot reads the pool state from the snapshot file, or captures it
// over RPC when no file was given.
func loadSnapshot(ctx context.Context, cfg config.QuoteConfig, logger *zap.Logger) (*model.PoolSnapshot, error) {
	if cfg.SnapshotPath != "" {
		return storage.ReadSnapshot(cfg.SnapshotPath)
	}

	if !common.IsHexAddress(cfg.Pool) {
		return nil, fmt.Errorf("invalid pool address %q", cfg.Pool)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := dex.NewStateReader(chainClient, dex.ReaderConfig{
		WordRadius: cfg.WordRadius,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryBackoff,
	}, logger)

	return reader.Snapshot(ctx, common.HexToAddress(cfg.Pool), cfg.Block)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.SnapshotPath == "" && (cfg.RPCURL == "" || cfg.Pool == "") {
		return fmt.Errorf("either a snapshot path or an rpc url and pool address are required")
	}
	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}

	amountValue, err := uint256.FromDecimal(cfg.Amount)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	if amountValue.IsZero() {
		return fmt.Errorf("amount must be positive")
	}

	amount := swapmath.ExactInput(amountValue)
	if cfg.ExactOut {
		amount = swapmath.ExactOutput(amountValue)
	}

	var priceLimit *uint256.Int
	if cfg.PriceLimit != "" {
		priceLimit, err = uint256.FromDecimal(cfg.PriceLimit)
		if err != nil {
			return fmt.Errorf("parse price limit: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := loadSnapshot(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("quote start",
		zap.String("pool", snap.Address),
		zap.Uint64("block", snap.BlockNumber),
		zap.String("amount", cfg.Amount),
		zap.Bool("exact_out", cfg.ExactOut),
		zap.Bool("zero_for_one", cfg.ZeroForOne),
	)

	quoter := engine.NewQuoter(logger)
	result, err := quoter.Quote(snap, engine.QuoteRequest{
		ZeroForOne:        cfg.ZeroForOne,
		Amount:            amount,
		SqrtPriceLimitX96: priceLimit,
		WithTrace:         cfg.Trace,
	})
	if err != nil {
		return err
	}

	record := model.QuoteRecord{
		ChainID:         snap.ChainID,
		PoolAddress:     snap.Address,
		BlockNumber:     snap.BlockNumber,
		ZeroForOne:      cfg.ZeroForOne,
		ExactOutput:     cfg.ExactOut,
		AmountSpecified: cfg.Amount,
		AmountIn:        result.AmountIn.Dec(),
		AmountOut:       result.AmountOut.Dec(),
		FeeAmount:       result.FeeAmount.Dec(),
		SqrtPriceBefore: snap.SqrtPriceX96,
		SqrtPriceAfter:  result.SqrtPriceAfterX96.Dec(),
		TickBefore:      snap.Tick,
		TickAfter:       result.TickAfter,
		TicksCrossed:    result.TicksCrossed,
		FullyFilled:     result.FullyFilled,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	sink := storage.NewJsonlQuoteSink(cfg.Out)
	if err := sink.PutQuotes([]model.QuoteRecord{record}); err != nil {
		return err
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.InsertQuotes(ctx, []model.QuoteRecord{record}); err != nil {
			return fmt.Errorf("store quote: %w", err)
		}
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if cfg.Trace {
		for i, step := range result.Steps {
			logger.Info("step",
				zap.Int("index", i),
				zap.Int32("target_tick", step.TargetTick),
				zap.String("sqrt_price_end", step.SqrtPriceEndX96.Dec()),
				zap.String("amount_in", step.AmountIn.Dec()),
				zap.String("amount_out", step.AmountOut.Dec()),
				zap.String("fee", step.FeeAmount.Dec()),
				zap.Bool("crossed", step.CrossedTick),
			)
		}
	}

	return nil
}
