package main

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"swapQuoter/internal/config"
	"swapQuoter/internal/swapmath"
)

func runStep(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStep(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sqrtPrice, err := requiredDecimal("sqrt-price", cfg.SqrtPrice)
	if err != nil {
		return err
	}
	target, err := requiredDecimal("target", cfg.Target)
	if err != nil {
		return err
	}
	liquidity, err := requiredDecimal("liquidity", cfg.Liquidity)
	if err != nil {
		return err
	}
	amountValue, err := requiredDecimal("amount", cfg.Amount)
	if err != nil {
		return err
	}

	amount := swapmath.ExactInput(amountValue)
	if cfg.ExactOut {
		amount = swapmath.ExactOutput(amountValue)
	}

	result, err := swapmath.ComputeSwapStep(sqrtPrice, target, liquidity, amount, cfg.FeePips)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]string{
		"sqrt_price_next_x96": result.SqrtPriceNextX96.Dec(),
		"amount_in":           result.AmountIn.Dec(),
		"amount_out":          result.AmountOut.Dec(),
		"fee_amount":          result.FeeAmount.Dec(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}

func requiredDecimal(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return parsed, nil
}
