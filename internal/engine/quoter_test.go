package engine

import (
	"testing"

	"github.com/holiman/uint256"

	"swapQuoter/internal/model"
	"swapQuoter/internal/swapmath"
)

// sqrt price of 1.0 in Q64.96.
const priceOne = "79228162514264337593543950336"

func baseSnapshot(fee uint32, ticks []model.TickSnapshot) *model.PoolSnapshot {
	return &model.PoolSnapshot{
		ChainID:      56,
		Address:      "0x0000000000000000000000000000000000000001",
		BlockNumber:  1000,
		Fee:          fee,
		TickSpacing:  60,
		SqrtPriceX96: priceOne,
		Tick:         0,
		Liquidity:    "2000000000000000000",
		Ticks:        ticks,
	}
}

func mustDec(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestQuoteStopsAtPriceLimit(t *testing.T) {
	snap := baseSnapshot(600, nil)
	limit := mustDec(t, "79623317895830914510639640423") // sqrt(101/100)
	amount := mustDec(t, "1000000000000000000")

	result, err := NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne:        false,
		Amount:            swapmath.ExactInput(amount),
		SqrtPriceLimitX96: limit,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if result.FullyFilled {
		t.Fatalf("expected partial fill at price limit")
	}
	if got := result.SqrtPriceAfterX96.Dec(); got != limit.Dec() {
		t.Fatalf("sqrt price after = %s, want %s", got, limit.Dec())
	}
	// 9975124224178055 in plus 5988667735148 fee.
	if got := result.AmountIn.Dec(); got != "9981112891913203" {
		t.Fatalf("amount in = %s, want 9981112891913203", got)
	}
	if got := result.AmountOut.Dec(); got != "9925619580021728" {
		t.Fatalf("amount out = %s, want 9925619580021728", got)
	}
	if got := result.FeeAmount.Dec(); got != "5988667735148" {
		t.Fatalf("fee = %s, want 5988667735148", got)
	}
	if result.TicksCrossed != 0 {
		t.Fatalf("ticks crossed = %d, want 0", result.TicksCrossed)
	}
}

func TestQuoteCrossesInitializedTick(t *testing.T) {
	snap := baseSnapshot(0, []model.TickSnapshot{
		{Tick: 60, LiquidityNet: "-1000000000000000000"},
	})
	amount := mustDec(t, "10000000000000000")

	result, err := NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne: false,
		Amount:     swapmath.ExactInput(amount),
		WithTrace:  true,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if !result.FullyFilled {
		t.Fatalf("expected full fill")
	}
	if result.TicksCrossed != 1 {
		t.Fatalf("ticks crossed = %d, want 1", result.TicksCrossed)
	}
	if result.TickAfter < 60 {
		t.Fatalf("tick after = %d, want >= 60", result.TickAfter)
	}
	if got := result.AmountIn.Dec(); got != amount.Dec() {
		t.Fatalf("amount in = %s, want full budget %s", got, amount.Dec())
	}
	if result.AmountOut.IsZero() {
		t.Fatalf("expected non-zero output")
	}
	if len(result.Steps) < 2 {
		t.Fatalf("expected at least two trace steps, got %d", len(result.Steps))
	}
	if !result.Steps[0].CrossedTick {
		t.Fatalf("first step should cross the initialized tick")
	}
}

func TestQuotePartialFillWhenLiquidityRunsOut(t *testing.T) {
	snap := baseSnapshot(0, []model.TickSnapshot{
		{Tick: 60, LiquidityNet: "-2000000000000000000"},
	})
	amount := mustDec(t, "100000000000000000")

	result, err := NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne: false,
		Amount:     swapmath.ExactInput(amount),
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if result.FullyFilled {
		t.Fatalf("expected partial fill after liquidity ran out")
	}
	if result.TicksCrossed != 1 {
		t.Fatalf("ticks crossed = %d, want 1", result.TicksCrossed)
	}
	if result.AmountIn.Cmp(amount) >= 0 {
		t.Fatalf("amount in = %s, want less than budget %s", result.AmountIn.Dec(), amount.Dec())
	}
	if result.AmountOut.IsZero() {
		t.Fatalf("expected non-zero output for the filled portion")
	}
}

func TestQuoteExactOutputFullyFilled(t *testing.T) {
	snap := baseSnapshot(3000, nil)
	amount := mustDec(t, "1000000000000000")

	result, err := NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne: true,
		Amount:     swapmath.ExactOutput(amount),
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if !result.FullyFilled {
		t.Fatalf("expected full fill")
	}
	if got := result.AmountOut.Dec(); got != amount.Dec() {
		t.Fatalf("amount out = %s, want %s", got, amount.Dec())
	}
	if result.AmountIn.Cmp(amount) <= 0 {
		t.Fatalf("selling token0 below price 1 should cost more than it yields")
	}
	if result.FeeAmount.IsZero() {
		t.Fatalf("expected non-zero fee at 3000 pips")
	}
}

func TestQuoteRejectsBadLimits(t *testing.T) {
	snap := baseSnapshot(3000, nil)
	amount := mustDec(t, "1000000000000000")

	// Falling swap with a limit at or above the current price.
	_, err := NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne:        true,
		Amount:            swapmath.ExactInput(amount),
		SqrtPriceLimitX96: mustDec(t, priceOne),
	})
	if err == nil {
		t.Fatalf("expected error for limit above current price")
	}

	// Rising swap with a limit below the current price.
	_, err = NewQuoter(nil).Quote(snap, QuoteRequest{
		ZeroForOne:        false,
		Amount:            swapmath.ExactInput(amount),
		SqrtPriceLimitX96: mustDec(t, "79228162514264337593543950335"),
	})
	if err == nil {
		t.Fatalf("expected error for limit below current price")
	}
}

func TestQuoteRejectsBadSnapshot(t *testing.T) {
	if _, err := NewQuoter(nil).Quote(nil, QuoteRequest{}); err == nil {
		t.Fatalf("expected error for nil snapshot")
	}

	snap := baseSnapshot(3000, nil)
	snap.SqrtPriceX96 = "zero"
	amount := mustDec(t, "1")
	if _, err := NewQuoter(nil).Quote(snap, QuoteRequest{Amount: swapmath.ExactInput(amount)}); err == nil {
		t.Fatalf("expected error for unparseable sqrt price")
	}

	snap = baseSnapshot(1_000_000, nil)
	if _, err := NewQuoter(nil).Quote(snap, QuoteRequest{Amount: swapmath.ExactInput(amount)}); err == nil {
		t.Fatalf("expected error for fee of 100%%")
	}
}
