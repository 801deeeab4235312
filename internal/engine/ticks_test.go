package engine

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"swapQuoter/internal/model"
	"swapQuoter/internal/tickmath"
)

func TestNewTickTableValidation(t *testing.T) {
	_, err := newTickTable([]model.TickSnapshot{{Tick: 0, LiquidityNet: "not-a-number"}})
	if err == nil {
		t.Fatalf("expected error for invalid liquidity_net")
	}

	_, err = newTickTable([]model.TickSnapshot{
		{Tick: 60, LiquidityNet: "1"},
		{Tick: 60, LiquidityNet: "2"},
	})
	if err == nil {
		t.Fatalf("expected error for duplicate tick")
	}

	_, err = newTickTable([]model.TickSnapshot{{Tick: tickmath.MaxTick + 1, LiquidityNet: "1"}})
	if err == nil {
		t.Fatalf("expected error for out-of-bounds tick")
	}
}

func TestTickTableNext(t *testing.T) {
	table, err := newTickTable([]model.TickSnapshot{
		{Tick: -120, LiquidityNet: "5"},
		{Tick: 60, LiquidityNet: "-5"},
	})
	if err != nil {
		t.Fatalf("newTickTable: %v", err)
	}

	// Falling price: greatest tick at or below current.
	tick, _, initialized := table.next(0, true)
	if !initialized || tick != -120 {
		t.Fatalf("next(0, down) = %d initialized=%v, want -120 true", tick, initialized)
	}
	tick, _, initialized = table.next(60, true)
	if !initialized || tick != 60 {
		t.Fatalf("next(60, down) = %d initialized=%v, want 60 true", tick, initialized)
	}
	tick, _, initialized = table.next(-121, true)
	if initialized || tick != tickmath.MinTick {
		t.Fatalf("next(-121, down) = %d initialized=%v, want MinTick false", tick, initialized)
	}

	// Rising price: least tick strictly above current.
	tick, _, initialized = table.next(0, false)
	if !initialized || tick != 60 {
		t.Fatalf("next(0, up) = %d initialized=%v, want 60 true", tick, initialized)
	}
	tick, _, initialized = table.next(60, false)
	if initialized || tick != tickmath.MaxTick {
		t.Fatalf("next(60, up) = %d initialized=%v, want MaxTick false", tick, initialized)
	}
}

func TestApplyLiquidityNet(t *testing.T) {
	liquidity := uint256.NewInt(1000)

	// Rising across a tick adds the stored delta.
	next, err := applyLiquidityNet(liquidity, big.NewInt(50), false)
	if err != nil {
		t.Fatalf("applyLiquidityNet: %v", err)
	}
	if next.Uint64() != 1050 {
		t.Fatalf("got %d, want 1050", next.Uint64())
	}

	// Falling across the same tick undoes it.
	next, err = applyLiquidityNet(liquidity, big.NewInt(50), true)
	if err != nil {
		t.Fatalf("applyLiquidityNet: %v", err)
	}
	if next.Uint64() != 950 {
		t.Fatalf("got %d, want 950", next.Uint64())
	}

	if _, err := applyLiquidityNet(uint256.NewInt(10), big.NewInt(50), true); err == nil {
		t.Fatalf("expected liquidity underflow error")
	}
}
