package engine

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/holiman/uint256"

	"swapQuoter/internal/model"
	"swapQuoter/internal/tickmath"
)

// tickEntry is a parsed initialized tick.
type tickEntry struct {
	tick         int32
	liquidityNet *big.Int
}

// tickTable holds a pool's initialized ticks sorted ascending.
type tickTable struct {
	entries []tickEntry
}

func newTickTable(ticks []model.TickSnapshot) (*tickTable, error) {
	entries := make([]tickEntry, 0, len(ticks))
	for _, t := range ticks {
		if t.Tick < tickmath.MinTick || t.Tick > tickmath.MaxTick {
			return nil, fmt.Errorf("tick %d out of bounds", t.Tick)
		}
		net, ok := new(big.Int).SetString(t.LiquidityNet, 10)
		if !ok {
			return nil, fmt.Errorf("tick %d: invalid liquidity_net %q", t.Tick, t.LiquidityNet)
		}
		entries = append(entries, tickEntry{tick: t.Tick, liquidityNet: net})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tick < entries[j].tick })
	for i := 1; i < len(entries); i++ {
		if entries[i].tick == entries[i-1].tick {
			return nil, fmt.Errorf("duplicate tick %d", entries[i].tick)
		}
	}
	return &tickTable{entries: entries}, nil
}

// next returns the next initialized tick in swap direction: the greatest
// tick <= current when the price is falling, the least tick > current when
// it is rising. When no such tick exists the range boundary is returned
// with initialized=false.
func (t *tickTable) next(current int32, zeroForOne bool) (tick int32, net *big.Int, initialized bool) {
	if zeroForOne {
		i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].tick > current })
		if i == 0 {
			return tickmath.MinTick, nil, false
		}
		e := t.entries[i-1]
		return e.tick, e.liquidityNet, true
	}

	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].tick > current })
	if i == len(t.entries) {
		return tickmath.MaxTick, nil, false
	}
	e := t.entries[i]
	return e.tick, e.liquidityNet, true
}

// applyLiquidityNet adjusts active liquidity when crossing an initialized
// tick. Crossing downward negates the recorded delta.
func applyLiquidityNet(liquidity *uint256.Int, net *big.Int, zeroForOne bool) (*uint256.Int, error) {
	if net == nil || net.Sign() == 0 {
		return liquidity, nil
	}

	delta := net
	if zeroForOne {
		delta = new(big.Int).Neg(net)
	}

	abs, overflow := uint256.FromBig(new(big.Int).Abs(delta))
	if overflow {
		return nil, fmt.Errorf("liquidity delta exceeds 256 bits")
	}

	if delta.Sign() >= 0 {
		next, carry := new(uint256.Int).AddOverflow(liquidity, abs)
		if carry {
			return nil, fmt.Errorf("liquidity overflow on tick cross")
		}
		return next, nil
	}
	if liquidity.Cmp(abs) < 0 {
		return nil, fmt.Errorf("liquidity underflow on tick cross")
	}
	return new(uint256.Int).Sub(liquidity, abs), nil
}
