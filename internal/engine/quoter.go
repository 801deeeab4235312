package engine

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"swapQuoter/internal/model"
	"swapQuoter/internal/swapmath"
	"swapQuoter/internal/tickmath"
)

// QuoteRequest describes one swap to simulate against a pool snapshot.
type QuoteRequest struct {
	// ZeroForOne is true when token0 is sold for token1 (price falls).
	ZeroForOne bool
	// Amount is the remaining amount and swap mode.
	Amount swapmath.Amount
	// SqrtPriceLimitX96 optionally bounds how far the price may move.
	// When nil the limit defaults to just inside the representable range.
	SqrtPriceLimitX96 *uint256.Int
	// WithTrace records a per-range step trace in the result.
	WithTrace bool
}

// StepTrace is one kernel invocation within a quote.
type StepTrace struct {
	TargetTick        int32
	SqrtPriceStartX96 *uint256.Int
	SqrtPriceEndX96   *uint256.Int
	AmountIn          *uint256.Int
	AmountOut         *uint256.Int
	FeeAmount         *uint256.Int
	CrossedTick       bool
}

// QuoteResult is the aggregate outcome of a simulated swap.
type QuoteResult struct {
	// AmountIn is the gross input consumed, fees included.
	AmountIn *uint256.Int
	// AmountOut is the output produced.
	AmountOut *uint256.Int
	// FeeAmount is the total fee charged, already counted in AmountIn.
	FeeAmount         *uint256.Int
	SqrtPriceAfterX96 *uint256.Int
	TickAfter         int32
	TicksCrossed      int
	// FullyFilled is false when the requested amount could not be
	// satisfied before the price limit or the end of known liquidity.
	FullyFilled bool
	Steps       []StepTrace
}

// Quoter simulates swaps against pool snapshots by walking initialized
// ticks and invoking the swap-step kernel once per liquidity range.
type Quoter struct {
	logger *zap.Logger
}

func NewQuoter(logger *zap.Logger) *Quoter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Quoter{logger: logger}
}

// Quote runs the swap described by req against the snapshot. The snapshot
// is not modified.
func (q *Quoter) Quote(snap *model.PoolSnapshot, req QuoteRequest) (*QuoteResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if snap.Fee >= swapmath.FeeDenominator {
		return nil, swapmath.ErrInvalidFeeRate
	}

	sqrtPrice, err := uint256.FromDecimal(snap.SqrtPriceX96)
	if err != nil {
		return nil, fmt.Errorf("parse sqrt price: %w", err)
	}
	if sqrtPrice.IsZero() {
		return nil, fmt.Errorf("snapshot sqrt price is zero")
	}
	liquidity, err := uint256.FromDecimal(snap.Liquidity)
	if err != nil {
		return nil, fmt.Errorf("parse liquidity: %w", err)
	}

	limit, err := resolvePriceLimit(sqrtPrice, req.SqrtPriceLimitX96, req.ZeroForOne)
	if err != nil {
		return nil, err
	}

	table, err := newTickTable(snap.Ticks)
	if err != nil {
		return nil, fmt.Errorf("parse ticks: %w", err)
	}

	var (
		remaining    = req.Amount.Value().Clone()
		exactIn      = req.Amount.IsExactInput()
		tick         = snap.Tick
		amountIn     = new(uint256.Int)
		amountOut    = new(uint256.Int)
		feeTotal     = new(uint256.Int)
		ticksCrossed int
		steps        []StepTrace
	)

	for !remaining.IsZero() && sqrtPrice.Cmp(limit) != 0 {
		nextTick, net, initialized := table.next(tick, req.ZeroForOne)
		tickPrice, err := tickmath.GetSqrtRatioAtTick(nextTick)
		if err != nil {
			return nil, err
		}

		target := tickPrice
		if req.ZeroForOne {
			if limit.Cmp(tickPrice) > 0 {
				target = limit
			}
		} else {
			if limit.Cmp(tickPrice) < 0 {
				target = limit
			}
		}

		stepAmount := swapmath.ExactInput(remaining)
		if !exactIn {
			stepAmount = swapmath.ExactOutput(remaining)
		}

		step, err := swapmath.ComputeSwapStep(sqrtPrice, target, liquidity, stepAmount, snap.Fee)
		if err != nil {
			return nil, fmt.Errorf("swap step at tick %d: %w", nextTick, err)
		}

		consumed, err := applyStep(remaining, exactIn, step)
		if err != nil {
			return nil, err
		}
		if consumed.IsZero() && sqrtPrice.Cmp(step.SqrtPriceNextX96) == 0 {
			return nil, fmt.Errorf("swap made no progress at tick %d", nextTick)
		}

		amountIn.Add(amountIn, step.AmountIn)
		amountIn.Add(amountIn, step.FeeAmount)
		amountOut.Add(amountOut, step.AmountOut)
		feeTotal.Add(feeTotal, step.FeeAmount)

		crossed := false
		priceBefore := sqrtPrice
		sqrtPrice = step.SqrtPriceNextX96

		if sqrtPrice.Cmp(tickPrice) == 0 {
			if initialized {
				liquidity, err = applyLiquidityNet(liquidity, net, req.ZeroForOne)
				if err != nil {
					return nil, fmt.Errorf("cross tick %d: %w", nextTick, err)
				}
				ticksCrossed++
				crossed = true
			}
			if req.ZeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
		} else if sqrtPrice.Cmp(priceBefore) != 0 {
			tick, err = tickmath.GetTickAtSqrtRatio(sqrtPrice)
			if err != nil {
				return nil, err
			}
		}

		if req.WithTrace {
			steps = append(steps, StepTrace{
				TargetTick:        nextTick,
				SqrtPriceStartX96: priceBefore.Clone(),
				SqrtPriceEndX96:   sqrtPrice.Clone(),
				AmountIn:          step.AmountIn.Clone(),
				AmountOut:         step.AmountOut.Clone(),
				FeeAmount:         step.FeeAmount.Clone(),
				CrossedTick:       crossed,
			})
		}
	}

	result := &QuoteResult{
		AmountIn:          amountIn,
		AmountOut:         amountOut,
		FeeAmount:         feeTotal,
		SqrtPriceAfterX96: sqrtPrice.Clone(),
		TickAfter:         tick,
		TicksCrossed:      ticksCrossed,
		FullyFilled:       remaining.IsZero(),
		Steps:             steps,
	}

	q.logger.Debug("quote complete",
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", amountOut.Dec()),
		zap.String("fee", feeTotal.Dec()),
		zap.Int("ticks_crossed", ticksCrossed),
		zap.Bool("fully_filled", result.FullyFilled),
	)

	return result, nil
}

// applyStep decrements the remaining amount in place and returns how much
// of it the step consumed.
func applyStep(remaining *uint256.Int, exactIn bool, step swapmath.StepResult) (*uint256.Int, error) {
	var consumed *uint256.Int
	if exactIn {
		var carry bool
		consumed, carry = new(uint256.Int).AddOverflow(step.AmountIn, step.FeeAmount)
		if carry {
			return nil, fmt.Errorf("step consumption overflow")
		}
	} else {
		consumed = step.AmountOut.Clone()
	}
	if remaining.Cmp(consumed) < 0 {
		return nil, fmt.Errorf("step consumed %s of remaining %s", consumed.Dec(), remaining.Dec())
	}
	remaining.Sub(remaining, consumed)
	return consumed, nil
}

// resolvePriceLimit validates the requested limit or supplies the widest
// allowed one for the swap direction.
func resolvePriceLimit(current, limit *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if limit == nil {
		if zeroForOne {
			return new(uint256.Int).AddUint64(tickmath.MinSqrtRatio, 1), nil
		}
		return new(uint256.Int).SubUint64(tickmath.MaxSqrtRatio, 1), nil
	}

	if zeroForOne {
		if limit.Cmp(current) >= 0 || limit.Cmp(tickmath.MinSqrtRatio) <= 0 {
			return nil, fmt.Errorf("price limit %s outside (min sqrt ratio, current price)", limit.Dec())
		}
	} else {
		if limit.Cmp(current) <= 0 || limit.Cmp(tickmath.MaxSqrtRatio) >= 0 {
			return nil, fmt.Errorf("price limit %s outside (current price, max sqrt ratio)", limit.Dec())
		}
	}
	return limit.Clone(), nil
}
