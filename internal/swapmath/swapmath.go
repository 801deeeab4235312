package swapmath

import (
	"errors"

	"github.com/holiman/uint256"

	"swapQuoter/internal/fullmath"
	"swapQuoter/internal/sqrtprice"
)

// FeeDenominator is the fee unit: one pip is 1/1,000,000 of the input.
const FeeDenominator = 1_000_000

var (
	feeDenominator = uint256.NewInt(FeeDenominator)

	// ErrInvalidFeeRate is returned for fee rates of 100% or more, which
	// would make the fee formula divide by zero.
	ErrInvalidFeeRate = errors.New("swapmath: fee rate must be below 1,000,000 pips")
	// ErrZeroPrice is returned when either sqrt price input is zero.
	ErrZeroPrice = errors.New("swapmath: sqrt prices must be greater than zero")
)

// Amount is the remaining swap amount together with the swap mode. An
// exact-input amount is the input budget still spendable; an exact-output
// amount is the output still owed. Values are always non-negative.
type Amount struct {
	value       *uint256.Int
	exactOutput bool
}

// ExactInput builds an Amount fixing the spent input as the constraint.
func ExactInput(value *uint256.Int) Amount {
	return Amount{value: value}
}

// ExactOutput builds an Amount fixing the received output as the constraint.
func ExactOutput(value *uint256.Int) Amount {
	return Amount{value: value, exactOutput: true}
}

// IsExactInput reports whether the amount fixes the input side.
func (a Amount) IsExactInput() bool {
	return !a.exactOutput
}

// Value returns the remaining amount.
func (a Amount) Value() *uint256.Int {
	if a.value == nil {
		return new(uint256.Int)
	}
	return a.value
}

// StepResult is the outcome of a single swap step within one tick range.
type StepResult struct {
	// SqrtPriceNextX96 is the sqrt price after the step.
	SqrtPriceNextX96 *uint256.Int
	// AmountIn is the input amount consumed, excluding the fee.
	AmountIn *uint256.Int
	// AmountOut is the output amount produced.
	AmountOut *uint256.Int
	// FeeAmount is the fee charged on the input side.
	FeeAmount *uint256.Int
}

// ComputeSwapStep computes swapping within a single tick range: the sqrt
// price the step ends at, the input consumed, the output produced, and the
// fee taken. The step runs until either the remaining amount is exhausted
// or sqrtPriceTargetX96 is reached, whichever comes first.
//
// The price moves from sqrtPriceCurrentX96 toward sqrtPriceTargetX96; the
// swap direction follows from their ordering (current >= target means
// token0 is being sold).
func ComputeSwapStep(
	sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity *uint256.Int,
	remaining Amount,
	feePips uint32,
) (StepResult, error) {
	if feePips >= FeeDenominator {
		return StepResult{}, ErrInvalidFeeRate
	}
	if sqrtPriceCurrentX96.IsZero() || sqrtPriceTargetX96.IsZero() {
		return StepResult{}, ErrZeroPrice
	}

	zeroForOne := sqrtPriceCurrentX96.Cmp(sqrtPriceTargetX96) >= 0
	exactIn := remaining.IsExactInput()
	feeComplement := uint256.NewInt(FeeDenominator - uint64(feePips))

	var (
		res               StepResult
		amountInToTarget  *uint256.Int
		amountOutToTarget *uint256.Int
		err               error
	)

	if exactIn {
		remainingLessFee, err := fullmath.MulDiv(remaining.Value(), feeComplement, feeDenominator)
		if err != nil {
			return StepResult{}, err
		}
		if zeroForOne {
			amountInToTarget, err = sqrtprice.GetAmount0Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, true)
		} else {
			amountInToTarget, err = sqrtprice.GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, true)
		}
		if err != nil {
			return StepResult{}, err
		}

		if remainingLessFee.Cmp(amountInToTarget) >= 0 {
			res.SqrtPriceNextX96 = sqrtPriceTargetX96.Clone()
		} else {
			res.SqrtPriceNextX96, err = sqrtprice.GetNextSqrtPriceFromInput(sqrtPriceCurrentX96, liquidity, remainingLessFee, zeroForOne)
			if err != nil {
				return StepResult{}, err
			}
		}
	} else {
		owed := remaining.Value()
		if zeroForOne {
			amountOutToTarget, err = sqrtprice.GetAmount1Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, false)
		} else {
			amountOutToTarget, err = sqrtprice.GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, false)
		}
		if err != nil {
			return StepResult{}, err
		}

		if owed.Cmp(amountOutToTarget) >= 0 {
			res.SqrtPriceNextX96 = sqrtPriceTargetX96.Clone()
		} else {
			res.SqrtPriceNextX96, err = sqrtprice.GetNextSqrtPriceFromOutput(sqrtPriceCurrentX96, liquidity, owed, zeroForOne)
			if err != nil {
				return StepResult{}, err
			}
		}
	}

	reachedTarget := sqrtPriceTargetX96.Cmp(res.SqrtPriceNextX96) == 0

	// The provisional to-target amount is reused only when the target was
	// reached in the matching mode; otherwise the amount is recomputed from
	// the realized price pair. Collapsing the two cases changes rounding.
	if zeroForOne {
		if reachedTarget && exactIn {
			res.AmountIn = amountInToTarget
		} else {
			res.AmountIn, err = sqrtprice.GetAmount0Delta(res.SqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, true)
			if err != nil {
				return StepResult{}, err
			}
		}
		if reachedTarget && !exactIn {
			res.AmountOut = amountOutToTarget
		} else {
			res.AmountOut, err = sqrtprice.GetAmount1Delta(res.SqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, false)
			if err != nil {
				return StepResult{}, err
			}
		}
	} else {
		if reachedTarget && exactIn {
			res.AmountIn = amountInToTarget
		} else {
			res.AmountIn, err = sqrtprice.GetAmount1Delta(sqrtPriceCurrentX96, res.SqrtPriceNextX96, liquidity, true)
			if err != nil {
				return StepResult{}, err
			}
		}
		if reachedTarget && !exactIn {
			res.AmountOut = amountOutToTarget
		} else {
			res.AmountOut, err = sqrtprice.GetAmount0Delta(sqrtPriceCurrentX96, res.SqrtPriceNextX96, liquidity, false)
			if err != nil {
				return StepResult{}, err
			}
		}
	}

	if !exactIn && res.AmountOut.Cmp(remaining.Value()) > 0 {
		res.AmountOut = remaining.Value().Clone()
	}

	if exactIn && !reachedTarget {
		// Liquidity ran out before the price target: the unspent remainder
		// of the input is absorbed as fee, since the caller will not
		// re-offer it.
		res.FeeAmount = new(uint256.Int).Sub(remaining.Value(), res.AmountIn)
	} else {
		res.FeeAmount, err = fullmath.MulDivRoundingUp(res.AmountIn, uint256.NewInt(uint64(feePips)), feeComplement)
		if err != nil {
			return StepResult{}, err
		}
	}

	return res, nil
}
