package sqrtprice

import (
	"errors"

	"github.com/holiman/uint256"

	"swapQuoter/internal/fullmath"
)

// resolution is the number of fractional bits in the Q64.96 sqrt price format.
const resolution = 96

// maxPriceBits bounds the sqrt price representation (uint160 on chain).
const maxPriceBits = 160

var (
	// Q96 represents 1 in the Q64.96 fixed-point format.
	Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), resolution)

	ErrZeroPrice      = errors.New("sqrtprice: sqrt price must be greater than zero")
	ErrZeroLiquidity  = errors.New("sqrtprice: liquidity must be greater than zero")
	ErrPriceOverflow  = errors.New("sqrtprice: next sqrt price exceeds representable range")
	ErrPriceUnderflow = errors.New("sqrtprice: output amount drives sqrt price to zero or below")
	ErrLiquidityRange = errors.New("sqrtprice: liquidity exceeds 160 bits")
	ErrAmountTooLarge = errors.New("sqrtprice: amount exceeds available reserves")
)

// GetAmount0Delta returns the token0 amount covering a liquidity position
// between two sqrt prices. Operands are reordered so the lower price comes
// first; the lower price must be positive.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.IsZero() {
		return nil, ErrZeroPrice
	}

	numerator1, err := liquidityShifted(liquidity)
	if err != nil {
		return nil, err
	}
	numerator2 := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		term, err := fullmath.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96)
		if err != nil {
			return nil, err
		}
		return fullmath.DivRoundingUp(term, sqrtRatioAX96)
	}

	term, err := fullmath.MulDiv(numerator1, numerator2, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(term, sqrtRatioAX96), nil
}

// GetAmount1Delta returns the token1 amount covering a liquidity position
// between two sqrt prices.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return fullmath.MulDivRoundingUp(liquidity, diff, Q96)
	}
	return fullmath.MulDiv(liquidity, diff, Q96)
}

// GetNextSqrtPriceFromInput returns the sqrt price after adding amountIn of
// token0 (zeroForOne) or token1 (!zeroForOne) at the given liquidity.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrZeroPrice
	}
	if liquidity.IsZero() {
		return nil, ErrZeroLiquidity
	}

	if zeroForOne {
		return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput returns the sqrt price after removing amountOut
// of token1 (zeroForOne) or token0 (!zeroForOne) at the given liquidity.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrZeroPrice
	}
	if liquidity.IsZero() {
		return nil, ErrZeroLiquidity
	}

	if zeroForOne {
		return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

func nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return sqrtPX96.Clone(), nil
	}

	numerator1, err := liquidityShifted(liquidity)
	if err != nil {
		return nil, err
	}

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
		if !overflow {
			denominator, carry := new(uint256.Int).AddOverflow(numerator1, product)
			if !carry {
				return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		// amount * sqrtP does not fit; fall back to the precision-losing
		// but overflow-free form liquidity / (liquidity / sqrtP + amount).
		denominator := new(uint256.Int).Div(numerator1, sqrtPX96)
		denominator, carry := denominator.AddOverflow(denominator, amount)
		if carry {
			return nil, ErrPriceUnderflow
		}
		return fullmath.DivRoundingUp(numerator1, denominator)
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if overflow || numerator1.Cmp(product) <= 0 {
		return nil, ErrAmountTooLarge
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	next, err := fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
	if err != nil {
		return nil, err
	}
	if next.BitLen() > maxPriceBits {
		return nil, ErrPriceOverflow
	}
	return next, nil
}

func nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		quotient, err := fullmath.MulDiv(amount, Q96, liquidity)
		if err != nil {
			return nil, err
		}
		next, carry := new(uint256.Int).AddOverflow(sqrtPX96, quotient)
		if carry || next.BitLen() > maxPriceBits {
			return nil, ErrPriceOverflow
		}
		return next, nil
	}

	quotient, err := fullmath.MulDivRoundingUp(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, ErrPriceUnderflow
	}
	return new(uint256.Int).Sub(sqrtPX96, quotient), nil
}

// liquidityShifted returns liquidity << 96, rejecting values wide enough to
// lose bits in the shift.
func liquidityShifted(liquidity *uint256.Int) (*uint256.Int, error) {
	if liquidity.BitLen() > maxPriceBits {
		return nil, ErrLiquidityRange
	}
	return new(uint256.Int).Lsh(liquidity, resolution), nil
}
