package fullmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// ErrDivisionByZero is returned when the denominator is zero.
	ErrDivisionByZero = errors.New("fullmath: division by zero")
	// ErrOverflow is returned when the quotient does not fit in 256 bits.
	ErrOverflow = errors.New("fullmath: mul div overflow")
)

// MulDiv computes floor(a * b / denominator) with a full 512-bit
// intermediate product.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}

	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	product.Div(product, denominator.ToBig())

	result, overflow := uint256.FromBig(product)
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}

// MulDivRoundingUp computes ceil(a * b / denominator) with a full 512-bit
// intermediate product.
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}

	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	quotient, remainder := new(big.Int).QuoRem(product, denominator.ToBig(), new(big.Int))
	if remainder.Sign() > 0 {
		quotient.Add(quotient, big.NewInt(1))
	}

	result, overflow := uint256.FromBig(quotient)
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}

// DivRoundingUp computes ceil(a / denominator).
func DivRoundingUp(a, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}

	quotient := new(uint256.Int).Div(a, denominator)
	remainder := new(uint256.Int).Mod(a, denominator)
	if !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	return quotient, nil
}
