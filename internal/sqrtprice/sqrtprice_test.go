package sqrtprice

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := uint256.FromDecimal(s)
	require.NoError(t, err)
	return v
}

const (
	priceOne         = "79228162514264337593543950336" // 2^96
	priceOnePointOne = "87150978765690771352898345369" // sqrt(121/100) * 2^96
)

func TestGetNextSqrtPriceFromInputRejectsBadArgs(t *testing.T) {
	price := dec(t, priceOne)
	liquidity := uint256.NewInt(1)
	amount := uint256.NewInt(1)

	_, err := GetNextSqrtPriceFromInput(new(uint256.Int), liquidity, amount, false)
	require.ErrorIs(t, err, ErrZeroPrice)

	_, err = GetNextSqrtPriceFromInput(price, new(uint256.Int), amount, true)
	require.ErrorIs(t, err, ErrZeroLiquidity)
}

func TestGetNextSqrtPriceFromInputZeroAmount(t *testing.T) {
	price := dec(t, priceOne)
	liquidity := dec(t, "100000000000000000")

	for _, zeroForOne := range []bool{true, false} {
		next, err := GetNextSqrtPriceFromInput(price, liquidity, new(uint256.Int), zeroForOne)
		require.NoError(t, err)
		require.Equal(t, price.Dec(), next.Dec())
	}
}

func TestGetNextSqrtPriceFromInputKnownValues(t *testing.T) {
	price := dec(t, priceOne)
	liquidity := dec(t, "1000000000000000000")
	amount := dec(t, "100000000000000000")

	next, err := GetNextSqrtPriceFromInput(price, liquidity, amount, false)
	require.NoError(t, err)
	require.Equal(t, priceOnePointOne, next.Dec())

	next, err = GetNextSqrtPriceFromInput(price, liquidity, amount, true)
	require.NoError(t, err)
	require.Equal(t, "72025602285694852357767227579", next.Dec())
}

func TestGetNextSqrtPriceFromOutputKnownValues(t *testing.T) {
	price := dec(t, priceOne)
	liquidity := dec(t, "1000000000000000000")
	amount := dec(t, "100000000000000000")

	next, err := GetNextSqrtPriceFromOutput(price, liquidity, amount, true)
	require.NoError(t, err)
	require.Equal(t, "71305346262837903834189555302", next.Dec())

	next, err = GetNextSqrtPriceFromOutput(price, liquidity, amount, false)
	require.NoError(t, err)
	require.Equal(t, "88031291682515930659493278152", next.Dec())
}

func TestGetNextSqrtPriceFromOutputImpossibleAmounts(t *testing.T) {
	price := dec(t, priceOne)

	// More token0 out than the range's virtual reserves hold.
	_, err := GetNextSqrtPriceFromOutput(price, uint256.NewInt(1), uint256.NewInt(2), false)
	require.ErrorIs(t, err, ErrAmountTooLarge)

	// Enough token1 out to drive the sqrt price to zero.
	liquidity := dec(t, "1000000000000000000")
	tooMuch := dec(t, "1000000000000000001")
	_, err = GetNextSqrtPriceFromOutput(price, liquidity, tooMuch, true)
	require.ErrorIs(t, err, ErrPriceUnderflow)
}

func TestGetAmount0DeltaKnownValues(t *testing.T) {
	lower := dec(t, priceOne)
	upper := dec(t, priceOnePointOne)
	liquidity := dec(t, "1000000000000000000")

	up, err := GetAmount0Delta(lower, upper, liquidity, true)
	require.NoError(t, err)
	require.Equal(t, "90909090909090910", up.Dec())

	down, err := GetAmount0Delta(lower, upper, liquidity, false)
	require.NoError(t, err)
	require.Equal(t, "90909090909090909", down.Dec())
}

func TestGetAmount1DeltaKnownValues(t *testing.T) {
	lower := dec(t, priceOne)
	upper := dec(t, priceOnePointOne)
	liquidity := dec(t, "1000000000000000000")

	up, err := GetAmount1Delta(lower, upper, liquidity, true)
	require.NoError(t, err)
	require.Equal(t, "100000000000000000", up.Dec())

	down, err := GetAmount1Delta(lower, upper, liquidity, false)
	require.NoError(t, err)
	require.Equal(t, "99999999999999999", down.Dec())
}

func TestGetAmount0DeltaZeroLiquidityOrWidth(t *testing.T) {
	lower := dec(t, priceOne)
	upper := dec(t, priceOnePointOne)

	amount, err := GetAmount0Delta(lower, upper, new(uint256.Int), true)
	require.NoError(t, err)
	require.True(t, amount.IsZero())

	amount, err = GetAmount0Delta(lower, lower.Clone(), uint256.NewInt(1e18), true)
	require.NoError(t, err)
	require.True(t, amount.IsZero())
}

func TestGetAmount0DeltaRejectsZeroLowerPrice(t *testing.T) {
	upper := dec(t, priceOne)
	_, err := GetAmount0Delta(new(uint256.Int), upper, uint256.NewInt(1), true)
	require.ErrorIs(t, err, ErrZeroPrice)
}

func randomPrice(rng *rand.Rand) *uint256.Int {
	bits := 40 + rng.Intn(80)
	v := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bits))
	v.AddUint64(v, rng.Uint64()%1_000_000_007)
	return v
}

func TestAmountDeltaRoundingDirections(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 500; i++ {
		a := randomPrice(rng)
		b := randomPrice(rng)
		liquidity := uint256.NewInt(1 + rng.Uint64()%(1<<48))

		up0, err := GetAmount0Delta(a, b, liquidity, true)
		require.NoError(t, err)
		down0, err := GetAmount0Delta(a, b, liquidity, false)
		require.NoError(t, err)
		require.True(t, up0.Cmp(down0) >= 0)
		require.True(t, new(uint256.Int).Sub(up0, down0).CmpUint64(2) <= 0,
			"amount0 rounding gap too wide for a=%s b=%s L=%s", a.Dec(), b.Dec(), liquidity.Dec())

		up1, err := GetAmount1Delta(a, b, liquidity, true)
		require.NoError(t, err)
		down1, err := GetAmount1Delta(a, b, liquidity, false)
		require.NoError(t, err)
		require.True(t, up1.Cmp(down1) >= 0)
		require.True(t, new(uint256.Int).Sub(up1, down1).CmpUint64(1) <= 0)
	}
}

// The price computed for a given input must never require more than that
// input when the amount is measured back from the realized price move.
func TestNextPriceConsistentWithAmountDelta(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	for i := 0; i < 500; i++ {
		price := randomPrice(rng)
		liquidity := uint256.NewInt(1 + rng.Uint64()%(1<<48))
		amount := uint256.NewInt(rng.Uint64() % (1 << 50))
		zeroForOne := rng.Intn(2) == 0

		next, err := GetNextSqrtPriceFromInput(price, liquidity, amount, zeroForOne)
		require.NoError(t, err)

		if zeroForOne {
			require.True(t, next.Cmp(price) <= 0)
			needed, err := GetAmount0Delta(next, price, liquidity, true)
			require.NoError(t, err)
			require.True(t, needed.Cmp(amount) <= 0,
				"needed %s exceeds offered %s", needed.Dec(), amount.Dec())
		} else {
			require.True(t, next.Cmp(price) >= 0)
			needed, err := GetAmount1Delta(price, next, liquidity, true)
			require.NoError(t, err)
			require.True(t, needed.Cmp(amount) <= 0,
				"needed %s exceeds offered %s", needed.Dec(), amount.Dec())
		}
	}
}
