package tickmath

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTickKnownValues(t *testing.T) {
	tests := []struct {
		tick int32
		want string
	}{
		{0, "79228162514264337593543950336"}, // 2^96
		{1, "79232123823359799118286999568"},
		{-1, "79224201403219477170569942574"},
		{MinTick, "4295128739"},
		{MaxTick, "1461446703485210103287273052203988822378723970342"},
	}
	for _, tt := range tests {
		ratio, err := GetSqrtRatioAtTick(tt.tick)
		require.NoError(t, err, "tick %d", tt.tick)
		require.Equal(t, tt.want, ratio.Dec(), "tick %d", tt.tick)
	}
}

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrTickOutOfBounds)

	_, err = GetSqrtRatioAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrTickOutOfBounds)
}

func TestGetSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := GetSqrtRatioAtTick(MinTick)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	tick := MinTick
	for i := 0; i < 200; i++ {
		tick += 1 + rng.Int31n(8000)
		if tick > MaxTick {
			break
		}
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		require.True(t, ratio.Cmp(prev) > 0, "ratio not increasing at tick %d", tick)
		prev = ratio
	}
}

func TestGetTickAtSqrtRatioBounds(t *testing.T) {
	tooLow := new(uint256.Int).SubUint64(MinSqrtRatio, 1)
	_, err := GetTickAtSqrtRatio(tooLow)
	require.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)

	_, err = GetTickAtSqrtRatio(MaxSqrtRatio)
	require.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)

	tick, err := GetTickAtSqrtRatio(MinSqrtRatio)
	require.NoError(t, err)
	require.Equal(t, MinTick, tick)

	tick, err = GetTickAtSqrtRatio(new(uint256.Int).SubUint64(MaxSqrtRatio, 1))
	require.NoError(t, err)
	require.Equal(t, MaxTick-1, tick)
}

func TestGetTickAtSqrtRatioRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	for i := 0; i < 300; i++ {
		tick := MinTick + rng.Int31n(MaxTick-MinTick) // excludes MaxTick itself
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)

		got, err := GetTickAtSqrtRatio(ratio)
		require.NoError(t, err)
		require.Equal(t, tick, got, "round trip at tick %d", tick)

		// A price just above the tick's ratio still resolves to that tick.
		bumped := new(uint256.Int).AddUint64(ratio, 1)
		got, err = GetTickAtSqrtRatio(bumped)
		require.NoError(t, err)
		require.Equal(t, tick, got, "bumped price at tick %d", tick)
	}
}
