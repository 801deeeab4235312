package dex

import (
	"fmt"

	"github.com/holiman/uint256"
)

// compressTick floors tick / spacing toward negative infinity, the way the
// pool contract indexes its bitmap.
func compressTick(tick, spacing int32) int32 {
	compressed := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		compressed--
	}
	return compressed
}

// bitmapWord returns the tickBitmap word index holding the compressed tick.
func bitmapWord(compressed int32) int16 {
	return int16(compressed >> 8)
}

// ticksInWord expands a bitmap word into the initialized ticks it encodes.
func ticksInWord(word int16, bits *uint256.Int, spacing int32) []int32 {
	if bits == nil || bits.IsZero() {
		return nil
	}
	ticks := make([]int32, 0, 4)
	mask := uint256.NewInt(1)
	probe := new(uint256.Int)
	for bit := uint(0); bit < 256; bit++ {
		if !probe.And(bits, mask).IsZero() {
			compressed := int32(word)*256 + int32(bit)
			ticks = append(ticks, compressed*spacing)
		}
		mask.Lsh(mask, 1)
	}
	return ticks
}

// wordRange returns the inclusive bitmap word span covering radius words on
// each side of the current tick.
func wordRange(currentTick, spacing int32, radius int) (int16, int16, error) {
	if spacing <= 0 {
		return 0, 0, fmt.Errorf("tick spacing must be positive, got %d", spacing)
	}
	if radius < 0 {
		return 0, 0, fmt.Errorf("word radius must be non-negative, got %d", radius)
	}
	center := int32(bitmapWord(compressTick(currentTick, spacing)))
	low := center - int32(radius)
	high := center + int32(radius)
	const minWord, maxWord = -32768, 32767
	if low < minWord {
		low = minWord
	}
	if high > maxWord {
		high = maxWord
	}
	return int16(low), int16(high), nil
}
