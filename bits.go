package jsonescape

import "math/bits"

// Bitmasks hold one bit per lane, lane i in bit i, regardless of the vector
// width that produced them.

// firstOffset returns the lane index of the lowest set bit.
func firstOffset(mask uint64) int {
	return bits.TrailingZeros64(mask)
}

// clearHighBits keeps only the low lanes bits of mask, dropping lanes that
// were loaded from padding.
func clearHighBits(mask uint64, lanes int) uint64 {
	if lanes >= 64 {
		return mask
	}
	return mask & (1<<uint(lanes) - 1)
}
