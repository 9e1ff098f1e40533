package jsonescape

import "encoding/binary"

// Portable 128-bit kernel. A window is two 64-bit words compared lane by lane
// with SWAR arithmetic; each lane's result lands in its high bit and is then
// gathered into a 16-bit mask like a movemask instruction would.

const (
	swarLow7   uint64 = 0x7f7f7f7f7f7f7f7f
	swarHigh   uint64 = 0x8080808080808080
	swarCtl    uint64 = 0x6060606060606060 // 0x80 - 0x20 per lane
	swarQuote  uint64 = 0x2222222222222222
	swarBSlash uint64 = 0x5c5c5c5c5c5c5c5c

	// movemaskMagic moves bit 8i to bit 56+i.
	movemaskMagic uint64 = 0x0102040810204080
)

// swarZero sets the high bit of every lane of x that is zero. Unlike the
// classic (x-0x01..)&^x trick it has no false positives above a match.
func swarZero(x uint64) uint64 {
	t := (x & swarLow7) + swarLow7
	return ^(t | x) & swarHigh
}

// swarEscape sets the high bit of every lane that is <= 0x1f, '"' or '\\'.
func swarEscape(x uint64) uint64 {
	ge := ((x & swarLow7) + swarCtl) | x
	ctl := ^ge & swarHigh
	return ctl | swarZero(x^swarQuote) | swarZero(x^swarBSlash)
}

// swarBits gathers the lane high bits of m into an 8-bit mask.
func swarBits(m uint64) uint64 {
	return ((m >> 7) * movemaskMagic) >> 56
}

func scanGeneric(dst, src []byte) uint64 {
	lo := binary.LittleEndian.Uint64(src[0:8])
	hi := binary.LittleEndian.Uint64(src[8:16])
	binary.LittleEndian.PutUint64(dst[0:8], lo)
	binary.LittleEndian.PutUint64(dst[8:16], hi)
	return swarBits(swarEscape(lo)) | swarBits(swarEscape(hi))<<8
}

// appendEscapedScalar appends the escaped form of src to dst one byte at a
// time, copying the runs between escapes in bulk.
func appendEscapedScalar(dst, src []byte) []byte {
	start := 0
	for i, c := range src {
		if !needEscapeLUT[c] {
			continue
		}
		dst = append(dst, src[start:i]...)
		e := &quoteLUT[c]
		dst = append(dst, e.seq[:e.n]...)
		start = i + 1
	}
	return append(dst, src[start:]...)
}
