package jsonescape

// maxWidth is the widest window any kernel loads.
const maxWidth = 64

// groupWindows is how many windows the bulk loop checks before committing.
const groupWindows = 4

// format writes the JSON string literal of src, quotes included, into dst and
// returns the number of bytes written. dst must hold MaxLength(len(src)) bytes.
func (k *kernel) format(dst, src []byte) int {
	dst[0] = '"'
	n := 1 + k.body(dst[1:], src)
	dst[n] = '"'
	return n + 1
}

// body writes the escaped form of src without quotes.
func (k *kernel) body(dst, src []byte) int {
	if k.scan == nil {
		return len(appendEscapedScalar(dst[:0], src))
	}
	return escapeWindows(k.scan, k.width, dst, src)
}

// escapeWindows is the scan-and-copy loop shared by every vector width.
//
// Each window is stored to dst before its mask is inspected. When the mask is
// clean the store stands and both cursors advance by width, otherwise they
// advance to the first lane needing an escape and escapeRun takes over. Bytes
// stored past that lane are overwritten by later writes.
func escapeWindows(scan func(dst, src []byte) uint64, width int, dst, src []byte) int {
	r, w := 0, 0
	n := len(src)
	group := width * groupWindows

	for n-r >= group {
		var masks [groupWindows]uint64
		for i := range masks {
			masks[i] = scan(dst[w+i*width:], src[r+i*width:])
		}
		if masks[0]|masks[1]|masks[2]|masks[3] == 0 {
			r += group
			w += group
			continue
		}
		for _, mask := range masks {
			if mask == 0 {
				r += width
				w += width
				continue
			}
			cn := firstOffset(mask)
			r += cn
			w += cn
			w, r = escapeRun(dst, w, src, r)
			break
		}
	}

	for n-r >= width {
		mask := scan(dst[w:], src[r:])
		if mask == 0 {
			r += width
			w += width
			continue
		}
		cn := firstOffset(mask)
		r += cn
		w += cn
		w, r = escapeRun(dst, w, src, r)
	}

	// Fewer than width bytes remain. A direct load would read past the end of
	// src, so the remainder goes through a scratch window and the lanes loaded
	// from padding are cleared from the mask.
	var in, out [maxWidth]byte
	for r < n {
		rem := n - r
		copy(in[:], src[r:])
		mask := clearHighBits(scan(out[:width], in[:width]), rem)
		if mask == 0 {
			w += copy(dst[w:], out[:rem])
			break
		}
		cn := firstOffset(mask)
		w += copy(dst[w:], out[:cn])
		r += cn
		w, r = escapeRun(dst, w, src, r)
	}

	return w
}

// escapeRun writes the replacement for src[r], which must need escaping, and
// keeps going byte by byte while the following bytes need escaping too.
// It returns the advanced write and read cursors.
func escapeRun(dst []byte, w int, src []byte, r int) (int, int) {
	for {
		e := &quoteLUT[src[r]]
		*(*[8]byte)(dst[w : w+8]) = e.seq
		w += int(e.n)
		r++
		if r == len(src) || !needEscapeLUT[src[r]] {
			return w, r
		}
	}
}
