package jsonescape

// quoteEntry is the replacement for one input byte. seq is padded to 8 bytes so
// the writer can store it with a single fixed-size copy and then advance by n.
type quoteEntry struct {
	n   uint8
	seq [8]byte
}

// quoteLUT maps each byte to its JSON escape sequence, n is 0 for bytes that
// pass through unchanged.
var quoteLUT [256]quoteEntry

// needEscapeLUT is true for exactly the bytes < 0x20, '"' and '\\'.
var needEscapeLUT [256]bool

func quote(c byte) quoteEntry {
	const hex = "0123456789abcdef"

	var e quoteEntry
	switch c {
	case '"', '\\':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', c
	case '\b':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', 'b'
	case '\t':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', 't'
	case '\n':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', 'n'
	case '\f':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', 'f'
	case '\r':
		e.n = 2
		e.seq[0], e.seq[1] = '\\', 'r'
	default:
		if c < 0x20 {
			e.n = 6
			copy(e.seq[:], `\u00`)
			e.seq[4] = hex[c>>4]
			e.seq[5] = hex[c&0x0f]
		}
	}
	return e
}

func init() {
	for i := 0; i < 256; i++ {
		quoteLUT[i] = quote(byte(i))
		needEscapeLUT[i] = quoteLUT[i].n != 0
	}
}

// Classification describes how a single input byte is written inside a JSON
// string literal.
type Classification struct {
	// Escape is set when the byte must be replaced.
	Escape bool
	// Len is the length of the replacement, 2 or 6 when Escape is set.
	Len int

	seq [8]byte
}

// Bytes returns the replacement sequence, or nil when the byte passes through.
func (c Classification) Bytes() []byte {
	if !c.Escape {
		return nil
	}
	return append([]byte(nil), c.seq[:c.Len]...)
}

// Classify returns the escape table entry for b.
func Classify(b byte) Classification {
	e := &quoteLUT[b]
	return Classification{Escape: e.n != 0, Len: int(e.n), seq: e.seq}
}

// NeedsEscape reports whether b must be escaped inside a JSON string.
func NeedsEscape(b byte) bool {
	return needEscapeLUT[b]
}
