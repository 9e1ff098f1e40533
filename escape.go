package jsonescape

import (
	"slices"
	"unsafe"
)

// Escape returns s as a JSON string literal: surrounded by double quotes,
// with '"', '\\' and every byte below 0x20 escaped. All other bytes,
// including those of multi-byte UTF-8 sequences, are copied unchanged.
// The output is identical whichever kernel the CPU selects.
func Escape(s string) string {
	return escaper().Escape(s)
}

// EscapeBytes is like [Escape] but takes and returns a byte slice.
func EscapeBytes(src []byte) []byte {
	return escaper().AppendBytes(nil, src)
}

// AppendEscape appends the JSON string literal of s to dst and returns the
// extended buffer. Capacity is reserved internally.
func AppendEscape(dst []byte, s string) []byte {
	return escaper().Append(dst, s)
}

// AppendEscapeBytes appends the JSON string literal of src to dst.
// dst's spare capacity must not overlap src.
func AppendEscapeBytes(dst, src []byte) []byte {
	return escaper().AppendBytes(dst, src)
}

// EscapeGeneric produces the same output as [Escape] using the byte at a time
// table lookup, without vector windows or the worst-case allocation.
func EscapeGeneric(s string) string {
	return string(AppendEscapeGeneric(nil, s))
}

// AppendEscapeGeneric is the byte at a time counterpart of [AppendEscape].
func AppendEscapeGeneric(dst []byte, s string) []byte {
	// Most strings need few escapes.
	dst = slices.Grow(dst, len(s)+len(s)/2+2)
	dst = append(dst, '"')
	dst = appendEscapedScalar(dst, stringBytes(s))
	return append(dst, '"')
}

// Escaper escapes with one fixed kernel.
type Escaper struct {
	k *kernel
}

// New returns an [Escaper] pinned to the named kernel, one of [Kernels].
func New(name string) (*Escaper, error) {
	k, err := lookupKernel(name)
	if err != nil {
		return nil, err
	}
	return &Escaper{k: k}, nil
}

func escaper() Escaper {
	return Escaper{k: defaultKernel()}
}

// Name returns the kernel name.
func (e Escaper) Name() string { return e.k.name }

// Width returns the number of bytes the kernel classifies per window.
func (e Escaper) Width() int { return e.k.width }

// Escape is [Escape] using e's kernel.
//
// The result shares the worst-case buffer only when it fills most of it;
// otherwise it is copied out so the unused capacity can be freed.
func (e Escaper) Escape(s string) string {
	buf := make([]byte, MaxLength(len(s)))
	n := e.k.format(buf, stringBytes(s))
	if shrinkEscaped(n, len(buf)) {
		return string(buf[:n])
	}
	return unsafe.String(&buf[0], n)
}

// shrinkEscaped reports whether an output of n bytes wastes enough of its
// size bytes buffer to be worth copying.
func shrinkEscaped(n, size int) bool {
	return n < size/2
}

// Append is [AppendEscape] using e's kernel.
func (e Escaper) Append(dst []byte, s string) []byte {
	return e.AppendBytes(dst, stringBytes(s))
}

// AppendBytes is [AppendEscapeBytes] using e's kernel.
func (e Escaper) AppendBytes(dst, src []byte) []byte {
	l := len(dst)
	m := MaxLength(len(src))
	dst = slices.Grow(dst, m)
	n := e.k.format(dst[l:l+m], src)
	return dst[:l+n]
}

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
