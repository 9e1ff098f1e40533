package jsonescape

import (
	"errors"
	"io"
	"sync"
)

// Encoder streams a single JSON string literal to an [io.Writer].
//
// Escaping is byte local, so the output does not depend on how the input is
// split across calls to Write, even in the middle of a multi-byte character.
type Encoder struct {
	w       io.Writer
	k       *kernel
	started bool

	processed int64
	buf       []byte

	writeMu sync.Mutex
}

// NewEncoder returns a new [Encoder].
// Writes to the returned writer are escaped and written to w.
//
// It is the caller's responsibility to call Close on the [Encoder] when done,
// which writes the closing quote.
func NewEncoder(w io.Writer) *Encoder {
	return escaper().NewEncoder(w)
}

// NewEncoder is [NewEncoder] using e's kernel.
func (e Escaper) NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{k: e.k}
	enc.Reset(w)
	return enc
}

// Reset discards the [Encoder] e's state and makes it equivalent to the
// result of its original state from [NewEncoder], but writing to w instead.
// This permits reusing an [Encoder] rather than allocating a new one.
func (e *Encoder) Reset(w io.Writer) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.w = w
	e.started = false
	e.processed = 0
}

var errWriterNil = errors.New("writer is nil")

// Write writes the escaped form of p to the underlying [io.Writer], preceded
// by the opening quote on the first call.
func (e *Encoder) Write(p []byte) (n int, err error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return 0, errWriterNil
	}

	if grow := MaxLength(len(p)) - len(e.buf); grow > 0 {
		e.buf = append(e.buf, make([]byte, grow)...)
	}

	buf := e.buf
	w := 0
	if !e.started {
		buf[0] = '"'
		w++
	}
	w += e.k.body(buf[w:], p)

	if _, err := e.w.Write(buf[:w]); err != nil {
		return 0, err
	}
	e.started = true
	e.processed += int64(len(p))

	return len(p), nil
}

// WriteString is like Write but takes a string.
func (e *Encoder) WriteString(s string) (int, error) {
	return e.Write(stringBytes(s))
}

// Processed returns the number of input bytes escaped since the last Reset.
func (e *Encoder) Processed() int64 {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.processed
}

// Close writes the closing quote, and the opening one if nothing was written.
// It is an error to call Write after calling Close.
func (e *Encoder) Close() error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return errWriterNil
	}
	defer func() { e.w = nil }()

	tail := []byte(`"`)
	if !e.started {
		tail = []byte(`""`)
	}
	_, err := e.w.Write(tail)
	return err
}
