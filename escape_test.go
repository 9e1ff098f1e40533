package jsonescape

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/require"
)

// reference quotes src with a conformant JSON encoder. src must be valid UTF-8.
func reference(t testing.TB, src []byte) string {
	out, err := jsontext.AppendQuote(nil, src)
	require.NoError(t, err)
	return string(out)
}

var textTokens = []string{
	"a", "Z", "0", " ", "/", "~", "\x7f",
	`"`, `\`, "\x00", "\x01", "\x08", "\t", "\n", "\x0b", "\f", "\r", "\x1f",
	"é", "ß", "中文", "😀", "𝄞",
}

// randomText builds valid UTF-8 of at least n bytes from textTokens.
func randomText(rng *rand.Rand, n int) []byte {
	var b []byte
	for len(b) < n {
		b = append(b, textTokens[rng.IntN(len(textTokens))]...)
	}
	return b
}

func newRand() *rand.Rand {
	return rand.New(rand.NewChaCha8([32]byte(bytes.Repeat([]byte{0xBA, 0xAD, 0xF0, 0x0D}, 8))))
}

func testEscapers(t *testing.T) []*Escaper {
	t.Helper()
	var es []*Escaper
	for _, name := range Kernels() {
		e, err := New(name)
		require.NoError(t, err)
		es = append(es, e)
	}
	return es
}

func TestEscapeSimple(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", `""`},
		{"a", "a", `"a"`},
		{"ab", "ab", `"ab"`},
		{"hello newline", "hello\n", `"hello\n"`},
		{"quote", `"`, `"\""`},
		{"backslash", `\`, `"\\"`},
		{"NUL", "\x00", `"\u0000"`},
		{"tab", "\x09", `"\t"`},
		{"CRLF", "\r\n", `"\r\n"`},
		{"backspace", "\x08", `"\b"`},
		{"formfeed", "\x0c", `"\f"`},
		{"unit separator", "\x1f", `"\u001f"`},
		{"DEL", "\x7f", "\"\x7f\""},
		{"slash", "/", `"/"`},
		{"multibyte", "中文 😀", `"中文 😀"`},
		{"sparse escape near tail", strings.Repeat("a", 500) + `\`, `"` + strings.Repeat("a", 500) + `\\"`},
	}

	for _, e := range testEscapers(t) {
		for _, tc := range cases {
			t.Run(e.Name()+"/"+tc.name, func(t *testing.T) {
				require.Equal(t, tc.expected, e.Escape(tc.input))
				require.Equal(t, tc.expected, string(e.Append(nil, tc.input)))
			})
		}
	}

	require.Equal(t, `"a\"b"`, Escape(`a"b`))
	require.Equal(t, []byte(`"a\"b"`), EscapeBytes([]byte(`a"b`)))
	require.Equal(t, `"a\"b"`, EscapeGeneric(`a"b`))
}

func TestEscapeControlBytes(t *testing.T) {
	short := map[byte]string{'\b': `\b`, '\t': `\t`, '\n': `\n`, '\f': `\f`, '\r': `\r`}

	for _, e := range testEscapers(t) {
		for c := byte(0); c < 0x20; c++ {
			want, ok := short[c]
			if !ok {
				want = fmt.Sprintf(`\u%04x`, c)
			}
			require.Equal(t, `"`+want+`"`, e.Escape(string([]byte{c})), "kernel %s byte 0x%02x", e.Name(), c)
		}
	}
}

func TestKernelsMatchReference(t *testing.T) {
	rng := newRand()
	escapers := testEscapers(t)

	for n := 0; n <= 600; n++ {
		src := randomText(rng, n)
		want := reference(t, src)
		for _, e := range escapers {
			require.Equal(t, want, string(e.AppendBytes(nil, src)), "kernel %s length %d", e.Name(), len(src))
		}
		require.Equal(t, want, string(AppendEscapeGeneric(nil, string(src))))
	}
}

func TestKernelsMatchReferenceDense(t *testing.T) {
	inputs := []string{
		strings.Repeat(`"\"\"\"\`, 50),
		strings.Repeat("\t\n", 100),
		strings.Repeat(`a"b"`, 100),
		strings.Repeat("abcd", 100),
		strings.Repeat("0123456789abcd\n", 8),
	}
	var ctrl []byte
	for range 10 {
		for c := byte(0); c < 0x20; c++ {
			ctrl = append(ctrl, c)
		}
	}
	inputs = append(inputs, string(ctrl))

	for _, e := range testEscapers(t) {
		for i, in := range inputs {
			require.Equal(t, reference(t, []byte(in)), e.Escape(in), "kernel %s input %d", e.Name(), i)
		}
	}
}

func TestBoundaryLengths(t *testing.T) {
	var lengths []int
	for _, w := range []int{16, 32, 64} {
		lengths = append(lengths, w-1, w, w+1, 2*w-1, 2*w, 2*w+1, 4*w-1, 4*w, 4*w+1)
	}

	for _, e := range testEscapers(t) {
		for _, n := range lengths {
			clean := bytes.Repeat([]byte{'a'}, n)
			require.Equal(t, reference(t, clean), string(e.AppendBytes(nil, clean)), "kernel %s length %d", e.Name(), n)

			for _, c := range []byte{'"', '\\', '\n', 0x01} {
				for pos := 0; pos < n; pos++ {
					src := bytes.Repeat([]byte{'a'}, n)
					src[pos] = c
					require.Equal(t, reference(t, src), string(e.AppendBytes(nil, src)),
						"kernel %s length %d escape 0x%02x at %d", e.Name(), n, c, pos)
				}
			}
		}
	}
}

func TestAlignmentIndependent(t *testing.T) {
	const pageSize = 4096
	content := []byte("test\nstring\"with\\escapes and a longer clean run of text\x01")
	want := reference(t, content)

	buf := make([]byte, pageSize+len(content))
	for _, e := range testEscapers(t) {
		for off := 0; off <= pageSize; off++ {
			src := buf[off : off+len(content)]
			copy(src, content)
			require.Equal(t, want, string(e.AppendBytes(nil, src)), "kernel %s offset %d", e.Name(), off)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rng := newRand()
	for n := 0; n < 300; n += 7 {
		src := randomText(rng, n)
		out := EscapeBytes(src)
		require.True(t, len(out) >= 2)
		require.Equal(t, byte('"'), out[0])
		require.Equal(t, byte('"'), out[len(out)-1])

		unquoted, err := jsontext.AppendUnquote(nil, out)
		require.NoError(t, err)
		require.Equal(t, string(src), string(unquoted))
	}
}

func TestEscapeReleasesSpareCapacity(t *testing.T) {
	clean := strings.Repeat("a", 1000)
	require.True(t, shrinkEscaped(len(clean)+2, MaxLength(len(clean))))

	dense := strings.Repeat("\x01", 1000)
	require.False(t, shrinkEscaped(6*1000+2, MaxLength(1000)))
	require.False(t, shrinkEscaped(0, 0))

	for _, e := range testEscapers(t) {
		require.Equal(t, reference(t, []byte(clean)), e.Escape(clean))
		require.Equal(t, reference(t, []byte(dense)), e.Escape(dense))
	}
}

func TestAppendEscapeKeepsPrefix(t *testing.T) {
	for _, e := range testEscapers(t) {
		dst := []byte("key=")
		dst = e.Append(dst, "v\"1")
		dst = append(dst, ',')
		dst = e.Append(dst, strings.Repeat("x", 70)+"\n")
		require.Equal(t, `key="v\"1",`+`"`+strings.Repeat("x", 70)+`\n"`, string(dst))
	}

	dst := make([]byte, 2, 4)
	copy(dst, "ab")
	dst = AppendEscape(dst, "c")
	require.Equal(t, `ab"c"`, string(dst))

	require.Equal(t, `ab"c"`, string(AppendEscapeBytes([]byte("ab"), []byte("c"))))
	require.Equal(t, `ab"c"`, string(AppendEscapeGeneric([]byte("ab"), "c")))
}

func TestInvalidUTF8PassesThrough(t *testing.T) {
	src := []byte{0xff, 'a', 0xc3, '"', 0x80}
	for _, e := range testEscapers(t) {
		require.Equal(t, []byte{'"', 0xff, 'a', 0xc3, '\\', '"', 0x80, '"'}, e.AppendBytes(nil, src))
	}
}

func TestMixedContent(t *testing.T) {
	mixed := "Hello \"World\"!\n    Tab:\tHere\n    Emoji: 😀 Chinese: 中文\n    Math: ∑∫∂ Music: 𝄞\n    Escape: \\\" \\\\ \\n \\r \\t"
	for _, e := range testEscapers(t) {
		require.Equal(t, reference(t, []byte(mixed)), e.Escape(mixed))
	}
}

func TestUnaligned(t *testing.T) {
	for _, e := range testEscapers(t) {
		for offset := 0; offset < 64; offset++ {
			s := strings.Repeat(" ", offset) + "test\nstring\"with\\escapes"
			require.Equal(t, reference(t, []byte(s[offset:])), e.Escape(s[offset:]), "offset %d", offset)
		}
	}
}

func BenchmarkEscape(b *testing.B) {
	rng := newRand()
	clean := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 1024)
	mixed := randomText(rng, len(clean))

	for _, name := range Kernels() {
		e, err := New(name)
		require.NoError(b, err)
		for _, in := range []struct {
			name string
			src  []byte
		}{{"clean", clean}, {"mixed", mixed}} {
			b.Run(name+"/"+in.name, func(b *testing.B) {
				dst := make([]byte, 0, MaxLength(len(in.src)))
				b.SetBytes(int64(len(in.src)))
				for b.Loop() {
					dst = e.AppendBytes(dst[:0], in.src)
				}
			})
		}
	}
}
