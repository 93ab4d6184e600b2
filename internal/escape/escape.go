// Package escape turns UTF-8 text into the body of a JSON string literal.
//
// The scan works on bytes: every byte that needs escaping is below 0x80,
// and UTF-8 lead and continuation bytes are all at or above 0x80, so
// multi-byte sequences pass through untouched and are never split.
// Input is assumed to be valid UTF-8.
package escape

// Writer is the subset of a sink the escaper needs.
type Writer interface {
	WriteString(s string) (int, error)
}

// Class categorizes a byte by how it is written inside a JSON string.
type Class uint8

const (
	Passthrough Class = iota
	Short             // backslash plus one letter, e.g. \n
	Unicode           // \u00XX
)

const hexDigits = "0123456789ABCDEF"

var (
	classes      [256]Class
	replacements [256]string
)

func init() {
	for c := 0; c < 0x20; c++ {
		classes[c] = Unicode
		replacements[c] = `\u00` + string(hexDigits[c>>4]) + string(hexDigits[c&0xF])
	}
	short := map[byte]byte{
		'"':  '"',
		'\\': '\\',
		'/':  '/',
		0x08: 'b',
		0x0C: 'f',
		'\n': 'n',
		'\r': 'r',
		'\t': 't',
	}
	for c, letter := range short {
		classes[c] = Short
		replacements[c] = `\` + string(letter)
	}
	for c := 0x80; c < 0x100; c++ {
		if classes[c] != Passthrough {
			panic("escape: bytes 0x80-0xFF belong to UTF-8 sequences and must pass through")
		}
	}
}

// ClassOf reports how b is written inside a JSON string.
func ClassOf(b byte) Class { return classes[b] }

// Replacement returns the escape sequence for b, or "" when b passes through.
func Replacement(b byte) string { return replacements[b] }

// Write escapes s into w without surrounding quotes. Unescaped runs are
// written as single slices of s.
func Write(w Writer, s string) error {
	start := 0
	for i := 0; i < len(s); i++ {
		rep := replacements[s[i]]
		if rep == "" {
			continue
		}
		if start < i {
			if _, err := w.WriteString(s[start:i]); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(rep); err != nil {
			return err
		}
		start = i + 1
	}
	if start < len(s) {
		if _, err := w.WriteString(s[start:]); err != nil {
			return err
		}
	}
	return nil
}
