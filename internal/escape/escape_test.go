package escape

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func escaped(t *testing.T, s string) string {
	t.Helper()
	var b strings.Builder
	if err := Write(&b, s); err != nil {
		t.Fatalf("err: %v", err)
	}
	return b.String()
}

func TestWrite_Table(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"Hello World\n", `Hello World\n`},
		{`"<script>1/2</script>"`, `\"<script>1\/2<\/script>\"`},
		{"a\\b", `a\\b`},
		{"\b\f\n\r\t", `\b\f\n\r\t`},
		{"\x00\x01\x1f", `\u0000\u0001\u001F`},
		{"ä\töü", "ä\\töü"},
		{"日本語/", `日本語\/`},
		{"\x7f", "\x7f"},
	}
	for _, c := range cases {
		if got := escaped(t, c.in); got != c.want {
			t.Fatalf("Write(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestControlBytesAlwaysEscaped(t *testing.T) {
	for b := 0; b < 0x20; b++ {
		got := escaped(t, string([]byte{byte(b)}))
		if got[0] != '\\' {
			t.Fatalf("byte 0x%02X: expected leading backslash, got %q", b, got)
		}
		switch ClassOf(byte(b)) {
		case Short:
			if len(got) != 2 || !strings.ContainsRune("bfnrt", rune(got[1])) {
				t.Fatalf("byte 0x%02X: bad short escape %q", b, got)
			}
		case Unicode:
			if want := fmt.Sprintf(`\u00%02X`, b); got != want {
				t.Fatalf("byte 0x%02X: want %q, got %q", b, want, got)
			}
		default:
			t.Fatalf("byte 0x%02X classified as passthrough", b)
		}
	}
}

func TestHighBytesPassThrough(t *testing.T) {
	for b := 0x80; b < 0x100; b++ {
		if ClassOf(byte(b)) != Passthrough || Replacement(byte(b)) != "" {
			t.Fatalf("byte 0x%02X must pass through", b)
		}
	}
}

type countingWriter struct {
	strings.Builder
	calls int
}

func (w *countingWriter) WriteString(s string) (int, error) {
	w.calls++
	return w.Builder.WriteString(s)
}

func TestWrite_FlushesRunsOnce(t *testing.T) {
	w := &countingWriter{}
	if err := Write(w, "abc\ndef"); err != nil {
		t.Fatalf("err: %v", err)
	}
	// "abc", "\n", "def"
	if w.calls != 3 {
		t.Fatalf("expected 3 writes, got %d", w.calls)
	}
	w = &countingWriter{}
	_ = Write(w, "no escapes at all")
	if w.calls != 1 {
		t.Fatalf("expected a single write, got %d", w.calls)
	}
}

type failAfter struct {
	n   int
	err error
}

func (w *failAfter) WriteString(s string) (int, error) {
	if w.n == 0 {
		return 0, w.err
	}
	w.n--
	return len(s), nil
}

func TestWrite_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	for n := 0; n < 3; n++ {
		err := Write(&failAfter{n: n, err: boom}, "ab\"cd")
		if !errors.Is(err, boom) {
			t.Fatalf("n=%d: expected boom, got %v", n, err)
		}
	}
}
