package jsonwriter_test

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	jw "github.com/reoring/jsonwriter"
)

type celsius float64

type color int

func (c color) EncodeJSON(s jw.Sink) error {
	_, err := s.WriteString(`"` + [...]string{"red", "green"}[c] + `"`)
	return err
}

type point struct{ X, Y int }

func (p point) EncodeJSON(s jw.Sink) error {
	arr, err := jw.BeginArray(s)
	if err != nil {
		return err
	}
	defer arr.Close()
	if err := arr.Int(int64(p.X)); err != nil {
		return err
	}
	if err := arr.Int(int64(p.Y)); err != nil {
		return err
	}
	return arr.End()
}

type idKey int

func (k idKey) MarshalText() ([]byte, error) { return []byte("id-" + strconv.Itoa(int(k))), nil }

func TestEncode_Values(t *testing.T) {
	five := 5
	var nilPtr *int
	var nilSlice []string
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "Hello World\n", `"Hello World\n"`},
		{"script", `"<script>1/2</script>"`, `"\"<script>1\/2<\/script>\""`},
		{"pi", 3.141592653589793, "3.141592653589793"},
		{"float32", float32(0.1), "0.1"},
		{"integral float", 2.0, "2"},
		{"nan", math.NaN(), "null"},
		{"+inf", math.Inf(1), "null"},
		{"-inf", math.Inf(-1), "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"Null", jw.Null{}, "null"},
		{"nil", nil, "null"},
		{"int8", int8(-8), "-8"},
		{"uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"some", jw.Some[uint8](42), "42"},
		{"none", jw.None[uint8](), "null"},
		{"pointer", &five, "5"},
		{"nil pointer", nilPtr, "null"},
		{"bytes as numbers", []byte("ABC"), "[65,66,67]"},
		{"array", [4]uint8{1, 2, 3, 4}, "[1,2,3,4]"},
		{"strings", []string{"a", "b", "c", "d"}, `["a","b","c","d"]`},
		{"nil slice", nilSlice, "[]"},
		{"empty any", []any{}, "[]"},
		{"nested any", []any{1, "x", []any{true, nil}}, `[1,"x",[true,null]]`},
		{"floats", []float64{1.5, 2}, "[1.5,2]"},
		{"ints", []int{1, -2}, "[1,-2]"},
		{"optionals", []jw.Optional[string]{jw.Some("a"), jw.None[string]()}, `["a",null]`},
		{"single map", map[string]string{"Hello": "World"}, `{"Hello":"World"}`},
		{"empty map", map[string]any{}, "{}"},
		{"int keys", map[int]bool{7: true}, `{"7":true}`},
		{"text keys", map[idKey]int{3: 1}, `{"id-3":1}`},
		{"named scalar", celsius(21.5), "21.5"},
		{"encodable", color(1), `"green"`},
		{"encodable container", []point{{1, 2}, {3, 4}}, "[[1,2],[3,4]]"},
		{"number", jw.Number("1.0e3"), "1.0e3"},
		{"empty number", jw.Number(""), "0"},
		{"raw", jw.Raw(`{ "a" : [1, 2] }`), `{"a":[1,2]}`},
		{"empty raw", jw.Raw(nil), "null"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), `"2024-01-02T03:04:05Z"`},
		{"sorted", jw.Sorted(map[string]int{"b": 2, "c": 3, "a": 1}), `{"a":1,"b":2,"c":3}`},
		{"members", jw.Members{{Key: "number", Value: 42}, {Key: "number", Value: 43}}, `{"number":42,"number":43}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := jw.Encode(c.in)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if got != c.want {
				t.Fatalf("want %s, got %s", c.want, got)
			}
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := jw.Encode(struct{ A int }{1})
	var ute *jw.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if _, err := jw.Encode(map[float64]int{1: 1}); !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError for float keys, got %v", err)
	}
	if _, err := jw.Encode(make(chan int)); !errors.As(err, &ute) {
		t.Fatalf("expected UnsupportedTypeError for chan, got %v", err)
	}
}

func TestEncode_EncodableSinkFailureIsWriteError(t *testing.T) {
	sink := jw.NewWriterSink(errWriter{})
	err := jw.EncodeInto(sink, color(0))
	we, ok := jw.AsWriteError(err)
	if !ok || !errors.Is(we, errDiskFull) {
		t.Fatalf("expected WriteError wrapping the sink error, got %v", err)
	}
	if err := jw.EncodeInto(sink, point{1, 2}); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected sink error, got %v", err)
	} else if _, ok := jw.AsWriteError(err); !ok {
		t.Fatalf("expected WriteError, got %T", err)
	}

	// Errors that do not come from the sink are passed through as they are.
	var b strings.Builder
	err = jw.EncodeInto(&b, refuse{})
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected encoder error, got %v", err)
	}
	if _, ok := jw.AsWriteError(err); ok {
		t.Fatalf("encoder error reported as a write failure")
	}
}

var (
	errDiskFull = errors.New("disk full")
	errRefused  = errors.New("refused")
)

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errDiskFull }

type refuse struct{}

func (refuse) EncodeJSON(jw.Sink) error { return errRefused }

func TestEncode_CyclesFailWithErrTooDeep(t *testing.T) {
	list := []any{1, nil}
	list[1] = list
	m := map[string]any{"a": 1}
	m["self"] = m
	var p any
	p = &p
	for name, v := range map[string]any{"slice": list, "map": m, "pointer": p} {
		t.Run(name, func(t *testing.T) {
			if _, err := jw.Encode(v); !errors.Is(err, jw.ErrTooDeep) {
				t.Fatalf("expected ErrTooDeep, got %v", err)
			}
		})
	}

	deep := any(1)
	for i := 0; i < 500; i++ {
		deep = []any{deep}
	}
	if _, err := jw.Encode(deep); err != nil {
		t.Fatalf("legitimate nesting rejected: %v", err)
	}
}

func TestEncode_InvalidRaw(t *testing.T) {
	var b strings.Builder
	err := jw.EncodeInto(&b, jw.Raw(`{"a":`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := jw.AsWriteError(err); ok {
		t.Fatalf("invalid raw must not be reported as a write failure")
	}
	if b.Len() != 0 {
		t.Fatalf("sink touched: %q", b.String())
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	values := []any{
		"tab\tquote\"slash/ctl\x01 ünïcödé",
		map[string]any{"a": []any{1.5, "x", true, nil}, "b": map[string]any{}},
		[]any{[]any{}, map[string]any{"k": "v"}, -12.25, 1e300},
	}
	for _, v := range values {
		b, err := jw.Marshal(v)
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		var back any
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if !reflect.DeepEqual(normalize(v), back) {
			t.Fatalf("round trip mismatch:\n in  %#v\n out %#v", v, back)
		}
	}
}

// normalize converts ints to float64 the way a generic decoder would.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	}
	return v
}

func TestEscapeInto_Unquoted(t *testing.T) {
	var b strings.Builder
	if err := jw.EscapeInto(&b, "a/b\n"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := b.String(); got != `a\/b\n` {
		t.Fatalf("got %s", got)
	}
}

func TestEncodeInto_WriterSink(t *testing.T) {
	var b strings.Builder
	s := jw.NewWriterSink(onlyWriter{&b})
	if err := jw.EncodeInto(s, map[string]any{"xs": []int{1}}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := b.String(); got != `{"xs":[1]}` {
		t.Fatalf("got %s", got)
	}
}

type onlyWriter struct{ b *strings.Builder }

func (w onlyWriter) Write(p []byte) (int, error) { return w.b.Write(p) }
