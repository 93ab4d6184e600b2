package jsonwriter

import (
	"bytes"
	"strings"

	"github.com/reoring/jsonwriter/internal/escape"
)

// Encode returns the compact JSON text of v.
func Encode(v any) (string, error) {
	var b strings.Builder
	if err := EncodeInto(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Marshal returns the compact JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	if err := EncodeInto(&b, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EncodeInto appends the JSON encoding of v to sink.
func EncodeInto(sink Sink, v any) error { return newStream(sink).value(v) }

// BeginObject writes '{' to sink and returns a writer for the object's
// members.
func BeginObject(sink Sink) (*ObjectWriter, error) { return newStream(sink).beginObject() }

// BeginArray writes '[' to sink and returns a writer for the array's
// elements.
func BeginArray(sink Sink) (*ArrayWriter, error) { return newStream(sink).beginArray() }

// EscapeInto writes s escaped as the body of a JSON string, without the
// surrounding quotes. The caller is responsible for the rest of the grammar.
func EscapeInto(sink Sink, s string) error { return wrapWrite(escape.Write(sink, s)) }
