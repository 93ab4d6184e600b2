package jsonwriter

import (
	"bytes"
	"encoding"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Encodable is implemented by types that append their own JSON
// representation to a sink.
type Encodable interface {
	EncodeJSON(s Sink) error
}

// streamEncoder is the in-package fast path for Encodable helpers: it
// writes through the current stream instead of starting a new one.
type streamEncoder interface {
	encodeStream(s *stream) error
}

// Null is written as the JSON null literal. Unlike a nil pointer or an empty
// Optional it says "null" unconditionally.
type Null struct{}

// EncodeJSON implements Encodable.
func (Null) EncodeJSON(s Sink) error {
	_, err := s.WriteString("null")
	return wrapWrite(err)
}

// Number is a pre-formatted JSON number written verbatim. The caller
// guarantees it is valid; an empty Number is written as 0.
type Number string

// Raw is pre-encoded JSON. It is compacted before being written; invalid
// input is rejected without touching the sink. An empty Raw is written as
// null.
type Raw []byte

// maxDepth bounds the nesting of values, so a self-referencing slice, map
// or pointer fails with ErrTooDeep instead of exhausting the stack.
const maxDepth = 10000

// value dispatches v to its encoding.
func (s *stream) value(v any) error {
	if s.level >= maxDepth {
		return errors.WithStack(ErrTooDeep)
	}
	s.level++
	err := s.dispatch(v)
	s.level--
	return err
}

func (s *stream) dispatch(v any) error {
	switch x := v.(type) {
	case nil:
		return s.writeNull()
	case Null:
		return s.writeNull()
	case string:
		return s.writeQuoted(x)
	case bool:
		return s.writeBool(x)
	case int:
		return s.writeInt(int64(x))
	case int8:
		return s.writeInt(int64(x))
	case int16:
		return s.writeInt(int64(x))
	case int32:
		return s.writeInt(int64(x))
	case int64:
		return s.writeInt(x)
	case uint:
		return s.writeUint(uint64(x))
	case uint8:
		return s.writeUint(uint64(x))
	case uint16:
		return s.writeUint(uint64(x))
	case uint32:
		return s.writeUint(uint64(x))
	case uint64:
		return s.writeUint(x)
	case uintptr:
		return s.writeUint(uint64(x))
	case float32:
		return s.writeFloat(float64(x), 32)
	case float64:
		return s.writeFloat(x, 64)
	case Number:
		if x == "" {
			return s.writeByte('0')
		}
		return s.writeString(string(x))
	case Raw:
		return s.writeRaw(x)
	case streamEncoder:
		return x.encodeStream(s)
	case Encodable:
		return s.encodable(x)
	case json.Marshaler:
		b, err := x.MarshalJSON()
		if err != nil {
			return errors.Wrapf(err, "jsonwriter: marshal %T", v)
		}
		return s.writeRaw(b)
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return errors.Wrapf(err, "jsonwriter: marshal %T", v)
		}
		return s.writeQuoted(string(b))
	case []any:
		return writeSlice(s, x, (*ArrayWriter).Value)
	case []string:
		return writeSlice(s, x, (*ArrayWriter).String)
	case []int:
		return writeSlice(s, x, func(a *ArrayWriter, v int) error { return a.Int(int64(v)) })
	case []float64:
		return writeSlice(s, x, (*ArrayWriter).Float)
	case map[string]any:
		return writeMap(s, x, (*ObjectWriter).Member)
	case map[string]string:
		return writeMap(s, x, (*ObjectWriter).String)
	}
	return s.reflectValue(reflect.ValueOf(v))
}

// encodable runs a user encoder. If the sink rejected any of its appends,
// the returned error is reported as a WriteError.
func (s *stream) encodable(x Encodable) error {
	s.rec = recordingSink{Sink: s.sink}
	err := x.EncodeJSON(&s.rec)
	if err != nil && s.rec.failed {
		return wrapWrite(err)
	}
	return err
}

// recordingSink notes whether the wrapped sink failed an append.
type recordingSink struct {
	Sink
	failed bool
}

func (r *recordingSink) note(err error) error {
	if err != nil {
		r.failed = true
	}
	return err
}

func (r *recordingSink) Write(p []byte) (int, error) {
	n, err := r.Sink.Write(p)
	return n, r.note(err)
}

func (r *recordingSink) WriteByte(c byte) error { return r.note(r.Sink.WriteByte(c)) }

func (r *recordingSink) WriteString(str string) (int, error) {
	n, err := r.Sink.WriteString(str)
	return n, r.note(err)
}

func (s *stream) writeRaw(b []byte) error {
	if len(b) == 0 {
		return s.writeNull()
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return errors.Wrap(err, "jsonwriter: invalid raw JSON")
	}
	return s.writeBytes(buf.Bytes())
}

// writeSlice encodes xs as an array. On failure the array is closed
// best-effort and the error returned.
func writeSlice[T any](s *stream, xs []T, put func(*ArrayWriter, T) error) error {
	a, err := s.beginArray()
	if err != nil {
		return err
	}
	for _, x := range xs {
		if err := put(a, x); err != nil {
			a.Close()
			return err
		}
	}
	return a.End()
}

// writeMap encodes m as an object in Go map iteration order.
func writeMap[K ~string, V any](s *stream, m map[K]V, put func(*ObjectWriter, string, V) error) error {
	o, err := s.beginObject()
	if err != nil {
		return err
	}
	for k, v := range m {
		if err := put(o, string(k), v); err != nil {
			o.Close()
			return err
		}
	}
	return o.End()
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func (s *stream) reflectValue(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Invalid:
		return s.writeNull()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return s.writeNull()
		}
		return s.value(rv.Elem().Interface())
	case reflect.String:
		return s.writeQuoted(rv.String())
	case reflect.Bool:
		return s.writeBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.writeInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.writeUint(rv.Uint())
	case reflect.Float32:
		return s.writeFloat(rv.Float(), 32)
	case reflect.Float64:
		return s.writeFloat(rv.Float(), 64)
	case reflect.Slice, reflect.Array:
		a, err := s.beginArray()
		if err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := a.Value(rv.Index(i).Interface()); err != nil {
				a.Close()
				return err
			}
		}
		return a.End()
	case reflect.Map:
		return s.reflectMap(rv)
	}
	return &UnsupportedTypeError{Type: rv.Type()}
}

func (s *stream) reflectMap(rv reflect.Value) error {
	kt := rv.Type().Key()
	if !validKeyType(kt) {
		return &UnsupportedTypeError{Type: rv.Type()}
	}
	o, err := s.beginObject()
	if err != nil {
		return err
	}
	iter := rv.MapRange()
	for iter.Next() {
		key, err := keyText(iter.Key())
		if err == nil {
			err = o.Member(key, iter.Value().Interface())
		}
		if err != nil {
			o.Close()
			return err
		}
	}
	return o.End()
}

func validKeyType(t reflect.Type) bool {
	if t.Kind() == reflect.String || t.Implements(textMarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// keyText converts a map key to member-name text.
func keyText(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		b, err := tm.MarshalText()
		if err != nil {
			return "", errors.Wrapf(err, "jsonwriter: map key %s", k.Type())
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	default:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
}
