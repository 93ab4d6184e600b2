package jsonwriter

import (
	"maps"
	"slices"
)

// Optional holds a value that may be absent. An absent value is written as
// null, a present one with its own encoding.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// EncodeJSON implements Encodable.
func (o Optional[T]) EncodeJSON(s Sink) error { return newStream(s).value(o) }

func (o Optional[T]) encodeStream(s *stream) error {
	if !o.ok {
		return s.writeNull()
	}
	return s.value(o.value)
}

// Member is one key/value pair of a Members object.
type Member struct {
	Key   string
	Value any
}

// Members is an object whose members are written in slice order. Repeated
// keys are written repeatedly.
type Members []Member

// EncodeJSON implements Encodable.
func (ms Members) EncodeJSON(s Sink) error { return newStream(s).value(ms) }

func (ms Members) encodeStream(s *stream) error {
	o, err := s.beginObject()
	if err != nil {
		return err
	}
	for _, m := range ms {
		if err := o.Member(m.Key, m.Value); err != nil {
			o.Close()
			return err
		}
	}
	return o.End()
}

// Sorted wraps m so that its members are written in ascending key order,
// the way a tree-based map would iterate. A plain Go map is written in
// iteration order, which is unspecified.
func Sorted[K ~string, V any](m map[K]V) Encodable { return sortedMap[K, V]{m: m} }

type sortedMap[K ~string, V any] struct {
	m map[K]V
}

func (sm sortedMap[K, V]) EncodeJSON(s Sink) error { return newStream(s).value(sm) }

func (sm sortedMap[K, V]) encodeStream(s *stream) error {
	o, err := s.beginObject()
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(sm.m)) {
		if err := o.Member(string(k), sm.m[k]); err != nil {
			o.Close()
			return err
		}
	}
	return o.End()
}
