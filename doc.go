// Package jsonwriter writes compact JSON incrementally into a caller-owned
// sink without building an intermediate document.
//
// Package jsonwriter provides:
//
// - ObjectWriter and ArrayWriter builders that append members and elements in
// output order and keep brackets balanced
// - Value dispatch for strings, numbers, booleans, null, optionals, slices and
// maps, extensible through Encodable
// - Encode/Marshal/EncodeInto convenience entry points
//
// Design policy:
//   - Output is append-only: nothing written is ever rewound. Large documents
//     can be streamed through a bounded buffer by draining the sink between
//     top-level elements (never in the middle of one).
//   - Only the innermost open builder may write. Calling a parent while a child
//     is open returns ErrNestedOpen; calling a terminated builder returns
//     ErrClosed. Sink failures surface as *WriteError.
//   - End terminates a builder and reports the closing write. Close is the
//     deferred fallback: it closes anything still open, ignoring write errors.
//   - Duplicate keys are not detected; they are written as given.
//   - Strings escape '"', '\\', '/' and every control character. Input must be
//     valid UTF-8.
//   - NaN and infinities are written as null; integral floats lose their ".0".
//
// Typical usage:
//
//	var buf strings.Builder
//	obj, err := jsonwriter.BeginObject(&buf)
//	if err != nil { ... }
//	defer obj.Close()
//	_ = obj.Int("number", 42)
//	err = obj.End() // {"number":42}
package jsonwriter
