package jsonwriter

import (
	"github.com/reoring/jsonwriter/internal/escape"
	"github.com/reoring/jsonwriter/internal/numfmt"
)

// frame is one open bracket on a stream. Ids grow monotonically so a stale
// builder can never be mistaken for a newer sibling at the same depth.
type frame struct {
	id     uint64
	closer byte
}

// stream is the state shared by every builder writing into one sink: the
// sink itself and the stack of currently open brackets. Only the builder
// owning the top frame may write.
type stream struct {
	sink    Sink
	open    []frame
	lastID  uint64
	level   int   // nesting of value calls
	err     error // first failure that left the output malformed
	rec     recordingSink
	scratch [40]byte
}

func newStream(sink Sink) *stream { return &stream{sink: sink} }

// fail records err as the stream's failure unless one is already recorded.
// Every later call on a builder of the stream returns the recorded error.
func (s *stream) fail(err error) error {
	if err != nil && s.err == nil {
		s.err = err
	}
	return err
}

func (s *stream) writeByte(c byte) error { return wrapWrite(s.sink.WriteByte(c)) }

func (s *stream) writeString(str string) error {
	_, err := s.sink.WriteString(str)
	return wrapWrite(err)
}

func (s *stream) writeBytes(b []byte) error {
	_, err := s.sink.Write(b)
	return wrapWrite(err)
}

func (s *stream) writeNull() error { return s.writeString("null") }

func (s *stream) writeBool(v bool) error {
	if v {
		return s.writeString("true")
	}
	return s.writeString("false")
}

func (s *stream) writeInt(v int64) error { return s.writeBytes(numfmt.AppendInt(s.scratch[:0], v)) }

func (s *stream) writeUint(v uint64) error { return s.writeBytes(numfmt.AppendUint(s.scratch[:0], v)) }

func (s *stream) writeFloat(v float64, bits int) error {
	return s.writeBytes(numfmt.AppendFloat(s.scratch[:0], v, bits))
}

func (s *stream) writeQuoted(str string) error {
	if err := s.writeByte('"'); err != nil {
		return err
	}
	if err := wrapWrite(escape.Write(s.sink, str)); err != nil {
		return err
	}
	return s.writeByte('"')
}

// push writes the opening bracket and registers a new frame on top.
func (s *stream) push(opener, closer byte) (builder, error) {
	if err := s.writeByte(opener); err != nil {
		return builder{}, err
	}
	s.lastID++
	s.open = append(s.open, frame{id: s.lastID, closer: closer})
	return builder{s: s, id: s.lastID, depth: len(s.open)}, nil
}

func (s *stream) beginObject() (*ObjectWriter, error) {
	b, err := s.push('{', '}')
	if err != nil {
		return nil, err
	}
	return &ObjectWriter{builder: b}, nil
}

func (s *stream) beginArray() (*ArrayWriter, error) {
	b, err := s.push('[', ']')
	if err != nil {
		return nil, err
	}
	return &ArrayWriter{builder: b}, nil
}

// builder holds the separator bookkeeping shared by objects and arrays.
type builder struct {
	s     *stream
	id    uint64
	depth int
	wrote bool
}

func (b *builder) live() bool {
	return b.s != nil && b.depth > 0 && b.depth <= len(b.s.open) && b.s.open[b.depth-1].id == b.id
}

func (b *builder) check() error {
	if !b.live() {
		return ErrClosed
	}
	if b.s.err != nil {
		return b.s.err
	}
	if b.depth < len(b.s.open) {
		return ErrNestedOpen
	}
	return nil
}

func (b *builder) comma() error {
	if !b.wrote {
		b.wrote = true
		return nil
	}
	return b.s.writeByte(',')
}

// end pops the frame and writes its closer. On a failed stream the bracket
// is still written and the recorded failure is returned.
func (b *builder) end() error {
	if !b.live() {
		return ErrClosed
	}
	if b.depth < len(b.s.open) {
		return ErrNestedOpen
	}
	closer := b.s.open[b.depth-1].closer
	b.s.open = b.s.open[:b.depth-1]
	err := b.s.writeByte(closer)
	if b.s.err != nil {
		return b.s.err
	}
	return b.s.fail(err)
}

func (b *builder) close() {
	if !b.live() {
		return
	}
	for len(b.s.open) >= b.depth {
		top := b.s.open[len(b.s.open)-1]
		b.s.open = b.s.open[:len(b.s.open)-1]
		_ = b.s.sink.WriteByte(top.closer)
	}
}

// ObjectWriter appends members to a JSON object. It writes '{' when created
// and '}' when terminated by End or Close.
//
// While an object or array opened from it is still open, every call on the
// ObjectWriter fails with ErrNestedOpen. Once an append fails partway, for
// example with an unsupported value after its key was written, every later
// call and End return that error.
type ObjectWriter struct {
	builder
}

// Member writes `"key":value`, preceded by a comma unless it is the first
// member. Duplicate keys are written as given.
func (o *ObjectWriter) Member(key string, v any) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.value(v))
}

// String writes a string member.
func (o *ObjectWriter) String(key, v string) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeQuoted(v))
}

// Int writes an integer member.
func (o *ObjectWriter) Int(key string, v int64) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeInt(v))
}

// Uint writes an unsigned integer member.
func (o *ObjectWriter) Uint(key string, v uint64) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeUint(v))
}

// Float writes a float64 member; NaN and infinities become null.
func (o *ObjectWriter) Float(key string, v float64) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeFloat(v, 64))
}

// Bool writes a boolean member.
func (o *ObjectWriter) Bool(key string, v bool) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeBool(v))
}

// Null writes a null member.
func (o *ObjectWriter) Null(key string) error {
	if err := o.WriteKey(key); err != nil {
		return err
	}
	return o.s.fail(o.s.writeNull())
}

// Object starts a nested object under key. The returned writer must be
// terminated before o accepts further calls.
func (o *ObjectWriter) Object(key string) (*ObjectWriter, error) {
	if err := o.WriteKey(key); err != nil {
		return nil, err
	}
	w, err := o.s.beginObject()
	return w, o.s.fail(err)
}

// Array starts a nested array under key. The returned writer must be
// terminated before o accepts further calls.
func (o *ObjectWriter) Array(key string) (*ArrayWriter, error) {
	if err := o.WriteKey(key); err != nil {
		return nil, err
	}
	w, err := o.s.beginArray()
	return w, o.s.fail(err)
}

// WriteKey writes `"key":` with the separating comma but no value. The
// caller must write exactly one value to Sink afterwards.
func (o *ObjectWriter) WriteKey(key string) error {
	if err := o.check(); err != nil {
		return err
	}
	return o.s.fail(o.key(key))
}

func (o *ObjectWriter) key(key string) error {
	if err := o.comma(); err != nil {
		return err
	}
	if err := o.s.writeQuoted(key); err != nil {
		return err
	}
	return o.s.writeByte(':')
}

// WriteComma writes a comma unless nothing has been written yet. The caller
// must write the key and value to Sink afterwards.
func (o *ObjectWriter) WriteComma() error {
	if err := o.check(); err != nil {
		return err
	}
	return o.s.fail(o.comma())
}

// Sink returns the underlying sink, for manual writes and for draining a
// buffer between members. Use WriteComma or WriteKey first to keep the
// separator state intact.
func (o *ObjectWriter) Sink() Sink { return o.s.sink }

// End writes '}' and reports the sink's error for that write. The writer
// is unusable afterwards.
func (o *ObjectWriter) End() error { return o.end() }

// Close terminates the object if End has not been called, first closing
// any nested writers left open. Write failures are discarded; prefer End
// where the error matters. Close is safe to defer and to call repeatedly.
func (o *ObjectWriter) Close() { o.close() }

// ArrayWriter appends elements to a JSON array. It writes '[' when created
// and ']' when terminated by End or Close.
//
// While an object or array opened from it is still open, every call on the
// ArrayWriter fails with ErrNestedOpen. A failed append poisons it the same
// way as an ObjectWriter.
type ArrayWriter struct {
	builder
}

func (a *ArrayWriter) next() error {
	if err := a.check(); err != nil {
		return err
	}
	return a.s.fail(a.comma())
}

// Value writes v as the next element.
func (a *ArrayWriter) Value(v any) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.value(v))
}

// String writes a string element.
func (a *ArrayWriter) String(v string) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeQuoted(v))
}

// Int writes an integer element.
func (a *ArrayWriter) Int(v int64) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeInt(v))
}

// Uint writes an unsigned integer element.
func (a *ArrayWriter) Uint(v uint64) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeUint(v))
}

// Float writes a float64 element; NaN and infinities become null.
func (a *ArrayWriter) Float(v float64) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeFloat(v, 64))
}

// Bool writes a boolean element.
func (a *ArrayWriter) Bool(v bool) error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeBool(v))
}

// Null writes a null element.
func (a *ArrayWriter) Null() error {
	if err := a.next(); err != nil {
		return err
	}
	return a.s.fail(a.s.writeNull())
}

// Object starts a nested object as the next element.
func (a *ArrayWriter) Object() (*ObjectWriter, error) {
	if err := a.next(); err != nil {
		return nil, err
	}
	w, err := a.s.beginObject()
	return w, a.s.fail(err)
}

// Array starts a nested array as the next element.
func (a *ArrayWriter) Array() (*ArrayWriter, error) {
	if err := a.next(); err != nil {
		return nil, err
	}
	w, err := a.s.beginArray()
	return w, a.s.fail(err)
}

// WriteComma writes a comma unless nothing has been written yet. The caller
// must write exactly one value to Sink afterwards.
func (a *ArrayWriter) WriteComma() error { return a.next() }

// Sink returns the underlying sink. See ObjectWriter.Sink.
func (a *ArrayWriter) Sink() Sink { return a.s.sink }

// End writes ']' and reports the sink's error for that write.
func (a *ArrayWriter) End() error { return a.end() }

// Close terminates the array if End has not been called. See
// ObjectWriter.Close.
func (a *ArrayWriter) Close() { a.close() }
