package jsonwriter

import "io"

// Sink is an append-only text destination owned by the caller.
// *bytes.Buffer, *strings.Builder and *bufio.Writer implement it.
type Sink interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

// NewWriterSink adapts a plain io.Writer into a Sink. Every append is
// forwarded as-is; wrap w in a bufio.Writer when it is expensive to call.
func NewWriterSink(w io.Writer) Sink {
	if s, ok := w.(Sink); ok {
		return s
	}
	return &writerSink{w: w}
}

type writerSink struct {
	w   io.Writer
	one [1]byte
}

func (s *writerSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *writerSink) WriteByte(c byte) error {
	s.one[0] = c
	_, err := s.w.Write(s.one[:])
	return err
}

func (s *writerSink) WriteString(str string) (int, error) { return io.WriteString(s.w, str) }
