package transcode

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	jw "github.com/reoring/jsonwriter"
)

// DefaultFlushBytes is the buffer size at which Stream drains to its writer.
const DefaultFlushBytes = 64 << 10

// Options controls Stream.
type Options struct {
	// FlushBytes is the buffered size that triggers a flush. A flush only
	// happens between elements of a top-level array or between top-level
	// values, so the buffer may exceed it by one element. Zero means
	// DefaultFlushBytes.
	FlushBytes int
	// Logger receives flush events at debug level. Nil disables logging.
	Logger *zerolog.Logger
}

// Stats summarizes a Stream run.
type Stats struct {
	Values   int   // top-level values
	Elements int   // elements of top-level arrays
	Flushes  int   // writes to the destination
	Bytes    int64 // bytes written to the destination
}

// Copy reads the next complete value from src and writes it to sink. It
// returns io.EOF when src has no more values.
func Copy(sink jw.Sink, src Source) error {
	tok, err := src.NextToken()
	if err != nil {
		return err
	}
	return copyValue(sink, src, tok)
}

// Stream copies every top-level value from src to w as JSON Lines through
// an in-memory buffer. Top-level arrays are streamed element by element so
// arbitrarily long arrays need only about FlushBytes of memory. ctx is
// checked between elements.
func Stream(ctx context.Context, w io.Writer, src Source, opt Options) (Stats, error) {
	limit := opt.FlushBytes
	if limit <= 0 {
		limit = DefaultFlushBytes
	}
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}

	var (
		buf   bytes.Buffer
		stats Stats
	)
	flush := func(force bool) error {
		if buf.Len() == 0 || (!force && buf.Len() < limit) {
			return nil
		}
		n, err := buf.WriteTo(w)
		stats.Bytes += n
		stats.Flushes++
		log.Debug().Int64("bytes", n).Int("elements", stats.Elements).Msg("flushed")
		return errors.Wrap(err, "transcode: flush")
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		if stats.Values > 0 {
			buf.WriteByte('\n')
		}
		stats.Values++

		if tok.Kind != KindBeginArray {
			if err := copyValue(&buf, src, tok); err != nil {
				return stats, err
			}
		} else {
			arr, err := jw.BeginArray(&buf)
			if err != nil {
				return stats, err
			}
			err = copyElements(src, arr, func() error {
				stats.Elements++
				if err := ctx.Err(); err != nil {
					return err
				}
				return flush(false)
			})
			if err != nil {
				arr.Close()
				return stats, err
			}
			if err := arr.End(); err != nil {
				return stats, err
			}
		}
		if err := flush(false); err != nil {
			return stats, err
		}
	}
	if err := flush(true); err != nil {
		return stats, err
	}
	log.Debug().Int("values", stats.Values).Int64("bytes", stats.Bytes).Msg("stream done")
	return stats, nil
}

func copyValue(sink jw.Sink, src Source, tok Token) error {
	switch tok.Kind {
	case KindBeginObject:
		obj, err := jw.BeginObject(sink)
		if err != nil {
			return err
		}
		defer obj.Close()
		if err := copyMembers(src, obj); err != nil {
			return err
		}
		return obj.End()
	case KindBeginArray:
		arr, err := jw.BeginArray(sink)
		if err != nil {
			return err
		}
		defer arr.Close()
		if err := copyElements(src, arr, nil); err != nil {
			return err
		}
		return arr.End()
	case KindString:
		return jw.EncodeInto(sink, tok.String)
	case KindNumber:
		return jw.EncodeInto(sink, jw.Number(tok.Number))
	case KindBool:
		return jw.EncodeInto(sink, tok.Bool)
	case KindNull:
		return jw.EncodeInto(sink, jw.Null{})
	}
	return unexpected(src, tok, "value")
}

// copyMembers copies members up to and including the closing brace.
// Nested writers left open on error are closed by the caller's Close.
func copyMembers(src Source, obj *jw.ObjectWriter) error {
	for {
		tok, err := next(src)
		if err != nil {
			return err
		}
		if tok.Kind == KindEndObject {
			return nil
		}
		if tok.Kind != KindKey {
			return unexpected(src, tok, "key")
		}
		key := tok.String
		val, err := next(src)
		if err != nil {
			return err
		}
		switch val.Kind {
		case KindBeginObject:
			child, err := obj.Object(key)
			if err == nil {
				err = copyMembers(src, child)
			}
			if err == nil {
				err = child.End()
			}
			if err != nil {
				return err
			}
		case KindBeginArray:
			child, err := obj.Array(key)
			if err == nil {
				err = copyElements(src, child, nil)
			}
			if err == nil {
				err = child.End()
			}
			if err != nil {
				return err
			}
		case KindString:
			err = obj.String(key, val.String)
		case KindNumber:
			err = obj.Member(key, jw.Number(val.Number))
		case KindBool:
			err = obj.Bool(key, val.Bool)
		case KindNull:
			err = obj.Null(key)
		default:
			err = unexpected(src, val, "value")
		}
		if err != nil {
			return err
		}
	}
}

// copyElements copies elements up to and including the closing bracket,
// calling each (when non-nil) after every complete element.
func copyElements(src Source, arr *jw.ArrayWriter, each func() error) error {
	for {
		tok, err := next(src)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindEndArray:
			return nil
		case KindBeginObject:
			child, err := arr.Object()
			if err == nil {
				err = copyMembers(src, child)
			}
			if err == nil {
				err = child.End()
			}
			if err != nil {
				return err
			}
		case KindBeginArray:
			child, err := arr.Array()
			if err == nil {
				err = copyElements(src, child, nil)
			}
			if err == nil {
				err = child.End()
			}
			if err != nil {
				return err
			}
		case KindString:
			err = arr.String(tok.String)
		case KindNumber:
			err = arr.Value(jw.Number(tok.Number))
		case KindBool:
			err = arr.Bool(tok.Bool)
		case KindNull:
			err = arr.Null()
		default:
			err = unexpected(src, tok, "value")
		}
		if err == nil && each != nil {
			err = each()
		}
		if err != nil {
			return err
		}
	}
}

// next reads a token inside a value, where EOF means truncated input.
func next(src Source) (Token, error) {
	tok, err := src.NextToken()
	if errors.Is(err, io.EOF) {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}

func unexpected(src Source, tok Token, want string) error {
	return errors.Errorf("transcode: unexpected %s token, want %s (offset %d)", tok.Kind, want, src.Location())
}
