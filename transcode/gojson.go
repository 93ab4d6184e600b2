package transcode

import (
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &goJSONSource{dec: dec}
}

func (goJSONDriver) Name() string { return "go-json" }

// goJSONSource tells keys from string values by tracking, per open
// container, whether an object expects a key next.
type goJSONSource struct {
	dec   *json.Decoder
	stack []goJSONFrame
}

type goJSONFrame struct {
	object       bool
	expectingKey bool
}

func (s *goJSONSource) Location() int64 { return s.dec.InputOffset() }

// valueDone marks the value of the enclosing object's member as consumed.
func (s *goJSONSource) valueDone() {
	if n := len(s.stack); n > 0 {
		if top := &s.stack[n-1]; top.object {
			top.expectingKey = true
		}
	}
}

func (s *goJSONSource) NextToken() (Token, error) {
	off := s.dec.InputOffset()
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			if len(s.stack) > 0 {
				return Token{}, io.ErrUnexpectedEOF
			}
			return Token{}, io.EOF
		}
		return Token{}, errors.Wrapf(err, "transcode: json token at offset %d", off)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, goJSONFrame{object: true, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, goJSONFrame{})
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			if v == '}' {
				return Token{Kind: KindEndObject, Offset: off}, nil
			}
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			if top := &s.stack[n-1]; top.object && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case json.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case nil:
		s.valueDone()
		return Token{Kind: KindNull, Offset: off}, nil
	}
	return Token{}, errors.Errorf("transcode: unexpected json token %T at offset %d", tok, off)
}
