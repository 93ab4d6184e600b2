// Package transcode re-emits documents read from token sources as compact
// JSON through jsonwriter builders. JSON input is tokenized with
// goccy/go-json and YAML input with yaml.v3.
package transcode

import (
	"bytes"
	"io"
	"sync"
)

// Kind enumerates token kinds.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{"begin_object", "end_object", "begin_array", "end_array", "key", "string", "number", "bool", "null"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Token is one element of a token stream. Number holds the source text of
// a number so no precision is lost in transit.
type Token struct {
	Kind   Kind
	String string // key and string tokens
	Number string
	Bool   bool
	Offset int64 // byte offset when known, -1 otherwise
}

// Source yields tokens of zero or more top-level values and io.EOF after
// the last one.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// Driver turns JSON input into a Source. The default is backed by
// goccy/go-json and may be swapped with SetDriver.
type Driver interface {
	NewReader(r io.Reader) Source
	Name() string
}

var (
	driverMu      sync.RWMutex
	currentDriver Driver = goJSONDriver{}
)

// SetDriver replaces the global JSON driver; nil is ignored.
func SetDriver(d Driver) {
	if d == nil {
		return
	}
	driverMu.Lock()
	currentDriver = d
	driverMu.Unlock()
}

// UseDefaultDriver restores the goccy/go-json driver.
func UseDefaultDriver() {
	driverMu.Lock()
	currentDriver = goJSONDriver{}
	driverMu.Unlock()
}

// CurrentDriver returns the driver used by JSON and JSONBytes.
func CurrentDriver() Driver {
	driverMu.RLock()
	d := currentDriver
	driverMu.RUnlock()
	return d
}

// JSON returns a Source over the JSON values in r.
func JSON(r io.Reader) Source { return CurrentDriver().NewReader(r) }

// JSONBytes returns a Source over the JSON values in b.
func JSONBytes(b []byte) Source { return JSON(bytes.NewReader(b)) }
