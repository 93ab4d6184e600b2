package transcode

import (
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonwriter/internal/numfmt"
)

// maxAliasExpansions bounds how many aliases one document may expand.
const maxAliasExpansions = 1 << 20

// YAML returns a Source over the documents of a multi-document YAML stream.
// Mapping order is preserved. Aliases are expanded; merge keys are written
// as ordinary "<<" members. An alias to one of its own enclosing nodes is an
// error, as is a document expanding more than maxAliasExpansions aliases.
func YAML(r io.Reader) Source { return &yamlSource{dec: yaml.NewDecoder(r)} }

type yamlSource struct {
	dec     *yaml.Decoder
	stack   []yamlFrame
	aliases int
}

type yamlFrame struct {
	node *yaml.Node
	next int
}

// Location is unknown for YAML input; errors carry line numbers instead.
func (s *yamlSource) Location() int64 { return -1 }

func (s *yamlSource) NextToken() (Token, error) {
	for {
		if len(s.stack) == 0 {
			var doc yaml.Node
			if err := s.dec.Decode(&doc); err != nil {
				if errors.Is(err, io.EOF) {
					return Token{}, io.EOF
				}
				return Token{}, errors.Wrap(err, "transcode: yaml")
			}
			s.aliases = 0
			root := &doc
			if doc.Kind == yaml.DocumentNode {
				if len(doc.Content) == 0 {
					continue
				}
				root = doc.Content[0]
			}
			return s.enter(root)
		}

		top := &s.stack[len(s.stack)-1]
		n := top.node
		if top.next >= len(n.Content) {
			s.stack = s.stack[:len(s.stack)-1]
			if n.Kind == yaml.MappingNode {
				return Token{Kind: KindEndObject, Offset: -1}, nil
			}
			return Token{Kind: KindEndArray, Offset: -1}, nil
		}
		child := n.Content[top.next]
		top.next++
		if n.Kind == yaml.MappingNode && top.next%2 == 1 {
			return s.key(child)
		}
		return s.enter(child)
	}
}

func (s *yamlSource) key(n *yaml.Node) (Token, error) {
	n, err := s.resolve(n)
	if err != nil {
		return Token{}, err
	}
	if n.Kind != yaml.ScalarNode {
		return Token{}, errors.Errorf("transcode: yaml line %d: mapping keys must be scalars", n.Line)
	}
	return Token{Kind: KindKey, String: n.Value, Offset: -1}, nil
}

func (s *yamlSource) enter(n *yaml.Node) (Token, error) {
	alias := n
	n, err := s.resolve(n)
	if err != nil {
		return Token{}, err
	}
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		if alias != n && s.open(n) {
			return Token{}, errors.Errorf("transcode: yaml line %d: alias %q refers to an enclosing node", alias.Line, alias.Value)
		}
		s.stack = append(s.stack, yamlFrame{node: n})
		if n.Kind == yaml.MappingNode {
			return Token{Kind: KindBeginObject, Offset: -1}, nil
		}
		return Token{Kind: KindBeginArray, Offset: -1}, nil
	case yaml.ScalarNode:
		return scalarToken(n)
	}
	return Token{}, errors.Errorf("transcode: yaml line %d: unsupported node kind %d", n.Line, n.Kind)
}

// resolve follows aliases to the anchored node, counting each expansion.
func (s *yamlSource) resolve(n *yaml.Node) (*yaml.Node, error) {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		s.aliases++
		if s.aliases > maxAliasExpansions {
			return nil, errors.Errorf("transcode: yaml line %d: too many alias expansions", n.Line)
		}
		n = n.Alias
	}
	return n, nil
}

// open reports whether n is one of the nodes currently being walked.
func (s *yamlSource) open(n *yaml.Node) bool {
	for i := range s.stack {
		if s.stack[i].node == n {
			return true
		}
	}
	return false
}

// scalarToken maps a resolved YAML scalar onto a JSON token.
func scalarToken(n *yaml.Node) (Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return Token{Kind: KindNull, Offset: -1}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Token{}, errors.Wrapf(err, "transcode: yaml line %d", n.Line)
		}
		return Token{Kind: KindBool, Bool: b, Offset: -1}, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Token{Kind: KindNumber, Number: strconv.FormatInt(i, 10), Offset: -1}, nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return Token{Kind: KindNumber, Number: strconv.FormatUint(u, 10), Offset: -1}, nil
		}
		// Out of range for 64 bits: keep the text.
		return Token{Kind: KindString, String: n.Value, Offset: -1}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Token{}, errors.Wrapf(err, "transcode: yaml line %d", n.Line)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Token{Kind: KindNull, Offset: -1}, nil
		}
		return Token{Kind: KindNumber, Number: string(numfmt.AppendFloat(nil, f, 64)), Offset: -1}, nil
	}
	return Token{Kind: KindString, String: n.Value, Offset: -1}, nil
}
