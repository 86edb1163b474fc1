package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// UnmarshalJSON decodes a JSON object keeping the document's key order.
func (s *Schema) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	out, ok := v.(*Schema)
	if !ok {
		return fmt.Errorf("jsonschema: expected object, got %T", v)
	}
	*s = *out
	return nil
}

// DecodeJSON decodes any JSON value. Objects become *Schema with document
// key order, numbers become int64 when integral and float64 otherwise. A key
// repeated within one object is a *DuplicateKeyError.
func DecodeJSON(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("jsonschema: trailing data after JSON value")
	}
	return v, nil
}

// DuplicateKeyError reports a key that appears twice in one object. Line
// and column positions are known for YAML input only.
type DuplicateKeyError struct {
	Key                 string
	Pointer             string
	Line, Col           int
	FirstLine, FirstCol int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("jsonschema: duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("jsonschema: duplicate key %q in object at %q", e.Key, e.Pointer)
}

func decodeValue(dec *j.Decoder, ptr string) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case j.Delim:
		switch t {
		case '{':
			s := New()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("jsonschema: object key must be a string, got %T", kt)
				}
				if s.Has(key) {
					return nil, &DuplicateKeyError{Key: key, Pointer: ptr}
				}
				v, err := decodeValue(dec, JoinPointer(ptr, key))
				if err != nil {
					return nil, err
				}
				s.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return s, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec, JoinPointer(ptr, len(arr)))
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("jsonschema: unexpected delimiter %q", t)
	case j.Number:
		return parseNumber(string(t))
	default:
		// string, bool, nil
		return t, nil
	}
}

// JoinPointer appends reference tokens (strings or ints) to a JSON pointer.
func JoinPointer(base string, tokens ...any) string {
	var b strings.Builder
	b.WriteString(base)
	for _, tok := range tokens {
		b.WriteByte('/')
		switch t := tok.(type) {
		case string:
			b.WriteString(pointerEscaper.Replace(t))
		default:
			fmt.Fprint(&b, t)
		}
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: invalid number %q", s)
	}
	return f, nil
}

// MarshalYAML emits a mapping node in insertion order.
func (s *Schema) MarshalYAML() (any, error) {
	return toYAMLNode(s)
}

func toYAMLNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Schema:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		for _, k := range t.keys {
			vn, err := toYAMLNode(t.vals[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range t {
			vn, err := toYAMLNode(it)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, vn)
		}
		return n, nil
	case map[string]any:
		return toYAMLNode(FromMap(t))
	default:
		n := &yaml.Node{}
		if err := n.Encode(t); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// UnmarshalYAML decodes a YAML mapping keeping the document's key order.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromYAMLNode(node)
	if err != nil {
		return err
	}
	out, ok := v.(*Schema)
	if !ok {
		return fmt.Errorf("jsonschema: expected mapping at line %d", node.Line)
	}
	*s = *out
	return nil
}

// FromYAMLNode converts a decoded yaml.v3 node into JSON-compatible values,
// turning mappings into *Schema with document key order.
func FromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(node.Alias)
	case yaml.MappingNode:
		s := New()
		first := make(map[string]*yaml.Node, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			kn, vn := node.Content[i], node.Content[i+1]
			if kn.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("jsonschema: non-scalar mapping key at line %d", kn.Line)
			}
			if prev, dup := first[kn.Value]; dup {
				return nil, &DuplicateKeyError{
					Key:       kn.Value,
					Line:      kn.Line,
					Col:       kn.Column,
					FirstLine: prev.Line,
					FirstCol:  prev.Column,
				}
			}
			first[kn.Value] = kn
			v, err := FromYAMLNode(vn)
			if err != nil {
				return nil, err
			}
			s.Set(kn.Value, v)
		}
		return s, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case float64:
			if math.IsInf(n, 0) || math.IsNaN(n) {
				return nil, fmt.Errorf("jsonschema: non-finite number at line %d", node.Line)
			}
			return n, nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported YAML node kind %d", node.Kind)
}
