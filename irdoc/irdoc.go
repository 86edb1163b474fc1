// Package irdoc reads IR graphs from data documents in JSON, YAML or
// msgpack. A node is an object with a "type" tag and snake_case attributes;
// ordered collections such as fields and union choices are lists. Errors
// name the offending position as a JSON pointer.
package irdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// ErrUnknownType is wrapped by the PathError of a node with an unknown tag.
var ErrUnknownType = errors.New("unknown node type")

// PathError is a malformed node. Doc is the 1-based document number within
// a YAML stream, or 0 for single-document input.
type PathError struct {
	Doc     int
	Pointer string
	Err     error
}

func (e *PathError) Error() string {
	ptr := e.Pointer
	if ptr == "" {
		ptr = "/"
	}
	if e.Doc > 0 {
		return fmt.Sprintf("irdoc: document %d: %s: %v", e.Doc, ptr, e.Err)
	}
	return fmt.Sprintf("irdoc: %s: %v", ptr, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Decode reads a document holding exactly one root node.
func Decode(data []byte, f Format) (ir.Node, Diag, error) {
	d := &simpleDiag{}
	docs, err := readDocuments(data, f)
	if err != nil {
		return nil, d, err
	}
	if len(docs) != 1 {
		return nil, d, fmt.Errorf("irdoc: expected one document, got %d", len(docs))
	}
	dec := &decoder{diag: d}
	n, err := dec.node(docs[0], "")
	return n, d, err
}

// DecodeValue builds a node from an already decoded value, as produced by
// jsonschema.DecodeJSON.
func DecodeValue(v any) (ir.Node, Diag, error) {
	d := &simpleDiag{}
	dec := &decoder{diag: d}
	n, err := dec.node(v, "")
	return n, d, err
}

// DecodeInputs reads the roots of a batched generation. A document is
// either {"inputs": [...]} or a single input; a YAML stream may hold
// several documents. Each input is {"key", "mode", "schema"}.
func DecodeInputs(data []byte, f Format) ([]schemagen.Input, Diag, error) {
	d := &simpleDiag{}
	docs, err := readDocuments(data, f)
	if err != nil {
		return nil, d, err
	}
	var out []schemagen.Input
	for i, doc := range docs {
		dec := &decoder{diag: d}
		if len(docs) > 1 {
			dec.doc = i + 1
		}
		s, ok := doc.(*js.Schema)
		if !ok {
			return nil, d, dec.errorf("", "expected an object, got %s", kindOf(doc))
		}
		o := dec.obj(s, "")
		if list, ok := o.list("inputs"); ok {
			for j, v := range list {
				in, err := dec.input(v, js.JoinPointer("", "inputs", j))
				if err != nil {
					return nil, d, err
				}
				out = append(out, in)
			}
			o.finish()
			if o.err != nil {
				return nil, d, o.err
			}
			continue
		}
		if o.err != nil {
			return nil, d, o.err
		}
		in, err := dec.input(s, "")
		if err != nil {
			return nil, d, err
		}
		out = append(out, in)
	}
	return out, d, nil
}

func (d *decoder) input(v any, ptr string) (schemagen.Input, error) {
	s, ok := v.(*js.Schema)
	if !ok {
		return schemagen.Input{}, d.errorf(ptr, "expected an input object, got %s", kindOf(v))
	}
	o := d.obj(s, ptr)
	in := schemagen.Input{Key: o.str("key")}
	if in.Key == "" && o.err == nil {
		o.fail("key", "an input needs a key")
	}
	in.Mode = o.mode("mode")
	if in.Mode == "" {
		in.Mode = ir.ModeValidation
	}
	in.Schema = o.node("schema")
	o.finish()
	return in, o.err
}

// readDocuments decodes raw bytes into ordered values, one per document.
func readDocuments(data []byte, f Format) ([]any, error) {
	switch f {
	case FormatJSON:
		v, err := js.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("irdoc: invalid JSON: %w", err)
		}
		return []any{v}, nil
	case FormatMsgpack:
		v, err := js.DecodeMsgpack(data)
		if err != nil {
			return nil, fmt.Errorf("irdoc: invalid msgpack: %w", err)
		}
		return []any{v}, nil
	case FormatYAML:
		return readYAMLStream(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("irdoc: unsupported format %q", f)
}

// readYAMLStream decodes every document of a YAML stream, rejecting
// duplicate mapping keys. Empty documents are skipped.
func readYAMLStream(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var out []any
	for {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("irdoc: invalid YAML: %w", err)
		}
		if len(root.Content) == 0 {
			continue
		}
		v, err := js.FromYAMLNode(&root)
		if err != nil {
			return nil, fmt.Errorf("irdoc: document %d: %w", len(out)+1, err)
		}
		out = append(out, v)
	}
}
