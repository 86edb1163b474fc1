package schemagen

import (
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// Ready-made transformers for ir.Metadata. Each returns a fresh fragment
// and leaves the one produced by next untouched.

// WithSchema replaces the fragment with a fixed schema in the given mode
// ("" for both). A nil schema omits the node from its parent.
func WithSchema(s *js.Schema, mode ir.Mode) ir.Transformer {
	return func(n ir.Node, next ir.Handler) (*js.Schema, error) {
		if mode != "" && next.Mode() != mode {
			return next.Generate(n)
		}
		if s == nil {
			return nil, ir.ErrOmit
		}
		return s.Clone(), nil
	}
}

// Examples appends example values to the fragment's "examples" list.
func Examples(mode ir.Mode, examples ...any) ir.Transformer {
	return func(n ir.Node, next ir.Handler) (*js.Schema, error) {
		s, err := next.Generate(n)
		if err != nil || (mode != "" && next.Mode() != mode) {
			return s, err
		}
		out := s.ShallowCopy()
		var list []any
		if prev, ok := out.Get("examples"); ok {
			list, _ = prev.([]any)
		}
		list = append([]any(nil), list...)
		for _, e := range examples {
			list = append(list, js.Normalize(e))
		}
		out.Set("examples", list)
		return out, nil
	}
}

// Skip omits the node from its parent's schema.
func Skip() ir.Transformer {
	return func(ir.Node, ir.Handler) (*js.Schema, error) { return nil, ir.ErrOmit }
}

// Patch merges fixed keys into the fragment.
func Patch(p *js.Schema) ir.Transformer {
	return func(n ir.Node, next ir.Handler) (*js.Schema, error) {
		s, err := next.Generate(n)
		if err != nil {
			return nil, err
		}
		out := s.ShallowCopy()
		out.Update(p.Clone())
		return out, nil
	}
}
