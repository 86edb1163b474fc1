package schemagen

import (
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// itemsSchema generates a homogeneous item schema; a missing one means any.
func (g *Generator) itemsSchema(items ir.Node) (*js.Schema, error) {
	if items == nil {
		return js.New(), nil
	}
	return g.GenerateInner(items)
}

func arraySchema(g *Generator, items ir.Node, minLen, maxLen *int) (*js.Schema, error) {
	it, err := g.itemsSchema(items)
	if err != nil {
		return nil, err
	}
	s := js.FromPairs("type", "array", "items", it)
	setInt(s, "minItems", minLen)
	setInt(s, "maxItems", maxLen)
	return s, nil
}

func listSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.List)
	return arraySchema(g, t.Items, t.MinLength, t.MaxLength)
}

func generatorSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Generator)
	return arraySchema(g, t.Items, t.MinLength, t.MaxLength)
}

func setSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Set)
	return uniqueArraySchema(g, t.Items, t.MinLength, t.MaxLength)
}

func frozenSetSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.FrozenSet)
	return uniqueArraySchema(g, t.Items, t.MinLength, t.MaxLength)
}

func uniqueArraySchema(g *Generator, items ir.Node, minLen, maxLen *int) (*js.Schema, error) {
	it, err := g.itemsSchema(items)
	if err != nil {
		return nil, err
	}
	s := js.FromPairs("type", "array", "uniqueItems", true, "items", it)
	setInt(s, "minItems", minLen)
	setInt(s, "maxItems", maxLen)
	return s, nil
}

func tupleSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Tuple)
	s := js.FromPairs("type", "array")
	prefix := func(items []ir.Node) ([]any, error) {
		out := make([]any, 0, len(items))
		for _, it := range items {
			is, err := g.GenerateInner(it)
			if err != nil {
				return nil, err
			}
			out = append(out, is)
		}
		return out, nil
	}
	if t.VariadicIndex != nil {
		idx := *t.VariadicIndex
		if idx < 0 || idx >= len(t.Items) {
			return nil, invalidf("tuple with variadic index %d out of range for %d items", idx, len(t.Items))
		}
		if idx > 0 {
			items, err := prefix(t.Items[:idx])
			if err != nil {
				return nil, err
			}
			s.Set("minItems", idx)
			s.Set("prefixItems", items)
		}
		if idx+1 == len(t.Items) {
			rest, err := g.GenerateInner(t.Items[idx])
			if err != nil {
				return nil, err
			}
			s.Set("items", rest)
		} else {
			s.Set("items", true)
		}
	} else {
		items, err := prefix(t.Items)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			s.Set("prefixItems", items)
		}
		s.Set("minItems", len(items))
		s.Set("maxItems", len(items))
	}
	setInt(s, "minItems", t.MinLength)
	setInt(s, "maxItems", t.MaxLength)
	return s, nil
}

func dictSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Dict)
	s := js.FromPairs("type", "object")
	keys, values := js.New(), js.New()
	if t.Keys != nil {
		ks, err := g.GenerateInner(t.Keys)
		if err != nil {
			return nil, err
		}
		keys = ks.ShallowCopy()
	}
	pattern, hasPattern := keys.Pop("pattern")
	if t.Values != nil {
		vs, err := g.GenerateInner(t.Values)
		if err != nil {
			return nil, err
		}
		values = vs.ShallowCopy()
	}
	values.Delete("title")
	if values.Len() > 0 || hasPattern {
		if p, ok := pattern.(string); ok && hasPattern {
			s.Set("patternProperties", js.FromPairs(p, values))
		} else {
			s.Set("additionalProperties", values)
		}
	}
	setInt(s, "minProperties", t.MinLength)
	setInt(s, "maxProperties", t.MaxLength)
	return s, nil
}
