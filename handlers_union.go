package schemagen

import (
	"errors"
	"fmt"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// choiceSchema generates one union member. skip is true when the member
// asked to be omitted or cannot be represented; the latter is reported as a
// skipped-choice warning.
func (g *Generator) choiceSchema(n ir.Node) (s *js.Schema, skip bool, err error) {
	s, err = g.GenerateInner(n)
	switch {
	case err == nil:
		return s, false, nil
	case errors.Is(err, ir.ErrOmit):
		return nil, true, nil
	}
	var inv *InvalidForSchemaError
	if errors.As(err, &inv) {
		g.EmitWarning(WarningSkippedChoice, inv.Error())
		return nil, true, nil
	}
	return nil, false, err
}

// flattenedAnyOf merges nested single-key anyOf members, drops duplicates
// and unwraps a single survivor.
func flattenedAnyOf(schemas []*js.Schema) *js.Schema {
	members := make([]*js.Schema, 0, len(schemas))
	for _, s := range schemas {
		if inner, ok := s.Get("anyOf"); ok && s.Len() == 1 {
			if list, ok := inner.([]any); ok {
				for _, m := range list {
					if ms, ok := m.(*js.Schema); ok {
						members = append(members, ms)
					}
				}
				continue
			}
		}
		members = append(members, s)
	}
	members = js.Dedupe(members)
	if len(members) == 1 {
		return members[0]
	}
	return js.FromPairs("anyOf", js.List(members...))
}

func nullableSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	null := js.FromPairs("type", "null")
	inner, err := g.GenerateInner(n.(*ir.Nullable).Schema)
	if err != nil {
		return nil, err
	}
	if inner.Equal(null) {
		return null, nil
	}
	return flattenedAnyOf([]*js.Schema{inner, null}), nil
}

func unionSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	var generated []*js.Schema
	for _, c := range n.(*ir.Union).Choices {
		s, skip, err := g.choiceSchema(c.Schema)
		if err != nil {
			return nil, err
		}
		if !skip {
			generated = append(generated, s)
		}
	}
	if len(generated) == 1 {
		return generated[0], nil
	}
	return flattenedAnyOf(generated), nil
}

func taggedUnionSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.TaggedUnion)
	var tags []string
	generated := map[string]*js.Schema{}
	for _, c := range t.Choices {
		s, skip, err := g.choiceSchema(c.Schema)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		tag := fmt.Sprint(c.Tag)
		if _, dup := generated[tag]; !dup {
			tags = append(tags, tag)
		}
		generated[tag] = s.ShallowCopy()
	}
	choices := make([]*js.Schema, 0, len(tags))
	for _, tag := range tags {
		choices = append(choices, generated[tag])
	}
	choices = js.Dedupe(choices)
	s := js.FromPairs("oneOf", js.List(choices...))
	prop, err := g.discriminatorProperty(t.Discriminator, choices)
	if err != nil {
		return nil, err
	}
	if prop != "" {
		mapping := js.New()
		for _, tag := range tags {
			v := generated[tag]
			if ref, ok := v.Ref(); ok {
				mapping.Set(tag, ref)
			} else {
				mapping.Set(tag, v)
			}
		}
		s.Set("discriminator", js.FromPairs("propertyName", prop, "mapping", mapping))
	}
	return s, nil
}

// discriminatorProperty names the property that carries the tag, or "" when
// none can be inferred. Among alias paths, the first single-key path present
// on every choice wins.
func (g *Generator) discriminatorProperty(d ir.Discriminator, choices []*js.Schema) (string, error) {
	if d.Func {
		return "", nil
	}
	if d.Field != "" {
		return d.Field, nil
	}
	for _, path := range d.Paths {
		if len(path) != 1 {
			continue
		}
		alias, ok := path[0].(string)
		if !ok {
			continue
		}
		onAll := true
		for _, c := range choices {
			resolved, err := g.followRefs(c)
			if err != nil {
				return "", err
			}
			props, _ := resolved.Get("properties")
			ps, ok := props.(*js.Schema)
			if !ok || !ps.Has(alias) {
				onAll = false
				break
			}
		}
		if onAll {
			return alias, nil
		}
	}
	return "", nil
}

// followRefs resolves a chain of "$ref"s. A pointer to a definition still
// being generated resolves to an empty fragment.
func (g *Generator) followRefs(s *js.Schema) (*js.Schema, error) {
	seen := map[string]bool{}
	for {
		ref, ok := s.Ref()
		if !ok || seen[ref] {
			return s, nil
		}
		seen[ref] = true
		def, found, err := g.definitionFor(ref)
		if err != nil {
			return nil, err
		}
		if !found {
			return js.New(), nil
		}
		s = def
	}
}

func chainSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	steps := n.(*ir.Chain).Steps
	if len(steps) == 0 {
		return nil, invalidf("an empty chain")
	}
	if g.Mode() == ir.ModeSerialization {
		return g.GenerateInner(steps[len(steps)-1])
	}
	return g.GenerateInner(steps[0])
}

func laxOrStrictSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.LaxOrStrict)
	if t.UseStrict {
		return g.GenerateInner(t.Strict)
	}
	return g.GenerateInner(t.Lax)
}

func jsonOrPythonSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	return g.GenerateInner(n.(*ir.JSONOrPython).JSON)
}
