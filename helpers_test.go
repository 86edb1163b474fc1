package schemagen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func ptr[T any](v T) *T { return &v }

func ref(r string) ir.Base { return ir.Base{Ref: r} }

// generate compiles root with a fresh generator and fails the test on error.
func generate(t *testing.T, root ir.Node, mode ir.Mode, cfg Config) *js.Schema {
	t.Helper()
	g, err := New(cfg)
	require.NoError(t, err)
	s, err := g.Generate(root, mode)
	require.NoError(t, err)
	return s
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := js.MarshalIndent(v, "", "")
	require.NoError(t, err)
	return string(raw)
}

func requireJSON(t *testing.T, want string, got *js.Schema) {
	t.Helper()
	raw, err := got.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, want, string(raw))
}

func get(t *testing.T, s *js.Schema, path ...string) any {
	t.Helper()
	var cur any = s
	for _, p := range path {
		obj, ok := cur.(*js.Schema)
		require.True(t, ok, "%s is not an object", p)
		v, ok := obj.Get(p)
		require.True(t, ok, "missing key %q", p)
		cur = v
	}
	return cur
}

func defsOf(t *testing.T, doc *js.Schema) *js.Schema {
	t.Helper()
	v, ok := doc.Get("$defs")
	if !ok {
		return js.New()
	}
	return v.(*js.Schema)
}

// requireClosedDefs checks that every "$ref" resolves into "$defs" and
// every definition is reachable from the document body.
func requireClosedDefs(t *testing.T, doc *js.Schema) {
	t.Helper()
	table := defsOf(t, doc)
	body := doc.ShallowCopy()
	body.Delete("$defs")

	for r := range js.CollectRefs(doc) {
		name, ok := strings.CutPrefix(r, "#/$defs/")
		require.True(t, ok, "unexpected ref %s", r)
		require.True(t, table.Has(name), "dangling ref %s", r)
	}

	reached := map[string]bool{}
	stack := []any{body}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for r := range js.CollectRefs(cur) {
			name := strings.TrimPrefix(r, "#/$defs/")
			if reached[name] {
				continue
			}
			reached[name] = true
			def, _ := table.Get(name)
			stack = append(stack, def)
		}
	}
	for _, k := range table.Keys() {
		require.True(t, reached[k], "unreachable definition %s", k)
	}
}

func model(coreRef, name string, fields ...*ir.ModelField) *ir.Model {
	return &ir.Model{
		Base:   ref(coreRef),
		Class:  ir.Class{Name: name},
		Schema: &ir.ModelFields{Fields: fields},
	}
}

func field(name string, schema ir.Node) *ir.ModelField {
	return &ir.ModelField{Name: name, Schema: schema}
}
