package schemagen

import (
	"fmt"
	"math"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func anySchema(*Generator, ir.Node) (*js.Schema, error) { return js.New(), nil }

func noneSchema(*Generator, ir.Node) (*js.Schema, error) { return js.FromPairs("type", "null"), nil }

func boolSchema(*Generator, ir.Node) (*js.Schema, error) {
	return js.FromPairs("type", "boolean"), nil
}

func intSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Int)
	s := js.FromPairs("type", "integer")
	setInt64(s, "multipleOf", t.MultipleOf)
	setInt64(s, "maximum", t.Le)
	setInt64(s, "minimum", t.Ge)
	setInt64(s, "exclusiveMaximum", t.Lt)
	setInt64(s, "exclusiveMinimum", t.Gt)
	return s, nil
}

func floatSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Float)
	return numberSchema(t.MultipleOf, t.Le, t.Ge, t.Lt, t.Gt), nil
}

// numberSchema drops infinite bounds; they carry no constraint.
func numberSchema(multipleOf, le, ge, lt, gt *float64) *js.Schema {
	s := js.FromPairs("type", "number")
	setFinite(s, "multipleOf", multipleOf)
	setFinite(s, "maximum", le)
	setFinite(s, "minimum", ge)
	setFinite(s, "exclusiveMaximum", lt)
	setFinite(s, "exclusiveMinimum", gt)
	return s
}

func decimalSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Decimal)
	if g.Mode() == ir.ModeSerialization {
		return js.FromPairs("type", "string"), nil
	}
	return js.FromPairs("anyOf", js.List(
		numberSchema(t.MultipleOf, t.Le, t.Ge, t.Lt, t.Gt),
		js.FromPairs("type", "string"),
	)), nil
}

func stringSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.String)
	s := js.FromPairs("type", "string")
	setInt(s, "minLength", t.MinLength)
	setInt(s, "maxLength", t.MaxLength)
	if t.Pattern != "" {
		s.Set("pattern", t.Pattern)
	}
	return s, nil
}

func bytesSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Bytes)
	format := "binary"
	if g.serJSONBytes() == "base64" {
		format = "base64url"
	}
	s := js.FromPairs("type", "string", "format", format)
	setInt(s, "minLength", t.MinLength)
	setInt(s, "maxLength", t.MaxLength)
	return s, nil
}

func dateSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Date)
	s := js.FromPairs("type", "string", "format", "date")
	for _, b := range []struct {
		key string
		v   any
	}{{"maximum", t.Le}, {"minimum", t.Ge}, {"exclusiveMaximum", t.Lt}, {"exclusiveMinimum", t.Gt}} {
		if b.v != nil {
			s.Set(b.key, js.Normalize(b.v))
		}
	}
	return s, nil
}

func timeSchema(*Generator, ir.Node) (*js.Schema, error) {
	return js.FromPairs("type", "string", "format", "time"), nil
}

func datetimeSchema(*Generator, ir.Node) (*js.Schema, error) {
	return js.FromPairs("type", "string", "format", "date-time"), nil
}

func timedeltaSchema(g *Generator, _ ir.Node) (*js.Schema, error) {
	if g.serJSONTimedelta() == "float" {
		return js.FromPairs("type", "number"), nil
	}
	return js.FromPairs("type", "string", "format", "duration"), nil
}

func literalSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Literal)
	values := make([]any, 0, len(t.Expected))
	for _, v := range t.Expected {
		enc, err := g.encodeDefault(v)
		if err != nil {
			return nil, invalidf("literal value %v: %v", v, err)
		}
		values = append(values, enc)
	}
	s := js.FromPairs("enum", values)
	if len(values) == 1 {
		s = js.FromPairs("const", values[0], "enum", values)
	}
	if typ := jsonTypeOf(values); typ != "" {
		s.Set("type", typ)
	}
	return s, nil
}

func enumSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Enum)
	values := make([]any, 0, len(t.Members))
	for _, v := range t.Members {
		enc, err := g.encodeDefault(v)
		if err != nil {
			return nil, invalidf("enum %s member %v: %v", t.Name, v, err)
		}
		values = append(values, enc)
	}
	s := js.FromPairs("title", t.Name)
	if t.Description != "" {
		s.Set("description", t.Description)
	}
	s.Set("enum", values)
	if len(values) == 1 {
		s.Set("const", values[0])
	}
	switch t.SubType {
	case "str":
		s.Set("type", "string")
	case "int":
		s.Set("type", "integer")
	case "float":
		s.Set("type", "number")
	default:
		if typ := jsonTypeOf(values); typ != "" {
			s.Set("type", typ)
		}
	}
	return s, nil
}

// jsonTypeOf returns the JSON type shared by all values, or "" when they
// disagree. Integers and floats mixed together are "number".
func jsonTypeOf(values []any) string {
	seen := map[string]bool{}
	for _, v := range values {
		seen[jsonType(v)] = true
	}
	switch {
	case len(seen) == 1:
		for k := range seen {
			return k
		}
	case len(seen) == 2 && seen["integer"] && seen["number"]:
		return "number"
	}
	return ""
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case []any:
		return "array"
	case *js.Schema:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func isInstanceSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	return nil, invalidf("is-instance[%s]", n.(*ir.IsInstance).Class)
}

func isSubclassSchema(*Generator, ir.Node) (*js.Schema, error) { return js.New(), nil }

func callableSchema(*Generator, ir.Node) (*js.Schema, error) {
	return nil, invalidf("callable")
}

func urlSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	s := js.FromPairs("type", "string", "format", "uri", "minLength", 1)
	setInt(s, "maxLength", n.(*ir.URL).MaxLength)
	return s, nil
}

func multiHostURLSchema(_ *Generator, n ir.Node) (*js.Schema, error) {
	s := js.FromPairs("type", "string", "format", "multi-host-uri", "minLength", 1)
	setInt(s, "maxLength", n.(*ir.MultiHostURL).MaxLength)
	return s, nil
}

func uuidSchema(*Generator, ir.Node) (*js.Schema, error) {
	return js.FromPairs("type", "string", "format", "uuid"), nil
}

func setInt(s *js.Schema, key string, v *int) {
	if v != nil {
		s.Set(key, *v)
	}
}

func setInt64(s *js.Schema, key string, v *int64) {
	if v != nil {
		s.Set(key, *v)
	}
}

func setFinite(s *js.Schema, key string, v *float64) {
	if v != nil && !math.IsInf(*v, 0) && !math.IsNaN(*v) {
		s.Set(key, *v)
	}
}
