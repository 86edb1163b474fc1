package schemagen

import (
	"errors"
	"fmt"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func functionSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	switch t := n.(type) {
	case *ir.FunctionPlain:
		return nil, invalidf("a plain validator function (%s)", t.Function)
	}
	inner, ok := ir.InnerSchema(n)
	if !ok || inner == nil {
		return nil, invalidf("a validator function without an inner schema")
	}
	return g.GenerateInner(inner)
}

func defaultSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Default)
	s, err := g.GenerateInner(t.Schema)
	if err != nil {
		return nil, err
	}
	if !t.HasDefault {
		return s, nil
	}
	value := t.Default
	if g.Mode() == ir.ModeSerialization && t.Schema != nil {
		ser := ir.BaseOf(t.Schema).Serialization
		if ser != nil && ser.Kind == ir.SerFunctionPlain && ser.Function != nil && !ser.InfoArg {
			if value, err = ser.Function(value); err != nil {
				g.EmitWarning(WarningNonSerializableDefault, fmt.Sprintf("default value %v could not be serialized: %v", t.Default, err))
				return s, nil
			}
		}
	}
	encoded, err := g.encodeDefault(value)
	if err != nil {
		g.EmitWarning(WarningNonSerializableDefault,
			fmt.Sprintf("default value %v is not JSON serializable; excluding default from JSON schema", value))
		return s, nil
	}
	if s.Has("$ref") {
		return js.FromPairs("allOf", js.List(s), "default", encoded), nil
	}
	s = s.ShallowCopy()
	s.Set("default", encoded)
	return s, nil
}

func argumentsSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Arguments)
	var kwOnly, kwOrPos, posOnly []ir.Parameter
	for _, p := range t.Parameters {
		switch p.Mode {
		case ir.KeywordOnly:
			kwOnly = append(kwOnly, p)
		case ir.PositionalOnly:
			posOnly = append(posOnly, p)
		default:
			kwOrPos = append(kwOrPos, p)
		}
	}
	preferPositional := t.Meta.PreferPositionalArguments
	positionalPossible := len(kwOnly) == 0 && t.VarKwargs == nil
	keywordPossible := len(posOnly) == 0 && t.VarArgs == nil
	switch {
	case preferPositional && positionalPossible:
		return g.positionalArguments(append(posOnly, kwOrPos...), t.VarArgs)
	case keywordPossible:
		return g.keywordArguments(append(kwOrPos, kwOnly...), t.VarKwargs)
	case positionalPossible:
		return g.positionalArguments(append(posOnly, kwOrPos...), t.VarArgs)
	}
	return nil, invalidf("arguments with both positional-only and keyword-only parameters")
}

func (g *Generator) argumentName(p ir.Parameter) string {
	if g.ByAlias() && p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

func (g *Generator) argumentSchema(p ir.Parameter) (string, *js.Schema, error) {
	name := g.argumentName(p)
	s, err := g.GenerateInner(p.Schema)
	if err != nil {
		return "", nil, err
	}
	s = s.ShallowCopy()
	s.Set("title", titleFromName(name))
	return name, s, nil
}

func (g *Generator) keywordArguments(params []ir.Parameter, varKwargs ir.Node) (*js.Schema, error) {
	properties := js.New()
	var required []any
	for _, p := range params {
		name, s, err := g.argumentSchema(p)
		if err != nil {
			return nil, err
		}
		properties.Set(name, s)
		if !hasDefault(p.Schema) {
			required = append(required, name)
		}
	}
	s := js.FromPairs("type", "object", "properties", properties)
	if len(required) > 0 {
		s.Set("required", required)
	}
	if varKwargs != nil {
		extra, err := g.GenerateInner(varKwargs)
		if err != nil {
			return nil, err
		}
		if extra.Len() > 0 {
			s.Set("additionalProperties", extra)
		}
	} else {
		s.Set("additionalProperties", false)
	}
	return s, nil
}

func (g *Generator) positionalArguments(params []ir.Parameter, varArgs ir.Node) (*js.Schema, error) {
	prefix := make([]any, 0, len(params))
	minItems := 0
	for _, p := range params {
		_, s, err := g.argumentSchema(p)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, s)
		if !hasDefault(p.Schema) {
			minItems++
		}
	}
	s := js.FromPairs("type", "array", "prefixItems", prefix)
	if minItems > 0 {
		s.Set("minItems", minItems)
	}
	if varArgs != nil {
		items, err := g.GenerateInner(varArgs)
		if err != nil {
			return nil, err
		}
		if items.Len() > 0 {
			s.Set("items", items)
		}
	} else {
		s.Set("maxItems", len(prefix))
	}
	return s, nil
}

func callSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	return g.GenerateInner(n.(*ir.Call).Arguments)
}

func customErrorSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	return g.GenerateInner(n.(*ir.CustomError).Schema)
}

func jsonSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	var content ir.Node = &ir.Any{}
	if inner := n.(*ir.JSON).Schema; inner != nil {
		content = inner
	}
	s, err := g.GenerateInner(content)
	if err != nil {
		return nil, err
	}
	if g.Mode() == ir.ModeValidation {
		return js.FromPairs("type", "string", "contentMediaType", "application/json", "contentSchema", s), nil
	}
	return s, nil
}

// definitionsSchema generates each shared definition up front. One that
// cannot be represented is recorded and only fails generation if it is
// actually referenced.
func definitionsSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Definitions)
	for _, d := range t.Definitions {
		if d == nil {
			continue
		}
		_, err := g.GenerateInner(d)
		if err == nil {
			continue
		}
		var inv *InvalidForSchemaError
		ref := ir.BaseOf(d).Ref
		if !errors.As(err, &inv) || ref == "" {
			return nil, err
		}
		defsRef, _ := g.reg.GetOrCreate(g.key(ref))
		g.reg.MarkInvalid(defsRef, inv)
		g.log.Debug("definition is not representable", "ref", ref, "error", inv.Error())
	}
	return g.GenerateInner(t.Schema)
}

func definitionRefSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	_, s := g.reg.GetOrCreate(g.key(n.(*ir.DefinitionRef).SchemaRef))
	return s, nil
}
