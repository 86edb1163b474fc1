package schemagen

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// namedField is one property of a structured object, in declaration order.
type namedField struct {
	name     string
	required bool
	field    ir.Field
}

func fieldSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	inner := n.(ir.Field).Inner()
	if inner == nil {
		return nil, invalidf("field %s without a schema", n.(ir.Field).FieldName())
	}
	return g.GenerateInner(inner)
}

// fieldPresent reports whether a field appears in the current mode.
func (g *Generator) fieldPresent(excluded bool) bool {
	return g.Mode() != ir.ModeSerialization || !excluded
}

// fieldRequired applies the serialization-defaults-required rule before
// the field's own rule.
func (g *Generator) fieldRequired(excluded, own bool) bool {
	if g.Mode() == ir.ModeSerialization && g.defaultsRequired() {
		return !excluded
	}
	return own
}

func (g *Generator) computedFields(fields []*ir.ComputedField) []namedField {
	if g.Mode() != ir.ModeSerialization {
		return nil
	}
	out := make([]namedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, namedField{name: f.PropertyName, required: true, field: f})
	}
	return out
}

// aliasName is the property name documented for a field.
func (g *Generator) aliasName(f ir.Field, name string) string {
	switch t := f.(type) {
	case *ir.ComputedField:
		if t.Alias != "" {
			return t.Alias
		}
		return name
	case *ir.TypedDictField:
		return g.modeAlias(t.ValidationAlias, t.SerializationAlias, name)
	case *ir.ModelField:
		return g.modeAlias(t.ValidationAlias, t.SerializationAlias, name)
	case *ir.DataclassField:
		return g.modeAlias(t.ValidationAlias, t.SerializationAlias, name)
	}
	return name
}

func (g *Generator) modeAlias(validation ir.Alias, serialization, name string) string {
	if g.Mode() == ir.ModeValidation {
		return validation.Resolve(name)
	}
	if serialization != "" {
		return serialization
	}
	return name
}

func (g *Generator) namedFieldsSchema(fields []namedField) (*js.Schema, error) {
	properties := js.New()
	var required []any
	for _, nf := range fields {
		name := nf.name
		if g.ByAlias() {
			name = g.aliasName(nf.field, name)
		}
		fs, err := g.GenerateInner(nf.field)
		if errors.Is(err, ir.ErrOmit) {
			continue
		}
		if err != nil {
			return nil, err
		}
		fs = fs.ShallowCopy()
		if !fs.Has("title") && fieldTitleShouldBeSet(nf.field) {
			fs.Set("title", titleFromName(name))
		}
		if fs, err = g.handleRefOverrides(fs); err != nil {
			return nil, err
		}
		properties.Set(name, fs)
		if nf.required {
			required = append(required, name)
		}
	}
	s := js.FromPairs("type", "object", "properties", properties)
	if len(required) > 0 {
		s.Set("required", required)
	}
	return s, nil
}

// fieldTitleShouldBeSet is false for anything that resolves to a shared
// definition; those carry their own title.
func fieldTitleShouldBeSet(n ir.Node) bool {
	for n != nil {
		if !ir.IsField(n.Type()) && ir.BaseOf(n).Ref != "" {
			return false
		}
		if n.Type() == ir.TypeDefinitionRef {
			return false
		}
		inner, ok := ir.InnerSchema(n)
		if !ok {
			return true
		}
		n = inner
	}
	return true
}

var titleCaser = cases.Title(language.Und)

// titleFromName turns a snake_case name into a title: every run of letters
// is title-cased and underscores become spaces, so "user_id" -> "User Id"
// and "field1name" -> "Field1Name".
func titleFromName(name string) string {
	var b strings.Builder
	start := -1
	for i, r := range name {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(titleCaser.String(name[start:i]))
			start = -1
		}
		if r == '_' {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	if start >= 0 {
		b.WriteString(titleCaser.String(name[start:]))
	}
	return strings.TrimSpace(b.String())
}

// handleRefOverrides drops sibling keys that only repeat the referenced
// definition and moves the rest next to an allOf.
func (g *Generator) handleRefOverrides(s *js.Schema) (*js.Schema, error) {
	ref, ok := s.Ref()
	if !ok {
		return s, nil
	}
	s = s.ShallowCopy()
	def, found, err := g.definitionFor(ref)
	if err != nil {
		return nil, err
	}
	if !found {
		if s.Len() > 1 {
			var all []any
			if prev, ok := s.Get("allOf"); ok {
				all, _ = prev.([]any)
			}
			s.Set("allOf", append(append([]any(nil), all...), js.Ref(ref)))
			s.Delete("$ref")
		}
		return s, nil
	}
	for _, k := range s.Keys() {
		if k == "$ref" {
			continue
		}
		v, _ := s.Get(k)
		if dv, ok := def.Get(k); ok && js.Fingerprint(dv) == js.Fingerprint(v) {
			s.Delete(k)
		}
	}
	if s.Len() > 1 {
		s.Delete("$ref")
		s.Set("allOf", []any{js.Ref(ref)})
	}
	return s, nil
}

func typedDictSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.TypedDict)
	total := t.Total == nil || *t.Total
	g.pushConfig(t.Config)
	var fields []namedField
	for _, f := range t.Fields {
		if !g.fieldPresent(f.SerializationExclude) {
			continue
		}
		own := total
		if f.Required != nil {
			own = *f.Required
		}
		fields = append(fields, namedField{name: f.Name, required: g.fieldRequired(f.SerializationExclude, own), field: f})
	}
	fields = append(fields, g.computedFields(t.ComputedFields)...)
	s, err := g.namedFieldsSchema(fields)
	g.popConfig()
	if err != nil {
		return nil, err
	}
	extra := t.ExtraBehavior
	if extra == ir.ExtraUnset {
		extra = t.Config.Extra
	}
	if extra == ir.ExtraUnset {
		extra = ir.ExtraIgnore
	}
	if t.Class != nil {
		title := t.Config.Title
		if title == "" {
			title = t.Class.Name
		}
		return g.updateClassSchema(s, classUpdate{
			title:     title,
			extra:     extra,
			patch:     t.Config.SchemaExtra,
			patchFunc: t.Config.SchemaExtraFunc,
			class:     *t.Class,
		})
	}
	switch extra {
	case ir.ExtraForbid:
		s.Set("additionalProperties", false)
	case ir.ExtraAllow:
		s.Set("additionalProperties", true)
	}
	return s, nil
}

// classUpdate is what a class contributes on top of its fields schema.
type classUpdate struct {
	title       string
	description string
	extra       ir.ExtraBehavior
	patch       *js.Schema
	patchFunc   func(*js.Schema) error
	class       ir.Class
}

// updateClassSchema applies class-level settings. When s is a "$ref" the
// referenced definition is updated instead.
func (g *Generator) updateClassSchema(s *js.Schema, u classUpdate) (*js.Schema, error) {
	target := s
	if ref, ok := s.Ref(); ok {
		def, found, err := g.definitionFor(ref)
		if err != nil {
			return nil, err
		}
		if found {
			target = def
		}
	}
	if u.title != "" {
		target.SetDefault("title", u.title)
	}
	if u.description != "" {
		target.SetDefault("description", u.description)
	}
	if !target.Has("additionalProperties") {
		switch u.extra {
		case ir.ExtraAllow:
			target.Set("additionalProperties", true)
		case ir.ExtraForbid:
			target.Set("additionalProperties", false)
		}
	}
	if u.patch != nil {
		target.Update(u.patch.Clone())
	}
	if u.patchFunc != nil {
		if err := u.patchFunc(target); err != nil {
			return nil, err
		}
	}
	if u.class.Deprecated {
		s.Set("deprecated", true)
	}
	return s, nil
}

func modelSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Model)
	if t.Schema == nil {
		return nil, invalidf("model %s without a fields schema", t.Class.Name)
	}
	g.pushConfig(t.Config)
	s, err := g.GenerateInner(t.Schema)
	g.popConfig()
	if err != nil {
		return nil, err
	}
	u := classUpdate{
		title:       t.Config.Title,
		description: t.Class.Doc,
		extra:       t.Config.Extra,
		patch:       t.Config.SchemaExtra,
		patchFunc:   t.Config.SchemaExtraFunc,
		class:       t.Class,
	}
	if u.title == "" {
		u.title = t.Class.Name
	}
	if t.RootModel && t.RootFieldExtra != nil {
		if u.patch != nil || u.patchFunc != nil {
			return nil, &UserError{Code: CodeSchemaExtraConflict, Message: g.tr.Message(CodeSchemaExtraConflict, nil)}
		}
		u.patch, u.patchFunc = t.RootFieldExtra.Patch, t.RootFieldExtra.Func
	}
	return g.updateClassSchema(s, u)
}

func modelFieldsSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.ModelFields)
	var fields []namedField
	for _, f := range t.Fields {
		if !g.fieldPresent(f.SerializationExclude) {
			continue
		}
		fields = append(fields, namedField{
			name:     f.Name,
			required: g.fieldRequired(f.SerializationExclude, !hasDefault(f.Schema)),
			field:    f,
		})
	}
	fields = append(fields, g.computedFields(t.ComputedFields)...)
	s, err := g.namedFieldsSchema(fields)
	if err != nil {
		return nil, err
	}
	if t.ExtrasSchema != nil {
		target, err := g.resolveSchemaToUpdate(s)
		if err != nil {
			return nil, err
		}
		extras, err := g.GenerateInner(t.ExtrasSchema)
		if err != nil {
			return nil, err
		}
		target.Set("additionalProperties", extras)
	}
	return s, nil
}

// resolveSchemaToUpdate follows "$ref"s to the definition to edit.
func (g *Generator) resolveSchemaToUpdate(s *js.Schema) (*js.Schema, error) {
	for {
		ref, ok := s.Ref()
		if !ok {
			return s, nil
		}
		def, found, err := g.definitionFor(ref)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, invalidf("an update of undefined schema %s", ref)
		}
		s = def
	}
}

func hasDefault(n ir.Node) bool { return n != nil && n.Type() == ir.TypeDefault }

func dataclassSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.Dataclass)
	if t.Schema == nil {
		return nil, invalidf("dataclass %s without an arguments schema", t.Class.Name)
	}
	g.pushConfig(t.Config)
	s, err := g.GenerateInner(t.Schema)
	g.popConfig()
	if err != nil {
		return nil, err
	}
	s = s.ShallowCopy()
	title := t.Config.Title
	if title == "" {
		title = t.Class.Name
	}
	s, err = g.updateClassSchema(s, classUpdate{
		title:     title,
		extra:     t.Config.Extra,
		patch:     t.Config.SchemaExtra,
		patchFunc: t.Config.SchemaExtraFunc,
		class:     t.Class,
	})
	if err != nil {
		return nil, err
	}
	if !t.Class.Plain && t.Class.Doc != "" {
		s.Set("description", t.Class.Doc)
	}
	return s, nil
}

func dataclassArgsSchema(g *Generator, n ir.Node) (*js.Schema, error) {
	t := n.(*ir.DataclassArgs)
	var fields []namedField
	for _, f := range t.Fields {
		if !g.fieldPresent(f.SerializationExclude) {
			continue
		}
		if g.Mode() == ir.ModeValidation && f.Init != nil && !*f.Init {
			continue
		}
		if g.Mode() == ir.ModeSerialization && f.InitOnly {
			continue
		}
		fields = append(fields, namedField{
			name:     f.Name,
			required: g.fieldRequired(f.SerializationExclude, !hasDefault(f.Schema)),
			field:    f,
		})
	}
	fields = append(fields, g.computedFields(t.ComputedFields)...)
	return g.namedFieldsSchema(fields)
}
