package irdoc

import (
	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func (d *decoder) class(o *object, key string) ir.Class {
	c := o.object(key)
	if c == nil {
		if o.err == nil {
			o.fail(key, "missing class")
		}
		return ir.Class{}
	}
	cls := ir.Class{
		Name:       c.str("name"),
		Doc:        c.str("doc"),
		Deprecated: c.boolean("deprecated"),
		Plain:      c.boolean("plain"),
	}
	if cls.Name == "" && c.err == nil {
		c.fail("name", "a class needs a name")
	}
	o.child(c)
	return cls
}

func (d *decoder) config(o *object) ir.ModelConfig {
	c := o.object("config")
	if c == nil {
		return ir.ModelConfig{}
	}
	cfg := ir.ModelConfig{
		Title:                         c.str("title"),
		Extra:                         d.extra(c, "extra_fields_behavior"),
		SchemaExtra:                   c.schema("json_schema_extra"),
		ModeOverride:                  c.mode("json_schema_mode_override"),
		SerJSONBytes:                  c.str("ser_json_bytes"),
		SerJSONTimedelta:              c.str("ser_json_timedelta"),
		SerializationDefaultsRequired: c.boolPtr("json_schema_serialization_defaults_required"),
	}
	switch cfg.SerJSONBytes {
	case "", "utf8", "base64":
	default:
		c.fail("ser_json_bytes", "expected utf8 or base64, got %q", cfg.SerJSONBytes)
	}
	switch cfg.SerJSONTimedelta {
	case "", "iso8601", "float":
	default:
		c.fail("ser_json_timedelta", "expected iso8601 or float, got %q", cfg.SerJSONTimedelta)
	}
	o.child(c)
	return cfg
}

func (d *decoder) extra(o *object, key string) ir.ExtraBehavior {
	e := ir.ExtraBehavior(o.str(key))
	switch e {
	case ir.ExtraUnset, ir.ExtraAllow, ir.ExtraIgnore, ir.ExtraForbid:
		return e
	}
	o.fail(key, "expected allow, ignore or forbid, got %q", e)
	return ir.ExtraUnset
}

func (d *decoder) typedDict(o *object) *ir.TypedDict {
	n := &ir.TypedDict{
		Total:         o.boolPtr("total"),
		ExtraBehavior: d.extra(o, "extra_behavior"),
		Config:        d.config(o),
	}
	if o.has("cls") {
		cls := d.class(o, "cls")
		n.Class = &cls
	}
	o.objects("fields", func(c *object) {
		f := &ir.TypedDictField{
			Name:                 c.str("name"),
			Schema:               c.node("schema"),
			Required:             c.boolPtr("required"),
			ValidationAlias:      c.alias("validation_alias"),
			SerializationAlias:   c.str("serialization_alias"),
			SerializationExclude: c.boolean("serialization_exclude"),
		}
		d.field(c, ir.TypeTypedDictField, f.Name, &f.Base)
		n.Fields = append(n.Fields, f)
	})
	n.ComputedFields = d.computedFields(o)
	return n
}

func (d *decoder) model(o *object) *ir.Model {
	n := &ir.Model{
		Class:     d.class(o, "cls"),
		Schema:    o.node("schema"),
		Config:    d.config(o),
		RootModel: o.boolean("root_model"),
	}
	if p := o.schema("root_field_extra"); p != nil {
		n.RootFieldExtra = &ir.RootExtra{Patch: p}
	}
	return n
}

func (d *decoder) modelFields(o *object) []*ir.ModelField {
	var out []*ir.ModelField
	o.objects("fields", func(c *object) {
		f := &ir.ModelField{
			Name:                 c.str("name"),
			Schema:               c.node("schema"),
			ValidationAlias:      c.alias("validation_alias"),
			SerializationAlias:   c.str("serialization_alias"),
			SerializationExclude: c.boolean("serialization_exclude"),
			Frozen:               c.boolean("frozen"),
		}
		d.field(c, ir.TypeModelField, f.Name, &f.Base)
		out = append(out, f)
	})
	return out
}

func (d *decoder) dataclassFields(o *object) []*ir.DataclassField {
	var out []*ir.DataclassField
	o.objects("fields", func(c *object) {
		f := &ir.DataclassField{
			Name:                 c.str("name"),
			Schema:               c.node("schema"),
			KwOnly:               c.boolPtr("kw_only"),
			Init:                 c.boolPtr("init"),
			InitOnly:             c.boolean("init_only"),
			ValidationAlias:      c.alias("validation_alias"),
			SerializationAlias:   c.str("serialization_alias"),
			SerializationExclude: c.boolean("serialization_exclude"),
		}
		d.field(c, ir.TypeDataclassField, f.Name, &f.Base)
		out = append(out, f)
	})
	return out
}

func (d *decoder) computedFields(o *object) []*ir.ComputedField {
	var out []*ir.ComputedField
	o.objects("computed_fields", func(c *object) {
		f := &ir.ComputedField{
			PropertyName: c.str("property_name"),
			ReturnSchema: c.node("return_schema"),
			Alias:        c.str("alias"),
		}
		d.field(c, ir.TypeComputedField, f.PropertyName, &f.Base)
		out = append(out, f)
	})
	return out
}

// field checks the optional type tag and name of a field object and reads
// its shared attributes.
func (d *decoder) field(c *object, want ir.Type, name string, b *ir.Base) {
	if t := ir.Type(c.str("type")); t != "" && t != want {
		c.fail("type", "expected %s, got %s", want, t)
	}
	if name == "" && c.err == nil {
		key := "name"
		if want == ir.TypeComputedField {
			key = "property_name"
		}
		c.fail(key, "a field needs a name")
	}
	d.base(c, b)
}

func (d *decoder) arguments(o *object) *ir.Arguments {
	n := &ir.Arguments{
		VarArgs:   o.optNode("var_args_schema"),
		VarKwargs: o.optNode("var_kwargs_schema"),
	}
	o.objects("arguments_schema", func(c *object) {
		p := ir.Parameter{
			Name:   c.str("name"),
			Schema: c.node("schema"),
			Mode:   ir.ArgumentMode(c.str("mode")),
			Alias:  c.str("alias"),
		}
		switch p.Mode {
		case ir.ArgumentModeUnset, ir.PositionalOnly, ir.PositionalOrKeyword, ir.KeywordOnly:
		default:
			c.fail("mode", "unknown argument mode %q", p.Mode)
		}
		if p.Name == "" && c.err == nil {
			c.fail("name", "a parameter needs a name")
		}
		n.Parameters = append(n.Parameters, p)
	})
	return n
}

// metadata turns the data-only hooks of a node into transformers, applied
// in a fixed order: replacement, patch, examples, skip.
func (d *decoder) metadata(m *object, meta *ir.Metadata) {
	mode := m.mode("json_schema_mode")
	if v, ok := m.s.Get("json_schema"); ok {
		m.has("json_schema")
		switch t := v.(type) {
		case nil:
			meta.AnnotationFunctions = append(meta.AnnotationFunctions, schemagen.WithSchema(nil, mode))
		case *js.Schema:
			meta.AnnotationFunctions = append(meta.AnnotationFunctions, schemagen.WithSchema(t, mode))
		default:
			m.fail("json_schema", "expected an object or null, got %s", kindOf(v))
		}
	}
	if p := m.schema("json_schema_extra"); p != nil {
		meta.AnnotationFunctions = append(meta.AnnotationFunctions, schemagen.Patch(p))
	}
	if ex, ok := m.list("examples"); ok {
		meta.AnnotationFunctions = append(meta.AnnotationFunctions, schemagen.Examples("", ex...))
	}
	if m.boolean("skip") {
		meta.AnnotationFunctions = append(meta.AnnotationFunctions, schemagen.Skip())
	}
	meta.PreferPositionalArguments = m.boolean("prefer_positional")
}
