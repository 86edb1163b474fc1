package irdoc

import (
	"fmt"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func (d *decoder) node(v any, ptr string) (ir.Node, error) {
	s, ok := v.(*js.Schema)
	if !ok {
		return nil, d.errorf(ptr, "expected a node object, got %s", kindOf(v))
	}
	o := d.obj(s, ptr)
	t := ir.Type(o.str("type"))
	if o.err != nil {
		return nil, o.err
	}
	if t == "" {
		return nil, d.errorf(ptr, "node has no type")
	}
	n := d.build(t, o)
	if o.err != nil {
		return nil, o.err
	}
	if n == nil {
		return nil, &PathError{Doc: d.doc, Pointer: js.JoinPointer(ptr, "type"), Err: &typeError{t}}
	}
	d.base(o, ir.BaseOf(n))
	o.finish()
	return n, o.err
}

type typeError struct{ t ir.Type }

func (e *typeError) Error() string        { return fmt.Sprintf("%v %q", ErrUnknownType, string(e.t)) }
func (e *typeError) Is(target error) bool { return target == ErrUnknownType }

// base reads the attributes every node shares.
func (d *decoder) base(o *object, b *ir.Base) {
	b.Ref = o.str("ref")
	if m := o.object("metadata"); m != nil {
		d.metadata(m, &b.Meta)
		o.child(m)
	}
	if s := o.object("serialization"); s != nil {
		b.Serialization = d.serializer(s)
		o.child(s)
	}
}

func (d *decoder) serializer(o *object) *ir.Serializer {
	ser := &ir.Serializer{Kind: ir.SerKind(o.str("type"))}
	switch ser.Kind {
	case ir.SerFunctionPlain, ir.SerFunctionWrap, ir.SerFormat, ir.SerToString, ir.SerModel, ir.SerSimple:
	default:
		o.fail("type", "unknown serializer type %q", ser.Kind)
		return nil
	}
	ser.ReturnSchema = o.optNode("return_schema")
	ser.Schema = o.optNode("schema")
	ser.InfoArg = o.boolean("info_arg")
	return ser
}

// build decodes the variant attributes of a node tagged t. It returns nil
// for an unknown tag.
func (d *decoder) build(t ir.Type, o *object) ir.Node {
	switch t {
	case ir.TypeAny:
		return &ir.Any{}
	case ir.TypeNone:
		return &ir.None{}
	case ir.TypeBool:
		return &ir.Bool{}
	case ir.TypeInt:
		return &ir.Int{
			MultipleOf: o.int64Ptr("multiple_of"),
			Le:         o.int64Ptr("le"),
			Ge:         o.int64Ptr("ge"),
			Lt:         o.int64Ptr("lt"),
			Gt:         o.int64Ptr("gt"),
		}
	case ir.TypeFloat:
		return &ir.Float{
			AllowInfNaN: o.boolPtr("allow_inf_nan"),
			MultipleOf:  o.floatPtr("multiple_of"),
			Le:          o.floatPtr("le"),
			Ge:          o.floatPtr("ge"),
			Lt:          o.floatPtr("lt"),
			Gt:          o.floatPtr("gt"),
		}
	case ir.TypeDecimal:
		return &ir.Decimal{
			AllowInfNaN:   o.boolPtr("allow_inf_nan"),
			MultipleOf:    o.floatPtr("multiple_of"),
			Le:            o.floatPtr("le"),
			Ge:            o.floatPtr("ge"),
			Lt:            o.floatPtr("lt"),
			Gt:            o.floatPtr("gt"),
			MaxDigits:     o.intPtr("max_digits"),
			DecimalPlaces: o.intPtr("decimal_places"),
		}
	case ir.TypeString:
		return &ir.String{MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length"), Pattern: o.str("pattern")}
	case ir.TypeBytes:
		return &ir.Bytes{MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length")}
	case ir.TypeDate:
		n := &ir.Date{}
		n.Le, _ = o.raw("le")
		n.Ge, _ = o.raw("ge")
		n.Lt, _ = o.raw("lt")
		n.Gt, _ = o.raw("gt")
		return n
	case ir.TypeTime:
		return &ir.Time{}
	case ir.TypeDatetime:
		return &ir.Datetime{}
	case ir.TypeTimedelta:
		return &ir.Timedelta{}
	case ir.TypeLiteral:
		l, ok := o.list("expected")
		if !ok && o.err == nil {
			o.fail("expected", "a literal needs expected values")
		}
		return &ir.Literal{Expected: l}
	case ir.TypeEnum:
		members, _ := o.list("members")
		return &ir.Enum{Name: o.str("name"), Description: o.str("description"), Members: members, SubType: o.str("sub_type")}
	case ir.TypeIsInstance:
		return &ir.IsInstance{Class: o.str("cls")}
	case ir.TypeIsSubclass:
		return &ir.IsSubclass{Class: o.str("cls")}
	case ir.TypeCallable:
		return &ir.Callable{}
	case ir.TypeList:
		return &ir.List{Items: o.optNode("items_schema"), MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length")}
	case ir.TypeSet:
		return &ir.Set{Items: o.optNode("items_schema"), MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length")}
	case ir.TypeFrozenSet:
		return &ir.FrozenSet{Items: o.optNode("items_schema"), MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length")}
	case ir.TypeGenerator:
		return &ir.Generator{Items: o.optNode("items_schema"), MinLength: o.intPtr("min_length"), MaxLength: o.intPtr("max_length")}
	case ir.TypeTuple:
		return &ir.Tuple{
			Items:         o.nodes("items_schema"),
			VariadicIndex: o.intPtr("variadic_item_index"),
			MinLength:     o.intPtr("min_length"),
			MaxLength:     o.intPtr("max_length"),
		}
	case ir.TypeDict:
		return &ir.Dict{
			Keys:      o.optNode("keys_schema"),
			Values:    o.optNode("values_schema"),
			MinLength: o.intPtr("min_length"),
			MaxLength: o.intPtr("max_length"),
		}
	case ir.TypeFunctionBefore:
		return &ir.FunctionBefore{Schema: o.node("schema"), Function: o.str("function")}
	case ir.TypeFunctionAfter:
		return &ir.FunctionAfter{Schema: o.node("schema"), Function: o.str("function")}
	case ir.TypeFunctionWrap:
		return &ir.FunctionWrap{Schema: o.node("schema"), Function: o.str("function")}
	case ir.TypeFunctionPlain:
		return &ir.FunctionPlain{Function: o.str("function")}
	case ir.TypeDefault:
		n := &ir.Default{Schema: o.node("schema")}
		if o.has("default") {
			n.Default, _ = o.raw("default")
			n.HasDefault = true
		}
		o.has("default_factory")
		return n
	case ir.TypeNullable:
		return &ir.Nullable{Schema: o.node("schema")}
	case ir.TypeUnion:
		return &ir.Union{Choices: d.choices(o)}
	case ir.TypeTaggedUnion:
		return &ir.TaggedUnion{Choices: d.taggedChoices(o), Discriminator: d.discriminator(o)}
	case ir.TypeChain:
		return &ir.Chain{Steps: o.nodes("steps")}
	case ir.TypeLaxOrStrict:
		return &ir.LaxOrStrict{Lax: o.node("lax_schema"), Strict: o.node("strict_schema"), UseStrict: o.boolean("strict")}
	case ir.TypeJSONOrPython:
		return &ir.JSONOrPython{JSON: o.node("json_schema"), Python: o.node("python_schema")}
	case ir.TypeTypedDict:
		return d.typedDict(o)
	case ir.TypeModel:
		return d.model(o)
	case ir.TypeModelFields:
		return &ir.ModelFields{
			Fields:         d.modelFields(o),
			ComputedFields: d.computedFields(o),
			ExtrasSchema:   o.optNode("extras_schema"),
		}
	case ir.TypeDataclass:
		return &ir.Dataclass{Class: d.class(o, "cls"), Schema: o.node("schema"), Config: d.config(o)}
	case ir.TypeDataclassArgs:
		return &ir.DataclassArgs{Fields: d.dataclassFields(o), ComputedFields: d.computedFields(o)}
	case ir.TypeArguments:
		return d.arguments(o)
	case ir.TypeCall:
		return &ir.Call{Arguments: o.node("arguments_schema"), ReturnSchema: o.optNode("return_schema")}
	case ir.TypeCustomError:
		o.has("custom_error_type")
		o.has("custom_error_message")
		return &ir.CustomError{Schema: o.node("schema")}
	case ir.TypeJSON:
		return &ir.JSON{Schema: o.optNode("schema")}
	case ir.TypeURL:
		return &ir.URL{MaxLength: o.intPtr("max_length")}
	case ir.TypeMultiHostURL:
		return &ir.MultiHostURL{MaxLength: o.intPtr("max_length")}
	case ir.TypeUUID:
		return &ir.UUID{}
	case ir.TypeDefinitions:
		return &ir.Definitions{Definitions: o.nodes("definitions"), Schema: o.node("schema")}
	case ir.TypeDefinitionRef:
		n := &ir.DefinitionRef{SchemaRef: o.str("schema_ref")}
		if n.SchemaRef == "" && o.err == nil {
			o.fail("schema_ref", "a definition-ref needs schema_ref")
		}
		return n
	}
	return nil
}

// choices reads union members: a node, or a [node, label] pair.
func (d *decoder) choices(o *object) []ir.Choice {
	l, ok := o.list("choices")
	if !ok {
		if o.err == nil {
			o.fail("choices", "a union needs choices")
		}
		return nil
	}
	out := make([]ir.Choice, 0, len(l))
	for i, v := range l {
		ptr := js.JoinPointer(o.ptr, "choices", i)
		var c ir.Choice
		if pair, ok := v.([]any); ok {
			label, isStr := "", false
			if len(pair) == 2 {
				label, isStr = pair[1].(string)
			}
			if !isStr {
				o.setErr(d.errorf(ptr, "a labeled choice is a [node, label] pair"))
				return nil
			}
			c.Label = label
			v = pair[0]
			ptr = js.JoinPointer(ptr, 0)
		}
		n, err := d.node(v, ptr)
		if err != nil {
			o.setErr(err)
			return nil
		}
		c.Schema = n
		out = append(out, c)
	}
	return out
}

// taggedChoices reads a list of {"tag", "schema"} objects, or an object
// keyed by string tags.
func (d *decoder) taggedChoices(o *object) []ir.TaggedChoice {
	v, ok := o.raw("choices")
	if !ok {
		o.fail("choices", "a tagged union needs choices")
		return nil
	}
	var out []ir.TaggedChoice
	switch t := v.(type) {
	case *js.Schema:
		for _, tag := range t.Keys() {
			raw, _ := t.Get(tag)
			n, err := d.node(raw, js.JoinPointer(o.ptr, "choices", tag))
			if err != nil {
				o.setErr(err)
				return nil
			}
			out = append(out, ir.TaggedChoice{Tag: tag, Schema: n})
		}
	case []any:
		o.objects("choices", func(c *object) {
			if !c.has("tag") {
				c.fail("tag", "missing tag")
				return
			}
			tag, _ := c.raw("tag")
			out = append(out, ir.TaggedChoice{Tag: tag, Schema: c.node("schema")})
		})
	default:
		o.fail("choices", "expected an array or object, got %s", kindOf(v))
	}
	return out
}

// discriminator reads a field name, a list of alias paths, or
// {"callable": true}.
func (d *decoder) discriminator(o *object) ir.Discriminator {
	v, ok := o.raw("discriminator")
	if !ok {
		return ir.Discriminator{}
	}
	switch t := v.(type) {
	case string:
		return ir.Discriminator{Field: t}
	case []any:
		if len(t) == 1 {
			if k, ok := t[0].(string); ok {
				return ir.Discriminator{Field: k}
			}
		}
		paths, ok := aliasPaths(t)
		if !ok {
			o.fail("discriminator", "expected alias paths of strings and integers")
		}
		return ir.Discriminator{Paths: paths}
	case *js.Schema:
		c := d.obj(t, o.at("discriminator"))
		disc := ir.Discriminator{Func: c.boolean("callable")}
		o.child(c)
		return disc
	}
	o.fail("discriminator", "expected a string, array or object, got %s", kindOf(v))
	return ir.Discriminator{}
}

// aliasPaths accepts a list whose elements are either a path (list of
// strings and integers) or a single string key.
func aliasPaths(l []any) ([]ir.AliasPath, bool) {
	out := make([]ir.AliasPath, 0, len(l))
	for _, v := range l {
		switch t := v.(type) {
		case string:
			out = append(out, ir.AliasPath{t})
		case []any:
			p := make(ir.AliasPath, 0, len(t))
			for _, seg := range t {
				switch s := seg.(type) {
				case string:
					p = append(p, s)
				case int64:
					p = append(p, int(s))
				default:
					return nil, false
				}
			}
			out = append(out, p)
		default:
			return nil, false
		}
	}
	return out, true
}

func (o *object) alias(key string) ir.Alias {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return ir.Alias{}
	}
	switch t := v.(type) {
	case string:
		return ir.Alias{Name: t}
	case []any:
		if paths, ok := aliasPaths(t); ok {
			return ir.Alias{Paths: paths}
		}
	}
	o.fail(key, "expected an alias string or a list of alias paths")
	return ir.Alias{}
}
