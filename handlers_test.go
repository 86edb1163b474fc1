package schemagen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func TestHandlers_Scalars(t *testing.T) {
	tests := []struct {
		name string
		node ir.Node
		mode ir.Mode
		want string
	}{
		{"any", &ir.Any{}, ir.ModeValidation, `{}`},
		{"bool", &ir.Bool{}, ir.ModeValidation, `{"type":"boolean"}`},
		{"int exclusive", &ir.Int{Gt: ptr[int64](1), Lt: ptr[int64](9), MultipleOf: ptr[int64](2)}, ir.ModeValidation,
			`{"type":"integer","multipleOf":2,"exclusiveMaximum":9,"exclusiveMinimum":1}`},
		{"float drops infinity", &ir.Float{Ge: ptr(math.Inf(-1)), Le: ptr(2.5)}, ir.ModeValidation,
			`{"type":"number","maximum":2.5}`},
		{"decimal validation", &ir.Decimal{Ge: ptr(0.0)}, ir.ModeValidation,
			`{"anyOf":[{"type":"number","minimum":0},{"type":"string"}]}`},
		{"decimal serialization", &ir.Decimal{Ge: ptr(0.0)}, ir.ModeSerialization, `{"type":"string"}`},
		{"str", &ir.String{MinLength: ptr(1), MaxLength: ptr(8), Pattern: "^[a-z]+$"}, ir.ModeValidation,
			`{"type":"string","minLength":1,"maxLength":8,"pattern":"^[a-z]+$"}`},
		{"bytes", &ir.Bytes{MaxLength: ptr(4)}, ir.ModeValidation, `{"type":"string","format":"binary","maxLength":4}`},
		{"date", &ir.Date{Ge: "2020-01-01"}, ir.ModeValidation, `{"type":"string","format":"date","minimum":"2020-01-01"}`},
		{"time", &ir.Time{}, ir.ModeValidation, `{"type":"string","format":"time"}`},
		{"datetime", &ir.Datetime{}, ir.ModeValidation, `{"type":"string","format":"date-time"}`},
		{"timedelta", &ir.Timedelta{}, ir.ModeValidation, `{"type":"string","format":"duration"}`},
		{"url", &ir.URL{MaxLength: ptr(2083)}, ir.ModeValidation, `{"type":"string","format":"uri","minLength":1,"maxLength":2083}`},
		{"multi host url", &ir.MultiHostURL{}, ir.ModeValidation, `{"type":"string","format":"multi-host-uri","minLength":1}`},
		{"uuid", &ir.UUID{}, ir.ModeValidation, `{"type":"string","format":"uuid"}`},
		{"is-subclass", &ir.IsSubclass{Class: "Base"}, ir.ModeValidation, `{}`},
		{"literal single", &ir.Literal{Expected: []any{"on"}}, ir.ModeValidation, `{"const":"on","enum":["on"],"type":"string"}`},
		{"literal mixed numbers", &ir.Literal{Expected: []any{1, 2.5}}, ir.ModeValidation, `{"enum":[1,2.5],"type":"number"}`},
		{"literal mixed kinds", &ir.Literal{Expected: []any{1, "a"}}, ir.ModeValidation, `{"enum":[1,"a"]}`},
		{"enum", &ir.Enum{Name: "Color", Description: "Primary colors.", Members: []any{"red", "blue"}, SubType: "str"}, ir.ModeValidation,
			`{"title":"Color","description":"Primary colors.","enum":["red","blue"],"type":"string"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			requireJSON(t, tc.want, generate(t, tc.node, tc.mode, DefaultConfig()))
		})
	}
}

func TestHandlers_SerializationFormats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SerJSONBytes = "base64"
	cfg.SerJSONTimedelta = "float"
	requireJSON(t, `{"type":"string","format":"base64url"}`, generate(t, &ir.Bytes{}, ir.ModeSerialization, cfg))
	requireJSON(t, `{"type":"number"}`, generate(t, &ir.Timedelta{}, ir.ModeSerialization, cfg))

	// Class configuration wins over the generator's.
	node := &ir.TypedDict{
		Fields: []*ir.TypedDictField{{Name: "d", Schema: &ir.Timedelta{}}},
		Config: ir.ModelConfig{SerJSONTimedelta: "iso8601"},
	}
	s := generate(t, node, ir.ModeSerialization, cfg)
	assert.Equal(t, "duration", get(t, s, "properties", "d", "format"))
}

func TestHandlers_Containers(t *testing.T) {
	tests := []struct {
		name string
		node ir.Node
		want string
	}{
		{"list", &ir.List{Items: &ir.Int{}, MinLength: ptr(1)}, `{"type":"array","items":{"type":"integer"},"minItems":1}`},
		{"list any", &ir.List{}, `{"type":"array","items":{}}`},
		{"set", &ir.Set{Items: &ir.String{}}, `{"type":"array","uniqueItems":true,"items":{"type":"string"}}`},
		{"frozenset", &ir.FrozenSet{Items: &ir.String{}, MaxLength: ptr(3)}, `{"type":"array","uniqueItems":true,"items":{"type":"string"},"maxItems":3}`},
		{"generator", &ir.Generator{Items: &ir.Bool{}}, `{"type":"array","items":{"type":"boolean"}}`},
		{"tuple positional", &ir.Tuple{Items: []ir.Node{&ir.Int{}, &ir.String{}}},
			`{"type":"array","prefixItems":[{"type":"integer"},{"type":"string"}],"minItems":2,"maxItems":2}`},
		{"tuple empty", &ir.Tuple{}, `{"type":"array","minItems":0,"maxItems":0}`},
		{"tuple variadic tail", &ir.Tuple{Items: []ir.Node{&ir.String{}, &ir.Int{}}, VariadicIndex: ptr(1)},
			`{"type":"array","minItems":1,"prefixItems":[{"type":"string"}],"items":{"type":"integer"}}`},
		{"tuple variadic only", &ir.Tuple{Items: []ir.Node{&ir.Int{}}, VariadicIndex: ptr(0)},
			`{"type":"array","items":{"type":"integer"}}`},
		{"tuple variadic middle", &ir.Tuple{Items: []ir.Node{&ir.Int{}, &ir.String{}}, VariadicIndex: ptr(0)},
			`{"type":"array","items":true}`},
		{"dict", &ir.Dict{Keys: &ir.String{}, Values: &ir.Int{}, MinLength: ptr(1)},
			`{"type":"object","additionalProperties":{"type":"integer"},"minProperties":1}`},
		{"dict any", &ir.Dict{Keys: &ir.String{}, Values: &ir.Any{}}, `{"type":"object"}`},
		{"dict pattern keys", &ir.Dict{Keys: &ir.String{Pattern: "^x-"}, Values: &ir.Any{}},
			`{"type":"object","patternProperties":{"^x-":{}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			requireJSON(t, tc.want, generate(t, tc.node, ir.ModeValidation, DefaultConfig()))
		})
	}
}

func TestHandlers_DictValuesLoseTitle(t *testing.T) {
	values := &ir.Enum{Name: "Level", Members: []any{1, 2}}
	s := generate(t, &ir.Dict{Keys: &ir.String{}, Values: values}, ir.ModeValidation, DefaultConfig())
	requireJSON(t, `{"type":"object","additionalProperties":{"enum":[1,2],"type":"integer"}}`, s)
}

func TestHandlers_Wrappers(t *testing.T) {
	chain := &ir.Chain{Steps: []ir.Node{&ir.String{}, &ir.Int{}}}
	requireJSON(t, `{"type":"string"}`, generate(t, chain, ir.ModeValidation, DefaultConfig()))
	requireJSON(t, `{"type":"integer"}`, generate(t, chain, ir.ModeSerialization, DefaultConfig()))

	ls := &ir.LaxOrStrict{Lax: &ir.String{}, Strict: &ir.Int{}}
	requireJSON(t, `{"type":"string"}`, generate(t, ls, ir.ModeValidation, DefaultConfig()))
	ls.UseStrict = true
	requireJSON(t, `{"type":"integer"}`, generate(t, ls, ir.ModeValidation, DefaultConfig()))

	jp := &ir.JSONOrPython{JSON: &ir.String{}, Python: &ir.IsInstance{Class: "bytes"}}
	requireJSON(t, `{"type":"string"}`, generate(t, jp, ir.ModeValidation, DefaultConfig()))

	fn := &ir.FunctionAfter{Schema: &ir.Int{}, Function: "check"}
	requireJSON(t, `{"type":"integer"}`, generate(t, fn, ir.ModeValidation, DefaultConfig()))
	requireJSON(t, `{"type":"integer"}`, generate(t, &ir.CustomError{Schema: &ir.Int{}}, ir.ModeValidation, DefaultConfig()))

	j := &ir.JSON{Schema: &ir.Int{}}
	requireJSON(t, `{"type":"string","contentMediaType":"application/json","contentSchema":{"type":"integer"}}`,
		generate(t, j, ir.ModeValidation, DefaultConfig()))
	requireJSON(t, `{"type":"integer"}`, generate(t, j, ir.ModeSerialization, DefaultConfig()))
	requireJSON(t, `{}`, generate(t, &ir.JSON{}, ir.ModeSerialization, DefaultConfig()))

	g, err := New(DefaultConfig())
	require.NoError(t, err)
	_, err = g.Generate(&ir.FunctionPlain{Function: "parse"}, ir.ModeValidation)
	assert.True(t, IsInvalidForSchema(err))
}

func TestHandlers_UnionFlattensAndDedupes(t *testing.T) {
	root := &ir.Union{Choices: []ir.Choice{
		{Schema: &ir.Int{}},
		{Schema: &ir.Union{Choices: []ir.Choice{{Schema: &ir.String{}}, {Schema: &ir.Int{}}}}},
		{Schema: &ir.Nullable{Schema: &ir.String{}}},
	}}
	s := generate(t, root, ir.ModeValidation, DefaultConfig())
	requireJSON(t, `{"anyOf":[{"type":"integer"},{"type":"string"},{"type":"null"}]}`, s)
}

func TestHandlers_UnionOmitsSkippedChoices(t *testing.T) {
	hidden := &ir.String{Base: ir.Base{Meta: ir.Metadata{AnnotationFunctions: []ir.Transformer{Skip()}}}}
	root := &ir.Union{Choices: []ir.Choice{{Schema: &ir.Int{}}, {Schema: hidden}}}
	requireJSON(t, `{"type":"integer"}`, generate(t, root, ir.ModeValidation, DefaultConfig()))
}

func TestHandlers_DefaultWrapsRef(t *testing.T) {
	color := &ir.Enum{Base: ref("paint.Color:1"), Name: "Color", Members: []any{"red", "blue"}}
	root := &ir.ModelFields{Fields: []*ir.ModelField{
		field("color", &ir.Default{Schema: color, Default: "red", HasDefault: true}),
	}}
	s := generate(t, root, ir.ModeValidation, DefaultConfig())
	prop := get(t, s, "properties", "color").(*js.Schema)
	requireJSON(t, `{"allOf":[{"$ref":"#/$defs/Color"}],"default":"red"}`, prop)
	assert.False(t, prop.Has("title"))
}

func TestHandlers_DefaultAppliesSerializer(t *testing.T) {
	inner := &ir.Int{Base: ir.Base{Serialization: &ir.Serializer{
		Kind:         ir.SerFunctionPlain,
		ReturnSchema: &ir.String{},
		Function:     func(v any) (any, error) { return "n=" + string(rune('0'+v.(int))), nil },
	}}}
	node := &ir.Default{Schema: inner, Default: 7, HasDefault: true}
	requireJSON(t, `{"type":"string","default":"n=7"}`, generate(t, node, ir.ModeSerialization, DefaultConfig()))
	requireJSON(t, `{"type":"integer","default":7}`, generate(t, node, ir.ModeValidation, DefaultConfig()))
}

func TestHandlers_SerializerSchemas(t *testing.T) {
	node := &ir.Int{Base: ir.Base{Serialization: &ir.Serializer{Kind: ir.SerToString}}}
	requireJSON(t, `{"type":"string"}`, generate(t, node, ir.ModeSerialization, DefaultConfig()))
	requireJSON(t, `{"type":"integer"}`, generate(t, node, ir.ModeValidation, DefaultConfig()))

	plain := &ir.Int{Base: ir.Base{Serialization: &ir.Serializer{Kind: ir.SerFunctionPlain}}}
	requireJSON(t, `{"type":"integer"}`, generate(t, plain, ir.ModeSerialization, DefaultConfig()))
}

func TestHandlers_TypedDict(t *testing.T) {
	node := &ir.TypedDict{
		Total: ptr(false),
		Fields: []*ir.TypedDictField{
			{Name: "user_id", Schema: &ir.Int{}, Required: ptr(true)},
			{Name: "note", Schema: &ir.String{}},
			{Name: "secret", Schema: &ir.String{}, SerializationExclude: true},
			{Name: "nick", Schema: &ir.String{}, ValidationAlias: ir.Alias{Paths: []ir.AliasPath{{"nick", 0}, {"nickname"}}}, SerializationAlias: "nickName"},
		},
		ExtraBehavior: ir.ExtraForbid,
	}
	s := generate(t, node, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, []string{"user_id", "note", "secret", "nickname"}, get(t, s, "properties").(*js.Schema).Keys())
	assert.Equal(t, []any{"user_id"}, get(t, s, "required"))
	assert.Equal(t, "User Id", get(t, s, "properties", "user_id", "title"))
	assert.Equal(t, false, get(t, s, "additionalProperties"))

	s = generate(t, node, ir.ModeSerialization, DefaultConfig())
	assert.Equal(t, []string{"user_id", "note", "nickName"}, get(t, s, "properties").(*js.Schema).Keys())

	cfg := DefaultConfig()
	cfg.ByAlias = false
	s = generate(t, node, ir.ModeValidation, cfg)
	assert.Equal(t, []string{"user_id", "note", "secret", "nick"}, get(t, s, "properties").(*js.Schema).Keys())
}

func TestHandlers_TypedDictClass(t *testing.T) {
	node := &ir.TypedDict{
		Base:   ref("app.Movie:1"),
		Class:  &ir.Class{Name: "Movie"},
		Fields: []*ir.TypedDictField{{Name: "name", Schema: &ir.String{}}},
		Config: ir.ModelConfig{Extra: ir.ExtraAllow},
	}
	s := generate(t, node, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, "Movie", get(t, s, "title"))
	assert.Equal(t, true, get(t, s, "additionalProperties"))
	assert.Equal(t, []any{"name"}, get(t, s, "required"))
}

func TestHandlers_ModelClassSettings(t *testing.T) {
	m := model("app.Item:1", "Item", field("name", &ir.String{}))
	m.Class.Deprecated = true
	m.Config = ir.ModelConfig{
		Title:       "Catalog Item",
		Extra:       ir.ExtraForbid,
		SchemaExtra: js.FromPairs("examples", []any{js.FromPairs("name", "pen")}),
	}
	s := generate(t, m, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, "Catalog Item", get(t, s, "title"))
	assert.Equal(t, false, get(t, s, "additionalProperties"))
	assert.Equal(t, true, get(t, s, "deprecated"))
	assert.Len(t, get(t, s, "examples"), 1)
}

func TestHandlers_ModelSchemaExtraFunc(t *testing.T) {
	m := model("app.Item:1", "Item", field("name", &ir.String{}))
	m.Config.SchemaExtraFunc = func(s *js.Schema) error {
		s.Delete("required")
		s.Set("x-kind", "item")
		return nil
	}
	s := generate(t, m, ir.ModeValidation, DefaultConfig())
	assert.False(t, s.Has("required"))
	assert.Equal(t, "item", get(t, s, "x-kind"))
}

func TestHandlers_RootModelExtraConflict(t *testing.T) {
	m := &ir.Model{
		Base:           ref("app.Tags:1"),
		Class:          ir.Class{Name: "Tags"},
		Schema:         &ir.List{Items: &ir.String{}},
		RootModel:      true,
		RootFieldExtra: &ir.RootExtra{Patch: js.FromPairs("minItems", 1)},
	}
	s := generate(t, m, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, 1, get(t, s, "minItems"))

	m.Config.SchemaExtra = js.FromPairs("x", 1)
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	_, err = g.Generate(m, ir.ModeValidation)
	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, CodeSchemaExtraConflict, ue.Code)
}

func TestHandlers_ModelExtrasSchema(t *testing.T) {
	m := &ir.Model{
		Base:  ref("app.Bag:1"),
		Class: ir.Class{Name: "Bag"},
		Schema: &ir.ModelFields{
			Fields:       []*ir.ModelField{field("id", &ir.Int{})},
			ExtrasSchema: &ir.Int{},
		},
	}
	s := generate(t, m, ir.ModeValidation, DefaultConfig())
	requireJSON(t, `{"type":"integer"}`, get(t, s, "additionalProperties").(*js.Schema))
}

func TestHandlers_ModelModeOverride(t *testing.T) {
	m := &ir.Model{
		Base:  ref("app.Out:1"),
		Class: ir.Class{Name: "Out"},
		Schema: &ir.ModelFields{
			Fields:         []*ir.ModelField{field("id", &ir.Int{})},
			ComputedFields: []*ir.ComputedField{{PropertyName: "label", ReturnSchema: &ir.String{}}},
		},
		Config: ir.ModelConfig{ModeOverride: ir.ModeSerialization},
	}
	s := generate(t, m, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, []string{"id", "label"}, get(t, s, "properties").(*js.Schema).Keys())
}

func TestHandlers_Dataclass(t *testing.T) {
	dc := &ir.Dataclass{
		Base:  ref("app.Point:1"),
		Class: ir.Class{Name: "Point", Doc: "A point."},
		Schema: &ir.DataclassArgs{Fields: []*ir.DataclassField{
			{Name: "x", Schema: &ir.Float{}},
			{Name: "y", Schema: &ir.Default{Schema: &ir.Float{}, Default: 0.5, HasDefault: true}},
			{Name: "cache", Schema: &ir.Any{}, Init: ptr(false)},
			{Name: "seed", Schema: &ir.Int{}, InitOnly: true},
		}},
	}
	s := generate(t, dc, ir.ModeValidation, DefaultConfig())
	assert.Equal(t, "Point", get(t, s, "title"))
	assert.Equal(t, "A point.", get(t, s, "description"))
	assert.Equal(t, []string{"x", "y", "seed"}, get(t, s, "properties").(*js.Schema).Keys())
	assert.Equal(t, []any{"x", "seed"}, get(t, s, "required"))

	dc.Class.Plain = true
	s = generate(t, dc, ir.ModeSerialization, DefaultConfig())
	assert.False(t, s.Has("description"))
	assert.Equal(t, []string{"x", "y", "cache"}, get(t, s, "properties").(*js.Schema).Keys())
}

func TestHandlers_FieldRefOverrides(t *testing.T) {
	color := &ir.Enum{Base: ref("paint.Color:1"), Name: "Color", Members: []any{"red"}}
	withDup := &ir.ModelField{Name: "a", Schema: color, Base: ir.Base{Meta: ir.Metadata{
		AnnotationFunctions: []ir.Transformer{Patch(js.FromPairs("title", "Color"))},
	}}}
	withNew := &ir.ModelField{Name: "b", Schema: &ir.DefinitionRef{SchemaRef: "paint.Color:1"}, Base: ir.Base{Meta: ir.Metadata{
		AnnotationFunctions: []ir.Transformer{Patch(js.FromPairs("description", "Second color."))},
	}}}
	root := &ir.ModelFields{Fields: []*ir.ModelField{withDup, withNew}}
	s := generate(t, root, ir.ModeValidation, DefaultConfig())
	requireJSON(t, `{"$ref":"#/$defs/Color"}`, get(t, s, "properties", "a").(*js.Schema))
	requireJSON(t, `{"allOf":[{"$ref":"#/$defs/Color"}],"description":"Second color."}`, get(t, s, "properties", "b").(*js.Schema))
}

func TestHandlers_Arguments(t *testing.T) {
	args := &ir.Arguments{Parameters: []ir.Parameter{
		{Name: "first_name", Schema: &ir.String{}},
		{Name: "age", Schema: &ir.Default{Schema: &ir.Int{}, Default: 18, HasDefault: true}, Mode: ir.KeywordOnly, Alias: "years"},
	}}
	s := generate(t, &ir.Call{Arguments: args, ReturnSchema: &ir.Any{}}, ir.ModeValidation, DefaultConfig())
	requireJSON(t, `{
		"type":"object",
		"properties":{
			"first_name":{"type":"string","title":"First Name"},
			"years":{"type":"integer","default":18,"title":"Years"}
		},
		"required":["first_name"],
		"additionalProperties":false
	}`, s)

	pos := &ir.Arguments{
		Parameters: []ir.Parameter{{Name: "x", Schema: &ir.Int{}, Mode: ir.PositionalOnly}},
		VarArgs:    &ir.String{},
	}
	requireJSON(t, `{"type":"array","prefixItems":[{"type":"integer","title":"X"}],"minItems":1,"items":{"type":"string"}}`,
		generate(t, pos, ir.ModeValidation, DefaultConfig()))

	prefer := &ir.Arguments{
		Base:       ir.Base{Meta: ir.Metadata{PreferPositionalArguments: true}},
		Parameters: []ir.Parameter{{Name: "x", Schema: &ir.Int{}}},
	}
	requireJSON(t, `{"type":"array","prefixItems":[{"type":"integer","title":"X"}],"minItems":1,"maxItems":1}`,
		generate(t, prefer, ir.ModeValidation, DefaultConfig()))

	mixed := &ir.Arguments{Parameters: []ir.Parameter{
		{Name: "a", Schema: &ir.Int{}, Mode: ir.PositionalOnly},
		{Name: "b", Schema: &ir.Int{}, Mode: ir.KeywordOnly},
	}}
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	_, err = g.Generate(mixed, ir.ModeValidation)
	assert.True(t, IsInvalidForSchema(err))
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "First Name", titleFromName("first_name"))
	assert.Equal(t, "Id", titleFromName("id"))
	assert.Equal(t, "Userid", titleFromName("userID"))
	assert.Equal(t, "Field1Name", titleFromName("field1name"))
	assert.Equal(t, "Private", titleFromName("_private"))
	assert.Equal(t, "Ipv4 Addr", titleFromName("ipv4_addr"))
}
