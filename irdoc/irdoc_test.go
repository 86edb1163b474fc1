package irdoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

func readFile(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func generate(t *testing.T, n ir.Node, mode ir.Mode) string {
	t.Helper()
	doc, _, err := schemagen.GenerateSchema(n, mode, schemagen.DefaultConfig())
	require.NoError(t, err)
	raw, err := doc.MarshalJSON()
	require.NoError(t, err)
	return string(raw)
}

func decodeJSON(t *testing.T, src string) (ir.Node, Diag) {
	t.Helper()
	n, diag, err := Decode([]byte(src), FormatJSON)
	require.NoError(t, err)
	return n, diag
}

func TestDecode_TeamMatchesGolden(t *testing.T) {
	golden := readFile(t, "../../testdata/golden/team_validation.golden")

	for _, tc := range []struct {
		file   string
		format Format
	}{
		{"team.json", FormatJSON},
		{"team.yaml", FormatYAML},
	} {
		t.Run(tc.file, func(t *testing.T) {
			n, diag, err := Decode(readFile(t, tc.file), tc.format)
			require.NoError(t, err)
			assert.False(t, diag.HasWarnings(), "%v", diag.Warnings())
			assert.JSONEq(t, string(golden), generate(t, n, ir.ModeValidation))
		})
	}
}

func TestDecode_Msgpack(t *testing.T) {
	v, err := js.DecodeJSON(readFile(t, "team.json"))
	require.NoError(t, err)
	raw, err := msgpack.Marshal(v)
	require.NoError(t, err)

	fromPack, _, err := Decode(raw, FormatMsgpack)
	require.NoError(t, err)
	fromJSON, _ := decodeJSON(t, string(readFile(t, "team.json")))
	assert.JSONEq(t, generate(t, fromJSON, ir.ModeValidation), generate(t, fromPack, ir.ModeValidation))
}

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"int bounds", `{"type":"int","ge":1,"lt":10,"multiple_of":2}`, `{"type":"integer","minimum":1,"exclusiveMaximum":10,"multipleOf":2}`},
		{"float", `{"type":"float","le":1.5}`, `{"type":"number","maximum":1.5}`},
		{"string", `{"type":"str","min_length":2,"pattern":"^a"}`, `{"type":"string","minLength":2,"pattern":"^a"}`},
		{"literal", `{"type":"literal","expected":["a","b"]}`, `{"type":"string","enum":["a","b"]}`},
		{"tuple", `{"type":"tuple","items_schema":[{"type":"int"},{"type":"str"}]}`,
			`{"type":"array","prefixItems":[{"type":"integer"},{"type":"string"}],"minItems":2,"maxItems":2}`},
		{"dict", `{"type":"dict","keys_schema":{"type":"str"},"values_schema":{"type":"int"}}`,
			`{"type":"object","additionalProperties":{"type":"integer"}}`},
		{"labeled union", `{"type":"union","choices":[[{"type":"int"},"num"],{"type":"none"}]}`,
			`{"anyOf":[{"type":"integer"},{"type":"null"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := decodeJSON(t, tt.doc)
			assert.JSONEq(t, tt.want, generate(t, n, ir.ModeValidation))
		})
	}
}

func TestDecode_TaggedUnionForms(t *testing.T) {
	cat := `{"type":"typed-dict","fields":[{"name":"kind","schema":{"type":"literal","expected":["cat"]}}]}`
	dog := `{"type":"typed-dict","fields":[{"name":"kind","schema":{"type":"literal","expected":["dog"]}}]}`

	byObject, _ := decodeJSON(t, `{"type":"tagged-union","discriminator":"kind","choices":{"cat":`+cat+`,"dog":`+dog+`}}`)
	byList, _ := decodeJSON(t, `{"type":"tagged-union","discriminator":[["kind"]],"choices":[{"tag":"cat","schema":`+cat+`},{"tag":"dog","schema":`+dog+`}]}`)

	tu := byObject.(*ir.TaggedUnion)
	assert.Equal(t, "kind", tu.Discriminator.Field)
	require.Len(t, tu.Choices, 2)
	assert.Equal(t, "cat", tu.Choices[0].Tag)

	tl := byList.(*ir.TaggedUnion)
	assert.Equal(t, []ir.AliasPath{{"kind"}}, tl.Discriminator.Paths)
	assert.JSONEq(t, generate(t, byObject, ir.ModeValidation), generate(t, byList, ir.ModeValidation))

	shorthand, _ := decodeJSON(t, `{"type":"tagged-union","discriminator":["kind"],"choices":{"cat":`+cat+`,"dog":`+dog+`}}`)
	assert.Equal(t, ir.Discriminator{Field: "kind"}, shorthand.(*ir.TaggedUnion).Discriminator)

	missing, _ := decodeJSON(t, `{"type":"tagged-union","discriminator":[["species"]],"choices":{"cat":`+cat+`,"dog":`+dog+`}}`)
	assert.Equal(t, []ir.AliasPath{{"species"}}, missing.(*ir.TaggedUnion).Discriminator.Paths)
	assert.NotContains(t, generate(t, missing, ir.ModeValidation), "discriminator")
}

func TestDecode_FieldAttributes(t *testing.T) {
	n, diag := decodeJSON(t, `{
		"type": "dataclass-args",
		"fields": [
			{"name": "user_id", "schema": {"type": "int"}, "validation_alias": [["meta", 0], "uid"], "kw_only": true},
			{"type": "dataclass-field", "name": "secret", "schema": {"type": "str"}, "init": false, "serialization_exclude": true}
		],
		"computed_fields": [{"property_name": "total", "return_schema": {"type": "float"}, "alias": "Total"}]
	}`)
	assert.False(t, diag.HasWarnings())
	args := n.(*ir.DataclassArgs)
	require.Len(t, args.Fields, 2)
	f := args.Fields[0]
	assert.Equal(t, ir.Alias{Paths: []ir.AliasPath{{"meta", 0}, {"uid"}}}, f.ValidationAlias)
	require.NotNil(t, f.KwOnly)
	assert.True(t, *f.KwOnly)
	assert.False(t, *args.Fields[1].Init)
	assert.True(t, args.Fields[1].SerializationExclude)
	require.Len(t, args.ComputedFields, 1)
	assert.Equal(t, "Total", args.ComputedFields[0].Alias)
}

func TestDecode_ModelConfig(t *testing.T) {
	n, _ := decodeJSON(t, `{
		"type": "model",
		"ref": "app.Pet:1",
		"cls": {"name": "Pet", "doc": "A pet.", "deprecated": true},
		"config": {"title": "Animal", "extra_fields_behavior": "forbid", "json_schema_extra": {"x-kind": "pet"}},
		"schema": {"type": "model-fields", "fields": [{"name": "name", "schema": {"type": "str"}}]}
	}`)
	assert.JSONEq(t, `{
		"type": "object",
		"title": "Animal",
		"description": "A pet.",
		"deprecated": true,
		"additionalProperties": false,
		"x-kind": "pet",
		"properties": {"name": {"title": "Name", "type": "string"}},
		"required": ["name"]
	}`, generate(t, n, ir.ModeValidation))
}

func TestDecode_MetadataHooks(t *testing.T) {
	n, _ := decodeJSON(t, `{
		"type": "model-fields",
		"fields": [
			{"name": "id", "schema": {"type": "int"}, "metadata": {"json_schema_extra": {"description": "Key."}, "examples": [1, 2]}},
			{"name": "hidden", "schema": {"type": "str"}, "metadata": {"skip": true}},
			{"name": "gone", "schema": {"type": "str"}, "metadata": {"json_schema": null}},
			{"name": "raw", "schema": {"type": "any", "metadata": {"json_schema": {"type": "string", "format": "binary"}, "json_schema_mode": "serialization"}}}
		]
	}`)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"id": {"type": "integer", "title": "Id", "description": "Key.", "examples": [1, 2]},
			"raw": {"title": "Raw"}
		},
		"required": ["id", "raw"]
	}`, generate(t, n, ir.ModeValidation))

	n, _ = decodeJSON(t, `{"type":"any","metadata":{"json_schema":{"type":"string","format":"binary"},"json_schema_mode":"serialization"}}`)
	assert.JSONEq(t, `{"type":"string","format":"binary"}`, generate(t, n, ir.ModeSerialization))
}

func TestDecode_Serialization(t *testing.T) {
	n, _ := decodeJSON(t, `{"type":"int","serialization":{"type":"to-string"}}`)
	assert.JSONEq(t, `{"type":"string"}`, generate(t, n, ir.ModeSerialization))
	assert.JSONEq(t, `{"type":"integer"}`, generate(t, n, ir.ModeValidation))
}

func TestDecode_UnknownKeysWarn(t *testing.T) {
	_, diag := decodeJSON(t, `{"type":"list","items_schema":{"type":"str","colour":"red"},"size":3}`)
	require.True(t, diag.HasWarnings())
	assert.Equal(t, []string{
		`/items_schema: unknown key "colour" ignored`,
		`/: unknown key "size" ignored`,
	}, diag.Warnings())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		pointer string
	}{
		{"bad constraint", `{"type":"str","min_length":"two"}`, "/min_length"},
		{"negative length", `{"type":"list","max_length":-1}`, "/max_length"},
		{"missing inner", `{"type":"nullable"}`, "/schema"},
		{"not an object", `{"type":"list","items_schema":3}`, "/items_schema"},
		{"no type", `{"type":"chain","steps":[{"ge":1}]}`, "/steps/0"},
		{"field without name", `{"type":"model-fields","fields":[{"schema":{"type":"int"}}]}`, "/fields/0/name"},
		{"wrong field type", `{"type":"model-fields","fields":[{"type":"typed-dict-field","name":"a","schema":{"type":"int"}}]}`, "/fields/0/type"},
		{"bad mode", `{"type":"int","metadata":{"json_schema_mode":"both"}}`, "/metadata/json_schema_mode"},
		{"bad serializer", `{"type":"int","serialization":{"type":"pickle"}}`, "/serialization/type"},
		{"bad extra", `{"type":"typed-dict","extra_behavior":"keep","fields":[]}`, "/extra_behavior"},
		{"missing schema_ref", `{"type":"definition-ref"}`, "/schema_ref"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.doc), FormatJSON)
			var pe *PathError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.pointer, pe.Pointer)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, _, err := Decode([]byte(`{"type":"model-fields","fields":[{"name":"a","schema":{"type":"complex"}}]}`), FormatJSON)
	require.ErrorIs(t, err, ErrUnknownType)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "/fields/0/schema/type", pe.Pointer)
	assert.Equal(t, `irdoc: /fields/0/schema/type: unknown node type "complex"`, err.Error())
}

func TestDecode_DuplicateYAMLKey(t *testing.T) {
	_, _, err := Decode([]byte("type: int\nge: 1\nge: 2\n"), FormatYAML)
	var dup *js.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "ge", dup.Key)
	assert.Equal(t, 3, dup.Line)
}

func TestDecode_RejectsStreams(t *testing.T) {
	_, _, err := Decode([]byte("type: int\n---\ntype: str\n"), FormatYAML)
	require.Error(t, err)
}

func TestDecodeInputs_YAMLStream(t *testing.T) {
	inputs, _, err := DecodeInputs(readFile(t, "inputs.yaml"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, ir.ModeValidation, inputs[0].Mode)
	assert.Equal(t, ir.ModeSerialization, inputs[1].Mode)

	schemas, doc, err := schemagen.GenerateSchemas(inputs, schemagen.DefaultConfig(), "", "")
	require.NoError(t, err)
	in := schemas[schemagen.InputKey{Key: "User", Mode: ir.ModeValidation}]
	out := schemas[schemagen.InputKey{Key: "User", Mode: ir.ModeSerialization}]
	require.NotNil(t, in)
	require.NotNil(t, out)
	defs, ok := doc.Get("$defs")
	require.True(t, ok)
	assert.Equal(t, 1, defs.(*js.Schema).Len())
	assert.True(t, in.Equal(out))
}

func TestDecodeInputs_InputsList(t *testing.T) {
	src := `{"inputs":[
		{"key":"A","schema":{"type":"int"}},
		{"key":"B","mode":"serialization","schema":{"type":"str"}}
	]}`
	inputs, _, err := DecodeInputs([]byte(src), FormatJSON)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "A", inputs[0].Key)
	assert.Equal(t, ir.ModeValidation, inputs[0].Mode)
	assert.Equal(t, ir.ModeSerialization, inputs[1].Mode)

	_, _, err = DecodeInputs([]byte(`{"inputs":[{"schema":{"type":"int"}}]}`), FormatJSON)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "/inputs/0/key", pe.Pointer)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":     FormatJSON,
		"dir/b.YAML": FormatYAML,
		"c.yml":      FormatYAML,
		"d.msgpack":  FormatMsgpack,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("noext")
	require.Error(t, err)
	_, err = FormatFromPath("x.toml")
	require.Error(t, err)
}
