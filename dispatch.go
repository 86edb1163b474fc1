package schemagen

import (
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// HandlerFunc produces the fragment for one node type. It is called with
// nodes of exactly that type and recurses through g.GenerateInner.
type HandlerFunc func(g *Generator, n ir.Node) (*js.Schema, error)

func builtinHandlers() map[ir.Type]HandlerFunc {
	return map[ir.Type]HandlerFunc{
		ir.TypeAny:            anySchema,
		ir.TypeNone:           noneSchema,
		ir.TypeBool:           boolSchema,
		ir.TypeInt:            intSchema,
		ir.TypeFloat:          floatSchema,
		ir.TypeDecimal:        decimalSchema,
		ir.TypeString:         stringSchema,
		ir.TypeBytes:          bytesSchema,
		ir.TypeDate:           dateSchema,
		ir.TypeTime:           timeSchema,
		ir.TypeDatetime:       datetimeSchema,
		ir.TypeTimedelta:      timedeltaSchema,
		ir.TypeLiteral:        literalSchema,
		ir.TypeEnum:           enumSchema,
		ir.TypeIsInstance:     isInstanceSchema,
		ir.TypeIsSubclass:     isSubclassSchema,
		ir.TypeCallable:       callableSchema,
		ir.TypeList:           listSchema,
		ir.TypeTuple:          tupleSchema,
		ir.TypeSet:            setSchema,
		ir.TypeFrozenSet:      frozenSetSchema,
		ir.TypeGenerator:      generatorSchema,
		ir.TypeDict:           dictSchema,
		ir.TypeFunctionBefore: functionSchema,
		ir.TypeFunctionAfter:  functionSchema,
		ir.TypeFunctionWrap:   functionSchema,
		ir.TypeFunctionPlain:  functionSchema,
		ir.TypeDefault:        defaultSchema,
		ir.TypeNullable:       nullableSchema,
		ir.TypeUnion:          unionSchema,
		ir.TypeTaggedUnion:    taggedUnionSchema,
		ir.TypeChain:          chainSchema,
		ir.TypeLaxOrStrict:    laxOrStrictSchema,
		ir.TypeJSONOrPython:   jsonOrPythonSchema,
		ir.TypeTypedDict:      typedDictSchema,
		ir.TypeModel:          modelSchema,
		ir.TypeModelFields:    modelFieldsSchema,
		ir.TypeDataclass:      dataclassSchema,
		ir.TypeDataclassArgs:  dataclassArgsSchema,
		ir.TypeArguments:      argumentsSchema,
		ir.TypeCall:           callSchema,
		ir.TypeCustomError:    customErrorSchema,
		ir.TypeJSON:           jsonSchema,
		ir.TypeURL:            urlSchema,
		ir.TypeMultiHostURL:   multiHostURLSchema,
		ir.TypeUUID:           uuidSchema,
		ir.TypeDefinitions:    definitionsSchema,
		ir.TypeDefinitionRef:  definitionRefSchema,

		ir.TypeTypedDictField: fieldSchema,
		ir.TypeModelField:     fieldSchema,
		ir.TypeDataclassField: fieldSchema,
		ir.TypeComputedField:  fieldSchema,
	}
}

// DefaultHandler returns the built-in handler for t, so an override can
// delegate to it. It returns nil for unknown types.
func DefaultHandler(t ir.Type) HandlerFunc { return builtinHandlers()[t] }

// serSchema returns the fragment described by a serializer, or nil when the
// serializer does not change the schema.
func (g *Generator) serSchema(ser *ir.Serializer) (*js.Schema, error) {
	switch ser.Kind {
	case ir.SerFunctionPlain, ir.SerFunctionWrap:
		if ser.ReturnSchema != nil {
			return g.GenerateInner(ser.ReturnSchema)
		}
	case ir.SerFormat, ir.SerToString:
		return js.FromPairs("type", "string"), nil
	case ir.SerModel:
		if ser.Schema != nil {
			return g.GenerateInner(ser.Schema)
		}
	}
	return nil, nil
}
