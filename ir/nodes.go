package ir

import js "github.com/reoring/schemagen/jsonschema"

// Type is the discriminant tag of a node variant.
type Type string

const (
	TypeAny            Type = "any"
	TypeNone           Type = "none"
	TypeBool           Type = "bool"
	TypeInt            Type = "int"
	TypeFloat          Type = "float"
	TypeDecimal        Type = "decimal"
	TypeString         Type = "str"
	TypeBytes          Type = "bytes"
	TypeDate           Type = "date"
	TypeTime           Type = "time"
	TypeDatetime       Type = "datetime"
	TypeTimedelta      Type = "timedelta"
	TypeLiteral        Type = "literal"
	TypeEnum           Type = "enum"
	TypeIsInstance     Type = "is-instance"
	TypeIsSubclass     Type = "is-subclass"
	TypeCallable       Type = "callable"
	TypeList           Type = "list"
	TypeTuple          Type = "tuple"
	TypeSet            Type = "set"
	TypeFrozenSet      Type = "frozenset"
	TypeGenerator      Type = "generator"
	TypeDict           Type = "dict"
	TypeFunctionBefore Type = "function-before"
	TypeFunctionAfter  Type = "function-after"
	TypeFunctionWrap   Type = "function-wrap"
	TypeFunctionPlain  Type = "function-plain"
	TypeDefault        Type = "default"
	TypeNullable       Type = "nullable"
	TypeUnion          Type = "union"
	TypeTaggedUnion    Type = "tagged-union"
	TypeChain          Type = "chain"
	TypeLaxOrStrict    Type = "lax-or-strict"
	TypeJSONOrPython   Type = "json-or-python"
	TypeTypedDict      Type = "typed-dict"
	TypeModel          Type = "model"
	TypeModelFields    Type = "model-fields"
	TypeDataclass      Type = "dataclass"
	TypeDataclassArgs  Type = "dataclass-args"
	TypeArguments      Type = "arguments"
	TypeCall           Type = "call"
	TypeCustomError    Type = "custom-error"
	TypeJSON           Type = "json"
	TypeURL            Type = "url"
	TypeMultiHostURL   Type = "multi-host-url"
	TypeUUID           Type = "uuid"
	TypeDefinitions    Type = "definitions"
	TypeDefinitionRef  Type = "definition-ref"

	TypeTypedDictField Type = "typed-dict-field"
	TypeModelField     Type = "model-field"
	TypeDataclassField Type = "dataclass-field"
	TypeComputedField  Type = "computed-field"
)

// AllTypes lists every tag a generator must be able to handle.
var AllTypes = []Type{
	TypeAny, TypeNone, TypeBool, TypeInt, TypeFloat, TypeDecimal, TypeString,
	TypeBytes, TypeDate, TypeTime, TypeDatetime, TypeTimedelta, TypeLiteral,
	TypeEnum, TypeIsInstance, TypeIsSubclass, TypeCallable, TypeList,
	TypeTuple, TypeSet, TypeFrozenSet, TypeGenerator, TypeDict,
	TypeFunctionBefore, TypeFunctionAfter, TypeFunctionWrap,
	TypeFunctionPlain, TypeDefault, TypeNullable, TypeUnion, TypeTaggedUnion,
	TypeChain, TypeLaxOrStrict, TypeJSONOrPython, TypeTypedDict, TypeModel,
	TypeModelFields, TypeDataclass, TypeDataclassArgs, TypeArguments,
	TypeCall, TypeCustomError, TypeJSON, TypeURL, TypeMultiHostURL, TypeUUID,
	TypeDefinitions, TypeDefinitionRef, TypeTypedDictField, TypeModelField,
	TypeDataclassField, TypeComputedField,
}

// IsField reports whether t is one of the field forms. Fields never carry
// definitions of their own.
func IsField(t Type) bool {
	switch t {
	case TypeTypedDictField, TypeModelField, TypeDataclassField, TypeComputedField:
		return true
	}
	return false
}

type Any struct{ Base }

func (*Any) Type() Type { return TypeAny }

type None struct{ Base }

func (*None) Type() Type { return TypeNone }

type Bool struct{ Base }

func (*Bool) Type() Type { return TypeBool }

type Int struct {
	Base
	MultipleOf, Le, Ge, Lt, Gt *int64
}

func (*Int) Type() Type { return TypeInt }

type Float struct {
	Base
	AllowInfNaN                *bool
	MultipleOf, Le, Ge, Lt, Gt *float64
}

func (*Float) Type() Type { return TypeFloat }

type Decimal struct {
	Base
	AllowInfNaN                *bool
	MultipleOf, Le, Ge, Lt, Gt *float64
	MaxDigits, DecimalPlaces   *int
}

func (*Decimal) Type() Type { return TypeDecimal }

type String struct {
	Base
	MinLength, MaxLength *int
	Pattern              string
}

func (*String) Type() Type { return TypeString }

type Bytes struct {
	Base
	MinLength, MaxLength *int
}

func (*Bytes) Type() Type { return TypeBytes }

// Date bounds are JSON-compatible values (usually ISO date strings).
type Date struct {
	Base
	Le, Ge, Lt, Gt any
}

func (*Date) Type() Type { return TypeDate }

type Time struct{ Base }

func (*Time) Type() Type { return TypeTime }

type Datetime struct{ Base }

func (*Datetime) Type() Type { return TypeDatetime }

type Timedelta struct{ Base }

func (*Timedelta) Type() Type { return TypeTimedelta }

// Literal accepts exactly the Expected values.
type Literal struct {
	Base
	Expected []any
}

func (*Literal) Type() Type { return TypeLiteral }

// Enum is a named enumeration. SubType ("str", "int", "float") records a
// mixed-in member type.
type Enum struct {
	Base
	Name        string
	Description string
	Members     []any
	SubType     string
}

func (*Enum) Type() Type { return TypeEnum }

type IsInstance struct {
	Base
	Class string
}

func (*IsInstance) Type() Type { return TypeIsInstance }

type IsSubclass struct {
	Base
	Class string
}

func (*IsSubclass) Type() Type { return TypeIsSubclass }

type Callable struct{ Base }

func (*Callable) Type() Type { return TypeCallable }

type List struct {
	Base
	Items                Node
	MinLength, MaxLength *int
}

func (*List) Type() Type { return TypeList }

// Tuple is positional unless VariadicIndex is set, in which case the item
// at that index repeats.
type Tuple struct {
	Base
	Items                []Node
	VariadicIndex        *int
	MinLength, MaxLength *int
}

func (*Tuple) Type() Type { return TypeTuple }

type Set struct {
	Base
	Items                Node
	MinLength, MaxLength *int
}

func (*Set) Type() Type { return TypeSet }

type FrozenSet struct {
	Base
	Items                Node
	MinLength, MaxLength *int
}

func (*FrozenSet) Type() Type { return TypeFrozenSet }

// Generator is a lazily consumed sequence.
type Generator struct {
	Base
	Items                Node
	MinLength, MaxLength *int
}

func (*Generator) Type() Type { return TypeGenerator }

type Dict struct {
	Base
	Keys, Values         Node
	MinLength, MaxLength *int
}

func (*Dict) Type() Type { return TypeDict }

type FunctionBefore struct {
	Base
	Schema   Node
	Function string
}

func (*FunctionBefore) Type() Type { return TypeFunctionBefore }

type FunctionAfter struct {
	Base
	Schema   Node
	Function string
}

func (*FunctionAfter) Type() Type { return TypeFunctionAfter }

type FunctionWrap struct {
	Base
	Schema   Node
	Function string
}

func (*FunctionWrap) Type() Type { return TypeFunctionWrap }

// FunctionPlain has no inner schema and cannot be represented without an
// override.
type FunctionPlain struct {
	Base
	Function string
}

func (*FunctionPlain) Type() Type { return TypeFunctionPlain }

// Default attaches a default value to Schema. HasDefault distinguishes a
// nil default from a default factory.
type Default struct {
	Base
	Schema     Node
	Default    any
	HasDefault bool
}

func (*Default) Type() Type { return TypeDefault }

type Nullable struct {
	Base
	Schema Node
}

func (*Nullable) Type() Type { return TypeNullable }

// Choice is one union member with an optional label.
type Choice struct {
	Label  string
	Schema Node
}

type Union struct {
	Base
	Choices []Choice
}

func (*Union) Type() Type { return TypeUnion }

// TaggedChoice is one tagged-union member keyed by its tag value.
type TaggedChoice struct {
	Tag    any
	Schema Node
}

// Discriminator names the tag field either directly (Field) or as a list
// of alias paths (Paths), one per possible spelling.
type Discriminator struct {
	Field string
	Paths []AliasPath
	// Func marks a callable discriminator; no property name can be inferred.
	Func bool
}

type TaggedUnion struct {
	Base
	Choices       []TaggedChoice
	Discriminator Discriminator
}

func (*TaggedUnion) Type() Type { return TypeTaggedUnion }

type Chain struct {
	Base
	Steps []Node
}

func (*Chain) Type() Type { return TypeChain }

type LaxOrStrict struct {
	Base
	Lax, Strict Node
	UseStrict   bool
}

func (*LaxOrStrict) Type() Type { return TypeLaxOrStrict }

type JSONOrPython struct {
	Base
	JSON, Python Node
}

func (*JSONOrPython) Type() Type { return TypeJSONOrPython }

// TypedDict is a structured mapping. Total defaults to true when nil.
type TypedDict struct {
	Base
	Class          *Class
	Fields         []*TypedDictField
	ComputedFields []*ComputedField
	Total          *bool
	ExtraBehavior  ExtraBehavior
	Config         ModelConfig
}

func (*TypedDict) Type() Type { return TypeTypedDict }

// Model wraps the fields node of a record type with its class information.
type Model struct {
	Base
	Class  Class
	Schema Node
	Config ModelConfig
	// RootModel marks a model whose schema is a single root field.
	RootModel bool
	// RootFieldExtra is the json-schema-extra of the root field; it may not
	// be combined with Config.SchemaExtra.
	RootFieldExtra *RootExtra
}

func (*Model) Type() Type { return TypeModel }

// RootExtra is a static patch or function for root model schemas.
type RootExtra struct {
	Patch *js.Schema
	Func  func(s *js.Schema) error
}

type ModelFields struct {
	Base
	Fields         []*ModelField
	ComputedFields []*ComputedField
	ExtrasSchema   Node
}

func (*ModelFields) Type() Type { return TypeModelFields }

type Dataclass struct {
	Base
	Class  Class
	Schema Node
	Config ModelConfig
}

func (*Dataclass) Type() Type { return TypeDataclass }

type DataclassArgs struct {
	Base
	Fields         []*DataclassField
	ComputedFields []*ComputedField
}

func (*DataclassArgs) Type() Type { return TypeDataclassArgs }

// ArgumentMode is how a function parameter may be passed.
type ArgumentMode string

const (
	ArgumentModeUnset   ArgumentMode = ""
	PositionalOnly      ArgumentMode = "positional_only"
	PositionalOrKeyword ArgumentMode = "positional_or_keyword"
	KeywordOnly         ArgumentMode = "keyword_only"
)

type Parameter struct {
	Name   string
	Schema Node
	Mode   ArgumentMode
	Alias  string
}

type Arguments struct {
	Base
	Parameters []Parameter
	VarArgs    Node
	VarKwargs  Node
}

func (*Arguments) Type() Type { return TypeArguments }

type Call struct {
	Base
	Arguments    Node
	ReturnSchema Node
}

func (*Call) Type() Type { return TypeCall }

type CustomError struct {
	Base
	Schema Node
}

func (*CustomError) Type() Type { return TypeCustomError }

// JSON is a string holding JSON that must match Schema (Any when nil).
type JSON struct {
	Base
	Schema Node
}

func (*JSON) Type() Type { return TypeJSON }

type URL struct {
	Base
	MaxLength *int
}

func (*URL) Type() Type { return TypeURL }

type MultiHostURL struct {
	Base
	MaxLength *int
}

func (*MultiHostURL) Type() Type { return TypeMultiHostURL }

type UUID struct{ Base }

func (*UUID) Type() Type { return TypeUUID }

// Definitions introduces ref-bearing nodes that Schema, and each other, may
// point at through DefinitionRef.
type Definitions struct {
	Base
	Definitions []Node
	Schema      Node
}

func (*Definitions) Type() Type { return TypeDefinitions }

// DefinitionRef points at the node whose Ref equals SchemaRef.
type DefinitionRef struct {
	Base
	SchemaRef string
}

func (*DefinitionRef) Type() Type { return TypeDefinitionRef }
