package ir

// Field is implemented by the four field forms. Fields appear only inside
// their owning structured node and are generated through the same override
// chain as any other node.
type Field interface {
	Node
	// FieldName is the declared name before alias resolution.
	FieldName() string
	// Inner is the schema generated for the field's value.
	Inner() Node
}

// TypedDictField is a field of a typed mapping. Required falls back to the
// mapping's Total flag when nil.
type TypedDictField struct {
	Base
	Name                 string
	Schema               Node
	Required             *bool
	ValidationAlias      Alias
	SerializationAlias   string
	SerializationExclude bool
}

func (*TypedDictField) Type() Type          { return TypeTypedDictField }
func (f *TypedDictField) FieldName() string { return f.Name }
func (f *TypedDictField) Inner() Node       { return f.Schema }

// ModelField is a field of a record type.
type ModelField struct {
	Base
	Name                 string
	Schema               Node
	ValidationAlias      Alias
	SerializationAlias   string
	SerializationExclude bool
	Frozen               bool
}

func (*ModelField) Type() Type          { return TypeModelField }
func (f *ModelField) FieldName() string { return f.Name }
func (f *ModelField) Inner() Node       { return f.Schema }

// DataclassField is a field of a dataclass. Fields with Init false are not
// accepted on input; InitOnly fields are never serialized.
type DataclassField struct {
	Base
	Name                 string
	Schema               Node
	KwOnly               *bool
	Init                 *bool
	InitOnly             bool
	ValidationAlias      Alias
	SerializationAlias   string
	SerializationExclude bool
}

func (*DataclassField) Type() Type          { return TypeDataclassField }
func (f *DataclassField) FieldName() string { return f.Name }
func (f *DataclassField) Inner() Node       { return f.Schema }

// ComputedField is derived on output only.
type ComputedField struct {
	Base
	PropertyName string
	ReturnSchema Node
	Alias        string
}

func (*ComputedField) Type() Type          { return TypeComputedField }
func (f *ComputedField) FieldName() string { return f.PropertyName }
func (f *ComputedField) Inner() Node       { return f.ReturnSchema }

// InnerSchema returns the single wrapped node of n, if n is one of the
// forms that wrap exactly one inner schema.
func InnerSchema(n Node) (Node, bool) {
	switch t := n.(type) {
	case *FunctionBefore:
		return t.Schema, true
	case *FunctionAfter:
		return t.Schema, true
	case *FunctionWrap:
		return t.Schema, true
	case *Default:
		return t.Schema, true
	case *Nullable:
		return t.Schema, true
	case *Definitions:
		return t.Schema, true
	case Field:
		return t.Inner(), true
	}
	return nil, false
}
