// Package ir defines the intermediate representation consumed by the schema
// generator: a closed set of node variants, each describing how one type is
// validated and serialized. The IR is produced elsewhere and is read-only to
// the generator, so a graph may be shared between generators.
package ir

import (
	"errors"
	"fmt"

	js "github.com/reoring/schemagen/jsonschema"
)

// Mode selects whether a schema describes validation input or serialization
// output.
type Mode string

const (
	ModeValidation    Mode = "validation"
	ModeSerialization Mode = "serialization"
)

// Title is the suffix used for mode-qualified definition names.
func (m Mode) Title() string {
	if m == ModeSerialization {
		return "Output"
	}
	return "Input"
}

// ParseMode accepts "validation" or "serialization".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeValidation, ModeSerialization:
		return Mode(s), nil
	case "":
		return ModeValidation, nil
	}
	return "", fmt.Errorf("ir: unknown mode %q (want validation or serialization)", s)
}

// Node is one IR node. The interface is closed: only variants declared in
// this package implement it.
type Node interface {
	Type() Type
	base() *Base
}

// Base carries the attributes shared by every variant.
type Base struct {
	// Ref is the CoreRef: an opaque identity enabling sharing and recursion.
	Ref string
	// Meta holds override hooks.
	Meta Metadata
	// Serialization, when set, describes the serialized form.
	Serialization *Serializer
}

func (b *Base) base() *Base { return b }

// BaseOf returns the shared attributes of n.
func BaseOf(n Node) *Base { return n.base() }

// Handler is what a Transformer receives as "the rest of the chain".
type Handler interface {
	// Generate runs the remainder of the chain (and finally the dispatcher)
	// for n.
	Generate(n Node) (*js.Schema, error)
	// ResolveRef follows "$ref" fragments to the stored definition.
	ResolveRef(s *js.Schema) (*js.Schema, error)
	// Mode is the current generation mode.
	Mode() Mode
}

// Transformer wraps schema generation for a node. It may call next, replace
// its result, or augment it.
type Transformer func(n Node, next Handler) (*js.Schema, error)

// Metadata is the override hook bag attached to a node.
type Metadata struct {
	// Functions are class-level hooks: keys they add to a ref-bearing
	// fragment are merged into the referenced definition.
	Functions []Transformer
	// AnnotationFunctions are applied outside Functions and replace the
	// fragment outright.
	AnnotationFunctions []Transformer
	// PreferPositionalArguments selects the positional form for arguments
	// nodes when both forms are possible.
	PreferPositionalArguments bool
}

// ErrOmit, returned by a transformer, drops the field or union choice that
// produced it.
var ErrOmit = errors.New("ir: omit from JSON schema")

// SerKind tags a serializer sub-schema.
type SerKind string

const (
	SerFunctionPlain SerKind = "function-plain"
	SerFunctionWrap  SerKind = "function-wrap"
	SerFormat        SerKind = "format"
	SerToString      SerKind = "to-string"
	SerModel         SerKind = "model"
	SerSimple        SerKind = "simple"
)

// Serializer describes a custom serialized form for a node.
type Serializer struct {
	Kind SerKind
	// ReturnSchema describes the output of function serializers.
	ReturnSchema Node
	// Schema is the inner node for model serializers.
	Schema Node
	// Function is applied to defaults in serialization mode when InfoArg is
	// false and Kind is SerFunctionPlain.
	Function func(any) (any, error)
	InfoArg  bool
}

// AliasPath is one lookup path: string keys and int indexes.
type AliasPath []any

// Alias is a field alias: either a single name or a list of lookup paths.
type Alias struct {
	Name  string
	Paths []AliasPath
}

// IsZero reports whether no alias is set.
func (a Alias) IsZero() bool { return a.Name == "" && len(a.Paths) == 0 }

// Resolve picks the name to document: the plain name when set, otherwise
// the first single-key string path, otherwise fallback.
func (a Alias) Resolve(fallback string) string {
	if a.Name != "" {
		return a.Name
	}
	for _, p := range a.Paths {
		if len(p) == 1 {
			if s, ok := p[0].(string); ok {
				return s
			}
		}
	}
	return fallback
}

// ExtraBehavior controls unknown keys on structured objects.
type ExtraBehavior string

const (
	ExtraUnset  ExtraBehavior = ""
	ExtraAllow  ExtraBehavior = "allow"
	ExtraIgnore ExtraBehavior = "ignore"
	ExtraForbid ExtraBehavior = "forbid"
)

// ModelConfig is configuration attached to model, dataclass and typed-dict
// nodes. Zero values defer to the generator's configuration.
type ModelConfig struct {
	Title string
	Extra ExtraBehavior
	// SchemaExtra is merged into the class schema.
	SchemaExtra *js.Schema
	// SchemaExtraFunc mutates the class schema in place.
	SchemaExtraFunc func(s *js.Schema) error
	// ModeOverride forces a mode while generating this class.
	ModeOverride Mode
	// SerJSONBytes is "base64" or "utf8".
	SerJSONBytes string
	// SerJSONTimedelta is "iso8601" or "float".
	SerJSONTimedelta string
	// SerializationDefaultsRequired marks every present field required in
	// serialization mode.
	SerializationDefaultsRequired *bool
}

// Class describes the declared type behind a structured node.
type Class struct {
	Name       string
	Doc        string
	Deprecated bool
	// Plain marks a dataclass without validation support; its Doc is not
	// used as a description.
	Plain bool
}
