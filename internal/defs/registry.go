// Package defs keeps the definitions table of one generation: the mapping
// between node identities, definition names and rendered pointers, the
// candidate names used to simplify them, reachability pruning and the
// fixed-point renaming.
package defs

import (
	"sort"
	"strings"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// DefaultRefTemplate renders a definition name as a local pointer.
const DefaultRefTemplate = "#/$defs/{model}"

// Key identifies one definition: the same CoreRef yields distinct
// definitions per mode.
type Key struct {
	CoreRef string
	Mode    ir.Mode
}

// Registry links CoreRef, DefsRef and JsonRef and stores generated
// definitions by DefsRef.
type Registry struct {
	template   string
	namer      *Namer
	coreToDefs map[Key]string
	coreToJSON map[Key]string
	jsonToDefs map[string]string
	defs       map[string]*js.Schema
	invalid    map[string]error
}

// NewRegistry creates an empty registry. An empty template selects
// DefaultRefTemplate.
func NewRegistry(refTemplate string) *Registry {
	if refTemplate == "" {
		refTemplate = DefaultRefTemplate
	}
	return &Registry{
		template:   refTemplate,
		namer:      NewNamer(),
		coreToDefs: map[Key]string{},
		coreToJSON: map[Key]string{},
		jsonToDefs: map[string]string{},
		defs:       map[string]*js.Schema{},
		invalid:    map[string]error{},
	}
}

// RenderRef renders a DefsRef through the template. Both "{model}" and
// "{name}" placeholders are accepted.
func (r *Registry) RenderRef(defsRef string) string {
	out := strings.ReplaceAll(r.template, "{model}", defsRef)
	return strings.ReplaceAll(out, "{name}", defsRef)
}

// GetOrCreate returns the DefsRef for key and a bare "$ref" fragment
// pointing at it. The first call names the key; later calls return the
// cached values.
func (r *Registry) GetOrCreate(key Key) (string, *js.Schema) {
	if d, ok := r.coreToDefs[key]; ok {
		return d, js.Ref(r.coreToJSON[key])
	}
	d := r.namer.Name(key.CoreRef, key.Mode)
	jr := r.RenderRef(d)
	r.coreToDefs[key] = d
	r.coreToJSON[key] = jr
	r.jsonToDefs[jr] = d
	return d, js.Ref(jr)
}

// Lookup reports the DefsRef already assigned to key.
func (r *Registry) Lookup(key Key) (string, bool) {
	d, ok := r.coreToDefs[key]
	return d, ok
}

// JSONRef returns the pointer assigned to key.
func (r *Registry) JSONRef(key Key) string { return r.coreToJSON[key] }

// DefsRefFor maps a rendered pointer back to its DefsRef.
func (r *Registry) DefsRefFor(jsonRef string) (string, bool) {
	d, ok := r.jsonToDefs[jsonRef]
	return d, ok
}

// Define stores the definition content for defsRef, clearing any recorded
// generation failure.
func (r *Registry) Define(defsRef string, s *js.Schema) {
	r.defs[defsRef] = s
	delete(r.invalid, defsRef)
}

// Definition returns the stored content for defsRef.
func (r *Registry) Definition(defsRef string) (*js.Schema, bool) {
	s, ok := r.defs[defsRef]
	return s, ok
}

// Resolve returns the definition a pointer refers to.
func (r *Registry) Resolve(jsonRef string) (*js.Schema, bool) {
	d, ok := r.jsonToDefs[jsonRef]
	if !ok {
		return nil, false
	}
	return r.Definition(d)
}

// Defined reports whether key already has stored content.
func (r *Registry) Defined(key Key) bool {
	d, ok := r.coreToDefs[key]
	if !ok {
		return false
	}
	_, ok = r.defs[d]
	return ok
}

// MarkInvalid records that the definition could not be generated. The error
// surfaces only if the definition is referenced from the final document.
func (r *Registry) MarkInvalid(defsRef string, err error) { r.invalid[defsRef] = err }

// Invalid returns the recorded generation error for defsRef.
func (r *Registry) Invalid(defsRef string) error { return r.invalid[defsRef] }

// Len is the number of stored definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Names returns the stored DefsRefs in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for k := range r.defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Table renders the stored definitions as a "$defs" object, keys sorted.
func (r *Registry) Table() *js.Schema {
	t := js.New()
	for _, k := range r.Names() {
		t.Set(k, r.defs[k])
	}
	return t
}

// Namer exposes the candidate names recorded so far.
func (r *Registry) Namer() *Namer { return r.namer }

// IsExternal reports whether a pointer leaves the document; such refs never
// have a local definition.
func IsExternal(jsonRef string) bool {
	return strings.HasPrefix(jsonRef, "http://") || strings.HasPrefix(jsonRef, "https://")
}
