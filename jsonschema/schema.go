package jsonschema

import (
	"bytes"
	"sort"
	"strconv"

	j "github.com/goccy/go-json"
)

// Schema is an insertion-ordered JSON object used for every emitted
// fragment. Values are JSON-compatible: nil, bool, integers, floats, string,
// []any and *Schema.
type Schema struct {
	keys []string
	vals map[string]any
}

// New returns an empty schema.
func New() *Schema { return &Schema{vals: map[string]any{}} }

// FromPairs builds a schema from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func FromPairs(kv ...any) *Schema {
	if len(kv)%2 != 0 {
		panic("jsonschema: FromPairs needs key/value pairs")
	}
	s := New()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("jsonschema: FromPairs key must be a string")
		}
		s.Set(k, kv[i+1])
	}
	return s
}

// FromMap converts a plain map into a schema. Keys are inserted in sorted
// order because map iteration order carries no meaning; nested maps and
// slices are converted recursively.
func FromMap(m map[string]any) *Schema {
	s := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, Normalize(m[k]))
	}
	return s
}

// Normalize converts plain maps and typed slices inside v into the value
// forms used by Schema.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			if ks, ok := k.(string); ok {
				m[ks] = vv
			}
		}
		return FromMap(m)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Normalize(t[i])
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case []*Schema:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	default:
		return v
	}
}

// Ref returns a bare {"$ref": jsonRef} fragment.
func Ref(jsonRef string) *Schema { return FromPairs("$ref", jsonRef) }

// List converts fragments into a JSON array value.
func List(items ...*Schema) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Schema) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

func (s *Schema) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.vals[key]
	return v, ok
}

func (s *Schema) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (s *Schema) Set(key string, v any) *Schema {
	if s.vals == nil {
		s.vals = map[string]any{}
	}
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = v
	return s
}

// SetDefault stores v only when key is absent.
func (s *Schema) SetDefault(key string, v any) {
	if !s.Has(key) {
		s.Set(key, v)
	}
}

func (s *Schema) Delete(key string) {
	if s == nil {
		return
	}
	if _, ok := s.vals[key]; !ok {
		return
	}
	delete(s.vals, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// Pop removes key and returns its previous value.
func (s *Schema) Pop(key string) (any, bool) {
	v, ok := s.Get(key)
	if ok {
		s.Delete(key)
	}
	return v, ok
}

// Update copies every entry of o into s, in o's order.
func (s *Schema) Update(o *Schema) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		s.Set(k, o.vals[k])
	}
}

// Ref reports the "$ref" string of the fragment, if any.
func (s *Schema) Ref() (string, bool) {
	v, ok := s.Get("$ref")
	if !ok {
		return "", false
	}
	r, ok := v.(string)
	return r, ok
}

// IsRefOnly reports whether the fragment is exactly {"$ref": ...}.
func (s *Schema) IsRefOnly() bool {
	_, ok := s.Ref()
	return ok && s.Len() == 1
}

// ShallowCopy copies the top-level entries only.
func (s *Schema) ShallowCopy() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{keys: append([]string(nil), s.keys...), vals: make(map[string]any, len(s.vals))}
	for k, v := range s.vals {
		out.vals[k] = v
	}
	return out
}

// Clone deep-copies the fragment.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c, _ := CloneValue(s).(*Schema)
	return c
}

// CloneValue deep-copies any JSON-compatible value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Schema:
		if t == nil {
			return t
		}
		out := &Schema{keys: append([]string(nil), t.keys...), vals: make(map[string]any, len(t.vals))}
		for k, vv := range t.vals {
			out.vals[k] = CloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = CloneValue(t[i])
		}
		return out
	case map[string]any:
		return CloneValue(FromMap(t))
	default:
		return v
	}
}

// Equal reports structural equality, ignoring key order.
func (s *Schema) Equal(o *Schema) bool { return s.Fingerprint() == o.Fingerprint() }

// Fingerprint renders canonical JSON with every key sorted. Two fragments
// with the same content share a fingerprint.
func (s *Schema) Fingerprint() string { return Fingerprint(s) }

// Fingerprint renders any JSON-compatible value canonically.
func Fingerprint(v any) string {
	var b bytes.Buffer
	if err := writeJSON(&b, v, true); err != nil {
		// Unencodable leaves still need a stable identity.
		b.WriteString("!")
		b.WriteString(err.Error())
	}
	return b.String()
}

// MarshalJSON writes the entries in insertion order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	if err := writeJSON(&b, s, false); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// MarshalIndent renders v as indented JSON, preserving schema key order.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	var raw bytes.Buffer
	if err := writeJSON(&raw, v, false); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := j.Indent(&out, raw.Bytes(), prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSON(b *bytes.Buffer, v any, canonical bool) error {
	switch t := v.(type) {
	case *Schema:
		if t == nil {
			b.WriteString("null")
			return nil
		}
		keys := t.keys
		if canonical {
			keys = append([]string(nil), t.keys...)
			sort.Strings(keys)
		}
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, err := j.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(kb)
			b.WriteByte(':')
			if err := writeJSON(b, t.vals[k], canonical); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case map[string]any:
		return writeJSON(b, FromMap(t), canonical)
	case []any:
		b.WriteByte('[')
		for i, it := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, it, canonical); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case float64:
		// Integral floats and ints share one rendering so 1 and 1.0 compare equal.
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		return nil
	default:
		raw, err := j.Marshal(t)
		if err != nil {
			return err
		}
		b.Write(raw)
		return nil
	}
}
