package jsonschema

import "sort"

// Sorted returns a deep copy with keys sorted at every level, except the
// direct children of "properties" and "default" whose order is significant.
func (s *Schema) Sorted() *Schema {
	out, _ := sortValue(s, "").(*Schema)
	return out
}

func sortValue(v any, parentKey string) any {
	switch t := v.(type) {
	case *Schema:
		if t == nil {
			return t
		}
		keys := append([]string(nil), t.keys...)
		if parentKey != "properties" && parentKey != "default" {
			sort.Strings(keys)
		}
		out := &Schema{keys: keys, vals: make(map[string]any, len(keys))}
		for _, k := range keys {
			out.vals[k] = sortValue(t.vals[k], k)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = sortValue(t[i], parentKey)
		}
		return out
	default:
		return v
	}
}

// Dedupe drops fragments that are structurally identical to an earlier one.
func Dedupe(items []*Schema) []*Schema {
	seen := make(map[string]bool, len(items))
	out := make([]*Schema, 0, len(items))
	for _, it := range items {
		fp := it.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, it)
	}
	return out
}

// CollectRefs returns every "$ref" string found anywhere in v. Only string
// values count, so a property literally named "$ref" is not mistaken for one.
// Lists under "examples" hold arbitrary data and are not searched.
func CollectRefs(v any) map[string]bool {
	refs := map[string]bool{}
	stack := []any{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t := cur.(type) {
		case *Schema:
			if t == nil {
				continue
			}
			for _, k := range t.keys {
				val := t.vals[k]
				if r, ok := val.(string); ok && k == "$ref" {
					refs[r] = true
					continue
				}
				if _, ok := val.([]any); ok && k == "examples" {
					continue
				}
				stack = append(stack, val)
			}
		case []any:
			stack = append(stack, t...)
		}
	}
	return refs
}

// RewriteStrings replaces, in place, every string value for which fn
// reports a replacement, and renames keys of any "$defs" object with
// renameDef. Strings in other key positions are left alone.
func RewriteStrings(v any, fn func(string) (string, bool), renameDef func(string) string) any {
	switch t := v.(type) {
	case string:
		if r, ok := fn(t); ok {
			return r
		}
		return t
	case []any:
		for i := range t {
			t[i] = RewriteStrings(t[i], fn, renameDef)
		}
		return t
	case *Schema:
		if t == nil {
			return t
		}
		for _, k := range t.Keys() {
			val := t.vals[k]
			if k == "$defs" && renameDef != nil {
				if defs, ok := val.(*Schema); ok {
					renamed := New()
					for _, dk := range defs.keys {
						renamed.Set(renameDef(dk), RewriteStrings(defs.vals[dk], fn, renameDef))
					}
					t.vals[k] = renamed
					continue
				}
			}
			t.vals[k] = RewriteStrings(val, fn, renameDef)
		}
		return t
	default:
		return v
	}
}
