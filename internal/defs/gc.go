package defs

import (
	"fmt"
	"sort"

	js "github.com/reoring/schemagen/jsonschema"
)

// DanglingRefError reports a local pointer with no stored definition.
type DanglingRefError struct {
	Ref string
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("reference %s has no definition", e.Ref)
}

// follow maps a pointer to its stored definition, or to an error when the
// pointer is local but unresolvable. External pointers yield (nil, nil).
func (r *Registry) follow(jsonRef string) (*js.Schema, string, error) {
	d, ok := r.jsonToDefs[jsonRef]
	if !ok {
		if IsExternal(jsonRef) {
			return nil, "", nil
		}
		return nil, "", &DanglingRefError{Ref: jsonRef}
	}
	if err := r.invalid[d]; err != nil {
		return nil, "", err
	}
	s, ok := r.defs[d]
	if !ok {
		return nil, "", &DanglingRefError{Ref: jsonRef}
	}
	return s, d, nil
}

// RefCounts counts "$ref" occurrences reachable from root, descending into
// each referenced definition once.
func (r *Registry) RefCounts(root any) (map[string]int, error) {
	counts := map[string]int{}
	stack := []any{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t := cur.(type) {
		case *js.Schema:
			if t == nil {
				continue
			}
			if ref, ok := t.Ref(); ok {
				seen := counts[ref] > 0
				counts[ref]++
				if !seen {
					def, _, err := r.follow(ref)
					if err != nil {
						return nil, err
					}
					if def != nil {
						stack = append(stack, def)
					}
				}
			}
			for _, k := range t.Keys() {
				if k == "$ref" {
					continue
				}
				v, _ := t.Get(k)
				if _, ok := v.([]any); ok && k == "examples" {
					continue
				}
				stack = append(stack, v)
			}
		case []any:
			stack = append(stack, t...)
		}
	}
	return counts, nil
}

// GC drops every definition not reachable from roots through "$ref"
// chains. It fails on a reachable local pointer without a definition.
func (r *Registry) GC(roots ...any) error {
	visited := map[string]bool{}
	seenRefs := map[string]bool{}
	var stack []string
	for _, root := range roots {
		stack = append(stack, sortedRefs(js.CollectRefs(root))...)
	}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seenRefs[next] {
			continue
		}
		seenRefs[next] = true
		def, d, err := r.follow(next)
		if err != nil {
			return err
		}
		if def == nil || visited[d] {
			continue
		}
		visited[d] = true
		stack = append(stack, sortedRefs(js.CollectRefs(def))...)
	}
	for d := range r.defs {
		if !visited[d] {
			delete(r.defs, d)
		}
	}
	return nil
}

func sortedRefs(refs map[string]bool) []string {
	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
