package defs

import (
	"fmt"

	js "github.com/reoring/schemagen/jsonschema"
)

// DefaultMaxRounds bounds the renaming loop.
const DefaultMaxRounds = 100

// NotConvergedError reports that renaming did not reach a fixed point.
type NotConvergedError struct {
	Rounds int
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("failed to simplify the definitions after %d rounds", e.Rounds)
}

// Remapping renames working definition names to their simplest
// unambiguous candidates, both as DefsRef and as rendered pointer.
type Remapping struct {
	defs map[string]string
	refs map[string]string
}

// DefsRef returns the new name for d, or d itself when unmapped.
func (m *Remapping) DefsRef(d string) string {
	if n, ok := m.defs[d]; ok {
		return n
	}
	return d
}

// JSONRef returns the new pointer for ref, or ref itself when unmapped.
func (m *Remapping) JSONRef(ref string) string {
	if n, ok := m.refs[ref]; ok {
		return n
	}
	return ref
}

// Apply rewrites v in place: every string equal to a remapped pointer is
// replaced and "$defs" keys are renamed.
func (m *Remapping) Apply(v any) any {
	return js.RewriteStrings(v, func(s string) (string, bool) {
		n, ok := m.refs[s]
		return n, ok
	}, m.DefsRef)
}

func (m *Remapping) equal(o *Remapping) bool {
	if o == nil || len(m.defs) != len(o.defs) {
		return false
	}
	for k, v := range m.defs {
		if o.defs[k] != v {
			return false
		}
	}
	return true
}

// BuildRemapping computes the renaming for the stored definitions. Each
// round buckets every definition under each of its candidate names, with
// contents rewritten by the previous round's renaming, and picks for every
// definition the first candidate whose bucket holds a single distinct
// content. Rounds repeat until the renamed table stops changing. It returns
// the remapping and the number of rounds used.
func (r *Registry) BuildRemapping(maxRounds int) (*Remapping, int, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	names := r.Names()
	choicesOf := func(d string) []string {
		if c := r.namer.Choices(d); len(c) > 0 {
			return c
		}
		return []string{d}
	}

	prev := &Remapping{defs: map[string]string{}, refs: map[string]string{}}
	prevDoc := r.renamedTable(prev)
	for round := 1; round <= maxRounds; round++ {
		buckets := map[string]map[string]bool{}
		for _, d := range names {
			content := prev.Apply(r.defs[d].Clone())
			fp := js.Fingerprint(content)
			for _, c := range choicesOf(d) {
				if buckets[c] == nil {
					buckets[c] = map[string]bool{}
				}
				buckets[c][fp] = true
			}
		}
		next := &Remapping{defs: map[string]string{}, refs: map[string]string{}}
		for _, d := range names {
			chosen := d
			for _, c := range choicesOf(d) {
				if len(buckets[c]) == 1 {
					chosen = c
					break
				}
			}
			next.defs[d] = chosen
			next.refs[r.RenderRef(d)] = r.RenderRef(chosen)
		}
		doc := r.renamedTable(next)
		if doc == prevDoc || next.equal(prev) {
			return next, round, nil
		}
		prev, prevDoc = next, doc
	}
	return nil, maxRounds, &NotConvergedError{Rounds: maxRounds}
}

// renamedTable fingerprints the definitions table as m would rewrite it.
func (r *Registry) renamedTable(m *Remapping) string {
	doc := js.FromPairs("$defs", r.Table().Clone())
	return js.Fingerprint(m.Apply(doc))
}
