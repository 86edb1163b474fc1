package defs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reoring/schemagen/ir"
)

var (
	qualifiedPrefix = regexp.MustCompile(`(?:[^.\[\]]+\.)+([^.\[\]]+)`)
	invalidNameChar = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)
)

// Namer derives candidate definition names for CoreRefs and remembers them
// for the remapping step. The last candidate is always collision-free and
// is used as the working name.
type Namer struct {
	collisionCounter map[string]int
	collisionIndex   map[string]int
	choices          map[string][]string
}

func NewNamer() *Namer {
	return &Namer{
		collisionCounter: map[string]int{},
		collisionIndex:   map[string]int{},
		choices:          map[string][]string{},
	}
}

// Name returns the working DefsRef for coreRef in mode and records its
// prioritized candidates, simplest first.
func (n *Namer) Name(coreRef string, mode ir.Mode) string {
	components := splitComponents(coreRef)
	noID := make([]string, len(components))
	short := make([]string, len(components))
	for i, c := range components {
		if k := strings.LastIndex(c, ":"); k >= 0 {
			c = c[:k]
		}
		noID[i] = c
		short[i] = qualifiedPrefix.ReplaceAllString(c, "$1")
	}
	title := mode.Title()

	name := NormalizeName(strings.Join(short, ""))
	nameMode := name + "-" + title
	qualname := NormalizeName(strings.Join(noID, ""))
	qualnameMode := qualname + "-" + title
	qualnameID := NormalizeName(coreRef)

	idx, ok := n.collisionIndex[qualnameID]
	if !ok {
		n.collisionCounter[qualname]++
		idx = n.collisionCounter[qualname]
		n.collisionIndex[qualnameID] = idx
	}
	occurrence := fmt.Sprintf("%s__%d", qualname, idx)
	occurrenceMode := fmt.Sprintf("%s__%d", qualnameMode, idx)

	n.choices[occurrenceMode] = []string{name, nameMode, qualname, qualnameMode, occurrence, occurrenceMode}
	return occurrenceMode
}

// Choices returns the recorded candidates for a working name.
func (n *Namer) Choices(defsRef string) []string { return n.choices[defsRef] }

// AllChoices returns every recorded candidate list keyed by working name.
func (n *Namer) AllChoices() map[string][]string { return n.choices }

// NormalizeName makes s usable as a definition key: characters outside
// [a-zA-Z0-9.-_] become "_" and dots become "__".
func NormalizeName(s string) string {
	return strings.ReplaceAll(invalidNameChar.ReplaceAllString(s, "_"), ".", "__")
}

// splitComponents splits on '[', ']' and ',' keeping the separators, so
// "pkg.Box[pkg.Item:1]:2" yields "pkg.Box", "[", "pkg.Item:1", "]", ":2".
func splitComponents(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', ']', ',':
			out = append(out, s[start:i], s[i:i+1])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
