package schemagen

import (
	"fmt"
	"log/slog"
)

// WarningKind classifies non-fatal representability issues.
type WarningKind string

const (
	// WarningSkippedChoice: a union choice could not be represented and was
	// left out. Ignored by default.
	WarningSkippedChoice WarningKind = "skipped-choice"
	// WarningNonSerializableDefault: a default value could not be encoded
	// and was left out.
	WarningNonSerializableDefault WarningKind = "non-serializable-default"
)

// WarningKinds lists every kind the generator emits.
func WarningKinds() []WarningKind {
	return []WarningKind{WarningSkippedChoice, WarningNonSerializableDefault}
}

// Warning is one emitted, non-ignored warning.
type Warning struct {
	Kind    WarningKind
	Detail  string
	Message string
}

func (w Warning) String() string { return w.Message }

// Warnings returns the warnings emitted so far, in order.
func (g *Generator) Warnings() []Warning { return append([]Warning(nil), g.warnings...) }

// EmitWarning routes a warning through the ignore set, the OnWarning hook
// and the logger. Handler overrides use it to report their own issues.
func (g *Generator) EmitWarning(kind WarningKind, detail string) {
	if g.cfg.IgnoredWarnings[kind] {
		return
	}
	w := Warning{Kind: kind, Detail: detail, Message: fmt.Sprintf("%s [%s]", detail, kind)}
	g.warnings = append(g.warnings, w)
	if g.cfg.OnWarning != nil {
		g.cfg.OnWarning(w)
	}
	g.log.Warn(g.tr.Message(string(kind), map[string]string{"detail": detail}),
		slog.String("kind", string(kind)),
		slog.String("detail", detail),
	)
}
