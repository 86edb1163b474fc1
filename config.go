package schemagen

import (
	"io"
	"log/slog"
	"maps"

	"github.com/reoring/schemagen/internal/defs"
	"github.com/reoring/schemagen/ir"
)

// Config controls a Generator. The zero value is usable; zero fields fall
// back to the defaults listed on each field. DefaultConfig returns the
// documented defaults including ByAlias.
type Config struct {
	// ByAlias names properties after their aliases.
	ByAlias bool
	// RefTemplate renders a definition name into a "$ref" pointer.
	// "{model}" (or "{name}") is replaced. Default "#/$defs/{model}".
	RefTemplate string
	// IgnoredWarnings suppresses warning kinds. nil means
	// {skipped-choice}; an empty map ignores nothing.
	IgnoredWarnings map[WarningKind]bool
	// OnWarning receives every warning that is not ignored.
	OnWarning func(Warning)
	// Logger receives warnings at Warn and a summary at Debug.
	Logger *slog.Logger
	// Lang selects the language of logged messages ("en", "ja").
	Lang string

	// SerializationDefaultsRequired marks every present field as required
	// in serialization mode.
	SerializationDefaultsRequired bool
	// SerJSONBytes is "utf8" (default) or "base64".
	SerJSONBytes string
	// SerJSONTimedelta is "iso8601" (default) or "float".
	SerJSONTimedelta string

	// MaxRemapRounds bounds definition renaming. Default 100.
	MaxRemapRounds int

	// Handlers replaces the built-in handler for individual node types.
	// DefaultHandler returns the built-in one for delegation.
	Handlers map[ir.Type]HandlerFunc
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ByAlias:          true,
		RefTemplate:      defs.DefaultRefTemplate,
		SerJSONBytes:     "utf8",
		SerJSONTimedelta: "iso8601",
		MaxRemapRounds:   defs.DefaultMaxRounds,
	}
}

func (c Config) withDefaults() Config {
	if c.RefTemplate == "" {
		c.RefTemplate = defs.DefaultRefTemplate
	}
	if c.IgnoredWarnings == nil {
		c.IgnoredWarnings = map[WarningKind]bool{WarningSkippedChoice: true}
	} else {
		c.IgnoredWarnings = maps.Clone(c.IgnoredWarnings)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.SerJSONBytes == "" {
		c.SerJSONBytes = "utf8"
	}
	if c.SerJSONTimedelta == "" {
		c.SerJSONTimedelta = "iso8601"
	}
	if c.MaxRemapRounds <= 0 {
		c.MaxRemapRounds = defs.DefaultMaxRounds
	}
	return c
}

// classConfig returns the configuration of the innermost structured node
// being generated, if any.
func (g *Generator) classConfig() (ir.ModelConfig, bool) {
	if len(g.configs) == 0 {
		return ir.ModelConfig{}, false
	}
	return g.configs[len(g.configs)-1], true
}

func (g *Generator) pushConfig(c ir.ModelConfig) { g.configs = append(g.configs, c) }

func (g *Generator) popConfig() { g.configs = g.configs[:len(g.configs)-1] }

func (g *Generator) serJSONBytes() string {
	if c, ok := g.classConfig(); ok && c.SerJSONBytes != "" {
		return c.SerJSONBytes
	}
	return g.cfg.SerJSONBytes
}

func (g *Generator) serJSONTimedelta() string {
	if c, ok := g.classConfig(); ok && c.SerJSONTimedelta != "" {
		return c.SerJSONTimedelta
	}
	return g.cfg.SerJSONTimedelta
}

func (g *Generator) defaultsRequired() bool {
	if c, ok := g.classConfig(); ok && c.SerializationDefaultsRequired != nil {
		return *c.SerializationDefaultsRequired
	}
	return g.cfg.SerializationDefaultsRequired
}
