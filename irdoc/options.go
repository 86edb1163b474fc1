package irdoc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the encoding of an IR document.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts "json", "yaml" (or "yml") and "msgpack".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("irdoc: unknown format %q (want json, yaml or msgpack)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("irdoc: cannot tell the format of %q without an extension", path)
	}
	return ParseFormat(ext)
}

// Diag carries non-fatal findings produced while decoding, such as keys
// the decoder did not recognize.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
