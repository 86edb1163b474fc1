package schemagen

import (
	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

// GenerateSchema compiles one root with a fresh Generator and returns the
// document together with the warnings that were not ignored.
func GenerateSchema(root ir.Node, mode ir.Mode, cfg Config) (*js.Schema, []Warning, error) {
	g, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := g.Generate(root, mode)
	if err != nil {
		return nil, g.Warnings(), err
	}
	return s, g.Warnings(), nil
}

// GenerateSchemas compiles several roots into one shared document. The
// returned map holds each root's fragment; the document carries "$defs" and,
// when given, a title and description.
func GenerateSchemas(inputs []Input, cfg Config, title, description string) (map[InputKey]*js.Schema, *js.Schema, error) {
	g, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	schemas, table, err := g.GenerateDefinitions(inputs)
	if err != nil {
		return nil, nil, err
	}
	doc := js.New()
	if table.Len() > 0 {
		doc.Set("$defs", table)
	}
	if title != "" {
		doc.Set("title", title)
	}
	if description != "" {
		doc.Set("description", description)
	}
	return schemas, doc, nil
}
