// Package schemagen compiles IR graphs (see package ir) into JSON Schema
// documents.
//
// A Generator walks the graph once per call, turning every node into a
// fragment through a per-type handler wrapped by the node's override hooks.
// Nodes that carry a reference identity become shared definitions under
// "$defs"; recursion through them terminates on the "$ref". After the walk
// the document is pruned to reachable definitions, definition names are
// shortened as far as they stay unambiguous, and keys are sorted.
//
// Typical usage:
//
//	g, err := schemagen.New(schemagen.DefaultConfig())
//	doc, err := g.Generate(root, ir.ModeValidation)
//	out, err := jsonschema.MarshalIndent(doc, "", "  ")
//
// Errors fall into three tiers: *InvalidForSchemaError for constructs with
// no JSON Schema form, *UserError for caller mistakes such as reusing a
// Generator, and *SimplifyError when name simplification does not settle.
// Non-fatal issues are reported as Warnings.
package schemagen
