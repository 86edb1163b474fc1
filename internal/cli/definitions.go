package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/irdoc"
	js "github.com/reoring/schemagen/jsonschema"
)

// DefinitionsOptions holds options for the definitions command.
type DefinitionsOptions struct {
	*RootOptions
	Title       string
	Description string
}

// NewDefinitionsCommand creates the definitions command.
func NewDefinitionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DefinitionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "definitions <file>",
		Short: "Generate several roots into one shared $defs table",
		Long: `Definitions reads a list of inputs, each {"key", "mode", "schema"}, and
prints {"schemas": {key: {mode: fragment}}, "$defs": {...}}. The inputs are
either a document {"inputs": [...]} or a YAML stream with one input per
document.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinitions(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "title of the combined document")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description of the combined document")

	return cmd
}

func runDefinitions(cmd *cobra.Command, opts *DefinitionsOptions, path string) error {
	data, f, err := opts.readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	inputs, diag, err := irdoc.DecodeInputs(data, f)
	opts.reportDiag(path, diag)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	schemas, doc, err := schemagen.GenerateSchemas(inputs, opts.config(), opts.Title, opts.Description)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return opts.writeDoc(cmd.OutOrStdout(), definitionsDoc(inputs, schemas, doc))
}

// definitionsDoc nests the fragments by key then mode, in input order, and
// appends the shared document's keys.
func definitionsDoc(inputs []schemagen.Input, schemas map[schemagen.InputKey]*js.Schema, doc *js.Schema) *js.Schema {
	byKey := js.New()
	for _, in := range inputs {
		var modes *js.Schema
		if v, ok := byKey.Get(in.Key); ok {
			modes = v.(*js.Schema)
		} else {
			modes = js.New()
			byKey.Set(in.Key, modes)
		}
		modes.Set(string(in.Mode), schemas[schemagen.InputKey{Key: in.Key, Mode: in.Mode}])
	}
	out := js.FromPairs("schemas", byKey)
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		out.Set(k, v)
	}
	return out
}
