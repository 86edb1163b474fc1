package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/ir"
	"github.com/reoring/schemagen/irdoc"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	*RootOptions
	Mode   string
	Output string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate the JSON Schema of one IR root",
		Long: `Generate reads a document holding one root node and prints its JSON Schema.
Use "-" to read from stdin. Warnings are logged on stderr.`,
		Example: `  schemagen generate team.yaml
  schemagen generate --mode serialization --format yaml team.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "validation", "schema mode (validation|serialization)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions, path string) error {
	mode, err := ir.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	data, f, err := opts.readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	opts.log().Debug("decoding", "file", path, "format", f)
	root, diag, err := irdoc.Decode(data, f)
	opts.reportDiag(path, diag)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s, warnings, err := schemagen.GenerateSchema(root, mode, opts.config())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	opts.log().Debug("generated", "file", path, "mode", mode, "warnings", len(warnings))

	if opts.Output == "" {
		return opts.writeDoc(cmd.OutOrStdout(), s)
	}
	var buf bytes.Buffer
	if err := opts.writeDoc(&buf, s); err != nil {
		return err
	}
	return os.WriteFile(opts.Output, buf.Bytes(), 0o644)
}
