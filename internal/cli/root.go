// Package cli implements the schemagen command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/i18n"
	"github.com/reoring/schemagen/internal/defs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // output: json | yaml | msgpack
	InputFormat string // overrides detection from the file extension
	Lang        string
	ByAlias     bool
	RefTemplate string
	Ignore      []string

	logger *slog.Logger
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"json", "yaml", "msgpack"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "schemagen",
		Short: "Compile IR documents into JSON Schema",
		Long: `schemagen reads a schema IR graph from a JSON, YAML or msgpack document
and writes the JSON Schema describing either the values it validates or the
values it serializes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(i18n.Languages(), opts.Lang) {
				return fmt.Errorf("invalid language %q: must be one of %v", opts.Lang, i18n.Languages())
			}
			for _, k := range opts.Ignore {
				if !slices.Contains(schemagen.WarningKinds(), schemagen.WarningKind(k)) {
					return fmt.Errorf("unknown warning kind %q", k)
				}
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "json", "output format (json|yaml|msgpack)")
	cmd.PersistentFlags().StringVar(&opts.InputFormat, "input-format", "", "input format (json|yaml|msgpack); detected from the extension when empty")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "en", "language of log messages (en|ja)")
	cmd.PersistentFlags().BoolVar(&opts.ByAlias, "by-alias", true, "name properties after field aliases")
	cmd.PersistentFlags().StringVar(&opts.RefTemplate, "ref-template", defs.DefaultRefTemplate, "template for $ref pointers")
	cmd.PersistentFlags().StringSliceVar(&opts.Ignore, "ignore-warning", []string{string(schemagen.WarningSkippedChoice)}, "warning kinds not reported; pass an empty value to report all")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewDefinitionsCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))

	return cmd
}

// config builds the generator configuration from the global flags.
func (o *RootOptions) config() schemagen.Config {
	cfg := schemagen.DefaultConfig()
	cfg.ByAlias = o.ByAlias
	cfg.RefTemplate = o.RefTemplate
	cfg.Lang = o.Lang
	cfg.Logger = o.log()
	cfg.IgnoredWarnings = make(map[schemagen.WarningKind]bool, len(o.Ignore))
	for _, k := range o.Ignore {
		cfg.IgnoredWarnings[schemagen.WarningKind(k)] = true
	}
	return cfg
}

func (o *RootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}
