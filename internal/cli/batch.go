package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/ir"
	"github.com/reoring/schemagen/irdoc"
)

// BatchOptions holds options for the batch command.
type BatchOptions struct {
	*RootOptions
	Mode string
	Out  string
	Jobs int
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch --out <dir> <file>...",
		Short: "Generate schemas for many IR documents concurrently",
		Long: `Batch compiles every file with its own generator and writes one schema per
input into the output directory, named after the input file. The first
failure cancels the files not yet started.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "validation", "schema mode (validation|serialization)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output directory (required)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "number of files compiled at once")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runBatch(ctx context.Context, opts *BatchOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mode, err := ir.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	if opts.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", opts.Jobs)
	}
	if err := checkOutputNames(opts, files); err != nil {
		return err
	}
	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Jobs)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return batchFile(opts, mode, f)
			}
		})
	}
	return eg.Wait()
}

func batchFile(opts *BatchOptions, mode ir.Mode, path string) error {
	data, f, err := opts.readInput(nil, path)
	if err != nil {
		return err
	}
	root, diag, err := irdoc.Decode(data, f)
	opts.reportDiag(path, diag)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s, _, err := schemagen.GenerateSchema(root, mode, opts.config())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := opts.writeDoc(&buf, s); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := opts.outputPath(path)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	opts.log().Info("wrote schema", "file", path, "output", out)
	return nil
}

func (o *BatchOptions) outputPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(o.Out, base+o.extension())
}

// checkOutputNames rejects stdin and inputs that would overwrite each
// other's output.
func checkOutputNames(opts *BatchOptions, files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		f := f
		if f == "-" {
			return fmt.Errorf("batch does not read from stdin")
		}
		out := opts.outputPath(f)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, f, out)
		}
		seen[out] = f
	}
	return nil
}
