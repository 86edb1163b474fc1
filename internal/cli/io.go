package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/reoring/schemagen/irdoc"
	js "github.com/reoring/schemagen/jsonschema"
)

// readInput loads path, or stdin for "-", and picks its format.
func (o *RootOptions) readInput(stdin io.Reader, path string) ([]byte, irdoc.Format, error) {
	f, err := o.inputFormat(path)
	if err != nil {
		return nil, "", err
	}
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, f, nil
}

func (o *RootOptions) inputFormat(path string) (irdoc.Format, error) {
	if o.InputFormat != "" {
		return irdoc.ParseFormat(o.InputFormat)
	}
	if path == "-" {
		return irdoc.FormatJSON, nil
	}
	return irdoc.FormatFromPath(path)
}

// reportDiag logs the decoder's warnings.
func (o *RootOptions) reportDiag(path string, d irdoc.Diag) {
	if d == nil || !d.HasWarnings() {
		return
	}
	for _, w := range d.Warnings() {
		o.log().Warn(w, "file", path)
	}
}

// writeDoc encodes doc in the selected output format.
func (o *RootOptions) writeDoc(w io.Writer, doc *js.Schema) error {
	switch o.Format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(doc)
	default:
		b, err := js.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
}

// extension is the file suffix batch uses for the output format.
func (o *RootOptions) extension() string {
	switch o.Format {
	case "yaml":
		return ".yaml"
	case "msgpack":
		return ".msgpack"
	}
	return ".json"
}
