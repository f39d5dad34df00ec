package cli

import (
	"encoding/json"
	"io"

	"github.com/mrz1836/deaddrop/internal/output"
)

// writeJSON encodes the value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult writes v as JSON when format is JSON and calls text otherwise.
func renderResult(w io.Writer, format output.Format, v any, text func() error) error {
	if format == output.FormatJSON {
		return writeJSON(w, v)
	}
	return text()
}
