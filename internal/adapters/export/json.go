// Package export writes ranked and raw hotel records to files and the terminal.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row is a record that can be laid out as columns.
type Row interface {
	Flatten() (map[string]any, error)
}

// WriteJSON writes v as an indented JSON document. Non-ASCII text and HTML characters are kept as is.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ToFile creates path (and its directory) and hands it to write.
func ToFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
