// Package report writes extraction tables as CSV or YAML.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sparams/pkg/extraction"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Leading and trailing CSV columns around the parameters
const (
	SurfaceColumn = "surface"
	ErrorColumn   = "error"
)

// WriteCSV writes one header line and one line per surface. Failed
// surfaces keep empty parameter cells and carry their error in the last
// column.
func WriteCSV(w io.Writer, table extraction.Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(table.Names)+2)
	header = append(header, SurfaceColumn)
	header = append(header, table.Names...)
	header = append(header, ErrorColumn)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, res := range table.Rows {
		record := make([]string, len(header))
		record[0] = res.Name
		if res.Failed() {
			record[len(record)-1] = res.Err.Error()
		} else {
			copy(record[1:], res.Row.Strings())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type yamlSurface struct {
	Name       string         `yaml:"name"`
	Parameters extraction.Row `yaml:"parameters,omitempty"`
	Error      string         `yaml:"error,omitempty"`
}

type yamlReport struct {
	Surfaces []yamlSurface `yaml:"surfaces"`
}

// WriteYAML writes the table as a list of surfaces whose parameters keep
// their canonical order
func WriteYAML(w io.Writer, table extraction.Table) error {
	doc := yamlReport{Surfaces: make([]yamlSurface, len(table.Rows))}
	for i, res := range table.Rows {
		doc.Surfaces[i] = yamlSurface{Name: res.Name, Parameters: res.Row}
		if res.Failed() {
			doc.Surfaces[i].Error = res.Err.Error()
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Write dispatches on format
func Write(w io.Writer, format string, table extraction.Table) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatYAML, "yml":
		return WriteYAML(w, table)
	default:
		return fmt.Errorf("unknown output format %q (must be %s or %s)", format, FormatCSV, FormatYAML)
	}
}

// FormatFromFilename picks the format from the file extension, falling
// back to def for unknown extensions
func FormatFromFilename(filename, def string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return def
	}
}

// SaveFile writes the table to path, creating parent directories
func SaveFile(path, format string, table extraction.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	if err := Write(file, format, table); err != nil {
		file.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return file.Close()
}
