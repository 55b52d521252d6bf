package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"sparams/pkg/extraction"
)

func sampleTable() extraction.Table {
	return extraction.Table{
		Names: []string{"S_q", "S_a"},
		Rows: []extraction.Result{
			{Index: 0, Name: "a.txt", Row: extraction.Row{{Name: "S_q", Value: 0.5}, {Name: "S_a", Value: 1}}},
			{Index: 1, Name: "b.txt", Err: errors.New("grid is empty")},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "surface,S_q,S_a,error\na.txt,0.5,1,\nb.txt,,,grid is empty\n"
	if buf.String() != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	out := buf.String()

	// parameters keep table order, not alphabetical order
	if q, a := strings.Index(out, "S_q: 0.5"), strings.Index(out, "S_a: 1"); q < 0 || a < 0 || q > a {
		t.Errorf("Parameters missing or reordered:\n%s", out)
	}

	var decoded struct {
		Surfaces []struct {
			Name       string             `yaml:"name"`
			Parameters map[string]float64 `yaml:"parameters"`
			Error      string             `yaml:"error"`
		} `yaml:"surfaces"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if len(decoded.Surfaces) != 2 {
		t.Fatalf("Expected 2 surfaces, got %d", len(decoded.Surfaces))
	}
	if decoded.Surfaces[0].Parameters["S_a"] != 1 || decoded.Surfaces[0].Error != "" {
		t.Errorf("Unexpected first surface: %+v", decoded.Surfaces[0])
	}
	if decoded.Surfaces[1].Parameters != nil || decoded.Surfaces[1].Error != "grid is empty" {
		t.Errorf("Unexpected failed surface: %+v", decoded.Surfaces[1])
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xlsx", sampleTable()); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"out.csv", FormatCSV},
		{"out.YML", FormatYAML},
		{"out.yaml", FormatYAML},
		{"out.txt", FormatCSV},
		{"results", FormatCSV},
	}

	for _, tt := range tests {
		if got := FormatFromFilename(tt.filename, FormatCSV); got != tt.want {
			t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "params.csv")
	if err := SaveFile(path, FormatCSV, sampleTable()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Output not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "surface,S_q,S_a,error\n") {
		t.Errorf("Unexpected file content:\n%s", data)
	}
}
