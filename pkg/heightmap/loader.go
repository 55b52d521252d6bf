// Package heightmap loads height maps from plain-text grids, NumPy arrays
// and grayscale images.
package heightmap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"sparams/internal/models"
)

// Supported file extensions
var (
	gridExts  = []string{".txt", ".asc", ".csv", ".dat"}
	npyExts   = []string{".npy"}
	imageExts = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif"}
)

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Supported reports whether the file extension is one the loader understands
func Supported(name string) bool {
	return hasExt(name, gridExts) || hasExt(name, npyExts) || hasExt(name, imageExts)
}

// Load reads one height map. size is the physical side length of the scan;
// the sample spacing is size divided by the number of samples along each
// axis. A non-positive size means unit spacing.
//
// Non-square grids are returned as they are (with Dim set to -1) so the
// extraction engine can report them against the right file.
func Load(path string, size float64) (models.HeightMap, error) {
	var (
		rows [][]float64
		err  error
	)
	switch {
	case hasExt(path, gridExts):
		rows, err = loadGrid(path)
	case hasExt(path, npyExts):
		rows, err = loadNPY(path)
	case hasExt(path, imageExts):
		rows, err = loadImageRows(path)
	default:
		return models.HeightMap{}, fmt.Errorf("unsupported height map format %q", filepath.Ext(path))
	}
	if err != nil {
		return models.HeightMap{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	dx, dy := spacing(rows, size)
	hm, err := models.FromRows(rows, dx, dy)
	if err != nil {
		return models.HeightMap{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	hm.Name = filepath.Base(path)
	return hm, nil
}

func spacing(rows [][]float64, size float64) (dx, dy float64) {
	if size <= 0 || len(rows) == 0 || len(rows[0]) == 0 {
		return 1, 1
	}
	return size / float64(len(rows[0])), size / float64(len(rows))
}

// LoadDir loads every supported file of a directory. Files are ordered by
// the number embedded in their names, then by name, so scan_2 comes before
// scan_10.
func LoadDir(dir string, size float64) ([]models.HeightMap, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && Supported(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no height map files found in %s", dir)
	}

	sortByNumber(files)

	surfaces := make([]models.HeightMap, 0, len(files))
	for _, name := range files {
		hm, err := Load(filepath.Join(dir, name), size)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, hm)
	}
	return surfaces, nil
}

func sortByNumber(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		numI, numJ := extractNumber(files[i]), extractNumber(files[j])
		if numI != numJ {
			return numI < numJ
		}
		return files[i] < files[j]
	})
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}
