package visualization

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sparams/internal/models"
	"sparams/pkg/extraction"
	"sparams/pkg/extrema"
)

func testCache(t *testing.T, name string) (models.HeightMap, *extraction.Cache) {
	t.Helper()
	dim := 16
	data := make([]float64, dim*dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			data[y*dim+x] = math.Sin(2*math.Pi*float64(x)/8) + 0.5*math.Cos(2*math.Pi*float64(y)/4)
		}
	}
	hm := models.NewHeightMap(data, dim, 1, 1)
	hm.Name = name

	cache, err := extraction.BuildCache(hm, 8)
	if err != nil {
		t.Fatalf("BuildCache failed: %v", err)
	}
	return hm, cache
}

func TestNormalize(t *testing.T) {
	got := Normalize([]float64{2, 4, 6, math.NaN()})
	want := []float64{0, 0.5, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Normalize[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	for _, v := range Normalize([]float64{3, 3, 3}) {
		if v != 0 {
			t.Errorf("Constant field should normalise to zeros, got %v", v)
		}
	}
}

func TestLogScale(t *testing.T) {
	got := LogScale([]float64{0, 1, 100})
	if !(got[0] < got[1] && got[1] < got[2]) {
		t.Errorf("LogScale should preserve order, got %v", got)
	}
	if math.IsInf(got[0], 0) || math.IsNaN(got[0]) {
		t.Errorf("Zero should stay finite, got %v", got[0])
	}
	for _, v := range LogScale([]float64{0, 0}) {
		if v != 0 {
			t.Errorf("All-zero field should stay zero, got %v", v)
		}
	}
}

func TestToImage(t *testing.T) {
	img, err := ToImage([]float64{0, 1, 2, 3}, 2)
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}
	if img.Gray16At(0, 0).Y != 0 || img.Gray16At(1, 1).Y != 65535 {
		t.Errorf("Extremes not mapped to black and white: %v %v", img.Gray16At(0, 0), img.Gray16At(1, 1))
	}
	// row-major: (x=1, y=0) holds the second value
	if img.Gray16At(1, 0).Y != 21845 {
		t.Errorf("Expected 21845 at (1,0), got %d", img.Gray16At(1, 0).Y)
	}

	if _, err := ToImage([]float64{1, 2, 3}, 2); err == nil {
		t.Error("Expected an error for a short field")
	}
}

func TestSaveCache(t *testing.T) {
	dir := t.TempDir()
	hm, cache := testCache(t, "scan_01.npy")

	viewer := NewViewer(dir, nil)
	paths, err := viewer.SaveCache(0, hm, cache)
	if err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("Expected 4 images, got %d", len(paths))
	}

	for i, stage := range []string{StageFitted, StageSpectrum, StageACF, StageExtrema} {
		want := filepath.Join(dir, stage, "scan_01.npy.png")
		if paths[i] != want {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want)
		}

		file, err := os.Open(paths[i])
		if err != nil {
			t.Fatalf("Image not written: %v", err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatalf("Image %s not decodable: %v", paths[i], err)
		}
		if img.Bounds().Dx() != hm.Dim {
			t.Errorf("%s: expected width %d, got %d", stage, hm.Dim, img.Bounds().Dx())
		}
	}
}

func TestSaveCacheJPEG(t *testing.T) {
	dir := t.TempDir()
	hm, cache := testCache(t, "scan.txt")

	viewer := NewViewer(dir, nil)
	if err := viewer.SetFormat("jpg"); err != nil {
		t.Fatalf("SetFormat failed: %v", err)
	}
	if err := viewer.SetFormat("tiff"); err == nil {
		t.Error("Expected an error for an unknown format")
	}

	paths, err := viewer.SaveCache(0, hm, cache)
	if err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}
	for _, path := range paths {
		if filepath.Ext(path) != ".jpg" {
			t.Errorf("Expected a .jpg file, got %s", path)
		}
	}
}

func TestSaveCacheHeatAndScale(t *testing.T) {
	dir := t.TempDir()
	hm, cache := testCache(t, "scan.txt")

	viewer := NewViewer(dir, nil)
	viewer.SetColormap(true)
	viewer.SetMinSize(40)

	paths, err := viewer.SaveCache(0, hm, cache)
	if err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			t.Fatalf("Image not written: %v", err)
		}
		img, err := png.Decode(file)
		file.Close()
		if err != nil {
			t.Fatalf("Image %s not decodable: %v", path, err)
		}
		// 16 samples scaled by the smallest integer factor reaching 40
		if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 48 {
			t.Errorf("%s: expected 48x48, got %v", path, img.Bounds())
		}
	}
}

func TestHookLogsFailures(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	viewer := NewViewer(blocker, log.New(&buf, "", 0))
	hm, cache := testCache(t, "scan.txt")

	viewer.Hook()(0, hm, cache)

	if !strings.Contains(buf.String(), "scan.txt") {
		t.Errorf("Expected a logged failure, got %q", buf.String())
	}
}

func TestHookWithExtractor(t *testing.T) {
	dir := t.TempDir()
	hm, _ := testCache(t, "wave.txt")

	params := extraction.DefaultParams()
	params.M = 8
	extractor := extraction.NewExtractor(params, nil)
	extractor.SetCacheHook(NewViewer(dir, nil).Hook())

	if _, err := extractor.ExtractOne(hm); err != nil {
		t.Fatalf("ExtractOne failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, StageACF, "wave.txt.png")); err != nil {
		t.Errorf("Expected the ACF image to be written: %v", err)
	}
}

// Surfaces that differ only by extension, or have no name, each keep their
// own images when extracted in one batch
func TestHookDistinctFilesPerSurface(t *testing.T) {
	dir := t.TempDir()
	npy, _ := testCache(t, "scan.npy")
	txt, _ := testCache(t, "scan.txt")
	blank1, _ := testCache(t, "")
	blank2, _ := testCache(t, "")

	params := extraction.DefaultParams()
	params.M = 8
	params.NumWorkers = 4
	extractor := extraction.NewExtractor(params, nil)
	extractor.SetCacheHook(NewViewer(dir, nil).Hook())

	table := extractor.ExtractMany(context.Background(), []models.HeightMap{npy, txt, blank1, blank2})
	if failed := table.Failures(); len(failed) != 0 {
		t.Fatalf("Unexpected failures: %+v", failed)
	}

	entries, err := os.ReadDir(filepath.Join(dir, StageFitted))
	if err != nil {
		t.Fatalf("Fitted images not written: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"scan.npy.png", "scan.txt.png", "surface_0002.png", "surface_0003.png"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected images %v, got %v", want, names)
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"scan_01.npy", "scan_01.npy"},
		{"scan.npy[0:20,5:25]", "scan.npy_0_20_5_25_"},
		{"my scan.txt", "my_scan.txt"},
		{"", "surface_0007"},
	}

	for _, tt := range tests {
		if got := fileStem(tt.name, 7); got != tt.want {
			t.Errorf("fileStem(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHeat(t *testing.T) {
	lo, hi := Heat(0), Heat(1)
	if lo == hi {
		t.Fatal("Palette ends should differ")
	}
	if Heat(-1) != lo || Heat(2) != hi {
		t.Error("Out-of-range values should clamp to the palette ends")
	}
	// brightness grows along the palette
	luma := func(c color.RGBA) int { return 299*int(c.R) + 587*int(c.G) + 114*int(c.B) }
	if !(luma(lo) < luma(Heat(0.5)) && luma(Heat(0.5)) < luma(hi)) {
		t.Errorf("Palette not ordered by brightness: %v %v %v", lo, Heat(0.5), hi)
	}
	if Heat(0.3).A != 255 {
		t.Error("Palette colours should be opaque")
	}
}

func TestToHeatmap(t *testing.T) {
	img, err := ToHeatmap([]float64{0, 1, 2, 3}, 2)
	if err != nil {
		t.Fatalf("ToHeatmap failed: %v", err)
	}
	if img.RGBAAt(0, 0) != Heat(0) || img.RGBAAt(1, 1) != Heat(1) {
		t.Errorf("Extremes not mapped to palette ends: %v %v", img.RGBAAt(0, 0), img.RGBAAt(1, 1))
	}
	if _, err := ToHeatmap(nil, 2); err == nil {
		t.Error("Expected an error for an empty field")
	}
}

func TestOverlayExtrema(t *testing.T) {
	base, err := ToImage(make([]float64, 9), 3)
	if err != nil {
		t.Fatal(err)
	}
	set := extrema.Set{
		Maxima: []models.Point{{Row: 1, Col: 1}},
		Minima: []models.Point{{Row: 2, Col: 0}},
	}

	img := OverlayExtrema(base, set)
	if img.RGBAAt(1, 1) != PeakColor {
		t.Errorf("Peak not marked: %v", img.RGBAAt(1, 1))
	}
	// Point is (row, col); the image is (x=col, y=row)
	if img.RGBAAt(0, 2) != PitColor {
		t.Errorf("Pit not marked: %v", img.RGBAAt(0, 2))
	}
	if got := img.RGBAAt(2, 2); got != (color.RGBA{A: 255}) {
		t.Errorf("Unmarked pixel changed: %v", got)
	}
	if base.Gray16At(1, 1).Y != 0 {
		t.Error("Base image should not be modified")
	}
}
