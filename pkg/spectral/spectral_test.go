package spectral

import (
	"math"
	"math/cmplx"
	"testing"
)

// cosineSurface creates a dim×dim surface varying only along columns with
// the given number of cycles across the grid
func cosineSurface(dim, cycles int) []float64 {
	data := make([]float64, dim*dim)
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			data[row*dim+col] = math.Cos(2 * math.Pi * float64(cycles*col) / float64(dim))
		}
	}
	return data
}

// naiveDFT2 is the textbook O(n^4) transform used as a reference
func naiveDFT2(data []float64, size int) []complex128 {
	out := make([]complex128, size*size)
	for u := 0; u < size; u++ {
		for v := 0; v < size; v++ {
			var sum complex128
			for i := 0; i < size; i++ {
				for j := 0; j < size; j++ {
					angle := -2 * math.Pi * (float64(u*i) + float64(v*j)) / float64(size)
					sum += complex(data[i*size+j], 0) * cmplx.Exp(complex(0, angle))
				}
			}
			out[u*size+v] = sum
		}
	}
	return out
}

// TestFFT2DMatchesNaiveDFT compares the gonum-backed transform with a direct
// evaluation for even and odd sizes
func TestFFT2DMatchesNaiveDFT(t *testing.T) {
	for _, size := range []int{4, 5, 8} {
		data := make([]float64, size*size)
		for i := range data {
			data[i] = math.Sin(float64(i)*0.7) + float64(i%3)
		}

		got := fft2D(data, size)
		want := naiveDFT2(data, size)

		for i := range want {
			if cmplx.Abs(got[i]-want[i]) > 1e-9 {
				t.Fatalf("size %d: coefficient %d = %v, expected %v", size, i, got[i], want[i])
			}
		}
	}
}

func TestShiftRoundTrip(t *testing.T) {
	for _, size := range []int{4, 5} {
		values := make([]float64, size*size)
		for i := range values {
			values[i] = float64(i)
		}
		back := unshift(shift(values, size), size)
		for i := range values {
			if back[i] != values[i] {
				t.Fatalf("size %d: element %d = %g after round trip, expected %g", size, i, back[i], values[i])
			}
		}
		// DC moves to the centre
		if shifted := shift(values, size); shifted[(size/2)*size+size/2] != values[0] {
			t.Errorf("size %d: DC term not centred", size)
		}
	}
}

func TestFrequencies(t *testing.T) {
	testCases := []struct {
		n        int
		expected []float64
	}{
		{4, []float64{-0.5, -0.25, 0, 0.25}},
		{5, []float64{-0.4, -0.2, 0, 0.2, 0.4}},
	}

	for _, tc := range testCases {
		got := Frequencies(tc.n)
		for i := range tc.expected {
			if math.Abs(got[i]-tc.expected[i]) > 1e-12 {
				t.Errorf("n=%d: f[%d] = %g, expected %g", tc.n, i, got[i], tc.expected[i])
			}
		}
	}
}

// TestSpectrumOfCosine checks the location and height of the two peaks of
// a pure cosine
func TestSpectrumOfCosine(t *testing.T) {
	dim := 32
	s, err := NewSpectrum(cosineSurface(dim, 4), dim)
	if err != nil {
		t.Fatalf("NewSpectrum failed: %v", err)
	}

	cRow, cCol := s.Center()
	for _, col := range []int{cCol - 4, cCol + 4} {
		if a := s.At(cRow, col); math.Abs(a-0.5) > 1e-9 {
			t.Errorf("Expected amplitude 0.5 at (%d,%d), got %g", cRow, col, a)
		}
	}
	if a := s.At(cRow, cCol); a > 1e-9 {
		t.Errorf("Expected no DC component, got %g", a)
	}
	if s.XF[cCol+4] != 4.0/float64(dim) {
		t.Errorf("Unexpected frequency %g at peak", s.XF[cCol+4])
	}
}

func TestNewSpectrumInvalid(t *testing.T) {
	if _, err := NewSpectrum([]float64{1, 2, 3}, 2); err == nil {
		t.Error("Expected an error for a non-square grid")
	}
}

func TestInterpolators(t *testing.T) {
	s := &Spectrum{Amplitude: []float64{0, 1, 2, 3}, Dim: 2}

	bl := NewBilinear(s)
	testCases := []struct {
		row, col float64
		expected float64
	}{
		{0, 0, 0},
		{1, 1, 3},
		{0, 0.5, 0.5},
		{0.5, 0.5, 1.5},
		{-3, -3, 0}, // clamped
		{5, 5, 3},   // clamped
	}
	for _, tc := range testCases {
		if got := bl.At(tc.row, tc.col); math.Abs(got-tc.expected) > 1e-12 {
			t.Errorf("bilinear(%g,%g) = %g, expected %g", tc.row, tc.col, got, tc.expected)
		}
	}

	nn := NewNearest(s)
	if got := nn.At(0.4, 0.6); got != 1 {
		t.Errorf("nearest(0.4,0.6) = %g, expected 1", got)
	}
	if got := bl.At(math.NaN(), 0); !math.IsNaN(got) {
		t.Errorf("Expected NaN to propagate, got %g", got)
	}
}

func TestFactoryByName(t *testing.T) {
	for _, name := range []string{"", "bilinear", "Nearest"} {
		if _, err := FactoryByName(name); err != nil {
			t.Errorf("FactoryByName(%q) failed: %v", name, err)
		}
	}
	if _, err := FactoryByName("bicubic"); err == nil {
		t.Error("Expected an error for an unknown interpolator")
	}
}

// TestAngularAmplitudesPeakDirection verifies that a surface varying along x
// concentrates its angular amplitude on the ray at angle 0
func TestAngularAmplitudesPeakDirection(t *testing.T) {
	dim := 32
	m := 12
	s, err := NewSpectrum(cosineSurface(dim, 4), dim)
	if err != nil {
		t.Fatalf("NewSpectrum failed: %v", err)
	}

	amps := AngularAmplitudes(s, NewBilinear(s), m)
	if len(amps) != m {
		t.Fatalf("Expected %d angular amplitudes, got %d", m, len(amps))
	}
	for i := 1; i < m; i++ {
		if amps[i] >= amps[0] {
			t.Errorf("Angle %d (%g) should be below the x-axis amplitude %g", i, amps[i], amps[0])
		}
	}
}

func TestRadii(t *testing.T) {
	r := Radii(32, 4)
	expected := []float64{1, 6, 11, 16}
	for i := range expected {
		if math.Abs(r[i]-expected[i]) > 1e-12 {
			t.Errorf("radius %d = %g, expected %g", i, r[i], expected[i])
		}
	}
	if r := Radii(32, 1); len(r) != 1 || r[0] != 1 {
		t.Errorf("Expected a single radius of 1, got %v", r)
	}
}

// TestRadialAmplitudesPeakRadius checks that the semicircle through the
// cosine peak carries the largest integral
func TestRadialAmplitudesPeakRadius(t *testing.T) {
	dim := 32
	m := 32 // radii 1..16 in unit steps
	s, err := NewSpectrum(cosineSurface(dim, 4), dim)
	if err != nil {
		t.Fatalf("NewSpectrum failed: %v", err)
	}

	amps := RadialAmplitudes(s, NewBilinear(s), m)
	if len(amps) != m/2 {
		t.Fatalf("Expected %d radial amplitudes, got %d", m/2, len(amps))
	}
	best := 0
	for i := range amps {
		if amps[i] > amps[best] {
			best = i
		}
	}
	if radius := Radii(dim, m/2)[best]; radius != 4 {
		t.Errorf("Expected the peak at radius 4, got %g", radius)
	}
}

// TestACFOfCosine checks the zero lag, and the sign of the correlation half
// a period away along each axis
func TestACFOfCosine(t *testing.T) {
	dim := 32
	s, err := NewSpectrum(cosineSurface(dim, 4), dim)
	if err != nil {
		t.Fatalf("NewSpectrum failed: %v", err)
	}

	acf := NewACF(s)
	if acf.ZeroLag.Row != dim/2 || acf.ZeroLag.Col != dim/2 {
		t.Fatalf("Unexpected zero lag index %+v", acf.ZeroLag)
	}

	zero := acf.ZeroLagValue()
	if zero <= 0 {
		t.Fatalf("Zero-lag value should be positive, got %g", zero)
	}
	for i, v := range acf.Values {
		if v > zero+1e-12 {
			t.Fatalf("ACF at %d (%g) exceeds the zero-lag value %g", i, v, zero)
		}
	}

	// period is 8 samples along columns
	if v := acf.Sample(0, 4) / zero; math.Abs(v+1) > 1e-9 {
		t.Errorf("Expected -1 half a period along x, got %g", v)
	}
	if v := acf.Sample(4, 0) / zero; math.Abs(v-1) > 1e-9 {
		t.Errorf("Expected +1 along y, got %g", v)
	}
	if v := acf.Sample(0, 2) / zero; math.Abs(v) > 1e-9 {
		t.Errorf("Expected 0 a quarter period along x, got %g", v)
	}
	if acf.MaxLag() != float64(dim/2-1) {
		t.Errorf("Unexpected max lag %g", acf.MaxLag())
	}
}

func BenchmarkSpectrum256(b *testing.B) {
	dim := 256
	data := cosineSurface(dim, 10)
	for i := 0; i < b.N; i++ {
		s, _ := NewSpectrum(data, dim)
		NewACF(s)
	}
}
