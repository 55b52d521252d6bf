package preprocess

import (
	"math"
	"math/rand"
	"testing"
)

func plane(dim int) []float64 {
	data := make([]float64, dim*dim)
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			data[row*dim+col] = 1 + 2*float64(row) + 3*float64(col)
		}
	}
	return data
}

func TestFillMissingNothingToDo(t *testing.T) {
	data := plane(4)
	out, n, err := FillMissing(data, 4, DefaultFillParams())
	if err != nil {
		t.Fatalf("FillMissing failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected nothing filled, got %d", n)
	}
	out[0] = -1
	if data[0] == -1 {
		t.Error("FillMissing should return a copy")
	}
}

// A missing sample surrounded by a symmetric neighbourhood on a plane gets
// the exact plane value
func TestFillMissingPlane(t *testing.T) {
	dim := 9
	data := plane(dim)
	want := data[4*dim+4]
	data[4*dim+4] = math.NaN()

	models := []struct {
		name  string
		model VariogramModel
	}{
		{"Spherical", Spherical},
		{"Exponential", Exponential},
		{"Gaussian", Gaussian},
	}

	for _, m := range models {
		t.Run(m.name, func(t *testing.T) {
			// 4 at distance 1, 4 at √2 and 4 at 2
			params := FillParams{Neighbors: 12, Model: m.model, Range: 4}
			out, n, err := FillMissing(data, dim, params)
			if err != nil {
				t.Fatalf("FillMissing failed: %v", err)
			}
			if n != 1 {
				t.Errorf("Expected 1 sample filled, got %d", n)
			}
			if math.Abs(out[4*dim+4]-want) > 1e-6 {
				t.Errorf("Expected %v, got %v", want, out[4*dim+4])
			}
		})
	}
}

func TestFillMissingKeepsMeasuredSamples(t *testing.T) {
	dim := 16
	rng := rand.New(rand.NewSource(3))
	data := make([]float64, dim*dim)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	holes := []int{0, 17, 18, 100, 255}
	for _, i := range holes {
		data[i] = math.NaN()
	}
	data[50] = math.Inf(1)

	if got := CountMissing(data); got != len(holes)+1 {
		t.Fatalf("Expected %d missing samples, got %d", len(holes)+1, got)
	}

	out, n, err := FillMissing(data, dim, DefaultFillParams())
	if err != nil {
		t.Fatalf("FillMissing failed: %v", err)
	}
	if n != len(holes)+1 {
		t.Errorf("Expected %d samples filled, got %d", len(holes)+1, n)
	}
	if CountMissing(out) != 0 {
		t.Error("Output still has missing samples")
	}
	for i, v := range data {
		if !IsMissing(v) && out[i] != v {
			t.Fatalf("Measured sample %d changed from %v to %v", i, v, out[i])
		}
	}

	again, _, err := FillMissing(data, dim, DefaultFillParams())
	if err != nil {
		t.Fatalf("FillMissing failed: %v", err)
	}
	for i := range out {
		if out[i] != again[i] {
			t.Fatalf("Fill is not deterministic at %d: %v vs %v", i, out[i], again[i])
		}
	}
}

func TestFillMissingConstant(t *testing.T) {
	data := []float64{2, 2, math.NaN(), 2}
	out, n, err := FillMissing(data, 2, DefaultFillParams())
	if err != nil {
		t.Fatalf("FillMissing failed: %v", err)
	}
	if n != 1 || out[2] != 2 {
		t.Errorf("Expected the constant to be copied, got %v (n=%d)", out, n)
	}
}

func TestFillMissingErrors(t *testing.T) {
	if _, _, err := FillMissing([]float64{1, 2, 3}, 2, DefaultFillParams()); err == nil {
		t.Error("Expected an error for a non-square grid")
	}
	nan := math.NaN()
	if _, _, err := FillMissing([]float64{nan, nan, nan, nan}, 2, DefaultFillParams()); err == nil {
		t.Error("Expected an error when nothing was measured")
	}
}

func TestVariogram(t *testing.T) {
	v := variogram{model: Spherical, rng: 4, sill: 2, nugget: 0.5}
	if v.at(0) != 0 {
		t.Error("Semivariance at zero lag must be zero")
	}
	if v.at(4) != 2.5 || v.at(10) != 2.5 {
		t.Errorf("Spherical model should reach nugget+sill at the range, got %v %v", v.at(4), v.at(10))
	}
	if !(v.at(1) < v.at(2) && v.at(2) < v.at(3)) {
		t.Error("Semivariance should grow with lag inside the range")
	}
}

// Holes on a regular lattice have many equidistant neighbours; the choice
// among them and the summation order must not vary between runs
func TestFillMissingRepeatableWithTies(t *testing.T) {
	dim := 24
	rng := rand.New(rand.NewSource(7))
	data := make([]float64, dim*dim)
	for i := range data {
		if i%5 == 0 {
			data[i] = math.NaN()
			continue
		}
		data[i] = rng.NormFloat64()
	}

	params := FillParams{Neighbors: 6, Model: Exponential}
	first, _, err := FillMissing(data, dim, params)
	if err != nil {
		t.Fatalf("FillMissing failed: %v", err)
	}
	for run := 0; run < 10; run++ {
		out, _, err := FillMissing(data, dim, params)
		if err != nil {
			t.Fatalf("FillMissing failed: %v", err)
		}
		for i := range out {
			if out[i] != first[i] {
				t.Fatalf("Run %d differs at %d: %v vs %v", run+1, i, out[i], first[i])
			}
		}
	}
}

func TestPivotIsMedian(t *testing.T) {
	points := gridPoints{
		{Row: 3, Col: 0, index: 0},
		{Row: 1, Col: 1, index: 1},
		{Row: 4, Col: 2, index: 2},
		{Row: 1, Col: 3, index: 3},
		{Row: 2, Col: 4, index: 4},
	}

	pivot := points.Pivot(0)
	if pivot != 2 || points[pivot].Row != 2 {
		t.Fatalf("Expected the median row at index 2, got %d (%+v)", pivot, points[pivot])
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].Row > points[i].Row {
			t.Fatalf("Points not ordered along rows: %+v", points)
		}
	}
	// equal rows fall back to the grid index
	if points[0].index != 1 || points[1].index != 3 {
		t.Errorf("Expected ties ordered by index, got %+v", points[:2])
	}
}

func TestSortByDistance(t *testing.T) {
	q := gridPoint{Row: 5, Col: 5}
	near := []gridPoint{
		{Row: 5, Col: 7, index: 57},
		{Row: 5, Col: 4, index: 54},
		{Row: 4, Col: 5, index: 45},
		{Row: 6, Col: 5, index: 65},
	}
	sortByDistance(q, near)

	want := []int{45, 54, 65, 57}
	for i, p := range near {
		if p.index != want[i] {
			t.Fatalf("Expected order %v, got %+v", want, near)
		}
	}
}
