package extrema

import (
	"testing"

	"sparams/internal/models"
)

// tiltedPlane has a higher and a lower neighbour around every interior cell,
// so on its own it contains no extrema
func tiltedPlane(dim int) []float64 {
	data := make([]float64, dim*dim)
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			data[row*dim+col] = float64(10*row + col)
		}
	}
	return data
}

func TestFindSinglePeakAndPit(t *testing.T) {
	dim := 7
	data := tiltedPlane(dim)
	data[2*dim+2] = 500  // peak
	data[4*dim+4] = -500 // pit

	set := Find(data, dim)

	if len(set.Maxima) != 1 || set.Maxima[0] != (models.Point{Row: 2, Col: 2}) {
		t.Errorf("Expected one maximum at (2,2), got %v", set.Maxima)
	}
	if len(set.Minima) != 1 || set.Minima[0] != (models.Point{Row: 4, Col: 4}) {
		t.Errorf("Expected one minimum at (4,4), got %v", set.Minima)
	}
}

// TestFindFlat checks that a constant surface has no extrema at all
func TestFindFlat(t *testing.T) {
	dim := 5
	data := make([]float64, dim*dim)
	for i := range data {
		data[i] = 1.25
	}

	set := Find(data, dim)
	if len(set.Maxima) != 0 || len(set.Minima) != 0 {
		t.Errorf("Expected no extrema on a flat surface, got %d maxima and %d minima",
			len(set.Maxima), len(set.Minima))
	}
}

// TestFindIgnoresBoundary ensures edge cells are never reported
func TestFindIgnoresBoundary(t *testing.T) {
	dim := 4
	data := make([]float64, dim*dim)
	data[0] = 10        // corner
	data[1*dim+3] = 10  // right edge
	data[3*dim+1] = -10 // bottom edge

	set := Find(data, dim)
	for _, p := range append(set.Maxima, set.Minima...) {
		if p.Row == 0 || p.Col == 0 || p.Row == dim-1 || p.Col == dim-1 {
			t.Errorf("Boundary cell %v reported", p)
		}
	}
}

// TestFindPlateauTies exercises the tie policy: two equal neighbouring
// peaks are both maxima because each is >= all neighbours and > some
func TestFindPlateauTies(t *testing.T) {
	dim := 6
	data := tiltedPlane(dim)
	data[2*dim+2] = 1000
	data[2*dim+3] = 1000

	set := Find(data, dim)
	if len(set.Maxima) != 2 {
		t.Errorf("Expected both tied cells as maxima, got %v", set.Maxima)
	}
	for _, p := range set.Minima {
		t.Errorf("Unexpected minimum %v", p)
	}
}

// TestFindFloorNextToPeak documents the consequence of the >= rule: flat
// floor cells touching a peak are minima
func TestFindFloorNextToPeak(t *testing.T) {
	dim := 5
	data := make([]float64, dim*dim)
	data[2*dim+2] = 1

	set := Find(data, dim)
	if len(set.Maxima) != 1 {
		t.Errorf("Expected one maximum, got %v", set.Maxima)
	}
	if len(set.Minima) != 8 {
		t.Errorf("Expected the 8 floor cells around the peak as minima, got %d", len(set.Minima))
	}
}

func TestFindSmallGrids(t *testing.T) {
	for _, dim := range []int{0, 1, 2} {
		set := Find(make([]float64, dim*dim), dim)
		if len(set.Maxima)+len(set.Minima) != 0 {
			t.Errorf("dim %d: expected no extrema", dim)
		}
	}
}
