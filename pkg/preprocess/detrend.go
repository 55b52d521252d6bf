// Package preprocess removes the best-fit trend surface from a height map
// before any spectral or statistical analysis is done on it.
package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Supported trend orders
const (
	// Plane fits z = a + b·x + c·y
	Plane = 1
	// Quadratic adds the x², x·y and y² terms
	Quadratic = 2
)

// Detrend fits a polynomial trend surface of the given order to the
// row-major dim×dim grid by linear least squares and returns the residual.
// The input slice is never modified.
//
// Coordinates are normalised to [-1, 1] before fitting so the normal
// equations stay well conditioned for large grids. If the system cannot be
// solved (for example a single-sample grid) the function falls back to
// subtracting the mean, which is the order-0 fit.
func Detrend(data []float64, dim, order int) ([]float64, error) {
	if dim <= 0 || len(data) != dim*dim {
		return nil, fmt.Errorf("detrend needs a non-empty square grid, got %d samples for side %d", len(data), dim)
	}
	if order != Plane && order != Quadratic {
		return nil, fmt.Errorf("unsupported detrend order %d", order)
	}

	n := dim * dim
	if isConstant(data) {
		// a constant grid is its own trend
		return make([]float64, n), nil
	}

	terms := trendTerms(order)
	if n < len(terms) {
		return subtractMean(data), nil
	}

	// Design matrix, one row per sample
	design := mat.NewDense(n, len(terms), nil)
	for row := 0; row < dim; row++ {
		y := normalise(row, dim)
		for col := 0; col < dim; col++ {
			x := normalise(col, dim)
			i := row*dim + col
			for j, term := range terms {
				design.Set(i, j, term(x, y))
			}
		}
	}

	heights := mat.NewVecDense(n, append([]float64(nil), data...))

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(design, heights); err != nil {
		// Singular or ill-conditioned design; the mean is always defined
		return subtractMean(data), nil
	}

	fitted := make([]float64, n)
	for row := 0; row < dim; row++ {
		y := normalise(row, dim)
		for col := 0; col < dim; col++ {
			x := normalise(col, dim)
			trend := 0.0
			for j, term := range terms {
				trend += coeffs.AtVec(j) * term(x, y)
			}
			i := row*dim + col
			fitted[i] = data[i] - trend
		}
	}

	return fitted, nil
}

type term func(x, y float64) float64

func trendTerms(order int) []term {
	terms := []term{
		func(x, y float64) float64 { return 1 },
		func(x, y float64) float64 { return x },
		func(x, y float64) float64 { return y },
	}
	if order == Quadratic {
		terms = append(terms,
			func(x, y float64) float64 { return x * x },
			func(x, y float64) float64 { return x * y },
			func(x, y float64) float64 { return y * y },
		)
	}
	return terms
}

// normalise maps an index in [0, dim) onto [-1, 1]
func normalise(i, dim int) float64 {
	if dim == 1 {
		return 0
	}
	return 2*float64(i)/float64(dim-1) - 1
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

func subtractMean(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}
