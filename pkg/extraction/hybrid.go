package extraction

import (
	"math"

	"sparams/internal/models"
)

// summitCurvature is S_sc, the mean of -½(∂²z/∂x² + ∂²z/∂y²) over the
// local maxima. Extrema never lie on the boundary so the three-point
// stencil is always defined.
func summitCurvature(z []float64, dim int, dx, dy float64, maxima []models.Point) float64 {
	if len(maxima) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, p := range maxima {
		i := p.Row*dim + p.Col
		zxx := (z[i+1] - 2*z[i] + z[i-1]) / (dx * dx)
		zyy := (z[i+dim] - 2*z[i] + z[i-dim]) / (dy * dy)
		sum += -0.5 * (zxx + zyy)
	}
	return sum / float64(len(maxima))
}

// projectedArea is S_2a, the area of the sampling grid in the x-y plane
func projectedArea(dim int, dx, dy float64) float64 {
	n := float64(dim - 1)
	return n * dx * n * dy
}

// surfaceArea is S_3a: every grid cell is split into two triangles along
// its main diagonal and the triangle areas are summed
func surfaceArea(z []float64, dim int, dx, dy float64) float64 {
	area := 0.0
	for row := 0; row < dim-1; row++ {
		for col := 0; col < dim-1; col++ {
			i := row*dim + col
			a := z[i]
			b := z[i+1]
			c := z[i+dim]
			d := z[i+dim+1]

			// A=(0,0,a) B=(dx,0,b) C=(0,dy,c) D=(dx,dy,d)
			area += triangleArea(dx, 0, b-a, dx, dy, d-a)
			area += triangleArea(dx, dy, d-a, 0, dy, c-a)
		}
	}
	return area
}

// triangleArea is half the norm of the cross product of two edge vectors
func triangleArea(ux, uy, uz, vx, vy, vz float64) float64 {
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// developedAreaRatio is S_dr in percent, from previously computed S_2a and
// S_3a
func developedAreaRatio(s2a, s3a float64) float64 {
	return ratio(s3a-s2a, s2a) * 100
}

// rmsGradient is S_dq using forward differences
func rmsGradient(z []float64, dim int, dx, dy float64) float64 {
	if dim < 2 {
		return math.NaN()
	}
	sum := 0.0
	for row := 0; row < dim-1; row++ {
		for col := 0; col < dim-1; col++ {
			i := row*dim + col
			gx := (z[i+1] - z[i]) / dx
			gy := (z[i+dim] - z[i]) / dy
			sum += gx*gx + gy*gy
		}
	}
	n := float64((dim - 1) * (dim - 1))
	return math.Sqrt(sum / n)
}

// sixPointDerivative is the sixth-order central difference
// f' ≈ (f₃ - 9f₂ + 45f₁ - 45f₋₁ + 9f₋₂ - f₋₃) / 60h
// applied with the given index stride
func sixPointDerivative(z []float64, i, stride int, h float64) float64 {
	return (z[i+3*stride] - 9*z[i+2*stride] + 45*z[i+stride] -
		45*z[i-stride] + 9*z[i-2*stride] - z[i-3*stride]) / (60 * h)
}

// rmsGradientSixPoint is S_dq6, the RMS gradient from the six-point
// stencil over every cell at least three samples from the border
func rmsGradientSixPoint(z []float64, dim int, dx, dy float64) float64 {
	if dim < 7 {
		return math.NaN()
	}
	sum := 0.0
	count := 0
	for row := 3; row < dim-3; row++ {
		for col := 3; col < dim-3; col++ {
			i := row*dim + col
			gx := sixPointDerivative(z, i, 1, dx)
			gy := sixPointDerivative(z, i, dim, dy)
			sum += gx*gx + gy*gy
			count++
		}
	}
	return math.Sqrt(sum / float64(count))
}
