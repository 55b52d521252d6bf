// Package extrema finds local maxima and minima of a height grid.
//
// A cell is a local maximum when it is greater than or equal to all eight
// neighbours and strictly greater than at least one of them; minima are
// defined symmetrically. Boundary cells have an incomplete neighbourhood
// and are never reported. A perfectly flat plateau therefore produces no
// extrema, while the rim cells of a raised plateau all count as maxima.
package extrema

import "sparams/internal/models"

// Set holds the local extrema of a surface. Order is row-major scan order
// but callers must not depend on it.
type Set struct {
	Maxima []models.Point
	Minima []models.Point
}

var neighbours = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Find scans the interior of a row-major dim×dim grid for local extrema
func Find(data []float64, dim int) Set {
	var set Set
	for row := 1; row < dim-1; row++ {
		for col := 1; col < dim-1; col++ {
			centre := data[row*dim+col]

			isMax, isMin := true, true
			higher, lower := false, false
			for _, n := range neighbours {
				v := data[(row+n[0])*dim+col+n[1]]
				if v > centre {
					isMax = false
					higher = true
				} else if v < centre {
					isMin = false
					lower = true
				}
			}

			p := models.Point{Row: row, Col: col}
			if isMax && lower {
				set.Maxima = append(set.Maxima, p)
			}
			if isMin && higher {
				set.Minima = append(set.Minima, p)
			}
		}
	}
	return set
}
