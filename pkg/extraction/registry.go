package extraction

import (
	"fmt"

	"sparams/pkg/extrema"
	"sparams/pkg/spectral"
)

// Group is the family a parameter belongs to. Rows list groups in the
// order declared here.
type Group int

const (
	Amplitude Group = iota
	Hybrid
	Functional
	Spatial
)

func (g Group) String() string {
	switch g {
	case Amplitude:
		return "amplitude"
	case Hybrid:
		return "hybrid"
	case Functional:
		return "functional"
	case Spatial:
		return "spatial"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Need is a bit set of the inputs a formula reads. The evaluator hands each
// formula an Inputs value carrying only the fields it declared.
type Need uint16

const (
	// NeedSurface is the statistical surface (fitted or raw, per Options)
	NeedSurface Need = 1 << iota
	// NeedRaw is the untouched height map
	NeedRaw
	NeedDx
	NeedDy
	NeedM
	NeedExtrema
	NeedSpectrum
	NeedInterpolator
	NeedAngular
	NeedRadial
	NeedACF
	// NeedBearing is the sorted height distribution of the statistical surface
	NeedBearing
)

// Inputs carries the data a formula may read. Fields the formula did not
// declare in Formula.Needs are left at their zero value.
type Inputs struct {
	Dim int

	Surface []float64
	Raw     []float64
	Dx, Dy  float64
	M       int

	Extrema  extrema.Set
	Spectrum *spectral.Spectrum
	Interp   spectral.Interpolator
	Angular  []float64
	Radial   []float64
	ACF      *spectral.ACF
	Bearing  *BearingCurve
}

// view returns a copy of in restricted to the declared needs
func (in *Inputs) view(needs Need) *Inputs {
	v := &Inputs{Dim: in.Dim}
	if needs&NeedSurface != 0 {
		v.Surface = in.Surface
	}
	if needs&NeedRaw != 0 {
		v.Raw = in.Raw
	}
	if needs&NeedDx != 0 {
		v.Dx = in.Dx
	}
	if needs&NeedDy != 0 {
		v.Dy = in.Dy
	}
	if needs&NeedM != 0 {
		v.M = in.M
	}
	if needs&NeedExtrema != 0 {
		v.Extrema = in.Extrema
	}
	if needs&NeedSpectrum != 0 {
		v.Spectrum = in.Spectrum
	}
	if needs&NeedInterpolator != 0 {
		v.Interp = in.Interp
	}
	if needs&NeedAngular != 0 {
		v.Angular = in.Angular
	}
	if needs&NeedRadial != 0 {
		v.Radial = in.Radial
	}
	if needs&NeedACF != 0 {
		v.ACF = in.ACF
	}
	if needs&NeedBearing != 0 {
		v.Bearing = in.Bearing
	}
	return v
}

// Values maps the names of already evaluated formulas to their results
type Values map[string]float64

// Formula is one named scalar parameter
type Formula struct {
	Name  string
	Group Group

	// Needs declares the raw inputs and cache artifacts the formula reads
	Needs Need

	// Deps names formulas whose computed values this formula consumes.
	// They are always evaluated first and passed in through Values.
	Deps []string

	Eval func(in *Inputs, deps Values) float64
}

// Registry is an immutable, dependency-ordered set of formulas
type Registry struct {
	formulas []Formula
	order    []int
	index    map[string]int
}

// NewRegistry validates a formula list and computes its evaluation order.
// The list order is the canonical row order and must keep groups
// contiguous and ascending. Unknown dependencies, duplicate names and
// dependency cycles are rejected.
func NewRegistry(formulas []Formula) (*Registry, error) {
	index := make(map[string]int, len(formulas))
	for i, f := range formulas {
		if f.Name == "" {
			return nil, fmt.Errorf("formula %d has no name", i)
		}
		if f.Eval == nil {
			return nil, fmt.Errorf("formula %s has no Eval function", f.Name)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate formula %s", f.Name)
		}
		if i > 0 && f.Group < formulas[i-1].Group {
			return nil, fmt.Errorf("formula %s (%s) listed after %s group", f.Name, f.Group, formulas[i-1].Group)
		}
		index[f.Name] = i
	}

	// Kahn's algorithm; ties resolve to canonical order so the evaluation
	// order is deterministic
	indegree := make([]int, len(formulas))
	dependents := make([][]int, len(formulas))
	for i, f := range formulas {
		for _, dep := range f.Deps {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("formula %s depends on unknown formula %s", f.Name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	order := make([]int, 0, len(formulas))
	ready := make([]bool, len(formulas))
	for i := range formulas {
		ready[i] = indegree[i] == 0
	}
	for len(order) < len(formulas) {
		next := -1
		for i := range formulas {
			if ready[i] {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("dependency cycle among formulas")
		}
		ready[next] = false
		order = append(order, next)
		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				ready[d] = true
			}
		}
	}

	return &Registry{
		formulas: append([]Formula(nil), formulas...),
		order:    order,
		index:    index,
	}, nil
}

// MustRegistry is NewRegistry for static formula tables
func MustRegistry(formulas []Formula) *Registry {
	r, err := NewRegistry(formulas)
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns the parameter names in canonical row order
func (r *Registry) Names() []string {
	names := make([]string, len(r.formulas))
	for i, f := range r.formulas {
		names[i] = f.Name
	}
	return names
}

// EvaluationOrder returns the parameter names in the order they are computed
func (r *Registry) EvaluationOrder() []string {
	names := make([]string, len(r.order))
	for i, idx := range r.order {
		names[i] = r.formulas[idx].Name
	}
	return names
}

// Formula looks up a formula by name
func (r *Registry) Formula(name string) (Formula, bool) {
	i, ok := r.index[name]
	if !ok {
		return Formula{}, false
	}
	return r.formulas[i], true
}

// Len returns the number of registered formulas
func (r *Registry) Len() int { return len(r.formulas) }
