package simnet

import "math"

// Propensity is the capability set a transition rate function must satisfy.
// The engine never inspects an implementation's internals; it only calls
// Eval. Implementations must be side-effect-free and deterministic given
// their arguments (spec.md §4.2).
type Propensity interface {
	// Eval returns the instantaneous rate of this transition given the
	// node's current discrete state column u, continuous state column v,
	// the node's local data column ldata, the shared global data vector
	// gdata, and the current simulation time t. The result must be >= 0,
	// finite, and not NaN.
	Eval(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64
}

// PropensityFunc adapts a plain function to the Propensity interface, the
// same "func as capability" pattern the teacher's TransmissionModel
// implementations use for constant vs. Poisson-sized spreaders.
type PropensityFunc func(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64

// Eval implements Propensity.
func (f PropensityFunc) Eval(u []int, v []float64, ldata []float64, gdata []float64, t float64) float64 {
	return f(u, v, ldata, gdata, t)
}

// PropensityRegistry is the fixed-at-construction table of Nt transition
// rate functions.
type PropensityRegistry struct {
	entries []Propensity
	names   []string
}

// NewPropensityRegistry builds a registry from an ordered list of
// propensities, one per transition column of S. names may be nil.
func NewPropensityRegistry(entries []Propensity, names []string) (*PropensityRegistry, error) {
	if len(entries) == 0 {
		return nil, newSimErrorf(KindInvalidInput, "propensity registry must have at least one transition")
	}
	for i, e := range entries {
		if e == nil {
			return nil, newSimErrorf(KindInvalidInput, "propensity %d is nil", i)
		}
	}
	if names != nil && len(names) != len(entries) {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "propensity names", len(names), len(entries))
	}
	return &PropensityRegistry{entries: entries, names: names}, nil
}

// Len returns Nt, the number of transitions.
func (r *PropensityRegistry) Len() int { return len(r.entries) }

// Eval evaluates transition i and validates the result per spec.md §4.3/§7:
// NaN or negative propensities are fatal propensity_error conditions.
func (r *PropensityRegistry) Eval(i int, u []int, v []float64, ldata []float64, gdata []float64, t float64) (float64, error) {
	rate := r.entries[i].Eval(u, v, ldata, gdata, t)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		name := ""
		if r.names != nil {
			name = r.names[i]
		}
		return 0, newSimErrorf(KindPropensityError, "propensity %d (%s) evaluated to invalid rate %v", i, name, rate)
	}
	return rate, nil
}
