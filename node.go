package simnet

import "math"

// rateRecomputeInterval bounds how many fires a node may accumulate before
// its rate_sum is recomputed from scratch, guarding against floating point
// drift per spec.md §4.3's edge cases.
const rateRecomputeInterval = 256

// node holds the mutable per-node state exclusively owned by the worker
// currently processing it: discrete compartment counts, continuous state,
// the simulation clock, cached propensities, and the RNG stream of the
// worker whose partition holds the node. This mirrors the teacher's Host/SequenceHost split between
// shared, read-only model data and per-entity mutable state owned by one
// goroutine at a time.
type node struct {
	index int

	u []int     // length Nc
	v []float64 // length Nd

	clock float64

	rate    []float64 // length Nt
	rateSum float64

	firesSinceRecompute int

	rng *RNGStream
}

func newNode(index int, u0 []int, v0 []float64, nt int, rng *RNGStream) *node {
	n := &node{
		index: index,
		u:     append([]int(nil), u0...),
		v:     append([]float64(nil), v0...),
		rate:  make([]float64, nt),
		rng:   rng,
	}
	return n
}

// recomputeAllRates evaluates every propensity against the node's current
// state and resets rate_sum and the drift counter. Used at node
// initialization, after any scheduled event (which can touch many
// compartments at once and so invalidates the whole dependency graph), and
// whenever drift correction triggers.
func (n *node) recomputeAllRates(reg *PropensityRegistry, gdata, ldataCol []float64, t float64) error {
	var sum float64
	for i := 0; i < reg.Len(); i++ {
		rate, err := reg.Eval(i, n.u, n.v, ldataCol, gdata, t)
		if err != nil {
			return err
		}
		n.rate[i] = rate
		sum += rate
	}
	n.rateSum = sum
	n.firesSinceRecompute = 0
	return nil
}

// needsDriftRecompute reports whether rate_sum has accumulated enough
// fires, or gone non-finite/negative, to warrant a from-scratch recompute
// rather than continued incremental maintenance.
func (n *node) needsDriftRecompute() bool {
	if n.firesSinceRecompute >= rateRecomputeInterval {
		return true
	}
	if math.IsNaN(n.rateSum) || math.IsInf(n.rateSum, 0) || n.rateSum < 0 {
		return true
	}
	return false
}

// applyStoichiometry adds column S[:,j] to u, returning a
// stoichiometry_violation error if any resulting compartment goes negative.
func (n *node) applyStoichiometry(S *SparseMatrix, j int) error {
	rows, values := S.Column(j)
	// Validate before mutating so a rejected fire leaves state untouched.
	for k, r := range rows {
		if int(n.u[r])+int(values[k]) < 0 {
			return newSimErrorf(KindStoichiometryViolation,
				"firing transition %d would drive compartment %d of node %d to %d",
				j, r, n.index, int(n.u[r])+int(values[k]))
		}
	}
	for k, r := range rows {
		n.u[r] += int(values[k])
	}
	return nil
}
