package simnet

// Stepper runs the Gillespie direct-method SSA for a single node, driven by
// the model's shared dependency graph, stoichiometry matrix, propensity
// registry, and global data. It is stateless across nodes: the same
// Stepper value is shared (read-only) by every worker, with per-node
// mutable state passed in explicitly, following the teacher's convention of
// keeping per-entity state (Host) separate from the shared model
// configuration that acts on it.
type Stepper struct {
	G        *SparseMatrix // Nt x Nt dependency graph
	S        *SparseMatrix // Nc x Nt stoichiometry
	registry *PropensityRegistry
	gdata    []float64
	ldata    *SparseColumns // Nld x Nn, column per node
}

// SparseColumns is a dense Nld x Nn local-data matrix accessed by column,
// matching spec.md §3's ldata entity (dense, small, per-node).
type SparseColumns struct {
	nrow, ncol int
	data       []float64 // column-major
}

// NewSparseColumns builds a column-major dense matrix from row-major input
// data (nrow rows, ncol cols).
func NewSparseColumns(nrow, ncol int, rowMajor []float64) (*SparseColumns, error) {
	if nrow*ncol != len(rowMajor) && !(nrow == 0 && ncol == 0 && len(rowMajor) == 0) {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "ldata", len(rowMajor), nrow*ncol)
	}
	data := make([]float64, nrow*ncol)
	for r := 0; r < nrow; r++ {
		for c := 0; c < ncol; c++ {
			data[c*nrow+r] = rowMajor[r*ncol+c]
		}
	}
	return &SparseColumns{nrow: nrow, ncol: ncol, data: data}, nil
}

// Column returns column j as a slice aliasing internal storage.
func (m *SparseColumns) Column(j int) []float64 {
	if m.nrow == 0 {
		return nil
	}
	return m.data[j*m.nrow : (j+1)*m.nrow]
}

// NumCols returns the number of columns (Nn).
func (m *SparseColumns) NumCols() int { return m.ncol }

// NumRows returns the number of rows (Nld).
func (m *SparseColumns) NumRows() int { return m.nrow }

// Advance advances n's clock from its current value up to but not past
// tTarget, firing transitions via the Gillespie direct method, per the
// seven-step algorithm of spec.md §4.3.
func (s *Stepper) Advance(n *node, tTarget float64) error {
	for {
		if n.rateSum <= 0 {
			n.clock = tTarget
			return nil
		}
		tau := n.rng.Exponential(n.rateSum)
		if n.clock+tau > tTarget {
			n.clock = tTarget
			return nil
		}
		j, err := s.selectTransition(n)
		if err != nil {
			return err
		}
		if err := n.applyStoichiometry(s.S, j); err != nil {
			return err
		}
		if err := s.refreshDependents(n, j); err != nil {
			return err
		}
		n.clock += tau
		n.firesSinceRecompute++
		if n.needsDriftRecompute() {
			ldataCol := s.nodeLdata(n.index - 1)
			if err := n.recomputeAllRates(s.registry, s.gdata, ldataCol, n.clock); err != nil {
				return err
			}
		}
	}
}

// selectTransition draws r ~ Uniform(0, rateSum) and returns the smallest j
// such that the cumulative sum of rate[0..j] >= r. A zero-propensity
// transition can never be selected because its cumulative contribution is
// zero width.
func (s *Stepper) selectTransition(n *node) (int, error) {
	r := n.rng.Uniform() * n.rateSum
	var cum float64
	for j, rate := range n.rate {
		cum += rate
		if cum >= r {
			return j, nil
		}
	}
	// Floating point rounding can leave a residual below rateSum; fall back
	// to the last transition with non-zero rate rather than failing.
	for j := len(n.rate) - 1; j >= 0; j-- {
		if n.rate[j] > 0 {
			return j, nil
		}
	}
	return 0, newSimErrorf(KindInternal, "node %d: no transition selectable despite rate_sum=%v", n.index, n.rateSum)
}

// refreshDependents recomputes rate[i] for every i with G[i,j] != 0 after
// transition j has fired, adjusting rate_sum by the delta, as required by
// the dependency graph invariant (spec.md §3).
func (s *Stepper) refreshDependents(n *node, j int) error {
	rows, _ := s.G.Column(j)
	ldataCol := s.nodeLdata(n.index - 1)
	for _, i := range rows {
		newRate, err := s.registry.Eval(i, n.u, n.v, ldataCol, s.gdata, n.clock)
		if err != nil {
			return err
		}
		n.rateSum += newRate - n.rate[i]
		n.rate[i] = newRate
	}
	return nil
}

func (s *Stepper) nodeLdata(nodeIndex int) []float64 {
	if s.ldata == nil || s.ldata.NumRows() == 0 {
		return nil
	}
	return s.ldata.Column(nodeIndex)
}
