package simnet

import "github.com/segmentio/ksuid"

// Recorder is the write-only sink for simulation output, invoked once per
// node per tspan output point from the driver's serial recording phase
// (spec.md §4.6). Implementations must not block or do meaningful I/O
// per-call if they can avoid it; batching belongs to Flush/Close.
type Recorder interface {
	// RecordNode stores U[:,k] and V[:,k] for one node. k is the tspan
	// output index, t is tspan[k], nodeIndex is 0-based. u and v alias the
	// node's live state; implementations that retain data across calls
	// must copy it.
	RecordNode(k int, t float64, nodeIndex int, u []int, v []float64)
}

// DenseRecorder allocates U (Nc*Nn x T) and V (Nd*Nn x T) up front and
// writes every entry, matching spec.md §4.6's dense output mode.
type DenseRecorder struct {
	nc, nd, nn, T int
	U             []int     // column-major: U[c + n*nc][k] stored as U[k][c+n*nc]
	V             []float64

	// RunID identifies this recorder's run, in the same spirit as the
	// teacher's per-instance ksuid-tagged output rows.
	RunID ksuid.KSUID
}

// NewDenseRecorder allocates a recorder for Nc compartments, Nd continuous
// dimensions, Nn nodes, and T output points.
func NewDenseRecorder(nc, nd, nn, T int) *DenseRecorder {
	r := &DenseRecorder{nc: nc, nd: nd, nn: nn, T: T, RunID: ksuid.New()}
	r.U = make([]int, nc*nn*T)
	if nd > 0 {
		r.V = make([]float64, nd*nn*T)
	}
	return r
}

func (r *DenseRecorder) RecordNode(k int, t float64, nodeIndex int, u []int, v []float64) {
	base := nodeIndex * r.nc
	for c := 0; c < r.nc; c++ {
		r.U[k*r.nc*r.nn+base+c] = u[c]
	}
	if r.nd > 0 {
		vbase := nodeIndex * r.nd
		for c := 0; c < r.nd; c++ {
			r.V[k*r.nd*r.nn+vbase+c] = v[c]
		}
	}
}

// UAt returns U[c, n] at output index k.
func (r *DenseRecorder) UAt(k, c, n int) int {
	return r.U[k*r.nc*r.nn+n*r.nc+c]
}

// VAt returns V[d, n] at output index k.
func (r *DenseRecorder) VAt(k, d, n int) float64 {
	return r.V[k*r.nd*r.nn+n*r.nd+d]
}

// SparseCell identifies one (node, compartment, time index) triple to
// retain in sparse output mode.
type SparseCell struct {
	Node, Compartment, TimeIndex int
}

// SparseRecorder writes only the caller-supplied mask of (node,
// compartment, time_index) triples, per spec.md §4.6's sparse output mode.
type SparseRecorder struct {
	uMask map[SparseCell]bool
	vMask map[SparseCell]bool

	U map[SparseCell]int
	V map[SparseCell]float64

	RunID ksuid.KSUID
}

// NewSparseRecorder builds a recorder that stores only the given masked
// cells.
func NewSparseRecorder(uCells, vCells []SparseCell) *SparseRecorder {
	r := &SparseRecorder{
		uMask: make(map[SparseCell]bool, len(uCells)),
		vMask: make(map[SparseCell]bool, len(vCells)),
		U:     make(map[SparseCell]int),
		V:     make(map[SparseCell]float64),
		RunID: ksuid.New(),
	}
	for _, c := range uCells {
		r.uMask[c] = true
	}
	for _, c := range vCells {
		r.vMask[c] = true
	}
	return r
}

func (r *SparseRecorder) RecordNode(k int, t float64, nodeIndex int, u []int, v []float64) {
	for c := range u {
		cell := SparseCell{Node: nodeIndex, Compartment: c, TimeIndex: k}
		if r.uMask[cell] {
			r.U[cell] = u[c]
		}
	}
	for d := range v {
		cell := SparseCell{Node: nodeIndex, Compartment: d, TimeIndex: k}
		if r.vMask[cell] {
			r.V[cell] = v[d]
		}
	}
}
