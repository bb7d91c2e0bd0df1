package simnet

import "github.com/pkg/errors"

// ModelConfig bundles every constructor input spec.md §6 lists. All
// validation happens once, here, at construction time (Design Notes §9's
// "Object-oriented slot access" maps to a plain struct with
// constructor-time validation, not a mutable, re-validated-on-every-access
// object).
type ModelConfig struct {
	G, S, E, N *SparseMatrix

	// U0 is dense, column-major, Nc x Nn (u0Column(i) = U0[i*Nc:(i+1)*Nc]).
	U0 []int
	Nc int
	Nn int

	// V0 is dense, column-major, Nd x Nn. May be empty if Nd == 0.
	V0 []float64
	Nd int

	// Ldata is dense, column-major, Nld x Nn. May be empty if Nld == 0.
	Ldata []float64
	Nld   int

	Gdata []float64

	Tspan  []float64
	Events []Event

	Propensities []Propensity
	PostStep     PostStepFunc

	Seed     int64
	NThreads int

	Recorder Recorder
}

// Model is the validated, immutable-after-construction simulation
// configuration a Driver runs against.
type Model struct {
	G, S, E, N *SparseMatrix

	u0 []int
	nc int
	nn int

	v0 []float64
	nd int

	ldataCols *SparseColumns

	Gdata []float64

	Tspan  []float64
	Events []Event

	Propensities *PropensityRegistry
	PostStep     PostStepFunc

	Seed     int64
	NThreads int

	Recorder Recorder
}

func (m *Model) numNodes() int { return m.nn }

func (m *Model) u0Column(i int) []int {
	return append([]int(nil), m.u0[i*m.nc:(i+1)*m.nc]...)
}

func (m *Model) v0Column(i int) []float64 {
	if m.nd == 0 {
		return nil
	}
	return append([]float64(nil), m.v0[i*m.nd:(i+1)*m.nd]...)
}

// NewModel validates cfg and builds a Model, or returns an invalid_input
// SimError describing the first violation found.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.Nn <= 0 {
		return nil, newSimErrorf(KindInvalidInput, "Nn must be > 0, got %d", cfg.Nn)
	}
	if cfg.Nc <= 0 {
		return nil, newSimErrorf(KindInvalidInput, "Nc must be > 0, got %d", cfg.Nc)
	}
	if cfg.G == nil || cfg.S == nil || cfg.E == nil {
		return nil, newSimErrorf(KindInvalidInput, "G, S, and E must all be supplied")
	}
	if cfg.G.NumRows() != cfg.G.NumCols() {
		return nil, newSimErrorf(KindInvalidInput, "G must be square (Nt x Nt), got %dx%d", cfg.G.NumRows(), cfg.G.NumCols())
	}
	nt := cfg.G.NumCols()
	if cfg.S.NumCols() != nt {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "S", cfg.S.NumCols(), nt)
	}
	if cfg.S.NumRows() != cfg.Nc {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "S rows", cfg.S.NumRows(), cfg.Nc)
	}
	if cfg.E.NumRows() != cfg.Nc {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "E rows", cfg.E.NumRows(), cfg.Nc)
	}
	if cfg.S.RowNames() != nil && cfg.E.RowNames() != nil && !RowsEqual(cfg.S, cfg.E) {
		return nil, newSimErrorf(KindInvalidInput, RownameMismatchError, "S", "E")
	}
	if cfg.N != nil && cfg.N.NumRows() != cfg.Nc {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "N rows", cfg.N.NumRows(), cfg.Nc)
	}

	if len(cfg.U0) != cfg.Nc*cfg.Nn {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "u0", len(cfg.U0), cfg.Nc*cfg.Nn)
	}
	for i, v := range cfg.U0 {
		if v < 0 {
			return nil, newSimErrorf(KindInvalidInput, NegativeCompartmentError, i%cfg.Nc, i/cfg.Nc, v)
		}
	}

	if cfg.Nd > 0 {
		if len(cfg.V0) != cfg.Nd*cfg.Nn {
			return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "v0", len(cfg.V0), cfg.Nd*cfg.Nn)
		}
	}

	if len(cfg.Tspan) < 2 {
		return nil, newSimErrorf(KindInvalidInput, "tspan must have length >= 2, got %d", len(cfg.Tspan))
	}
	for i := 1; i < len(cfg.Tspan); i++ {
		if cfg.Tspan[i] <= cfg.Tspan[i-1] {
			return nil, newSimErrorf(KindInvalidInput, NonIncreasingTspanError, i, cfg.Tspan[i-1], cfg.Tspan[i])
		}
	}

	if cfg.Seed < 0 {
		return nil, newSimErrorf(KindInvalidInput, InvalidSeedError, cfg.Seed)
	}
	if cfg.NThreads < 1 {
		return nil, newSimErrorf(KindInvalidInput, InvalidThreadCountError, cfg.NThreads)
	}

	if len(cfg.Propensities) != nt {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "propensities", len(cfg.Propensities), nt)
	}
	registry, err := NewPropensityRegistry(cfg.Propensities, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building propensity registry")
	}

	for i, ev := range cfg.Events {
		if ev.Time <= 0 {
			return nil, newSimErrorf(KindInvalidInput, "event %d: time must be > 0, got %d", i, ev.Time)
		}
		if ev.Node < 1 || ev.Node > cfg.Nn {
			return nil, newSimErrorf(KindInvalidInput, NodeIndexOutOfRangeError, ev.Node, cfg.Nn+1)
		}
		if ev.Kind == EventExternalTransfer && (ev.Dest < 1 || ev.Dest > cfg.Nn) {
			return nil, newSimErrorf(KindInvalidInput, NodeIndexOutOfRangeError, ev.Dest, cfg.Nn+1)
		}
		if ev.Proportion < 0 || ev.Proportion > 1 {
			return nil, newSimErrorf(KindInvalidInput, InvalidFloatParameterError, "proportion", ev.Proportion, "outside [0,1]")
		}
		if ev.Kind != EventInternalTransfer && ev.Shift != -1 {
			return nil, newSimErrorf(KindInvalidInput, "event %d: shift must be -1 unless kind is internal_transfer", i)
		}
	}
	events := append([]Event(nil), cfg.Events...)
	sortEventsInPlace(events)

	var ldataCols *SparseColumns
	if cfg.Nld > 0 {
		ldataCols, err = NewSparseColumns(cfg.Nld, cfg.Nn, transposeToRowMajor(cfg.Ldata, cfg.Nld, cfg.Nn))
		if err != nil {
			return nil, err
		}
	} else {
		ldataCols = &SparseColumns{}
	}

	m := &Model{
		G: cfg.G, S: cfg.S, E: cfg.E, N: cfg.N,
		u0: append([]int(nil), cfg.U0...), nc: cfg.Nc, nn: cfg.Nn,
		v0: append([]float64(nil), cfg.V0...), nd: cfg.Nd,
		ldataCols:    ldataCols,
		Gdata:        append([]float64(nil), cfg.Gdata...),
		Tspan:        append([]float64(nil), cfg.Tspan...),
		Events:       events,
		Propensities: registry,
		PostStep:     cfg.PostStep,
		Seed:         cfg.Seed,
		NThreads:     cfg.NThreads,
		Recorder:     cfg.Recorder,
	}
	return m, nil
}

// transposeToRowMajor bridges Ldata's layout and NewSparseColumns' input:
// callers supply Ldata in column-major (Nld x Nn) form consistent with
// U0/V0, so this transposes it once into the row-major layout
// NewSparseColumns expects.
func transposeToRowMajor(colMajor []float64, nrow, ncol int) []float64 {
	rowMajor := make([]float64, nrow*ncol)
	for c := 0; c < ncol; c++ {
		for r := 0; r < nrow; r++ {
			rowMajor[r*ncol+c] = colMajor[c*nrow+r]
		}
	}
	return rowMajor
}
