package simnet

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// LoadRunConfig reads and validates a TOML run configuration from path,
// mirroring the teacher's LoadEvoEpiConfig: decode, then Validate once,
// returning a typed error the caller can act on rather than decoding lazily
// at each accessor.
func LoadRunConfig(path string) (*RunConfig, error) {
	var cfg RunConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding run config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BuildModelConfig assembles a ModelConfig from a validated RunConfig,
// building G/S/E/N from the declared transitions, event classes, and shift
// classes. This is the bridge between the TOML authoring surface and the
// engine's matrix-based contract (spec.md §6/§9); it does no validation of
// its own beyond what RunConfig.Validate already guarantees, consistent
// with the "validate once, at the edge" constructor pattern NewModel uses.
func (c *RunConfig) BuildModelConfig() (ModelConfig, error) {
	nc := len(c.Compartments)
	nt := len(c.Transitions)
	nn := c.SimParams.NumNodes

	S, err := c.buildS(nc, nt)
	if err != nil {
		return ModelConfig{}, err
	}
	G, err := c.buildG(nt)
	if err != nil {
		return ModelConfig{}, err
	}
	E, err := c.buildE(nc)
	if err != nil {
		return ModelConfig{}, err
	}
	var N *SparseMatrix
	if len(c.ShiftClasses) > 0 {
		N, err = c.buildN(nc)
		if err != nil {
			return ModelConfig{}, err
		}
	}

	propensities := make([]Propensity, nt)
	for i, t := range c.Transitions {
		if t.GdataModifier >= 0 {
			p, err := MassActionWithModifierPropensity(t.GdataModifier, t.Reactants...)
			if err != nil {
				return ModelConfig{}, errors.Wrapf(err, "transition %s", t.Name)
			}
			propensities[i] = p
			continue
		}
		p, err := MassActionPropensity(t.RateConstant, t.Reactants...)
		if err != nil {
			return ModelConfig{}, errors.Wrapf(err, "transition %s", t.Name)
		}
		propensities[i] = p
	}

	u0 := make([]int, nc*nn)
	for i, row := range c.SimParams.U0 {
		copy(u0[i*nc:(i+1)*nc], row)
	}

	events := make([]Event, len(c.Events))
	for i, ev := range c.Events {
		kind, err := parseEventKind(ev.Kind)
		if err != nil {
			return ModelConfig{}, errors.Wrapf(err, "event %d", i)
		}
		events[i] = Event{
			Kind:       kind,
			Time:       ev.Time,
			Node:       ev.Node,
			Dest:       ev.Dest,
			N:          ev.N,
			Proportion: ev.Proportion,
			Select:     ev.Select,
			Shift:      ev.Shift,
		}
	}

	return ModelConfig{
		G: G, S: S, E: E, N: N,
		U0: u0, Nc: nc, Nn: nn,
		Gdata:        append([]float64(nil), c.SimParams.Gdata...),
		Tspan:        append([]float64(nil), c.SimParams.Tspan...),
		Events:       events,
		Propensities: propensities,
		Seed:         c.SimParams.Seed,
		NThreads:     c.SimParams.NumThreads,
	}, nil
}

// buildS builds the Nc x Nt stoichiometry matrix from each transition's
// declared Stoichiometry column.
func (c *RunConfig) buildS(nc, nt int) (*SparseMatrix, error) {
	var rows, cols []int
	var values []float64
	for j, t := range c.Transitions {
		for i, delta := range t.Stoichiometry {
			if delta == 0 {
				continue
			}
			rows = append(rows, i)
			cols = append(cols, j)
			values = append(values, float64(delta))
		}
	}
	return NewSparseMatrixFromEntries(nc, nt, rows, cols, values, nil, nil)
}

// buildG builds the Nt x Nt dependency graph: column k has a 1 in row j
// whenever firing transition k should invalidate transition j's cached
// rate, i.e. k appears in j's DependsOn list. A transition always depends
// on itself.
func (c *RunConfig) buildG(nt int) (*SparseMatrix, error) {
	var rows, cols []int
	var values []float64
	for j, t := range c.Transitions {
		rows = append(rows, j)
		cols = append(cols, j)
		values = append(values, 1)
		for _, k := range t.DependsOn {
			rows = append(rows, j)
			cols = append(cols, k)
			values = append(values, 1)
		}
	}
	return NewSparseMatrixFromEntries(nt, nt, rows, cols, values, nil, nil)
}

// buildE builds the Nc x len(EventClasses) selector matrix: column k has a
// 1 in row i for every compartment i the k-th event class selects.
func (c *RunConfig) buildE(nc int) (*SparseMatrix, error) {
	var rows, cols []int
	var values []float64
	for k, class := range c.EventClasses {
		for _, i := range class.Compartments {
			rows = append(rows, i)
			cols = append(cols, k)
			values = append(values, 1)
		}
	}
	return NewSparseMatrixFromEntries(nc, len(c.EventClasses), rows, cols, values, nil, nil)
}

// buildN builds the Nc x len(ShiftClasses) remapping matrix: column k holds
// the k-th shift class's per-compartment destination-compartment offsets.
func (c *RunConfig) buildN(nc int) (*SparseMatrix, error) {
	var rows, cols []int
	var values []float64
	for k, class := range c.ShiftClasses {
		for i, shift := range class.Shifts {
			if shift == 0 {
				continue
			}
			rows = append(rows, i)
			cols = append(cols, k)
			values = append(values, float64(shift))
		}
	}
	return NewSparseMatrixFromEntries(nc, len(c.ShiftClasses), rows, cols, values, nil, nil)
}
