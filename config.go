package simnet

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// RunConfig is the top-level TOML configuration for a simnet run, in the
// same spirit as the teacher's EvoEpiConfig: one struct per TOML table,
// each with its own Validate(), assembled once at load time.
type RunConfig struct {
	SimParams    *simParams          `toml:"simulation"`
	LogParams    *logParams          `toml:"logging"`
	Compartments []string            `toml:"compartments"`
	Transitions  []*transitionConfig `toml:"transition"`
	EventClasses []*eventClassConfig `toml:"event_class"`
	ShiftClasses []*shiftClassConfig `toml:"shift_class"`
	Events       []*eventConfig      `toml:"event"`
}

type simParams struct {
	NumInstances int       `toml:"num_instances"`
	NumThreads   int       `toml:"num_threads"`
	Seed         int64     `toml:"seed"`
	NumNodes     int       `toml:"num_nodes"`
	U0           [][]int   `toml:"u0"` // one row per node, Nc entries each
	Tspan        []float64 `toml:"tspan"`
	Gdata        []float64 `toml:"gdata"`
}

func (p *simParams) Validate() error {
	if p == nil {
		return errors.New("missing [simulation] section")
	}
	if p.NumInstances < 1 {
		return errors.Errorf("num_instances must be >= 1, got %d", p.NumInstances)
	}
	if p.NumThreads < 1 {
		return errors.Errorf("num_threads must be >= 1, got %d", p.NumThreads)
	}
	if p.NumNodes < 1 {
		return errors.Errorf("num_nodes must be >= 1, got %d", p.NumNodes)
	}
	if len(p.U0) != p.NumNodes {
		return errors.Errorf("u0 must have %d rows (one per node), got %d", p.NumNodes, len(p.U0))
	}
	if len(p.Tspan) < 2 {
		return errors.Errorf("tspan must have length >= 2, got %d", len(p.Tspan))
	}
	return nil
}

type logParams struct {
	LogPath    string `toml:"log_path"`
	LoggerType string `toml:"logger_type"` // "csv" or "sqlite"
}

func (p *logParams) Validate() error {
	if p == nil {
		return errors.New("missing [logging] section")
	}
	if p.LogPath == "" {
		return errors.New("log_path must be set")
	}
	switch strings.ToLower(p.LoggerType) {
	case "csv", "sqlite":
	default:
		return errors.Errorf("logger_type must be csv or sqlite, got %q", p.LoggerType)
	}
	return nil
}

// transitionConfig describes one mass-action transition, from which both a
// stoichiometry column and a built-in propensity are built.
type transitionConfig struct {
	Name          string  `toml:"name"`
	RateConstant  float64 `toml:"rate_constant"`
	GdataModifier int     `toml:"gdata_modifier"` // index into gdata, or -1
	Reactants     []int   `toml:"reactants"`      // compartment indices consumed (mass action)
	Stoichiometry []int   `toml:"stoichiometry"`  // length Nc, added to u on firing
	DependsOn     []int   `toml:"depends_on"`     // transition indices whose firing invalidates this rate
}

func (t *transitionConfig) Validate(nc int) error {
	if t.Name == "" {
		return errors.New("transition name must not be empty")
	}
	if len(t.Stoichiometry) != nc {
		return errors.Errorf("transition %s: stoichiometry must have length %d, got %d", t.Name, nc, len(t.Stoichiometry))
	}
	if t.GdataModifier < -1 {
		return errors.Errorf("transition %s: gdata_modifier must be >= -1", t.Name)
	}
	return nil
}

type eventClassConfig struct {
	Name          string `toml:"name"`
	Compartments  []int  `toml:"compartments"` // indices selected by this event class
}

type shiftClassConfig struct {
	Name   string `toml:"name"`
	Shifts []int  `toml:"shifts"` // length Nc, shift amount per compartment
}

type eventConfig struct {
	Kind       string  `toml:"kind"` // "exit", "enter", "internal_transfer", "external_transfer"
	Time       int     `toml:"time"`
	Node       int     `toml:"node"`
	Dest       int     `toml:"dest"`
	N          int     `toml:"n"`
	Proportion float64 `toml:"proportion"`
	Select     int     `toml:"select"` // index into EventClasses
	Shift      int     `toml:"shift"`  // index into ShiftClasses, -1 unless internal_transfer
}

func parseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(s) {
	case "exit":
		return EventExit, nil
	case "enter":
		return EventEnter, nil
	case "internal_transfer":
		return EventInternalTransfer, nil
	case "external_transfer":
		return EventExternalTransfer, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

// Validate checks every section of the configuration once, at load time.
// NewModel separately applies its own construction-time checks to the
// ModelConfig that BuildModelConfig produces.
func (c *RunConfig) Validate() error {
	if err := c.SimParams.Validate(); err != nil {
		return errors.Wrap(err, "invalid simulation parameters")
	}
	if err := c.LogParams.Validate(); err != nil {
		return errors.Wrap(err, "invalid logging parameters")
	}
	nc := len(c.Compartments)
	if nc == 0 {
		return errors.New("compartments must not be empty")
	}
	for _, row := range c.SimParams.U0 {
		if len(row) != nc {
			return errors.Errorf("u0 row has %d entries, expected %d compartments", len(row), nc)
		}
	}
	if len(c.Transitions) == 0 {
		return errors.New("at least one transition is required")
	}
	for _, t := range c.Transitions {
		if err := t.Validate(nc); err != nil {
			return err
		}
	}
	for i, ev := range c.Events {
		kind, err := parseEventKind(ev.Kind)
		if err != nil {
			return errors.Wrapf(err, "event %d", i)
		}
		if ev.Select < 0 || ev.Select >= len(c.EventClasses) {
			return errors.Errorf("event %d: select %d out of range [0,%d)", i, ev.Select, len(c.EventClasses))
		}
		if kind == EventInternalTransfer && (ev.Shift < 0 || ev.Shift >= len(c.ShiftClasses)) {
			return errors.Errorf("event %d: shift %d out of range [0,%d)", i, ev.Shift, len(c.ShiftClasses))
		}
	}
	return nil
}

// NumInstances returns the number of independent replicate runs to perform.
func (c *RunConfig) NumInstances() int { return c.SimParams.NumInstances }

// LogPath returns the configured output base path.
func (c *RunConfig) LogPath() string { return c.LogParams.LogPath }

// LoggerType returns the configured recorder backend ("csv" or "sqlite").
func (c *RunConfig) LoggerType() string { return strings.ToLower(c.LogParams.LoggerType) }
