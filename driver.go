package simnet

import (
	"context"
	"math"
	"sort"
	"sync"
)

// PostStepResult is returned by a user-supplied post-step hook.
type PostStepResult int

const (
	// PostStepOK means no rate change occurred; cached rates stand.
	PostStepOK PostStepResult = 0
	// PostStepRatesChanged means the hook mutated v (or ldata-derived
	// state) in a way that invalidates this node's cached rates, so the
	// driver must recompute them in full before SSA resumes.
	PostStepRatesChanged PostStepResult = 1
	// PostStepAbort means the hook detected an unrecoverable condition and
	// the simulation should stop immediately with an internal error.
	PostStepAbort PostStepResult = 2
)

// PostStepFunc is the optional per-node hook invoked once per tspan output,
// before that output point is recorded, as spec.md §4.5 describes: it may mutate v in
// place and reads (but does not mutate) u, ldata, and gdata.
type PostStepFunc func(u []int, v []float64, ldata []float64, gdata []float64, t float64) PostStepResult

// Status is the terminal disposition of a Run call.
type Status string

const (
	StatusOK           Status = "ok"
	StatusCancelled    Status = "cancelled"
	StatusInvalidModel Status = "invalid_model"
	StatusRuntimeError Status = "runtime_error"
)

// RunResult is returned by Driver.Run.
type RunResult struct {
	Status Status
	Err    error
	// LastCompletedIndex is the index into tspan of the last output point
	// that was fully recorded before a cancellation or runtime error.
	// -1 if no output point was completed.
	LastCompletedIndex int
}

// Driver partitions nodes across workers and coordinates the tick boundary
// between SSA stepping and scheduled-event application, following the
// static-partition, barrier-synchronized concurrency model of spec.md §5.
// It plays the role the teacher's per-instance Run/Update/Process/Transmit
// sequence plays in migration_simulation.go, generalized from
// "one goroutine per host per phase" to "one goroutine per static node
// partition per advance phase, joined at a sync.WaitGroup barrier".
type Driver struct {
	model *Model

	stepper *Stepper
	nodes   []*node

	eventsByTick map[int][]Event
	ticks        []int // sorted distinct integer tick values with events
	ticksApplied map[int]bool

	postStep PostStepFunc

	recorder Recorder
}

// NewDriver builds a Driver ready to run the given model.
func NewDriver(m *Model) (*Driver, error) {
	d := &Driver{model: m}
	d.stepper = &Stepper{
		G:        m.G,
		S:        m.S,
		registry: m.Propensities,
		gdata:    m.Gdata,
		ldata:    m.ldataCols,
	}
	d.nodes = make([]*node, m.numNodes())
	// One stream per worker, shared by every node in that worker's static
	// partition (the same partition Run uses).
	for workerIdx, indices := range nodeWorkerPartition(m.numNodes(), m.NThreads) {
		stream := NewRNGStream(m.Seed, workerIdx)
		for _, i := range indices {
			u0col := m.u0Column(i)
			v0col := m.v0Column(i)
			d.nodes[i] = newNode(i+1, u0col, v0col, m.Propensities.Len(), stream)
		}
	}
	d.eventsByTick = make(map[int][]Event)
	tickSet := make(map[int]bool)
	for _, ev := range m.Events {
		d.eventsByTick[ev.Time] = append(d.eventsByTick[ev.Time], ev)
		tickSet[ev.Time] = true
	}
	for t := range d.eventsByTick {
		sortEventsInPlace(d.eventsByTick[t])
	}
	for t := range tickSet {
		d.ticks = append(d.ticks, t)
	}
	sort.Ints(d.ticks)
	d.ticksApplied = make(map[int]bool, len(d.ticks))

	d.postStep = m.PostStep
	d.recorder = m.Recorder

	// Initial rate computation for every node at t = tspan[0].
	for _, n := range d.nodes {
		ldataCol := d.stepper.nodeLdata(n.index - 1)
		if err := n.recomputeAllRates(d.stepper.registry, d.stepper.gdata, ldataCol, m.Tspan[0]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// nodeWorkerPartition assigns node indices (0-based) to nThreads workers by
// contiguous block, a static partition fixed for the whole run as spec.md
// §5 requires.
func nodeWorkerPartition(numNodes, nThreads int) [][]int {
	if nThreads < 1 {
		nThreads = 1
	}
	if nThreads > numNodes {
		nThreads = numNodes
	}
	partitions := make([][]int, nThreads)
	base := numNodes / nThreads
	rem := numNodes % nThreads
	idx := 0
	for w := 0; w < nThreads; w++ {
		size := base
		if w < rem {
			size++
		}
		for k := 0; k < size; k++ {
			partitions[w] = append(partitions[w], idx)
			idx++
		}
	}
	return partitions
}

// Run executes the full tspan loop described in spec.md §4.5: advance SSA,
// interleave scheduled events at integer ticks, invoke the post-step hook,
// and record output at every tspan[k]. ctx is checked at each tick boundary
// for cooperative cancellation (spec.md §5).
func (d *Driver) Run(ctx context.Context) RunResult {
	partitions := nodeWorkerPartition(len(d.nodes), d.model.NThreads)
	lastCompleted := -1

	for k, tNext := range d.model.Tspan {
		select {
		case <-ctx.Done():
			return RunResult{Status: StatusCancelled, Err: ctx.Err(), LastCompletedIndex: lastCompleted}
		default:
		}

		if err := d.advanceToWithEvents(ctx, partitions, tNext); err != nil {
			return d.errorResult(err, lastCompleted)
		}

		if d.postStep != nil {
			if err := d.runPostStep(tNext); err != nil {
				return d.errorResult(err, lastCompleted)
			}
		}

		if d.recorder != nil {
			d.recordColumn(k, tNext)
		}
		lastCompleted = k
	}
	return RunResult{Status: StatusOK, LastCompletedIndex: lastCompleted}
}

// advanceToWithEvents advances every node to min(tNext, nextTick), applies
// any events at that tick across a barrier, and repeats until tNext is
// reached, implementing the inner loop of spec.md §4.5's driver pseudocode.
// ctx is checked at every tick boundary, not just once per tspan[k], so a
// cancel lands promptly even when many integer ticks fall inside a single
// tspan interval.
func (d *Driver) advanceToWithEvents(ctx context.Context, partitions [][]int, tNext float64) error {
	for {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		nextTick, hasTick := d.nextPendingTick(d.currentClock(), tNext)
		target := tNext
		if hasTick {
			target = float64(nextTick)
		}
		if err := d.parallelAdvance(ctx, partitions, target); err != nil {
			return err
		}
		if !hasTick {
			return nil
		}
		// Barrier: all workers have reached nextTick. Check for cancel
		// before applying events, then resume SSA from a second barrier.
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		if err := applyEvents(d.eventsByTick[nextTick], d.nodes, d.model.E, d.model.N); err != nil {
			return err
		}
		d.ticksApplied[nextTick] = true
		if err := d.recomputeTouchedNodes(float64(nextTick)); err != nil {
			return err
		}
		if float64(nextTick) >= tNext {
			return nil
		}
	}
}

// checkCancelled reports a KindCancelled SimError if ctx has been
// cancelled, or nil otherwise. Used at every tick boundary per spec.md §5.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return newSimErrorf(KindCancelled, "cancelled: %s", ctx.Err())
	default:
		return nil
	}
}

// currentClock returns the (shared) clock value every node has reached;
// nodes advance in lockstep to tick/tspan boundaries so this is just the
// first node's clock, valid because advanceToWithEvents never returns
// control until all nodes have reached the same target.
func (d *Driver) currentClock() float64 {
	if len(d.nodes) == 0 {
		return 0
	}
	return d.nodes[0].clock
}

// nextPendingTick returns the smallest not-yet-applied tick in
// [currentClock, tNext], if any. Ticks are applied at most once even if
// they coincide with a tspan output point's integer value.
func (d *Driver) nextPendingTick(currentClock, tNext float64) (int, bool) {
	for _, tick := range d.ticks {
		if d.ticksApplied[tick] {
			continue
		}
		ft := float64(tick)
		if ft >= currentClock && ft <= tNext {
			return tick, true
		}
	}
	return 0, false
}

// parallelAdvance runs Stepper.Advance for every node up to target,
// partitioned statically across workers, per spec.md §5's scheduling
// model. Each worker owns its node subset for the whole call; this is the
// barrier before event application and before recording. ctx is checked
// before the workers are launched, the tick-boundary cancel point this
// call sits between.
func (d *Driver) parallelAdvance(ctx context.Context, partitions [][]int, target float64) error {
	if err := checkCancelled(ctx); err != nil {
		return err
	}
	var wg sync.WaitGroup
	errs := make([]error, len(partitions))
	for w, indices := range partitions {
		wg.Add(1)
		go func(w int, indices []int) {
			defer wg.Done()
			for _, idx := range indices {
				if err := d.stepper.Advance(d.nodes[idx], target); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, indices)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// recomputeTouchedNodes recomputes every node's full rate vector after an
// event application tick. Events may touch arbitrarily many compartments at
// once, so the dependency graph is not used to narrow this down (spec.md
// §4.4's "State invalidation").
func (d *Driver) recomputeTouchedNodes(t float64) error {
	for _, n := range d.nodes {
		ldataCol := d.stepper.nodeLdata(n.index - 1)
		if err := n.recomputeAllRates(d.stepper.registry, d.stepper.gdata, ldataCol, t); err != nil {
			return err
		}
	}
	return nil
}

// runPostStep invokes the post-step hook for every node after an output
// point, recomputing rates for any node that reports a rate change and
// aborting the run if any node reports PostStepAbort.
func (d *Driver) runPostStep(t float64) error {
	for _, n := range d.nodes {
		ldataCol := d.stepper.nodeLdata(n.index - 1)
		result := d.postStep(n.u, n.v, ldataCol, d.model.Gdata, t)
		switch result {
		case PostStepOK:
		case PostStepRatesChanged:
			if err := n.recomputeAllRates(d.stepper.registry, d.stepper.gdata, ldataCol, t); err != nil {
				return err
			}
		case PostStepAbort:
			return newSimErrorf(KindInternal, "post-step hook aborted at node %d, t=%v", n.index, t)
		default:
			return newSimErrorf(KindInternal, "post-step hook returned unknown result %v at node %d", result, n.index)
		}
	}
	return nil
}

// recordColumn writes U[:,k] and V[:,k] for every node, serially, as
// spec.md §4.6 requires ("Recording is serial ... to avoid contention").
func (d *Driver) recordColumn(k int, t float64) {
	for _, n := range d.nodes {
		d.recorder.RecordNode(k, t, n.index-1, n.u, n.v)
	}
}

func (d *Driver) errorResult(err error, lastCompleted int) RunResult {
	status := StatusRuntimeError
	if se, ok := err.(*SimError); ok {
		switch se.Kind {
		case KindInvalidInput:
			status = StatusInvalidModel
		case KindCancelled:
			status = StatusCancelled
		}
	}
	return RunResult{Status: status, Err: err, LastCompletedIndex: lastCompleted}
}

// isFinitePositive reports whether x is finite and strictly positive. It has
// no callers in the package.
func isFinitePositive(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0
}
