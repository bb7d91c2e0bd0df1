package simnet

import "math"

// EventKind enumerates the four scheduled event kinds spec.md §4.4 defines.
type EventKind int

const (
	// EventExit removes k individuals from a node.
	EventExit EventKind = 0
	// EventEnter adds k individuals to a node.
	EventEnter EventKind = 1
	// EventInternalTransfer moves k individuals between compartments of the
	// same node.
	EventInternalTransfer EventKind = 2
	// EventExternalTransfer moves k individuals from one node to another.
	EventExternalTransfer EventKind = 3
)

// Event is one scheduled, integer-timed event, matching spec.md §6's input
// field list exactly: (event, time, node, dest, n, proportion, select, shift).
type Event struct {
	Kind       EventKind
	Time       int // > 0, integer tick
	Node       int // 1-based node id, per spec.md §6
	Dest       int // 1-based destination node id, EXTERNAL_TRANSFER only
	N          int // exact count; 0 means "use Proportion instead"
	Proportion float64
	Select     int // column index into E
	Shift      int // column index into N; -1 unless Kind == EventInternalTransfer
}

// sortEventsInPlace orders events by (time, event_kind, select) as spec.md §4.4
// requires, so callers that assemble an events slice from an unordered
// source get the contractually-required ordering for free.
func sortEventsInPlace(events []Event) {
	// Simple insertion sort: event schedules in practice are modest in
	// size and this keeps the ordering stable and obviously correct.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && eventLess(events[j], events[j-1]); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

func eventLess(a, b Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Select < b.Select
}

// resolveCount returns the exact number of individuals an EXIT-like event
// should draw. If ev.N > 0, that count is used directly. Otherwise the
// count is round(ev.Proportion * P) where P is the total population across
// the selected compartments, using round-half-away-from-zero as the
// resolved convention for spec.md's documented open question.
func resolveCount(ev Event, selectedTotal int) int {
	if ev.N > 0 {
		return ev.N
	}
	exact := ev.Proportion * float64(selectedTotal)
	return roundHalfAwayFromZero(exact)
}

func roundHalfAwayFromZero(x float64) int {
	if x >= 0 {
		return int(math.Floor(x + 0.5))
	}
	return -int(math.Floor(-x + 0.5))
}

// selectedWeights returns, for the selected column of E, the current count
// in each compartment that column selects (0 for unselected compartments),
// along with the total across selected compartments.
func selectedWeights(u []int, E *SparseMatrix, selectCol int) (weights []int, total int) {
	weights = make([]int, len(u))
	rows, _ := E.Column(selectCol)
	for _, r := range rows {
		weights[r] = u[r]
		total += u[r]
	}
	return weights, total
}

// applyEvents applies every event in events (already filtered to a single
// tick and sorted by (time, kind, select)) against nodes, indexed 0-based
// internally but addressed 1-based in Event.Node/Event.Dest as spec.md §6
// specifies. E and N are the compartment-selector and shift matrices.
//
// Exits are applied before enters within a tick because EventExit(0) <
// EventEnter(1) under eventLess; external transfers debit the source before
// crediting the destination within a single call, satisfying the ordering
// invariant of spec.md §3.
func applyEvents(events []Event, nodes []*node, E, N *SparseMatrix) error {
	for idx, ev := range events {
		if ev.Node < 1 || ev.Node > len(nodes) {
			return newSimErrorf(KindInconsistentEvent, NodeIndexOutOfRangeError, ev.Node, len(nodes)+1)
		}
		src := nodes[ev.Node-1]
		switch ev.Kind {
		case EventExit:
			if err := applyExit(idx, src, ev, E); err != nil {
				return err
			}
		case EventEnter:
			if err := applyEnter(idx, src, ev, E); err != nil {
				return err
			}
		case EventInternalTransfer:
			if err := applyInternalTransfer(idx, src, ev, E, N); err != nil {
				return err
			}
		case EventExternalTransfer:
			if ev.Dest < 1 || ev.Dest > len(nodes) {
				return newSimErrorf(KindInconsistentEvent, NodeIndexOutOfRangeError, ev.Dest, len(nodes)+1)
			}
			dst := nodes[ev.Dest-1]
			if err := applyExternalTransfer(idx, src, dst, ev, E); err != nil {
				return err
			}
		default:
			return newSimErrorf(KindInconsistentEvent, UnknownEventKindError, idx, ev.Kind)
		}
		src.firesSinceRecompute = rateRecomputeInterval // Advance recomputes all rates after its next fire; the driver's recomputeTouchedNodes recomputes them before SSA resumes
	}
	return nil
}

func validateSelect(idx int, ev Event, E *SparseMatrix) error {
	if ev.Select < 0 || ev.Select >= E.NumCols() {
		return newSimErrorf(KindInconsistentEvent, SelectOutOfRangeError, idx, ev.Select, E.NumCols())
	}
	return nil
}

func applyExit(idx int, n *node, ev Event, E *SparseMatrix) error {
	if err := validateSelect(idx, ev, E); err != nil {
		return err
	}
	weights, total := selectedWeights(n.u, E, ev.Select)
	k := resolveCount(ev, total)
	if k > total {
		return newSimErrorf(KindInconsistentEvent, RequestedCountExceedsPool, idx, k, total, ev.Node)
	}
	drawn, err := n.rng.SampleWithoutReplacement(weights, k)
	if err != nil {
		return reclassify(idx, err)
	}
	for c, d := range drawn {
		n.u[c] -= d
		if n.u[c] < 0 {
			return newSimErrorf(KindInconsistentEvent, NegativeResultAfterEvent, idx, c, ev.Node)
		}
	}
	return nil
}

func applyEnter(idx int, n *node, ev Event, E *SparseMatrix) error {
	if err := validateSelect(idx, ev, E); err != nil {
		return err
	}
	rows, _ := E.Column(ev.Select)
	if len(rows) == 0 {
		return newSimErrorf(KindInconsistentEvent, "event %d: select column %d has no selected compartments", idx, ev.Select)
	}
	target := rows[0] // first non-zero entry, per spec.md §4.4's convention
	k := ev.N
	if k <= 0 {
		return newSimErrorf(KindInconsistentEvent, "event %d: ENTER requires n > 0, got %d", idx, ev.N)
	}
	n.u[target] += k
	return nil
}

func applyInternalTransfer(idx int, n *node, ev Event, E, N *SparseMatrix) error {
	if err := validateSelect(idx, ev, E); err != nil {
		return err
	}
	if ev.Shift < 0 || ev.Shift >= N.NumCols() {
		return newSimErrorf(KindInconsistentEvent, ShiftOutOfRangeError, idx, ev.Shift, N.NumCols())
	}
	weights, total := selectedWeights(n.u, E, ev.Select)
	k := resolveCount(ev, total)
	if k > total {
		return newSimErrorf(KindInconsistentEvent, RequestedCountExceedsPool, idx, k, total, ev.Node)
	}
	drawn, err := n.rng.SampleWithoutReplacement(weights, k)
	if err != nil {
		return reclassify(idx, err)
	}
	for c, d := range drawn {
		if d == 0 {
			continue
		}
		shiftAmount := int(N.At(c, ev.Shift))
		dest := c + shiftAmount
		if dest < 0 || dest >= len(n.u) {
			return newSimErrorf(KindInconsistentEvent, "event %d: shift from compartment %d by %d lands out of range", idx, c, shiftAmount)
		}
		n.u[c] -= d
		n.u[dest] += d
		if n.u[c] < 0 {
			return newSimErrorf(KindInconsistentEvent, NegativeResultAfterEvent, idx, c, ev.Node)
		}
	}
	return nil
}

func applyExternalTransfer(idx int, src, dst *node, ev Event, E *SparseMatrix) error {
	if err := validateSelect(idx, ev, E); err != nil {
		return err
	}
	weights, total := selectedWeights(src.u, E, ev.Select)
	k := resolveCount(ev, total)
	if k > total {
		return newSimErrorf(KindInconsistentEvent, RequestedCountExceedsPool, idx, k, total, ev.Node)
	}
	// Draws use the source node's RNG, per spec.md §4.4.
	drawn, err := src.rng.SampleWithoutReplacement(weights, k)
	if err != nil {
		return reclassify(idx, err)
	}
	// Debit source fully before crediting destination, per the ordering
	// invariant in spec.md §3.
	for c, d := range drawn {
		src.u[c] -= d
		if src.u[c] < 0 {
			return newSimErrorf(KindInconsistentEvent, NegativeResultAfterEvent, idx, c, ev.Node)
		}
	}
	for c, d := range drawn {
		dst.u[c] += d
	}
	dst.firesSinceRecompute = rateRecomputeInterval
	return nil
}

// reclassify turns an internal SampleWithoutReplacement pool-exhaustion
// error into an inconsistent_event error carrying the event index.
func reclassify(idx int, err error) error {
	if se, ok := err.(*SimError); ok && se.Kind == KindInconsistentEvent {
		return newSimErrorf(KindInconsistentEvent, "event %d: %s", idx, se.Error())
	}
	return err
}
