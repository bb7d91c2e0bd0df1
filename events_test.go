package simnet

import "testing"

func sampleShiftMatrix() *SparseMatrix {
	// One shift class: compartment 0 (S) shifts by +2 to land on compartment 2 (R).
	m, err := NewSparseMatrixFromEntries(3, 1, []int{0}, []int{0}, []float64{2}, nil, nil)
	if err != nil {
		panic(err)
	}
	return m
}

func TestApplyEvents_ExitProportional(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	n := newNode(1, []int{100, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventExit, Time: 1, Node: 1, Proportion: 0.25, Select: 0, Shift: -1}
	if err := applyEvents([]Event{ev}, []*node{n}, E, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if n.u[0] != 75 {
		t.Errorf("expected 25%% of 100 (25) removed from S, leaving 75, got %d", n.u[0])
	}
}

func TestApplyEvents_EnterAddsIndividuals(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	n := newNode(1, []int{10, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventEnter, Time: 1, Node: 1, N: 5, Select: 0, Shift: -1}
	if err := applyEvents([]Event{ev}, []*node{n}, E, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if n.u[0] != 15 {
		t.Errorf("expected S to grow by 5 to 15, got %d", n.u[0])
	}
}

func TestApplyEvents_InternalTransfer(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	N := sampleShiftMatrix()
	n := newNode(1, []int{20, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventInternalTransfer, Time: 1, Node: 1, N: 8, Select: 0, Shift: 0}
	if err := applyEvents([]Event{ev}, []*node{n}, E, N); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if n.u[0] != 12 {
		t.Errorf("expected S to shrink by 8 to 12, got %d", n.u[0])
	}
	if n.u[2] != 8 {
		t.Errorf("expected R to grow by 8 via the +2 shift, got %d", n.u[2])
	}
}

func TestApplyEvents_ExternalTransfer(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	src := newNode(1, []int{50, 0, 0}, nil, 1, NewRNGStream(1, 0))
	dst := newNode(2, []int{0, 0, 0}, nil, 1, NewRNGStream(1, 1))
	ev := Event{Kind: EventExternalTransfer, Time: 1, Node: 1, Dest: 2, N: 20, Select: 0, Shift: -1}
	if err := applyEvents([]Event{ev}, []*node{src, dst}, E, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if src.u[0] != 30 {
		t.Errorf("expected source S to drop to 30, got %d", src.u[0])
	}
	if dst.u[0] != 20 {
		t.Errorf("expected destination S to receive 20, got %d", dst.u[0])
	}
}

func TestApplyEvents_RequestExceedingPoolIsInconsistent(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	n := newNode(1, []int{5, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventExit, Time: 1, Node: 1, N: 10, Select: 0, Shift: -1}
	err := applyEvents([]Event{ev}, []*node{n}, E, nil)
	if err == nil {
		t.Fatalf("expected an inconsistent_event error when n exceeds the available pool")
	}
	se, ok := err.(*SimError)
	if !ok || se.Kind != KindInconsistentEvent {
		t.Errorf("expected Kind=%s, got %v", KindInconsistentEvent, err)
	}
}

func TestApplyEvents_UnknownKindRejected(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	n := newNode(1, []int{5, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventKind(99), Time: 1, Node: 1, Select: 0, Shift: -1}
	if err := applyEvents([]Event{ev}, []*node{n}, E, nil); err == nil {
		t.Errorf("expected an error for an unknown event kind")
	}
}

func TestApplyEvents_NodeOutOfRangeRejected(t *testing.T) {
	_, _, E := sampleSIRMatrices()
	n := newNode(1, []int{5, 0, 0}, nil, 1, NewRNGStream(1, 0))
	ev := Event{Kind: EventExit, Time: 1, Node: 7, N: 1, Select: 0, Shift: -1}
	if err := applyEvents([]Event{ev}, []*node{n}, E, nil); err == nil {
		t.Errorf("expected an error when Node references a node outside the node list")
	}
}

func TestSortEventsInPlace_OrdersByTimeKindSelect(t *testing.T) {
	events := []Event{
		{Time: 2, Kind: EventEnter, Select: 0},
		{Time: 1, Kind: EventExit, Select: 1},
		{Time: 1, Kind: EventExit, Select: 0},
		{Time: 1, Kind: EventEnter, Select: 0},
	}
	sortEventsInPlace(events)
	want := []Event{
		{Time: 1, Kind: EventExit, Select: 0},
		{Time: 1, Kind: EventExit, Select: 1},
		{Time: 1, Kind: EventEnter, Select: 0},
		{Time: 2, Kind: EventEnter, Select: 0},
	}
	for i := range want {
		if events[i].Time != want[i].Time || events[i].Kind != want[i].Kind || events[i].Select != want[i].Select {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], events[i])
		}
	}
}

func TestResolveCount_RoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		proportion float64
		total      int
		want       int
	}{
		{0.5, 5, 3},   // 2.5 -> 3
		{0.25, 10, 3}, // 2.5 -> 3
		{0.1, 10, 1},
		{0.0, 10, 0},
	}
	for _, c := range cases {
		ev := Event{Proportion: c.proportion}
		if got := resolveCount(ev, c.total); got != c.want {
			t.Errorf("resolveCount(proportion=%v, total=%d): expected %d, got %d", c.proportion, c.total, c.want, got)
		}
	}
}

func TestResolveCount_ExplicitNTakesPrecedence(t *testing.T) {
	ev := Event{N: 4, Proportion: 0.9}
	if got := resolveCount(ev, 100); got != 4 {
		t.Errorf("expected explicit N=4 to take precedence over proportion, got %d", got)
	}
}
