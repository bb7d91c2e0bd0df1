package simnet

import "testing"

func TestDenseRecorder_RecordNode(t *testing.T) {
	r := NewDenseRecorder(2, 1, 3, 4)
	r.RecordNode(1, 1.0, 2, []int{7, 8}, []float64{0.5})
	if r.UAt(1, 0, 2) != 7 || r.UAt(1, 1, 2) != 8 {
		t.Errorf("expected U[.,2] at k=1 to be [7,8], got [%d,%d]", r.UAt(1, 0, 2), r.UAt(1, 1, 2))
	}
	if r.VAt(1, 0, 2) != 0.5 {
		t.Errorf("expected V[0,2] at k=1 to be 0.5, got %v", r.VAt(1, 0, 2))
	}
	if r.UAt(0, 0, 2) != 0 {
		t.Errorf("expected untouched cells to remain 0, got %d", r.UAt(0, 0, 2))
	}
}

func TestDenseRecorder_NoContinuousDimensions(t *testing.T) {
	r := NewDenseRecorder(2, 0, 1, 2)
	r.RecordNode(0, 0, 0, []int{1, 2}, nil)
	if len(r.V) != 0 {
		t.Errorf("expected an empty V slice when nd=0, got length %d", len(r.V))
	}
}

func TestSparseRecorder_OnlyRecordsMaskedCells(t *testing.T) {
	mask := []SparseCell{{Node: 0, Compartment: 1, TimeIndex: 2}}
	r := NewSparseRecorder(mask, nil)
	r.RecordNode(2, 2.0, 0, []int{10, 20, 30}, nil)
	if v, ok := r.U[SparseCell{Node: 0, Compartment: 1, TimeIndex: 2}]; !ok || v != 20 {
		t.Errorf("expected masked cell (0,1,2) to record 20, got %v (present=%v)", v, ok)
	}
	if _, ok := r.U[SparseCell{Node: 0, Compartment: 0, TimeIndex: 2}]; ok {
		t.Errorf("expected unmasked cell (0,0,2) to be absent")
	}
}

func TestSparseRecorder_RecordNode_DifferentTimeIndexNotStored(t *testing.T) {
	mask := []SparseCell{{Node: 0, Compartment: 0, TimeIndex: 1}}
	r := NewSparseRecorder(mask, nil)
	r.RecordNode(0, 0, 0, []int{5}, nil)
	if _, ok := r.U[SparseCell{Node: 0, Compartment: 0, TimeIndex: 1}]; ok {
		t.Errorf("expected the masked cell at time_index=1 not to be written by a RecordNode call at k=0")
	}
}
