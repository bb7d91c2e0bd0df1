package simnet

import "testing"

func TestNewSparseMatrixFromEntries_ColumnSlicing(t *testing.T) {
	m, err := NewSparseMatrixFromEntries(3, 2,
		[]int{0, 2, 1},
		[]int{0, 0, 1},
		[]float64{-1, 1, 2},
		nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	rows, values := m.Column(0)
	if len(rows) != 2 {
		t.Fatalf("expected 2 entries in column 0, got %d", len(rows))
	}
	if rows[0] != 0 || values[0] != -1 {
		t.Errorf("column 0 row 0: expected (0,-1), got (%d,%v)", rows[0], values[0])
	}
	if rows[1] != 2 || values[1] != 1 {
		t.Errorf("column 0 row 2: expected (2,1), got (%d,%v)", rows[1], values[1])
	}
	if m.ColumnNNZ(1) != 1 {
		t.Errorf("expected column 1 to have 1 non-zero entry, got %d", m.ColumnNNZ(1))
	}
	if m.At(1, 1) != 2 {
		t.Errorf("At(1,1): expected 2, got %v", m.At(1, 1))
	}
	if m.At(0, 1) != 0 {
		t.Errorf("At(0,1): expected 0 for absent entry, got %v", m.At(0, 1))
	}
}

func TestNewSparseMatrixFromEntries_DuplicateEntriesSum(t *testing.T) {
	m, err := NewSparseMatrixFromEntries(1, 1, []int{0, 0}, []int{0, 0}, []float64{2, 3}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if v := m.At(0, 0); v != 5 {
		t.Errorf("expected duplicate entries to sum to 5, got %v", v)
	}
}

func TestNewSparseMatrixFromEntries_OutOfRangeRejected(t *testing.T) {
	if _, err := NewSparseMatrixFromEntries(2, 2, []int{5}, []int{0}, []float64{1}, nil, nil); err == nil {
		t.Errorf("expected an error for an out-of-range row index")
	}
	if _, err := NewSparseMatrixFromEntries(2, 2, []int{0}, []int{5}, []float64{1}, nil, nil); err == nil {
		t.Errorf("expected an error for an out-of-range column index")
	}
}

func TestNewSparseMatrixFromEntries_RownameLengthMismatch(t *testing.T) {
	_, err := NewSparseMatrixFromEntries(2, 1, []int{0}, []int{0}, []float64{1}, []string{"only-one"}, nil)
	if err == nil {
		t.Errorf("expected an error when rownames length does not match nrow")
	}
}

func TestRowsEqual(t *testing.T) {
	a, _ := NewSparseMatrixFromEntries(2, 1, []int{0}, []int{0}, []float64{1}, []string{"S", "I"}, nil)
	b, _ := NewSparseMatrixFromEntries(2, 1, []int{0}, []int{0}, []float64{1}, []string{"S", "I"}, nil)
	c, _ := NewSparseMatrixFromEntries(2, 1, []int{0}, []int{0}, []float64{1}, []string{"S", "R"}, nil)
	if !RowsEqual(a, b) {
		t.Errorf("expected identical rowname lists to compare equal")
	}
	if RowsEqual(a, c) {
		t.Errorf("expected differing rowname lists to compare unequal")
	}
}
