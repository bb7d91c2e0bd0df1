package simnet

import "sort"

// SparseMatrix is a read-only compressed-column sparse matrix, the layout
// spec.md §9 asks the engine to replicate so the SSA hot path can slice a
// single column of S or G without touching unrelated entries. Entries are
// integers widened to float64 so the same type serves 0/1 dependency graphs
// (G, E), signed stoichiometry (S), and shift remappings (N).
//
// colptr has length NumCols()+1. For column j, the entries live in
// rowind[colptr[j]:colptr[j+1]] (row indices) and values[colptr[j]:colptr[j+1]]
// (paired values), both sorted by row index within a column.
type SparseMatrix struct {
	nrow, ncol int
	colptr     []int
	rowind     []int
	values     []float64
	rownames   []string
	colnames   []string
}

// NewSparseMatrixFromEntries builds a SparseMatrix from an unordered list of
// (row, col, value) triples. Duplicate (row,col) pairs are summed, matching
// standard CSC construction semantics.
func NewSparseMatrixFromEntries(nrow, ncol int, rows, cols []int, values []float64, rownames, colnames []string) (*SparseMatrix, error) {
	if len(rows) != len(cols) || len(rows) != len(values) {
		return nil, newSimErrorf(KindInvalidInput, "rows/cols/values length mismatch: %d/%d/%d", len(rows), len(cols), len(values))
	}
	if rownames != nil && len(rownames) != nrow {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "rownames", len(rownames), nrow)
	}
	if colnames != nil && len(colnames) != ncol {
		return nil, newSimErrorf(KindInvalidInput, ShapeMismatchError, "colnames", len(colnames), ncol)
	}

	type entry struct {
		row int
		val float64
	}
	byCol := make([][]entry, ncol)
	for i := range rows {
		r, c, v := rows[i], cols[i], values[i]
		if r < 0 || r >= nrow {
			return nil, newSimErrorf(KindInvalidInput, "row index %d out of range [0,%d)", r, nrow)
		}
		if c < 0 || c >= ncol {
			return nil, newSimErrorf(KindInvalidInput, "col index %d out of range [0,%d)", c, ncol)
		}
		byCol[c] = append(byCol[c], entry{r, v})
	}

	m := &SparseMatrix{nrow: nrow, ncol: ncol, rownames: rownames, colnames: colnames}
	m.colptr = make([]int, ncol+1)
	for c := 0; c < ncol; c++ {
		sort.Slice(byCol[c], func(i, j int) bool { return byCol[c][i].row < byCol[c][j].row })
		// Merge duplicate rows within the column by summation.
		merged := byCol[c][:0:0]
		for _, e := range byCol[c] {
			if n := len(merged); n > 0 && merged[n-1].row == e.row {
				merged[n-1].val += e.val
				continue
			}
			merged = append(merged, e)
		}
		for _, e := range merged {
			m.rowind = append(m.rowind, e.row)
			m.values = append(m.values, e.val)
		}
		m.colptr[c+1] = len(m.rowind)
	}
	return m, nil
}

// NumRows returns the number of rows.
func (m *SparseMatrix) NumRows() int { return m.nrow }

// NumCols returns the number of columns.
func (m *SparseMatrix) NumCols() int { return m.ncol }

// RowNames returns the (possibly nil) row name slice.
func (m *SparseMatrix) RowNames() []string { return m.rownames }

// ColNames returns the (possibly nil) column name slice.
func (m *SparseMatrix) ColNames() []string { return m.colnames }

// Column returns the (row, value) pairs of non-zero entries in column j, in
// ascending row order. The returned slices alias internal storage and must
// not be mutated by the caller.
func (m *SparseMatrix) Column(j int) (rows []int, values []float64) {
	start, end := m.colptr[j], m.colptr[j+1]
	return m.rowind[start:end], m.values[start:end]
}

// ColumnNNZ returns the number of non-zero entries in column j.
func (m *SparseMatrix) ColumnNNZ(j int) int {
	return m.colptr[j+1] - m.colptr[j]
}

// At returns the value at (row, col), or 0 if absent. Not used on the SSA
// hot path (which always slices whole columns); provided for validation and
// tests.
func (m *SparseMatrix) At(row, col int) float64 {
	rows, values := m.Column(col)
	for i, r := range rows {
		if r == row {
			return values[i]
		}
	}
	return 0
}

// RowsEqual reports whether two matrices have identical row name lists,
// used to validate that S and E share compartment row names (spec.md §6).
func RowsEqual(a, b *SparseMatrix) bool {
	if len(a.rownames) != len(b.rownames) {
		return false
	}
	for i := range a.rownames {
		if a.rownames[i] != b.rownames[i] {
			return false
		}
	}
	return true
}
