package resources

import "github.com/lunfardo314/mathvm"

// Table is read-only rows of numeric fields: read(row, col)
type Table struct {
	rows [][]float64
}

var _ mathvm.Resource = &Table{}

func NewTable(rows [][]float64) *Table {
	ret := &Table{rows: make([][]float64, len(rows))}
	for i, r := range rows {
		ret.rows[i] = append([]float64(nil), r...)
	}
	return ret
}

func (t *Table) NumRows() int {
	return len(t.rows)
}

func (t *Table) Read(args []float64) float64 {
	if len(args) < 2 {
		return 0
	}
	row, ok := validIndex(args[0], len(t.rows))
	if !ok {
		return 0
	}
	col, ok := validIndex(args[1], len(t.rows[row]))
	if !ok {
		return 0
	}
	return t.rows[row][col]
}

func (t *Table) Write(_ []float64) {}
