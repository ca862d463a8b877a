package dataset

import "fmt"

// BoolColumn is a named boolean column, row-aligned with the dataset it
// was computed from. It is the final result type of a rule evaluation.
type BoolColumn struct {
	Name   string
	Values []bool
}

// NewBoolColumn creates a boolean column of the given length with every
// value false.
func NewBoolColumn(name string, rows int) BoolColumn {
	return BoolColumn{Name: name, Values: make([]bool, rows)}
}

// Len returns the number of rows.
func (b BoolColumn) Len() int { return len(b.Values) }

// Rename returns the column under a new name, sharing value storage.
func (b BoolColumn) Rename(name string) BoolColumn {
	return BoolColumn{Name: name, Values: b.Values}
}

// CountTrue returns the number of true values.
func (b BoolColumn) CountTrue() int {
	n := 0
	for _, v := range b.Values {
		if v {
			n++
		}
	}
	return n
}

// And combines two columns with a row-wise logical AND.
func (b BoolColumn) And(other BoolColumn) (BoolColumn, error) {
	if b.Len() != other.Len() {
		return BoolColumn{}, fmt.Errorf("row count mismatch: %d vs %d", b.Len(), other.Len())
	}
	result := NewBoolColumn(b.Name, b.Len())
	for i := range b.Values {
		result.Values[i] = b.Values[i] && other.Values[i]
	}
	return result, nil
}

// Or combines two columns with a row-wise logical OR.
func (b BoolColumn) Or(other BoolColumn) (BoolColumn, error) {
	if b.Len() != other.Len() {
		return BoolColumn{}, fmt.Errorf("row count mismatch: %d vs %d", b.Len(), other.Len())
	}
	result := NewBoolColumn(b.Name, b.Len())
	for i := range b.Values {
		result.Values[i] = b.Values[i] || other.Values[i]
	}
	return result, nil
}

// BoolMatrix is an ordered set of boolean columns sharing one row count.
// Comparators return a matrix shaped like their input column selection.
type BoolMatrix struct {
	columns []BoolColumn
	rows    int
}

// NewBoolMatrix creates a matrix from the given columns. All columns must
// have the same length.
func NewBoolMatrix(columns ...BoolColumn) (*BoolMatrix, error) {
	m := &BoolMatrix{}
	for _, col := range columns {
		if len(m.columns) > 0 && col.Len() != m.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), m.rows)
		}
		m.rows = col.Len()
		m.columns = append(m.columns, col)
	}
	return m, nil
}

// NumRows returns the number of rows in the matrix.
func (m *BoolMatrix) NumRows() int { return m.rows }

// NumColumns returns the number of columns in the matrix.
func (m *BoolMatrix) NumColumns() int { return len(m.columns) }

// Column returns the i-th column.
func (m *BoolMatrix) Column(i int) BoolColumn { return m.columns[i] }

// Columns returns the columns in matrix order.
func (m *BoolMatrix) Columns() []BoolColumn {
	columns := make([]BoolColumn, len(m.columns))
	copy(columns, m.columns)
	return columns
}

// All reduces the matrix row-wise to a single column that is true only
// where every column is true.
func (m *BoolMatrix) All(name string) BoolColumn {
	result := NewBoolColumn(name, m.rows)
	for i := 0; i < m.rows; i++ {
		value := true
		for _, col := range m.columns {
			value = value && col.Values[i]
		}
		result.Values[i] = value
	}
	return result
}

// Any reduces the matrix row-wise to a single column that is true where
// at least one column is true.
func (m *BoolMatrix) Any(name string) BoolColumn {
	result := NewBoolColumn(name, m.rows)
	for i := 0; i < m.rows; i++ {
		value := false
		for _, col := range m.columns {
			value = value || col.Values[i]
		}
		result.Values[i] = value
	}
	return result
}

// None reduces the matrix row-wise to a single column that is true only
// where no column is true. It is the logical negation of Any.
func (m *BoolMatrix) None(name string) BoolColumn {
	result := m.Any(name)
	for i := range result.Values {
		result.Values[i] = !result.Values[i]
	}
	return result
}
