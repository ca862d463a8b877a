// Package dataset provides the in-memory tabular data model used by the
// validation engine.
//
// A Dataset is a rectangular table: an ordered set of named columns that
// all share the same row count. Each column holds values of a single kind
// (number, text or boolean) and any cell may be missing. Row order is
// significant and preserved by every operation.
//
// Datasets are read-only from the engine's perspective: Select returns a
// view that shares cell storage with the parent, and evaluation never
// mutates cells.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the value type of a column.
type Kind int

const (
	// KindNumber holds float64 values.
	KindNumber Kind = iota
	// KindText holds string values.
	KindText
	// KindBool holds boolean values.
	KindBool
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a single named, typed column. Cells are stored as interface
// values of the column's kind; a nil cell is a missing value.
type Column struct {
	name  string
	kind  Kind
	cells []interface{}
}

// NewColumn creates a column of the given kind, coercing each cell to the
// kind's Go representation. A nil cell marks a missing value. Returns an
// error if a cell cannot be coerced.
func NewColumn(name string, kind Kind, cells []interface{}) (*Column, error) {
	coerced := make([]interface{}, len(cells))
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		value, err := coerce(cell, kind)
		if err != nil {
			return nil, fmt.Errorf("column %q, row %d: %w", name, i, err)
		}
		coerced[i] = value
	}
	return &Column{name: name, kind: kind, cells: coerced}, nil
}

// MustColumn is like NewColumn but panics on coercion failure. Intended
// for fixtures and tests where the input is known to be valid.
func MustColumn(name string, kind Kind, cells []interface{}) *Column {
	col, err := NewColumn(name, kind, cells)
	if err != nil {
		panic(err)
	}
	return col
}

// Numbers creates a number column from plain float values with no
// missing cells.
func Numbers(name string, values ...float64) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{name: name, kind: KindNumber, cells: cells}
}

// Texts creates a text column from plain strings with no missing cells.
func Texts(name string, values ...string) *Column {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &Column{name: name, kind: KindText, cells: cells}
}

// FromBool converts a boolean result column into a dataset column so that
// validation results can be attached back to a dataset.
func FromBool(b BoolColumn) *Column {
	cells := make([]interface{}, len(b.Values))
	for i, v := range b.Values {
		cells[i] = v
	}
	return &Column{name: b.Name, kind: KindBool, cells: cells}
}

// coerce converts a raw value to the Go representation of the kind.
func coerce(value interface{}, kind Kind) (interface{}, error) {
	switch kind {
	case KindNumber:
		if n, ok := AsNumber(value); ok {
			return n, nil
		}
		return nil, fmt.Errorf("cannot coerce %T value %v to number", value, value)
	case KindText:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot coerce %T value %v to text", value, value)
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot coerce %T value %v to bool", value, value)
	default:
		return nil, fmt.Errorf("unsupported column kind: %v", kind)
	}
}

// AsNumber converts any Go numeric value to float64.
func AsNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column's value kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.cells) }

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool { return c.cells[i] == nil }

// Value returns the raw cell value at row i (nil if missing).
func (c *Column) Value(i int) interface{} { return c.cells[i] }

// Number returns the numeric value at row i. The second return value is
// false when the cell is missing or the column is not numeric.
func (c *Column) Number(i int) (float64, bool) {
	if c.kind != KindNumber || c.cells[i] == nil {
		return 0, false
	}
	return c.cells[i].(float64), true
}

// Text returns the text value at row i. The second return value is false
// when the cell is missing or the column is not text.
func (c *Column) Text(i int) (string, bool) {
	if c.kind != KindText || c.cells[i] == nil {
		return "", false
	}
	return c.cells[i].(string), true
}

// Bool returns the boolean value at row i. The second return value is
// false when the cell is missing or the column is not boolean.
func (c *Column) Bool(i int) (bool, bool) {
	if c.kind != KindBool || c.cells[i] == nil {
		return false, false
	}
	return c.cells[i].(bool), true
}

// Numbers returns the present (non-missing) numeric values of the column
// in row order.
func (c *Column) Numbers() []float64 {
	values := make([]float64, 0, len(c.cells))
	for i := range c.cells {
		if v, ok := c.Number(i); ok {
			values = append(values, v)
		}
	}
	return values
}

// FormatValue renders the cell at row i as text, the way rule targets are
// written: numbers use the shortest round-trip form, booleans are
// "true"/"false" and missing cells render empty.
func (c *Column) FormatValue(i int) string {
	if c.cells[i] == nil {
		return ""
	}
	switch v := c.cells[i].(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WithName returns a copy of the column under a new name, sharing cell
// storage with the original.
func (c *Column) WithName(name string) *Column {
	return &Column{name: name, kind: c.kind, cells: c.cells}
}

// Dataset is a rectangular table of named columns.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a dataset from the given columns. All columns must have the
// same length and unique names.
func New(columns ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(columns))}
	for _, col := range columns {
		if _, exists := d.index[col.name]; exists {
			return nil, fmt.Errorf("duplicate column name: %q", col.name)
		}
		if len(d.columns) > 0 && col.Len() != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.name, col.Len(), d.rows)
		}
		d.rows = col.Len()
		d.index[col.name] = len(d.columns)
		d.columns = append(d.columns, col)
	}
	return d, nil
}

// NumRows returns the number of rows in the dataset.
func (d *Dataset) NumRows() int { return d.rows }

// NumColumns returns the number of columns in the dataset.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// ColumnNames returns the column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Columns returns the columns in dataset order.
func (d *Dataset) Columns() []*Column {
	columns := make([]*Column, len(d.columns))
	copy(columns, d.columns)
	return columns
}

// Select returns a view containing only the named columns, in the order
// given. The view shares cell storage with the parent dataset.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		col, ok := d.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found (available: %s)",
				name, strings.Join(d.ColumnNames(), ", "))
		}
		columns = append(columns, col)
	}
	return New(columns...)
}

// WithColumn returns a new dataset with the column appended. The column
// must match the dataset's row count and must not shadow an existing name.
func (d *Dataset) WithColumn(col *Column) (*Dataset, error) {
	if d.rows != col.Len() && len(d.columns) > 0 {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.name, col.Len(), d.rows)
	}
	columns := append(d.Columns(), col)
	return New(columns...)
}
