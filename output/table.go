package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/validata-dev/validata/dataset"
)

// TableFormatter outputs a dataset as an aligned text table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer.
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the dataset as an aligned table.
func (t *TableFormatter) Format(ds *dataset.Dataset) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(ds.ColumnNames())

	columns := ds.Columns()
	for i := 0; i < ds.NumRows(); i++ {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = col.FormatValue(i)
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
