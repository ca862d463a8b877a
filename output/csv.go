package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/validata-dev/validata/dataset"
)

// CSVFormatter outputs a dataset as CSV with a header row. Columns keep
// dataset order; missing cells render as empty fields.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer.
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the dataset as CSV.
func (c *CSVFormatter) Format(ds *dataset.Dataset) error {
	csvWriter := csv.NewWriter(c.writer)

	if err := csvWriter.Write(ds.ColumnNames()); err != nil {
		return err
	}

	columns := ds.Columns()
	record := make([]string, len(columns))
	for i := 0; i < ds.NumRows(); i++ {
		for j, col := range columns {
			record[j] = col.FormatValue(i)
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
