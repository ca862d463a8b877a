// Package output provides formatters for rendering datasets and
// validation summaries.
//
// Supported formats:
//   - CSV: header row plus one record per dataset row
//   - JSON Lines: one JSON object per row
//   - Table: aligned text table for terminals
//
// Example usage:
//
//	formatter := output.NewCSVFormatter(os.Stdout)
//	if err := formatter.Format(ds); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"io"

	"github.com/validata-dev/validata/dataset"
)

// Formatter renders a dataset to an output writer.
type Formatter interface {
	// Format writes the dataset in the formatter's specific format
	Format(ds *dataset.Dataset) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}
