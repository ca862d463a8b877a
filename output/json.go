package output

import (
	"encoding/json"
	"io"

	"github.com/validata-dev/validata/dataset"
)

// JSONFormatter outputs a dataset as JSON Lines. Missing cells render
// as null.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the dataset as JSON Lines (one JSON object per row).
func (j *JSONFormatter) Format(ds *dataset.Dataset) error {
	encoder := json.NewEncoder(j.writer)
	columns := ds.Columns()
	for i := 0; i < ds.NumRows(); i++ {
		row := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row[col.Name()] = col.Value(i)
		}
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
