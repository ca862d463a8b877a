// Package reader loads tabular data files into datasets.
//
// Parquet files are read through the parquet-go library; CSV files are
// read with column type inference. Both produce a dataset.Dataset with
// named, typed, missing-capable columns, which is what the validation
// engine consumes.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/validata-dev/validata/dataset"
)

// ParquetReader reads a parquet file into a dataset.
//
// It maintains both an OS file handle and a parquet file handle to
// enable proper resource cleanup.
type ParquetReader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewParquetReader opens and validates a parquet file.
func NewParquetReader(path string) (*ParquetReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &ParquetReader{file: file, pqFile: pqFile}, nil
}

// ReadAll reads the whole file into a dataset. Columns follow the
// parquet schema order; the entire file is materialized in memory.
func (r *ParquetReader) ReadAll() (*dataset.Dataset, error) {
	rows := make([]map[string]interface{}, 0)

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	names := make([]string, 0)
	for _, field := range r.pqFile.Schema().Fields() {
		names = append(names, field.Name())
	}
	return fromRows(names, rows)
}

// Close closes the reader and releases associated resources.
func (r *ParquetReader) Close() error {
	return r.file.Close()
}

// fromRows builds a columnar dataset from row maps, inferring each
// column's kind from its first present value.
func fromRows(names []string, rows []map[string]interface{}) (*dataset.Dataset, error) {
	columns := make([]*dataset.Column, 0, len(names))
	for _, name := range names {
		kind := inferKind(name, rows)
		cells := make([]interface{}, len(rows))
		for i, row := range rows {
			value, err := coerceCell(row[name], kind)
			if err != nil {
				return nil, fmt.Errorf("column %q, row %d: %w", name, i, err)
			}
			cells[i] = value
		}
		col, err := dataset.NewColumn(name, kind, cells)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return dataset.New(columns...)
}

// inferKind picks a column kind from the first non-missing value. A
// column with no values at all defaults to text.
func inferKind(name string, rows []map[string]interface{}) dataset.Kind {
	for _, row := range rows {
		switch v := row[name].(type) {
		case nil:
			continue
		case bool:
			return dataset.KindBool
		case string, []byte:
			return dataset.KindText
		default:
			if _, ok := dataset.AsNumber(v); ok {
				return dataset.KindNumber
			}
		}
	}
	return dataset.KindText
}

// coerceCell converts a raw parquet value into the cell representation
// for the inferred kind.
func coerceCell(value interface{}, kind dataset.Kind) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	switch kind {
	case dataset.KindNumber:
		n, ok := dataset.AsNumber(value)
		if !ok {
			return nil, fmt.Errorf("expected numeric value, got %T", value)
		}
		return n, nil
	case dataset.KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean value, got %T", value)
		}
		return b, nil
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", value), nil
	}
}
