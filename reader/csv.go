package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/validata-dev/validata/dataset"
)

// ReadCSV reads a CSV file with a header row into a dataset. Column
// kinds are inferred: a column whose non-empty cells all parse as
// numbers becomes numeric, all-boolean cells become boolean, anything
// else is text. Empty cells are missing values.
func ReadCSV(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return readCSV(file)
}

func readCSV(r io.Reader) (*dataset.Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV input has no header row")
	}

	header := records[0]
	body := records[1:]

	columns := make([]*dataset.Column, 0, len(header))
	for i, name := range header {
		kind := inferCSVKind(body, i)
		cells := make([]interface{}, len(body))
		for row, record := range body {
			cells[row] = parseCSVCell(record[i], kind)
		}
		col, err := dataset.NewColumn(name, kind, cells)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return dataset.New(columns...)
}

// inferCSVKind inspects every non-empty cell in a column. Numbers win
// over booleans so that 0/1 columns stay numeric.
func inferCSVKind(records [][]string, col int) dataset.Kind {
	allNumber, allBool := true, true
	seen := false
	for _, record := range records {
		cell := record[col]
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allNumber = false
		}
		if cell != "true" && cell != "false" {
			allBool = false
		}
	}
	switch {
	case seen && allNumber:
		return dataset.KindNumber
	case seen && allBool:
		return dataset.KindBool
	default:
		return dataset.KindText
	}
}

func parseCSVCell(cell string, kind dataset.Kind) interface{} {
	if cell == "" {
		return nil
	}
	switch kind {
	case dataset.KindNumber:
		v, _ := strconv.ParseFloat(cell, 64)
		return v
	case dataset.KindBool:
		return cell == "true"
	default:
		return cell
	}
}
