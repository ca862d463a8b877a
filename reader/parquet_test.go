package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/validata-dev/validata/dataset"
)

func writeParquetFile[Row any](t *testing.T, rows []Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
	return path
}

func TestParquetReader_ReadAll(t *testing.T) {
	type Row struct {
		Name   string  `parquet:"name"`
		Age    int64   `parquet:"age"`
		Score  float64 `parquet:"score"`
		Active bool    `parquet:"active"`
	}
	path := writeParquetFile(t, []Row{
		{Name: "Alice", Age: 30, Score: 95.5, Active: true},
		{Name: "Bob", Age: 25, Score: 87.2, Active: false},
	})

	r, err := NewParquetReader(path)
	if err != nil {
		t.Fatalf("NewParquetReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	ds, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if ds.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", ds.NumRows())
	}

	name, ok := ds.Column("name")
	if !ok {
		t.Fatal("column name not found")
	}
	if name.Kind() != dataset.KindText {
		t.Errorf("name kind = %v, want text", name.Kind())
	}
	if v, _ := name.Text(0); v != "Alice" {
		t.Errorf("name[0] = %q, want Alice", v)
	}

	// Integer columns arrive as numbers.
	age, ok := ds.Column("age")
	if !ok {
		t.Fatal("column age not found")
	}
	if age.Kind() != dataset.KindNumber {
		t.Errorf("age kind = %v, want number", age.Kind())
	}
	if v, _ := age.Number(1); v != 25 {
		t.Errorf("age[1] = %v, want 25", v)
	}

	score, _ := ds.Column("score")
	if v, _ := score.Number(0); v != 95.5 {
		t.Errorf("score[0] = %v, want 95.5", v)
	}

	active, _ := ds.Column("active")
	if active.Kind() != dataset.KindBool {
		t.Errorf("active kind = %v, want bool", active.Kind())
	}
	if v, _ := active.Bool(1); v {
		t.Errorf("active[1] = true, want false")
	}
}

func TestParquetReader_OptionalColumns(t *testing.T) {
	type Row struct {
		ID    int64    `parquet:"id"`
		Email *string  `parquet:"email,optional"`
		Size  *float64 `parquet:"size,optional"`
	}
	email := "a@example.com"
	size := 1.5
	path := writeParquetFile(t, []Row{
		{ID: 1, Email: &email, Size: &size},
		{ID: 2},
	})

	r, err := NewParquetReader(path)
	if err != nil {
		t.Fatalf("NewParquetReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	ds, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	emailCol, ok := ds.Column("email")
	if !ok {
		t.Fatal("column email not found")
	}
	if v, _ := emailCol.Text(0); v != "a@example.com" {
		t.Errorf("email[0] = %q, want a@example.com", v)
	}
	if !emailCol.IsMissing(1) {
		t.Error("email[1] should be missing")
	}

	sizeCol, ok := ds.Column("size")
	if !ok {
		t.Fatal("column size not found")
	}
	if !sizeCol.IsMissing(1) {
		t.Error("size[1] should be missing")
	}
}

func TestNewParquetReader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := NewParquetReader(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("not a parquet file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.parquet")
		if err := os.WriteFile(path, []byte("not parquet"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewParquetReader(path); err == nil {
			t.Error("expected error for corrupt file")
		}
	})
}
