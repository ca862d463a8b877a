package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumn(t *testing.T) {
	t.Run("coerces integers to float64", func(t *testing.T) {
		col, err := NewColumn("x", KindNumber, []interface{}{1, int64(2), 3.5, nil})
		require.NoError(t, err)

		assert.Equal(t, 4, col.Len())
		v, ok := col.Number(0)
		assert.True(t, ok)
		assert.Equal(t, 1.0, v)
		v, ok = col.Number(1)
		assert.True(t, ok)
		assert.Equal(t, 2.0, v)
		assert.True(t, col.IsMissing(3))
	})

	t.Run("rejects uncoercible cells", func(t *testing.T) {
		_, err := NewColumn("x", KindNumber, []interface{}{"nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 0")
	})

	t.Run("kind accessors reject foreign kinds", func(t *testing.T) {
		col := Texts("name", "alice")
		_, ok := col.Number(0)
		assert.False(t, ok)
		_, ok = col.Bool(0)
		assert.False(t, ok)
		v, ok := col.Text(0)
		assert.True(t, ok)
		assert.Equal(t, "alice", v)
	})
}

func TestColumn_FormatValue(t *testing.T) {
	col := MustColumn("x", KindNumber, []interface{}{1.0, 2.5, nil})
	assert.Equal(t, "1", col.FormatValue(0))
	assert.Equal(t, "2.5", col.FormatValue(1))
	assert.Equal(t, "", col.FormatValue(2))

	flags := MustColumn("ok", KindBool, []interface{}{true})
	assert.Equal(t, "true", flags.FormatValue(0))
}

func TestNew(t *testing.T) {
	t.Run("keeps column order", func(t *testing.T) {
		ds, err := New(
			Numbers("b", 1, 2),
			Numbers("a", 3, 4),
		)
		require.NoError(t, err)

		assert.Equal(t, 2, ds.NumRows())
		if diff := cmp.Diff([]string{"b", "a"}, ds.ColumnNames()); diff != "" {
			t.Errorf("column names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := New(Numbers("x", 1), Numbers("x", 2))
		require.Error(t, err)
	})

	t.Run("rejects ragged columns", func(t *testing.T) {
		_, err := New(Numbers("a", 1, 2), Numbers("b", 1))
		require.Error(t, err)
	})
}

func TestDataset_Select(t *testing.T) {
	ds, err := New(
		Numbers("a", 1, 2),
		Numbers("b", 3, 4),
		Texts("c", "x", "y"),
	)
	require.NoError(t, err)

	view, err := ds.Select("c", "a")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"c", "a"}, view.ColumnNames()); diff != "" {
		t.Errorf("selected names mismatch (-want +got):\n%s", diff)
	}

	// The view shares cell storage with the parent.
	parent, _ := ds.Column("a")
	selected, _ := view.Column("a")
	assert.Same(t, parent, selected)

	_, err = ds.Select("missing")
	require.Error(t, err)
}

func TestDataset_WithColumn(t *testing.T) {
	ds, err := New(Numbers("a", 1, 2))
	require.NoError(t, err)

	grown, err := ds.WithColumn(Numbers("b", 3, 4))
	require.NoError(t, err)
	assert.Equal(t, 2, grown.NumColumns())
	assert.Equal(t, 1, ds.NumColumns())

	_, err = ds.WithColumn(Numbers("a", 5, 6))
	require.Error(t, err)

	_, err = ds.WithColumn(Numbers("c", 5))
	require.Error(t, err)
}

func TestFromBool(t *testing.T) {
	col := FromBool(BoolColumn{Name: "passed", Values: []bool{true, false}})
	assert.Equal(t, "passed", col.Name())
	assert.Equal(t, KindBool, col.Kind())
	v, ok := col.Bool(1)
	assert.True(t, ok)
	assert.False(t, v)
}
