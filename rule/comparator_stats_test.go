package rule

import (
	"errors"
	"testing"
)

func TestRanksComparator(t *testing.T) {
	t.Run("top N ordinal", func(t *testing.T) {
		ds := numbersWithMissing(t, "score", 5.0, 1.0, 4.0, nil, 2.0, 3.0)
		checkValues(t, compare(t, "ranks in", ds, "top 3"),
			[]bool{true, false, true, false, false, true})
	})

	t.Run("bottom N ordinal", func(t *testing.T) {
		ds := numbersWithMissing(t, "score", 5.0, 1.0, 4.0, nil, 2.0, 3.0)
		checkValues(t, compare(t, "ranks in", ds, "bottom 2"),
			[]bool{false, true, false, false, true, false})
	})

	t.Run("ties share the average rank", func(t *testing.T) {
		ds := numbersWithMissing(t, "score", 10.0, 10.0, 5.0)
		// Both tens rank 1.5, which is outside "top 1" but inside "top 2".
		checkValues(t, compare(t, "ranks in", ds, "top 1"), []bool{false, false, false})
		checkValues(t, compare(t, "ranks in", ds, "top 2"), []bool{true, true, false})
	})

	t.Run("percentile excludes missing from the denominator", func(t *testing.T) {
		ds := numbersWithMissing(t, "score", 1.0, 2.0, 3.0, 4.0, nil)
		// Four ranked rows, so rank 1 is exactly the 25th percentile.
		checkValues(t, compare(t, "ranks in", ds, "bottom 25%"),
			[]bool{true, false, false, false, false})
	})

	t.Run("malformed targets", func(t *testing.T) {
		ds := numbersWithMissing(t, "score", 1.0, 2.0)
		for _, target := range []string{"top 150%", "top 0%", "sideways 3", ""} {
			err := compareErr(t, "ranks in", ds, target)
			var tfe *TargetFormatError
			if !errors.As(err, &tfe) {
				t.Errorf("Compare(ranks in, %q) error = %v, want *TargetFormatError", target, err)
			}
		}
	})

	t.Run("non-numeric column", func(t *testing.T) {
		ds := textsWithMissing(t, "name", "alice")
		err := compareErr(t, "ranks in", ds, "top 1")
		var tme *TypeMismatchError
		if !errors.As(err, &tme) {
			t.Fatalf("error = %v, want *TypeMismatchError", err)
		}
	})
}

func TestOutlierComparator(t *testing.T) {
	// Only 100 lies outside the fences for every method below.
	highOutlier := []interface{}{1.0, 2.0, 3.0, 4.0, 5.0, 100.0}
	onlyLast := []bool{false, false, false, false, false, true}

	tests := []struct {
		name   string
		target string
	}{
		{"default whisker", ""},
		{"iqr", "1.5 IQR"},
		{"iqr lowercase", "1.5 iqr"},
		{"sd", "2 SD"},
		{"mad", "2 MAD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := numbersWithMissing(t, "x", highOutlier...)
			checkValues(t, compare(t, "is outlier by", ds, tt.target), onlyLast)
		})
	}

	t.Run("plus keeps only high outliers", func(t *testing.T) {
		ds := numbersWithMissing(t, "x", -100.0, 2.0, 3.0, 4.0, 5.0, 6.0)
		checkValues(t, compare(t, "is outlier by", ds, "1.5 IQR"),
			[]bool{true, false, false, false, false, false})
		checkValues(t, compare(t, "is outlier by", ds, "+1.5 IQR"),
			[]bool{false, false, false, false, false, false})
	})

	t.Run("minus keeps only low outliers", func(t *testing.T) {
		ds := numbersWithMissing(t, "x", highOutlier...)
		checkValues(t, compare(t, "is outlier by", ds, "-1.5 IQR"),
			[]bool{false, false, false, false, false, false})
	})

	t.Run("missing cells are never outliers", func(t *testing.T) {
		ds := numbersWithMissing(t, "x", 1.0, 2.0, 3.0, 4.0, 5.0, nil, 100.0)
		checkValues(t, compare(t, "is outlier by", ds, "1.5 IQR"),
			[]bool{false, false, false, false, false, false, true})
	})

	t.Run("malformed targets", func(t *testing.T) {
		ds := numbersWithMissing(t, "x", 1.0, 2.0)
		for _, target := range []string{"fast", "IQR", "1.5", "1.5 ZSCORE"} {
			err := compareErr(t, "is outlier by", ds, target)
			var tfe *TargetFormatError
			if !errors.As(err, &tfe) {
				t.Errorf("Compare(is outlier by, %q) error = %v, want *TargetFormatError", target, err)
			}
		}
	})
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		p      float64
		sorted []float64
		want   float64
	}{
		{"median of even count interpolates", 0.5, []float64{1, 2}, 1.5},
		{"median of odd count", 0.5, []float64{1, 2, 3}, 2},
		{"first quartile", 0.25, []float64{1, 2, 3, 4, 5, 100}, 2.25},
		{"third quartile", 0.75, []float64{1, 2, 3, 4, 5, 100}, 4.75},
		{"minimum", 0, []float64{3, 7}, 3},
		{"maximum", 1, []float64{3, 7}, 7},
		{"single value", 0.5, []float64{42}, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantile(tt.p, tt.sorted); got != tt.want {
				t.Errorf("quantile(%v, %v) = %v, want %v", tt.p, tt.sorted, got, tt.want)
			}
		})
	}
}

func TestAverageRanks(t *testing.T) {
	col := numbersWithMissing(t, "x", 3.0, 1.0, nil, 3.0).Columns()[0]

	ranks, ranked := averageRanks(col, true)
	if ranked != 3 {
		t.Fatalf("ranked = %d, want 3", ranked)
	}
	// Ascending: 1 ranks first, the tied threes share (2+3)/2.
	if ranks[1] != 1 {
		t.Errorf("rank of row 1 = %v, want 1", ranks[1])
	}
	if ranks[0] != 2.5 || ranks[3] != 2.5 {
		t.Errorf("tied ranks = %v, %v, want 2.5, 2.5", ranks[0], ranks[3])
	}
}
