package rule

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/validata-dev/validata/dataset"
)

// madScale scales the median absolute deviation to approximate one
// standard deviation under normality.
const madScale = 1.483

// ranksComparator ranks each numeric column independently and checks
// whether values fall within a "top N" / "bottom N" threshold, either as
// an ordinal rank or, with a trailing %, as a percentile fraction.
type ranksComparator struct{}

var rankTargetRe = regexp.MustCompile(`^(top|bottom)\s+([0-9]+)\s*(%)?$`)

// rankTarget is the parsed form of a "ranks in" target.
type rankTarget struct {
	ascending  bool // "bottom" ranks ascending, "top" descending
	percentile bool
	threshold  float64 // N, or N/100 when percentile
}

func (c *ranksComparator) Symbol() string { return "ranks in" }

func (c *ranksComparator) parseTarget(target string) (rankTarget, error) {
	m := rankTargetRe.FindStringSubmatch(target)
	if m == nil {
		return rankTarget{}, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "expected <top|bottom> <N>(%)"}
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return rankTarget{}, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "non-numeric rank"}
	}
	t := rankTarget{ascending: m[1] == "bottom", percentile: m[3] == "%", threshold: float64(n)}
	if t.percentile {
		if n <= 0 || n >= 100 {
			return rankTarget{}, &TargetFormatError{Symbol: c.Symbol(), Target: target,
				Reason: "percentile rank must be strictly between 0 and 100"}
		}
		t.threshold = float64(n) / 100
	}
	return t, nil
}

func (c *ranksComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if err := requireKind(c.Symbol(), ds, dataset.KindNumber); err != nil {
		return nil, err
	}
	t, err := c.parseTarget(target)
	if err != nil {
		return nil, err
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		ranks, ranked := averageRanks(col, t.ascending)
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for row, rank := range ranks {
			if math.IsNaN(rank) {
				continue // missing cells never rank
			}
			if t.percentile {
				rank /= float64(ranked)
			}
			result.Values[row] = rank <= t.threshold
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// averageRanks computes per-row ranks over the column's non-missing
// values, averaging ranks across ties (the way pandas ranks by default).
// Missing rows get NaN. The second return value is the number of rows
// that participated in ranking, the percentile denominator.
func averageRanks(col *dataset.Column, ascending bool) (map[int]float64, int) {
	type cell struct {
		row   int
		value float64
	}
	cells := make([]cell, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Number(i); ok {
			cells = append(cells, cell{row: i, value: v})
		}
	}
	sort.SliceStable(cells, func(a, b int) bool {
		if ascending {
			return cells[a].value < cells[b].value
		}
		return cells[a].value > cells[b].value
	})

	ranks := make(map[int]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			ranks[i] = math.NaN()
		}
	}

	// Walk runs of equal values and assign each the average of the
	// ordinal ranks the run spans.
	for start := 0; start < len(cells); {
		end := start
		for end+1 < len(cells) && cells[end+1].value == cells[start].value {
			end++
		}
		avg := float64(start+end)/2 + 1
		for i := start; i <= end; i++ {
			ranks[cells[i].row] = avg
		}
		start = end + 1
	}
	return ranks, len(cells)
}

// outlierComparator flags outliers per numeric column using one of three
// detection methods:
//
//   - IQR: bounds at q1 - w*(q3-q1) and q3 + w*(q3-q1) (Tukey's fences)
//   - SD:  bounds at mean ± w*stddev
//   - MAD: bounds at median ± w*(1.483 * median absolute deviation)
//
// The whisker multiplier w comes from the target. A leading "+" disables
// the lower bound (only high outliers flagged), a leading "-" disables
// the upper bound. The default target is "1.5 IQR".
type outlierComparator struct{}

var outlierTargetRe = regexp.MustCompile(`^([+-])?\s*([0-9.]+)\s+(?i:(iqr|sd|mad))$`)

// outlierSpec is the parsed form of an "is outlier by" target.
type outlierSpec struct {
	method    string // "iqr", "sd" or "mad"
	whisker   float64
	lowBound  bool
	highBound bool
}

func (c *outlierComparator) Symbol() string { return "is outlier by" }

func (c *outlierComparator) parseTarget(target string) (outlierSpec, error) {
	if target == "" {
		target = "1.5 IQR"
	}
	m := outlierTargetRe.FindStringSubmatch(target)
	if m == nil {
		return outlierSpec{}, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "expected (+|-)<whisker> <IQR|SD|MAD>"}
	}
	whisker, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return outlierSpec{}, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "non-numeric whisker"}
	}
	spec := outlierSpec{
		method:    strings.ToLower(m[3]),
		whisker:   whisker,
		lowBound:  m[1] != "+",
		highBound: m[1] != "-",
	}
	return spec, nil
}

func (c *outlierComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if err := requireKind(c.Symbol(), ds, dataset.KindNumber); err != nil {
		return nil, err
	}
	spec, err := c.parseTarget(target)
	if err != nil {
		return nil, err
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		low, high := outlierBounds(col.Numbers(), spec)
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Number(i); ok {
				result.Values[i] = v <= low || v >= high
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// outlierBounds computes the low and high outlier limits for one column.
// A disabled side is pushed to infinity so it never triggers.
func outlierBounds(values []float64, spec outlierSpec) (low, high float64) {
	low, high = math.Inf(-1), math.Inf(1)
	if len(values) == 0 {
		return low, high
	}

	switch spec.method {
	case "sd":
		mean := stat.Mean(values, nil)
		sd := stat.StdDev(values, nil)
		if spec.lowBound {
			low = mean - spec.whisker*sd
		}
		if spec.highBound {
			high = mean + spec.whisker*sd
		}
	case "mad":
		median := quantile(0.5, sortedCopy(values))
		devs := make([]float64, len(values))
		for i, v := range values {
			devs[i] = math.Abs(v - median)
		}
		sort.Float64s(devs)
		made := madScale * quantile(0.5, devs)
		if spec.lowBound {
			low = median - spec.whisker*made
		}
		if spec.highBound {
			high = median + spec.whisker*made
		}
	default: // iqr
		sorted := sortedCopy(values)
		q1 := quantile(0.25, sorted)
		q3 := quantile(0.75, sorted)
		iqr := q3 - q1
		if spec.lowBound {
			low = q1 - spec.whisker*iqr
		}
		if spec.highBound {
			high = q3 + spec.whisker*iqr
		}
	}
	return low, high
}

// quantile returns the p-quantile of ascending-sorted values, linearly
// interpolating between order statistics. This is the interpolation
// pandas and numpy use by default, which gonum's quantile kinds do not
// provide.
func quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := p * float64(n-1)
	i := int(math.Floor(h))
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}
