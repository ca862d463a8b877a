package rule

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/validata-dev/validata/dataset"
)

// Comparator maps a dataset column-subset and a target description to a
// boolean matrix of identical shape. Comparators are stateless and are
// selected by their unique symbol via the registry.
type Comparator interface {
	// Symbol returns the comparator's unique symbol, e.g. "==".
	Symbol() string
	// Compare evaluates the comparator against every column of the
	// dataset and returns one boolean column per input column.
	Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error)
}

// ComparatorRegistry manages comparator lookup and registration.
type ComparatorRegistry struct {
	mu          sync.RWMutex
	comparators map[string]Comparator
}

// NewComparatorRegistry creates an empty comparator registry.
func NewComparatorRegistry() *ComparatorRegistry {
	return &ComparatorRegistry{comparators: make(map[string]Comparator)}
}

// Register registers a comparator under its symbol.
func (r *ComparatorRegistry) Register(c Comparator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comparators[c.Symbol()] = c
}

// Get retrieves a comparator by symbol. Unregistered symbols yield an
// *UnknownSymbolError listing the valid symbols.
func (r *ComparatorRegistry) Get(symbol string) (Comparator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comparators[symbol]
	if !ok {
		return nil, &UnknownSymbolError{Kind: "comparator", Symbol: symbol, Known: r.symbolsLocked()}
	}
	return c, nil
}

// Symbols returns the registered comparator symbols.
func (r *ComparatorRegistry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.symbolsLocked()
}

func (r *ComparatorRegistry) symbolsLocked() []string {
	symbols := make([]string, 0, len(r.comparators))
	for symbol := range r.comparators {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Comparators is the default comparator registry.
var Comparators = NewComparatorRegistry()

func init() {
	Comparators.Register(&eqComparator{})
	Comparators.Register(&unEqComparator{})
	Comparators.Register(&orderComparator{symbol: ">", test: func(v, t float64) bool { return v > t }})
	Comparators.Register(&orderComparator{symbol: ">=", test: func(v, t float64) bool { return v >= t }})
	Comparators.Register(&orderComparator{symbol: "<", test: func(v, t float64) bool { return v < t }})
	Comparators.Register(&orderComparator{symbol: "<=", test: func(v, t float64) bool { return v <= t }})
	Comparators.Register(&inComparator{})
	Comparators.Register(&betweenComparator{})
	Comparators.Register(&missingComparator{})
	Comparators.Register(&notMissingComparator{})
	Comparators.Register(&containsComparator{})
	Comparators.Register(&ranksComparator{})
	Comparators.Register(&outlierComparator{})
}

// requireKind enforces a comparator's dtype guard: every selected column
// must be of the given kind. Returns a *TypeMismatchError listing the
// offending columns otherwise.
func requireKind(symbol string, ds *dataset.Dataset, kind dataset.Kind) error {
	var offending []string
	for _, col := range ds.Columns() {
		if col.Kind() != kind {
			offending = append(offending, col.Name())
		}
	}
	if len(offending) > 0 {
		return &TypeMismatchError{Symbol: symbol, Required: kind.String(), Columns: offending}
	}
	return nil
}

// numbersEqual compares floats with a relative epsilon so that values
// arriving via different conversions still compare equal.
func numbersEqual(a, b float64) bool {
	const epsilon = 1e-9
	diff := math.Abs(a - b)
	threshold := epsilon * math.Max(1.0, math.Max(math.Abs(a), math.Abs(b)))
	return diff < threshold
}

// eqComparator checks for values equal to the target. The target is
// coerced to each column's own kind before comparing, so a numeric column
// never false-negatives against a string literal.
type eqComparator struct{}

func (c *eqComparator) Symbol() string { return "==" }

func (c *eqComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	target = strings.TrimSpace(target)
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		switch col.Kind() {
		case dataset.KindNumber:
			want, err := strconv.ParseFloat(target, 64)
			if err != nil {
				return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target,
					Reason: "cannot coerce to number for column " + col.Name()}
			}
			for i := 0; i < col.Len(); i++ {
				if v, ok := col.Number(i); ok {
					result.Values[i] = numbersEqual(v, want)
				}
			}
		case dataset.KindBool:
			want, err := strconv.ParseBool(target)
			if err != nil {
				return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target,
					Reason: "cannot coerce to bool for column " + col.Name()}
			}
			for i := 0; i < col.Len(); i++ {
				if v, ok := col.Bool(i); ok {
					result.Values[i] = v == want
				}
			}
		default:
			for i := 0; i < col.Len(); i++ {
				if v, ok := col.Text(i); ok {
					result.Values[i] = v == target
				}
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// unEqComparator checks for values unequal to the target. It is the
// exact elementwise negation of eqComparator, including missing cells.
type unEqComparator struct{}

func (c *unEqComparator) Symbol() string { return "!=" }

func (c *unEqComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	eq := &eqComparator{}
	matrix, err := eq.Compare(ds, target)
	if err != nil {
		if tfe, ok := err.(*TargetFormatError); ok {
			tfe.Symbol = c.Symbol()
		}
		return nil, err
	}
	columns := make([]dataset.BoolColumn, 0, matrix.NumColumns())
	for _, col := range matrix.Columns() {
		negated := dataset.NewBoolColumn(col.Name, col.Len())
		for i, v := range col.Values {
			negated.Values[i] = !v
		}
		columns = append(columns, negated)
	}
	return dataset.NewBoolMatrix(columns...)
}

// orderComparator implements the numeric ordering comparators >, >=, <
// and <=. Missing cells never satisfy an ordering test.
type orderComparator struct {
	symbol string
	test   func(value, target float64) bool
}

func (c *orderComparator) Symbol() string { return c.symbol }

func (c *orderComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if err := requireKind(c.symbol, ds, dataset.KindNumber); err != nil {
		return nil, err
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(target), 64)
	if err != nil {
		return nil, &TargetFormatError{Symbol: c.symbol, Target: target, Reason: "non-numeric target"}
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Number(i); ok {
				result.Values[i] = c.test(v, want)
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// inComparator checks membership in a comma-separated literal list. Both
// sides are compared as text.
type inComparator struct{}

func (c *inComparator) Symbol() string { return "in" }

func (c *inComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if strings.TrimSpace(target) == "" {
		return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target, Reason: "empty list"}
	}
	members := make(map[string]bool)
	for _, member := range strings.Split(target, ",") {
		members[strings.TrimSpace(member)] = true
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			if !col.IsMissing(i) {
				result.Values[i] = members[col.FormatValue(i)]
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// betweenComparator checks whether values fall in an inclusive numeric
// range written as "<low>:<high>".
type betweenComparator struct{}

func (c *betweenComparator) Symbol() string { return "between" }

func (c *betweenComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if err := requireKind(c.Symbol(), ds, dataset.KindNumber); err != nil {
		return nil, err
	}
	parts := strings.Split(target, ":")
	if len(parts) != 2 {
		return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "expected <low>:<high>"}
	}
	low, errLow := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	high, errHigh := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLow != nil || errHigh != nil {
		return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "non-numeric bounds"}
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Number(i); ok {
				result.Values[i] = low <= v && v <= high
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// missingComparator checks whether values are absent. No target required.
type missingComparator struct{}

func (c *missingComparator) Symbol() string { return "missing" }

func (c *missingComparator) Compare(ds *dataset.Dataset, _ string) (*dataset.BoolMatrix, error) {
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			result.Values[i] = col.IsMissing(i)
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// notMissingComparator checks whether values are present. No target
// required.
type notMissingComparator struct{}

func (c *notMissingComparator) Symbol() string { return "not missing" }

func (c *notMissingComparator) Compare(ds *dataset.Dataset, _ string) (*dataset.BoolMatrix, error) {
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			result.Values[i] = !col.IsMissing(i)
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}

// containsComparator matches text values against a regular expression.
// Missing cells never match and never raise.
type containsComparator struct{}

func (c *containsComparator) Symbol() string { return "contains" }

func (c *containsComparator) Compare(ds *dataset.Dataset, target string) (*dataset.BoolMatrix, error) {
	if err := requireKind(c.Symbol(), ds, dataset.KindText); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(target)
	if err != nil {
		return nil, &TargetFormatError{Symbol: c.Symbol(), Target: target,
			Reason: "invalid regular expression"}
	}
	columns := make([]dataset.BoolColumn, 0, ds.NumColumns())
	for _, col := range ds.Columns() {
		result := dataset.NewBoolColumn(col.Name(), col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.Text(i); ok {
				result.Values[i] = re.MatchString(v)
			}
		}
		columns = append(columns, result)
	}
	return dataset.NewBoolMatrix(columns...)
}
