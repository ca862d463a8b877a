package rule

import (
	"sort"
	"sync"

	"github.com/validata-dev/validata/dataset"

	"gonum.org/v1/gonum/stat"
)

// Operator reduces a multi-column matrix to exactly one column. Data
// operators act on raw values before the comparison; logical operators
// act on the boolean matrix a comparator produced.
type Operator interface {
	// Symbol returns the operator's unique symbol, e.g. "mean".
	Symbol() string
}

// DataOperator reduces the raw values of several numeric columns to one
// numeric column, row by row.
type DataOperator interface {
	Operator
	Reduce(ds *dataset.Dataset) (*dataset.Column, error)
}

// LogicalOperator reduces a boolean matrix to one boolean column, row by
// row.
type LogicalOperator interface {
	Operator
	ReduceBool(m *dataset.BoolMatrix) dataset.BoolColumn
}

// OperatorRegistry manages operator lookup and registration.
type OperatorRegistry struct {
	mu        sync.RWMutex
	operators map[string]Operator
}

// NewOperatorRegistry creates an empty operator registry.
func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{operators: make(map[string]Operator)}
}

// Register registers an operator under its symbol.
func (r *OperatorRegistry) Register(op Operator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operators[op.Symbol()] = op
}

// Get retrieves an operator by symbol. Unregistered symbols yield an
// *UnknownSymbolError listing the valid symbols.
func (r *OperatorRegistry) Get(symbol string) (Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[symbol]
	if !ok {
		return nil, &UnknownSymbolError{Kind: "operator", Symbol: symbol, Known: r.symbolsLocked()}
	}
	return op, nil
}

// Symbols returns the registered operator symbols, sorted.
func (r *OperatorRegistry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols := r.symbolsLocked()
	sort.Strings(symbols)
	return symbols
}

func (r *OperatorRegistry) symbolsLocked() []string {
	symbols := make([]string, 0, len(r.operators))
	for symbol := range r.operators {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Operators is the default operator registry.
var Operators = NewOperatorRegistry()

func init() {
	Operators.Register(&dataOperator{symbol: "mean", reduce: func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		return stat.Mean(vals, nil), true
	}})
	Operators.Register(&dataOperator{symbol: "median", reduce: func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		return quantile(0.5, sortedCopy(vals)), true
	}})
	Operators.Register(&dataOperator{symbol: "min", reduce: func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	}})
	Operators.Register(&dataOperator{symbol: "max", reduce: func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	}})
	// Sum of an all-missing row is 0, not missing.
	Operators.Register(&dataOperator{symbol: "sum", reduce: func(vals []float64) (float64, bool) {
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return total, true
	}})

	Operators.Register(&anyOperator{})
	Operators.Register(&allOperator{})
	Operators.Register(&noneOperator{})
}

// dataOperator reduces each row's present numeric values with a
// statistic. Missing cells are skipped; a row with no reducible value
// becomes missing (except where the statistic defines an empty result,
// like sum).
type dataOperator struct {
	symbol string
	reduce func(vals []float64) (float64, bool)
}

func (o *dataOperator) Symbol() string { return o.symbol }

func (o *dataOperator) Reduce(ds *dataset.Dataset) (*dataset.Column, error) {
	if err := requireKind(o.symbol, ds, dataset.KindNumber); err != nil {
		return nil, err
	}
	cells := make([]interface{}, ds.NumRows())
	columns := ds.Columns()
	vals := make([]float64, 0, len(columns))
	for i := 0; i < ds.NumRows(); i++ {
		vals = vals[:0]
		for _, col := range columns {
			if v, ok := col.Number(i); ok {
				vals = append(vals, v)
			}
		}
		if v, ok := o.reduce(vals); ok {
			cells[i] = v
		}
	}
	return dataset.NewColumn(o.symbol, dataset.KindNumber, cells)
}

// anyOperator is true where at least one column is true.
type anyOperator struct{}

func (o *anyOperator) Symbol() string { return "any" }

func (o *anyOperator) ReduceBool(m *dataset.BoolMatrix) dataset.BoolColumn {
	return m.Any(o.Symbol())
}

// allOperator is true only where every column is true.
type allOperator struct{}

func (o *allOperator) Symbol() string { return "all" }

func (o *allOperator) ReduceBool(m *dataset.BoolMatrix) dataset.BoolColumn {
	return m.All(o.Symbol())
}

// noneOperator is true only where no column is true.
type noneOperator struct{}

func (o *noneOperator) Symbol() string { return "none" }

func (o *noneOperator) ReduceBool(m *dataset.BoolMatrix) dataset.BoolColumn {
	return m.None(o.Symbol())
}
