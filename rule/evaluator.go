package rule

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/validata-dev/validata/dataset"
)

// reduceMarker introduces the optional reducing operator at the end of a
// leaf clause, e.g. "income_1, income_2 > 1000 using any".
const reduceMarker = "using"

// Clause is one parsed leaf: a column selector, a comparator symbol, an
// optional target and an optional reducing operator symbol.
type Clause struct {
	Selector   string
	Comparator string
	Target     string
	Operator   string
}

// ParseClause parses a leaf clause of the form
//
//	<column-selector> <comparator> [<target>] [using <operator>]
//
// The column selector is a single column name, a comma-separated list,
// "*" for every dataset column, or "prefix*" for a prefix match.
func ParseClause(text string) (*Clause, error) {
	text = strings.TrimSpace(text)

	symbol, at := findComparator(text)
	if at < 0 {
		// No registered comparator appears in the clause. Surface the
		// word in comparator position so the caller sees what was
		// attempted, together with the valid symbols.
		if fields := strings.Fields(text); len(fields) >= 2 {
			return nil, &UnknownSymbolError{Kind: "comparator", Symbol: fields[1],
				Known: Comparators.Symbols()}
		}
		return nil, grammarErrorf("no comparator in clause %q", text)
	}

	clause := &Clause{
		Selector:   strings.TrimSpace(text[:at]),
		Comparator: symbol,
	}
	if clause.Selector == "" {
		return nil, grammarErrorf("clause %q has no column selector", text)
	}

	rest := " " + strings.TrimSpace(text[at+len(symbol):])
	if idx := strings.LastIndex(rest, " "+reduceMarker+" "); idx >= 0 {
		clause.Operator = strings.TrimSpace(rest[idx+len(reduceMarker)+2:])
		rest = rest[:idx]
		if clause.Operator == "" {
			return nil, grammarErrorf("clause %q names no operator after %q", text, reduceMarker)
		}
	}
	clause.Target = strings.TrimSpace(rest)
	return clause, nil
}

// findComparator locates the leftmost registered comparator symbol in the
// clause text. Ties on position go to the longest symbol, so ">=" beats
// ">" and "not missing" beats "missing".
func findComparator(text string) (string, int) {
	best, bestAt := "", -1
	for _, symbol := range Comparators.Symbols() {
		at := findSymbol(text, symbol)
		if at < 0 {
			continue
		}
		if bestAt < 0 || at < bestAt || (at == bestAt && len(symbol) > len(best)) {
			best, bestAt = symbol, at
		}
	}
	return best, bestAt
}

// findSymbol finds the first occurrence of a symbol. Word-like symbols
// ("in", "between", "ranks in", ...) only match on word boundaries so
// that column names containing them are not split.
func findSymbol(text, symbol string) int {
	if !isWordLike(symbol) {
		return strings.Index(text, symbol)
	}
	for from := 0; from <= len(text)-len(symbol); {
		at := strings.Index(text[from:], symbol)
		if at < 0 {
			return -1
		}
		at += from
		if boundedAt(text, at, len(symbol)) {
			return at
		}
		from = at + 1
	}
	return -1
}

func isWordLike(symbol string) bool {
	for _, r := range symbol {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

// boundedAt reports whether text[at:at+n] sits on word boundaries.
func boundedAt(text string, at, n int) bool {
	isWord := func(b byte) bool {
		return b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
	}
	if at > 0 && isWord(text[at-1]) {
		return false
	}
	if end := at + n; end < len(text) && isWord(text[end]) {
		return false
	}
	return true
}

// resolveColumns expands a column selector against the dataset.
func resolveColumns(selector string, ds *dataset.Dataset) ([]string, error) {
	switch {
	case selector == "*":
		return ds.ColumnNames(), nil

	case strings.Contains(selector, ","):
		var names, missing []string
		for _, name := range strings.Split(selector, ",") {
			name = strings.TrimSpace(name)
			if !ds.HasColumn(name) {
				missing = append(missing, name)
			}
			names = append(names, name)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, strings.Join(missing, ", "))
		}
		return names, nil

	case strings.HasSuffix(selector, "*"):
		prefix := strings.TrimSuffix(selector, "*")
		var names []string
		for _, name := range ds.ColumnNames() {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no columns match %q", ErrUnknownColumn, selector)
		}
		return names, nil

	default:
		if !ds.HasColumn(selector) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, selector)
		}
		return []string{selector}, nil
	}
}

// Evaluator evaluates leaf clauses against a dataset: it parses the
// clause, resolves the comparator and optional operator by symbol, and
// reduces multi-column results to a single boolean column.
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator creates an evaluator. Pass WithLogger to enable debug
// tracing.
func NewEvaluator(opts ...Option) *Evaluator {
	o := newOptions(opts)
	return &Evaluator{log: o.logger}
}

// Evaluate parses and evaluates one leaf clause. Selections spanning
// more than one column are reduced by the clause's operator, or by a
// logical AND across the selected columns when none is named.
func (e *Evaluator) Evaluate(expression string, ds *dataset.Dataset) (dataset.BoolColumn, error) {
	clause, err := ParseClause(expression)
	if err != nil {
		return dataset.BoolColumn{}, err
	}

	names, err := resolveColumns(clause.Selector, ds)
	if err != nil {
		return dataset.BoolColumn{}, err
	}
	selected, err := ds.Select(names...)
	if err != nil {
		return dataset.BoolColumn{}, err
	}
	e.log.Debug("selected columns", zap.Strings("columns", names))

	comp, err := Comparators.Get(clause.Comparator)
	if err != nil {
		return dataset.BoolColumn{}, err
	}
	e.log.Debug("using comparator", zap.String("symbol", comp.Symbol()))

	if clause.Operator != "" {
		op, err := Operators.Get(clause.Operator)
		if err != nil {
			return dataset.BoolColumn{}, err
		}
		e.log.Debug("using operator", zap.String("symbol", op.Symbol()))

		switch op := op.(type) {
		case DataOperator:
			// Reduce the raw values first, then compare the single
			// reduced column.
			reduced, err := op.Reduce(selected)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			one, err := dataset.New(reduced)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			matrix, err := comp.Compare(one, clause.Target)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			return matrix.Column(0), nil

		case LogicalOperator:
			// Compare first, then fold the boolean matrix.
			matrix, err := comp.Compare(selected, clause.Target)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			return op.ReduceBool(matrix), nil

		default:
			return dataset.BoolColumn{}, fmt.Errorf(
				"operator %q is neither a data nor a logical operator", op.Symbol())
		}
	}

	matrix, err := comp.Compare(selected, clause.Target)
	if err != nil {
		return dataset.BoolColumn{}, err
	}
	if matrix.NumColumns() == 1 {
		return matrix.Column(0), nil
	}
	// Default reduction: every selected column must hold.
	return matrix.All("all"), nil
}
