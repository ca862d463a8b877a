package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrGrammar is wrapped by every grammar error: misplaced
	// connectives, unmatched groups, adjacent leaf expressions and
	// empty rules.
	ErrGrammar = errors.New("invalid rule grammar")

	// ErrUnknownColumn is wrapped when a clause selects a column that
	// is not present in the dataset.
	ErrUnknownColumn = errors.New("unknown column")
)

// UnknownSymbolError is returned when a comparator or operator symbol is
// not registered. It carries the set of valid symbols.
type UnknownSymbolError struct {
	Kind   string // "comparator" or "operator"
	Symbol string
	Known  []string
}

func (e *UnknownSymbolError) Error() string {
	known := append([]string(nil), e.Known...)
	sort.Strings(known)
	return fmt.Sprintf("unknown %s %q (valid symbols: %s)",
		e.Kind, e.Symbol, strings.Join(known, ", "))
}

// TypeMismatchError is returned when a comparator's dtype guard rejects
// one or more selected columns.
type TypeMismatchError struct {
	Symbol   string   // comparator symbol
	Required string   // required value category, e.g. "number"
	Columns  []string // offending column names
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("comparator %q requires %s columns, got: %s",
		e.Symbol, e.Required, strings.Join(e.Columns, ", "))
}

// TargetFormatError is returned when a comparison target cannot be
// parsed: malformed ranges, non-numeric bounds, invalid regular
// expressions or out-of-range rank percentiles.
type TargetFormatError struct {
	Symbol string // comparator symbol
	Target string // raw target text
	Reason string
}

func (e *TargetFormatError) Error() string {
	return fmt.Sprintf("comparator %q: invalid target %q: %s", e.Symbol, e.Target, e.Reason)
}

// grammarErrorf builds a grammar error wrapping ErrGrammar.
func grammarErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrGrammar, fmt.Sprintf(format, args...))
}
