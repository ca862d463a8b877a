// Package validator runs named validation checks against a dataset.
//
// A check pairs a name with a boolean rule expression. The validator
// evaluates every check through the rule engine and collects one boolean
// result column per check, together with per-check pass counts.
package validator

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/validata-dev/validata/dataset"
	"github.com/validata-dev/validata/rule"
)

// Check is one named validation rule.
type Check struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger enables debug tracing through the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		v.log = logger
	}
}

// Validator evaluates a fixed set of checks.
type Validator struct {
	checks []Check
	log    *zap.Logger
}

// New creates a validator. Every check needs a non-empty name and
// expression, and names must be unique since they become result column
// names.
func New(checks []Check, opts ...Option) (*Validator, error) {
	if len(checks) == 0 {
		return nil, fmt.Errorf("no validation checks provided")
	}
	seen := make(map[string]bool, len(checks))
	for i, check := range checks {
		if check.Name == "" {
			return nil, fmt.Errorf("check %d has no name", i)
		}
		if check.Expression == "" {
			return nil, fmt.Errorf("check %q has no expression", check.Name)
		}
		if seen[check.Name] {
			return nil, fmt.Errorf("duplicate check name: %q", check.Name)
		}
		seen[check.Name] = true
	}

	v := &Validator{checks: checks, log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Summary reports the outcome of one check.
type Summary struct {
	Name   string
	Rows   int
	Passed int
}

// PassRate returns the fraction of rows that passed, in [0, 1].
func (s Summary) PassRate() float64 {
	if s.Rows == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Rows)
}

// Result holds the outcome of one validation run: one boolean column per
// check, row-aligned with the validated dataset.
type Result struct {
	RunID     string
	Columns   []dataset.BoolColumn
	Summaries []Summary
}

// Dataset converts the result columns into a dataset, one boolean column
// per check in check order.
func (r *Result) Dataset() (*dataset.Dataset, error) {
	columns := make([]*dataset.Column, len(r.Columns))
	for i, col := range r.Columns {
		columns[i] = dataset.FromBool(col)
	}
	return dataset.New(columns...)
}

// Validate runs every check against the dataset. Each check is parsed
// and evaluated independently; the first failing check aborts the run.
func (v *Validator) Validate(ds *dataset.Dataset) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := v.log.With(zap.String("run_id", result.RunID))

	for _, check := range v.checks {
		log.Debug("performing validation", zap.String("check", check.Name))

		parser, err := rule.NewParser(check.Expression,
			rule.WithLogger(v.log), rule.WithResultName(check.Name))
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", check.Name, err)
		}
		column, err := parser.Evaluate(ds)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", check.Name, err)
		}

		summary := Summary{Name: check.Name, Rows: column.Len(), Passed: column.CountTrue()}
		result.Columns = append(result.Columns, column)
		result.Summaries = append(result.Summaries, summary)

		log.Debug("finished validation",
			zap.String("check", check.Name),
			zap.Int("rows", summary.Rows),
			zap.Float64("pass_rate", summary.PassRate()))
	}
	return result, nil
}
