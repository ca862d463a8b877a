package rule

import (
	"io"

	"go.uber.org/zap"

	"github.com/validata-dev/validata/dataset"
)

// DefaultResultName is the name given to the final boolean column when
// the caller does not supply one.
const DefaultResultName = "validation_result"

// Option configures a Parser or Evaluator.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	resultName string
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), resultName: DefaultResultName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger enables debug tracing through the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResultName sets the name of the final boolean result column.
func WithResultName(name string) Option {
	return func(o *options) {
		o.resultName = name
	}
}

// Parser evaluates a full boolean rule against a dataset. It drives the
// tokenizer, recurses into parenthesized groups and delegates leaf
// clauses to an Evaluator.
//
// Connectives fold strictly left to right with no precedence distinction
// between AND and OR: "a or b and c" evaluates as "(a or b) and c". This
// is a deliberate property of the rule language, not an oversight.
//
// A Parser is scoped to a single rule string and must not be shared
// across goroutines; independent parsers may evaluate concurrently
// against the same dataset.
type Parser struct {
	tokenizer  *Tokenizer
	evaluator  *Evaluator
	resultName string
	log        *zap.Logger
}

// NewParser creates a parser for the given rule string. The rule is
// tokenized eagerly, so malformed lexical input surfaces here rather
// than during evaluation.
func NewParser(rule string, opts ...Option) (*Parser, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	tokenizer, err := NewTokenizer(rule)
	if err != nil {
		return nil, err
	}
	if err := validateTokens(tokenizer.Tokens()); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Parser{
		tokenizer:  tokenizer,
		evaluator:  &Evaluator{log: o.logger},
		resultName: o.resultName,
		log:        o.logger,
	}, nil
}

// Evaluate runs the rule against the dataset and returns a single
// boolean column named after the configured result name, row-aligned
// with the dataset.
func (p *Parser) Evaluate(ds *dataset.Dataset) (dataset.BoolColumn, error) {
	p.tokenizer.Reset()
	result, err := p.evaluate(ds, newDepthCounter())
	if err != nil {
		return dataset.BoolColumn{}, err
	}
	return result.Rename(p.resultName), nil
}

// evaluate consumes tokens for one group level and folds the boolean
// columns it produces. A nested call consumes its own GROUP_CLOSE.
func (p *Parser) evaluate(ds *dataset.Dataset, depth *depthCounter) (dataset.BoolColumn, error) {
	var result *dataset.BoolColumn

	for {
		token, err := p.tokenizer.Next()
		if err == io.EOF {
			if depth.depth > 0 {
				return dataset.BoolColumn{}, grammarErrorf("unmatched group open")
			}
			break
		}
		p.log.Debug("processing token",
			zap.Stringer("type", token.Type), zap.String("value", token.Value))

		switch token.Type {
		case TokenGroupOpen:
			nested, err := p.evaluateGroup(ds, depth)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			result = &nested

		case TokenGroupClose:
			if depth.depth == 0 {
				return dataset.BoolColumn{}, grammarErrorf("unmatched group close")
			}
			if result == nil {
				return dataset.BoolColumn{}, grammarErrorf("empty group")
			}
			return *result, nil

		case TokenAnd, TokenOr:
			if result == nil {
				return dataset.BoolColumn{}, grammarErrorf(
					"use of %q without left hand side expression", token.Value)
			}
			rightHand, err := p.evaluateRightHand(ds, depth, token)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			var combined dataset.BoolColumn
			if token.Type == TokenAnd {
				combined, err = result.And(rightHand)
			} else {
				combined, err = result.Or(rightHand)
			}
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			result = &combined

		case TokenExpr:
			if result != nil {
				return dataset.BoolColumn{}, grammarErrorf(
					"expected and / or before expression %q", token.Value)
			}
			leaf, err := p.evaluator.Evaluate(token.Value, ds)
			if err != nil {
				return dataset.BoolColumn{}, err
			}
			result = &leaf
		}
	}

	if result == nil {
		return dataset.BoolColumn{}, grammarErrorf("rule contains no expression")
	}
	return *result, nil
}

// evaluateGroup recurses one group level, tracking nesting depth.
func (p *Parser) evaluateGroup(ds *dataset.Dataset, depth *depthCounter) (dataset.BoolColumn, error) {
	if err := depth.Enter(); err != nil {
		return dataset.BoolColumn{}, err
	}
	defer depth.Exit()
	return p.evaluate(ds, depth)
}

// evaluateRightHand pulls the token after a connective and evaluates it:
// either a nested group or a leaf clause.
func (p *Parser) evaluateRightHand(ds *dataset.Dataset, depth *depthCounter, connective Token) (dataset.BoolColumn, error) {
	token, err := p.tokenizer.Next()
	if err == io.EOF {
		return dataset.BoolColumn{}, grammarErrorf(
			"missing right hand side after %q", connective.Value)
	}
	p.log.Debug("processing right hand side token",
		zap.Stringer("type", token.Type), zap.String("value", token.Value))

	switch token.Type {
	case TokenGroupOpen:
		return p.evaluateGroup(ds, depth)
	case TokenExpr:
		return p.evaluator.Evaluate(token.Value, ds)
	default:
		return dataset.BoolColumn{}, grammarErrorf(
			"expected expression or group after %q, got %q", connective.Value, token.Value)
	}
}
