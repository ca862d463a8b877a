// Package rule implements the boolean validation rule engine: a tokenizer
// for rule strings, a recursive-descent parser that folds AND/OR and
// grouping strictly left to right, a leaf evaluator, and the comparator
// and operator registries with their statistical algorithms.
//
// A rule combines leaf clauses with connectives and parentheses:
//
//	age > 18 and (income_1, income_2 missing using any or size between 1:5)
//
// Evaluating a rule against a dataset yields a single named boolean
// column aligned with the dataset's rows.
package rule

import (
	"fmt"
	"io"
	"strings"
)

// TokenType represents the type of a rule token.
type TokenType int

const (
	// TokenAnd is a logical AND connective (" and ", " & ").
	TokenAnd TokenType = iota
	// TokenOr is a logical OR connective (" or ", " | ").
	TokenOr
	// TokenGroupOpen opens a parenthesized group.
	TokenGroupOpen
	// TokenGroupClose closes a parenthesized group.
	TokenGroupClose
	// TokenExpr is a leaf clause, e.g. "age > 18".
	TokenExpr
)

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	switch t {
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenGroupOpen:
		return "GROUP_OPEN"
	case TokenGroupClose:
		return "GROUP_CLOSE"
	case TokenExpr:
		return "EXPR"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token represents a lexical token. Tokens are immutable once produced.
type Token struct {
	Type  TokenType
	Value string
}

// marker maps a token type to one of its literal spellings. Connective
// markers carry surrounding spaces so that column names containing "and"
// or "or" are not split.
type marker struct {
	typ    TokenType
	symbol string
}

// Connective markers are matched case-sensitively.
var markers = []marker{
	{TokenAnd, " and "},
	{TokenAnd, " & "},
	{TokenOr, " or "},
	{TokenOr, " | "},
	{TokenGroupOpen, "("},
	{TokenGroupClose, ")"},
}

// Tokenizer turns a rule string into a pull-based, forward-only sequence
// of tokens. The parser consumes tokens one at a time and can fetch the
// next token mid-evaluation for right-hand-side lookahead.
type Tokenizer struct {
	tokens []Token
	pos    int
}

// NewTokenizer creates a tokenizer for the given rule string. Newlines
// are normalized to spaces so multi-line rules parse identically to
// single-line ones.
func NewTokenizer(rule string) (*Tokenizer, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, grammarErrorf("empty rule")
	}
	return &Tokenizer{tokens: tokenize(rule)}, nil
}

// tokenize scans the rule for the leftmost marker occurrence, emitting
// the preceding text (if any) as an EXPR token and the marker as a token
// of its own type, until no marker remains.
func tokenize(rule string) []Token {
	rule = strings.NewReplacer("\r\n", " ", "\n", " ").Replace(rule)

	var tokens []Token
	for {
		m, at := leftmostMarker(rule)
		if at < 0 {
			break
		}
		if expr := strings.TrimSpace(rule[:at]); expr != "" {
			tokens = append(tokens, Token{Type: TokenExpr, Value: expr})
		}
		tokens = append(tokens, Token{Type: m.typ, Value: strings.TrimSpace(m.symbol)})
		rule = rule[at+len(m.symbol):]
	}
	if expr := strings.TrimSpace(rule); expr != "" {
		tokens = append(tokens, Token{Type: TokenExpr, Value: expr})
	}
	return tokens
}

// leftmostMarker finds the marker occurring earliest in the text. Ties on
// position are broken in favor of the longer marker.
func leftmostMarker(text string) (marker, int) {
	best := marker{}
	bestAt := -1
	for _, m := range markers {
		at := strings.Index(text, m.symbol)
		if at < 0 {
			continue
		}
		if bestAt < 0 || at < bestAt || (at == bestAt && len(m.symbol) > len(best.symbol)) {
			best = m
			bestAt = at
		}
	}
	return best, bestAt
}

// Next returns the next token, or io.EOF once the sequence is exhausted.
func (t *Tokenizer) Next() (Token, error) {
	if t.pos >= len(t.tokens) {
		return Token{}, io.EOF
	}
	token := t.tokens[t.pos]
	t.pos++
	return token, nil
}

// Reset restarts the sequence from the first token.
func (t *Tokenizer) Reset() {
	t.pos = 0
}

// Tokens returns the full token sequence without advancing the cursor.
func (t *Tokenizer) Tokens() []Token {
	tokens := make([]Token, len(t.tokens))
	copy(tokens, t.tokens)
	return tokens
}
