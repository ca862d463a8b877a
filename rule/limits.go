package rule

import (
	"errors"
	"fmt"
)

// Guard rails against pathological rule strings.
const (
	// MaxRuleLength is the maximum allowed rule string length.
	MaxRuleLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a rule.
	MaxTokens = 1000

	// MaxGroupDepth is the maximum group nesting depth.
	MaxGroupDepth = 100
)

var (
	// ErrRuleTooLong is returned when a rule exceeds MaxRuleLength.
	ErrRuleTooLong = errors.New("rule too long")

	// ErrTooManyTokens is returned when a rule has too many tokens.
	ErrTooManyTokens = errors.New("too many tokens in rule")

	// ErrGroupTooDeep is returned when group nesting exceeds MaxGroupDepth.
	ErrGroupTooDeep = errors.New("group nesting too deep")
)

// validateRule checks the rule string length.
func validateRule(rule string) error {
	if len(rule) > MaxRuleLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrRuleTooLong, len(rule), MaxRuleLength)
	}
	return nil
}

// validateTokens checks the token count.
func validateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// depthCounter tracks group nesting depth during parsing.
type depthCounter struct {
	depth    int
	maxDepth int
}

func newDepthCounter() *depthCounter {
	return &depthCounter{maxDepth: MaxGroupDepth}
}

// Enter increments depth and returns an error if the limit is exceeded.
func (c *depthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrGroupTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth.
func (c *depthCounter) Exit() {
	c.depth--
}
