// Terminal stream failure classification. Applied once, after the
// consumption loop exits.

package stream

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind is the taxonomy category assigned to a terminal stream
// failure.
type ErrorKind int

const (
	// ErrorTransient is a network or backend fault: the in-flight
	// message is marked errored and the user may retry.
	ErrorTransient ErrorKind = iota

	// ErrorContextOverflow means the request exceeded the backend's
	// context budget: the user must reduce scope.
	ErrorContextOverflow

	// ErrorCancelled is not a failure: incomplete state is rolled
	// back silently.
	ErrorCancelled
)

// String returns the kind's name for logging.
func (k ErrorKind) String() string {
	switch k {
	case ErrorContextOverflow:
		return "context_overflow"
	case ErrorCancelled:
		return "cancelled"
	default:
		return "transient"
	}
}

// overflowRule is one conjunction of substrings that indicates
// context overflow.
type overflowRule struct {
	all []string
}

var overflowRules = []overflowRule{
	{all: []string{"payload", "too large"}},
	{all: []string{"payload", "size"}},
	{all: []string{"context", "limit"}},
	{all: []string{"context", "exceed"}},
	{all: []string{"token", "limit"}},
	{all: []string{"token", "exceed"}},
	{all: []string{"too many tokens"}},
	{all: []string{"maximum context"}},
}

// Classify assigns a taxonomy category to a terminal stream error.
// Matching is case-insensitive against the error's message text.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorTransient
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCancelled
	}

	lower := strings.ToLower(err.Error())
	for _, rule := range overflowRules {
		if matchesAll(lower, rule.all) {
			return ErrorContextOverflow
		}
	}
	return ErrorTransient
}

func matchesAll(text string, subs []string) bool {
	for _, s := range subs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}

// OverflowNotice is the actionable guidance surfaced for context
// overflow failures.
const OverflowNotice = "The conversation has grown past the model's context budget. " +
	"Start a new conversation or remove large attachments, then try again."

// GenericNotice is the short error string written into the in-flight
// message for transient failures.
const GenericNotice = "Something went wrong while generating this response. Please try again."
