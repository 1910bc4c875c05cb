package validation

import "errors"

var (
	// ErrNilPattern is raised when Matches is constructed without a regular expression.
	ErrNilPattern = errors.New("validation: matches requires a non-nil regex")

	// ErrUnknownRule is returned when a rule name cannot be resolved to a constructor.
	ErrUnknownRule = errors.New("validation: unknown rule")
)
