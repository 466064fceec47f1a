package rewards

import (
	"errors"
	"fmt"
)

// Typed lifecycle errors. Callers map each to a distinct user-facing
// message; none of them is ever folded into a generic failure.
var (
	ErrNotFound       = errors.New("reward not found")
	ErrForbidden      = errors.New("not authorized for this reward")
	ErrAlreadyClaimed = errors.New("reward already claimed")
	ErrExpired        = errors.New("reward has expired")
)

// ValidationError reports malformed create/edit input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reward: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
