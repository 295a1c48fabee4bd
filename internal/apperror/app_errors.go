package apperror

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them, so
// transports only need errors.Is against the class.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrInvalidGameID       = fmt.Errorf("%w: invalid game id", ErrValidation)
	ErrInvalidPlayerID     = fmt.Errorf("%w: invalid player id", ErrValidation)
	ErrInvalidPosition     = fmt.Errorf("%w: position must be between 1 and 6", ErrValidation)
	ErrInvalidJerseyNumber = fmt.Errorf("%w: jersey number must be a non-negative integer", ErrValidation)
	ErrInvalidStatType     = fmt.Errorf("%w: unknown stat type", ErrValidation)
	ErrMissingField        = fmt.Errorf("%w: missing required field", ErrValidation)

	ErrPositionTaken    = fmt.Errorf("%w: position is already taken", ErrValidation)
	ErrRosterIncomplete = fmt.Errorf("%w: roster is not complete", ErrValidation)
	ErrGameCompleted    = fmt.Errorf("%w: game is already completed", ErrValidation)

	ErrGameNotFound  = fmt.Errorf("game %w", ErrNotFound)
	ErrUnknownPlayer = fmt.Errorf("player %w in game", ErrNotFound)
)

// IsConflict reports whether err is a validation error caused by the current
// state of the game rather than by the request itself.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPositionTaken) ||
		errors.Is(err, ErrRosterIncomplete) ||
		errors.Is(err, ErrGameCompleted)
}
