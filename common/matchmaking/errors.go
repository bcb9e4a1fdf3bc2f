package matchmaking

import (
	"errors"
	"net/http"
)

var (
	// ErrModelGeneration indicates that the catalog could not be produced, or that an existing node
	// no longer resolves against the candidates generated from the current catalog.
	ErrModelGeneration = errors.New("model generation failed")

	// ErrConstraintParse indicates that a constraint expression is malformed.
	ErrConstraintParse = errors.New("could not parse constraint")

	// ErrStrategyFault indicates that a Solver failed. These errors are never returned to callers
	// of the orchestrator.
	ErrStrategyFault = errors.New("solver strategy failed")

	ErrInvalidTargetSize = errors.New("invalid target size")
	ErrEmptyUserId       = errors.New("user id must not be empty")
)

// ErrorCode returns the protocol error code that corresponds to the given error.
//
// Constraint parse failures and model generation failures are the caller's fault and map to 400.
// Everything else maps to 500.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrConstraintParse),
		errors.Is(err, ErrModelGeneration),
		errors.Is(err, ErrInvalidTargetSize),
		errors.Is(err, ErrEmptyUserId):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
