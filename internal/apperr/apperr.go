package apperr

import "errors"

// Sentinel errors used across services. Handlers map these onto HTTP statuses;
// everything else is treated as an internal error.
var (
	// ErrNotFound covers missing campaigns/drivers and failed identity
	// resolution. Ambiguous matches surface as ErrNotFound on purpose so a
	// caller can never probe how many records share a phone or name.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed payloads and verification requested
	// before a flow is complete.
	ErrValidation = errors.New("validation failed")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
