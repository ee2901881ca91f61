package allocation

import "errors"

var (
	// ErrUnknownProfile is returned when a profile id is not registered
	ErrUnknownProfile = errors.New("unknown allocation profile")
	// ErrInvalidKey is returned when a compound key does not match the target hierarchy
	ErrInvalidKey = errors.New("invalid target key")
	// ErrUnknownClass is returned for asset class names outside the enumeration
	ErrUnknownClass = errors.New("unknown asset class")
	// ErrUnknownCap is returned for cap bucket names outside the enumeration
	ErrUnknownCap = errors.New("unknown cap bucket")
	// ErrNotFound is returned when no target state is stored for a holder
	ErrNotFound = errors.New("target state not found")
)
