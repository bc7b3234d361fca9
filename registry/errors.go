package registry

import "errors"

// Sentinel errors for registration operations.
// Callers should use errors.Is to check.
var (
	// ErrRegistrationFailed indicates the host refused a registration or
	// returned no handle; no record is kept in that case.
	ErrRegistrationFailed = errors.New("registry: host refused command registration")
	// ErrDuplicateCaption indicates a caption is already live; at most one
	// registration per caption is allowed.
	ErrDuplicateCaption = errors.New("registry: caption already registered")
)
