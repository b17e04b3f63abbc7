package metrics

import "errors"

// Sentinel error kinds for this package.
var (
	ErrDuplicateRegistration = errors.New("duplicate metrics registration")
)
