package token

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMalformedToken = errors.New("malformed token")
)
