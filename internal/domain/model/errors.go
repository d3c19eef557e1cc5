package model

import "errors"

// Sentinel kinds for request parsing.
var (
	ErrMissingFields = errors.New("Missing fields") //nolint:staticcheck // client-facing message
	ErrInvalidBody   = errors.New("request body must be a JSON object")
)
