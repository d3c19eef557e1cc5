package marketdata

import "errors"

// Sentinel kinds for upstream errors. Every error returned by a Provider
// matches ErrUpstream.
var (
	ErrUpstream        = errors.New("market data upstream")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrUnknownProvider = errors.New("unknown market data provider")
)
