package service

import "errors"

// ErrNotStarted is returned by EventService operations before Start succeeds.
var ErrNotStarted = errors.New("service not started")
