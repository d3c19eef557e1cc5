package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for document store errors. Every error returned by a Store
// matches ErrStore.
var (
	ErrStore             = errors.New("document store")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrClosed            = errors.New("store closed")
	ErrUnknownDriver     = errors.New("unknown store driver")
)

// storeErr tags err as a store failure unless it already is one.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
