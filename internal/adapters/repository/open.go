package repository

import (
	"context"
	"fmt"

	"github.com/okian/eventquote/internal/config"
)

// Open builds the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	opts := []Option{WithTimeout(cfg.Timeout)}

	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryStore(), nil
	case config.DriverPebble:
		s, err := NewPebbleStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := NewPostgresStore(ctx, cfg.DSN, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := NewMongoStore(ctx, cfg.URL, cfg.Database, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverCouchDB:
		s, err := NewCouchStore(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrStore, ErrUnknownDriver, cfg.Driver)
	}
}
