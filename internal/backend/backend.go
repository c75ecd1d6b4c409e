// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"supatodo/internal/backend/postgrest"
	"supatodo/internal/backend/sqlite"
	"supatodo/internal/config"
	"supatodo/internal/service"
)

// ErrNotConfigured is returned by Open when the store's connection
// settings are missing. The returned service is nil in that case.
var ErrNotConfigured = errors.New("record store not configured")

// Open constructs the store handle once for the lifetime of the caller.
// Missing configuration yields (nil, ErrNotConfigured) rather than a hard
// failure so that surfaces can still start and report the problem.
func Open(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	switch cfg.Store {
	case config.StorePostgREST:
		c, err := postgrest.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store)
	}
}

// Close releases svc if the backend holds resources.
func Close(svc service.Service) error {
	if c, ok := svc.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
