package ports

import (
	"context"

	"tickstats/internal/domain"
)

// Cache keeps the last observed tick per instrument for the
// latest-price endpoint.
type Cache interface {
	PushTick(ctx context.Context, t domain.Tick) error
	GetLatest(ctx context.Context, instrument string) (domain.Tick, error)
	Health(ctx context.Context) error
	Close() error
}
