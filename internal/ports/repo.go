package ports

import (
	"context"

	"tickstats/internal/domain"
)

// Repository persists minute rollups.
type Repository interface {
	InsertAggregates(ctx context.Context, rows []domain.MinuteAggregate) error
	Health(ctx context.Context) error
	Close() error
}
