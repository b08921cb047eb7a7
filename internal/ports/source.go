package ports

import (
	"context"

	"tickstats/internal/domain"
)

// TickSource produces ticks into out until ctx is canceled.
type TickSource interface {
	Name() string
	Start(ctx context.Context, out chan<- domain.Tick) error
}
