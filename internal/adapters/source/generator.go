package source

import (
	"context"
	"math/rand"
	"time"

	"tickstats/internal/domain"
)

// GeneratorSource emits synthetic random-walk ticks for a fixed set of
// instruments. Used in test mode and for load generation.
type GeneratorSource struct {
	name        string
	instruments []string
	interval    time.Duration
}

func NewGeneratorSource(name string, instruments []string, interval time.Duration) *GeneratorSource {
	return &GeneratorSource{
		name:        name,
		instruments: instruments,
		interval:    interval,
	}
}

func (g *GeneratorSource) Name() string { return g.name }

// Start writes ticks to out until ctx is canceled.
func (g *GeneratorSource) Start(ctx context.Context, out chan<- domain.Tick) error {
	prices := make(map[string]float64, len(g.instruments))
	for _, id := range g.instruments {
		prices[id] = 50 + rand.Float64()*450
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, id := range g.instruments {
				// simple random walk
				delta := (rand.Float64() - 0.5) * 0.02 * prices[id]
				prices[id] += delta
				if prices[id] <= 0 {
					prices[id] = rand.Float64() * 10
				}
				select {
				case out <- domain.Tick{
					Instrument: id,
					Price:      prices[id],
					Timestamp:  now.UnixMilli(),
				}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
