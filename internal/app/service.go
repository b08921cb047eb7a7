package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tickstats/internal/domain"
	"tickstats/internal/metrics"
	"tickstats/internal/ports"
	"tickstats/internal/stats"
)

const workersPerSource = 5

// Service wires tick sources into the stats engine: per source a
// dispatcher fans ticks out to a small worker pool, workers validate
// and ingest, and accepted ticks fan in to a single cache writer.
type Service struct {
	logger  *slog.Logger
	engine  *stats.Engine
	cache   ports.Cache
	sources []ports.TickSource

	wg       sync.WaitGroup
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

func NewService(logger *slog.Logger, engine *stats.Engine, cache ports.Cache) *Service {
	return &Service{
		logger: logger,
		engine: engine,
		cache:  cache,
	}
}

func (s *Service) Engine() *stats.Engine { return s.engine }

func (s *Service) AttachSource(src ports.TickSource) {
	s.sources = append(s.sources, src)
}

// Ingest validates and records one tick. It reports false both for
// malformed ticks and for ticks older than the window; only well-formed
// ticks reach the engine.
func (s *Service) Ingest(t domain.Tick) bool {
	if t.Instrument == "" || t.Price <= 0 || t.Timestamp <= 0 {
		metrics.TicksRejected.WithLabelValues("invalid").Inc()
		return false
	}
	if !s.engine.Ingest(t.Instrument, t.Price, t.Timestamp) {
		metrics.TicksRejected.WithLabelValues("too_old").Inc()
		return false
	}
	return true
}

// StartSources launches the source pipelines. Each source gets its own
// dispatcher and workers; all accepted ticks converge on one goroutine
// that writes the cache.
func (s *Service) StartSources(ctx context.Context) {
	s.cancelMu.Lock()
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.cancelMu.Unlock()

	acceptedCh := make(chan domain.Tick, 4096) // fan-in

	// single cache writer
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-acceptedCh:
				if !ok {
					return
				}
				if err := s.cache.PushTick(ctx, t); err != nil {
					s.logger.Warn("cache push error", "err", err, "instrument", t.Instrument)
				}
			}
		}
	}()

	for _, src := range s.sources {
		inCh := make(chan domain.Tick, 1024)

		s.wg.Add(1)
		go func(src ports.TickSource, out chan<- domain.Tick) {
			defer s.wg.Done()
			defer close(out)
			if err := src.Start(ctx, out); err != nil && ctx.Err() == nil {
				s.logger.Error("source stopped", "source", src.Name(), "err", err)
			}
		}(src, inCh)

		workerIns := make([]chan domain.Tick, workersPerSource)
		for i := 0; i < workersPerSource; i++ {
			workerIns[i] = make(chan domain.Tick, 1024)

			s.wg.Add(1)
			go func(name string, in <-chan domain.Tick) {
				defer s.wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case t, ok := <-in:
						if !ok {
							return
						}
						if !s.Ingest(t) {
							continue
						}
						metrics.TicksAccepted.WithLabelValues(name).Inc()
						select {
						case acceptedCh <- t:
						case <-ctx.Done():
							return
						}
					}
				}
			}(src.Name(), workerIns[i])
		}

		// round-robin dispatcher; skips a full worker rather than block,
		// blocking only when every queue is full
		s.wg.Add(1)
		go func(in <-chan domain.Tick, outs []chan domain.Tick) {
			defer s.wg.Done()
			var idx int
			for {
				select {
				case <-ctx.Done():
					for _, c := range outs {
						close(c)
					}
					return
				case t, ok := <-in:
					if !ok {
						for _, c := range outs {
							close(c)
						}
						return
					}
					for i := 0; i < len(outs); i++ {
						pos := (idx + i) % len(outs)
						select {
						case outs[pos] <- t:
							idx = (pos + 1) % len(outs)
							goto dispatched
						default:
						}
					}
					outs[idx] <- t
					idx = (idx + 1) % len(outs)
				dispatched:
				}
			}
		}(inCh, workerIns)
	}

	// close the fan-in once everything upstream is done
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		// brief grace so workers can drain their buffers
		time.Sleep(50 * time.Millisecond)
		close(acceptedCh)
	}()
}

// StartFlusher periodically snapshots every known instrument and
// persists the non-empty rollups.
func (s *Service) StartFlusher(ctx context.Context, repo ports.Repository, interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rows := s.collectAggregates(now.Truncate(interval))
				if len(rows) == 0 {
					continue
				}
				if err := repo.InsertAggregates(ctx, rows); err != nil {
					s.logger.Warn("failed to insert aggregates", "err", err, "count", len(rows))
				} else {
					s.logger.Info("aggregates written", "count", len(rows))
				}
			}
		}
	}()
}

func (s *Service) collectAggregates(ts time.Time) []domain.MinuteAggregate {
	ids := s.engine.Instruments()
	rows := make([]domain.MinuteAggregate, 0, len(ids))
	for _, id := range ids {
		st := s.engine.SnapshotInstrument(id)
		if st.Count == 0 {
			continue
		}
		rows = append(rows, domain.MinuteAggregate{
			Instrument: id,
			Ts:         ts,
			Avg:        st.Avg,
			Min:        st.Min,
			Max:        st.Max,
			Count:      st.Count,
		})
	}
	return rows
}

func (s *Service) Stop() {
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelMu.Unlock()
	s.wg.Wait()
}
