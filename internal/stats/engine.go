package stats

import (
	"sync"
	"time"

	"tickstats/internal/domain"
)

// Engine is the externally visible façade: one global window, one
// per-instrument registry, and a single mutex serializing every ingest
// and snapshot. Coarse locking is deliberate — each operation is O(1),
// and one critical section per call rules out torn reads of the
// sum/count/min/max set.
type Engine struct {
	mu       sync.Mutex
	global   *Window
	registry *Registry

	// now is swappable so the admission window and bucket eviction can
	// be tested without sleeping.
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{
		global:   NewWindow(),
		registry: NewRegistry(),
		now:      time.Now,
	}
}

// Ingest records one tick into the global window and the instrument's
// window as a single atomic unit. It reports false, without mutating
// any state, when the tick's timestamp has already fallen out of the
// trailing window. Timestamps slightly ahead of the engine's clock are
// admitted; that slack absorbs producer clock skew.
func (e *Engine) Ingest(instrument string, price float64, tsMillis int64) bool {
	nowMs := e.now().UnixMilli()
	if tsMillis <= nowMs-WindowSeconds*1000 {
		return false
	}
	epochSec := tsMillis / 1000

	e.mu.Lock()
	defer e.mu.Unlock()
	e.global.Record(price, epochSec)
	e.registry.GetOrCreate(instrument).Record(price, epochSec)
	return true
}

// SnapshotAll returns the trailing-window statistics across every
// instrument.
func (e *Engine) SnapshotAll() domain.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.global.Snapshot()
}

// SnapshotInstrument returns the trailing-window statistics for one
// instrument. Unknown instruments yield the empty result.
func (e *Engine) SnapshotInstrument(instrument string) domain.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	w := e.registry.Lookup(instrument)
	if w == nil {
		return domain.Statistics{}
	}
	return w.Snapshot()
}

// Instruments lists every identifier the engine has seen.
func (e *Engine) Instruments() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Instruments()
}
