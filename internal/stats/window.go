package stats

import (
	"math"

	"tickstats/internal/domain"
)

// WindowSeconds is the length of the trailing window. Fixed at build
// time; the ring size and the admission check both derive from it.
const WindowSeconds = 60

// Window keeps a ring of per-second buckets plus running totals, so a
// snapshot never rescans ticks. Record is O(1): a slot that has been
// idle for years is reclaimed the same way as one that is a second
// stale, because only the slot's own stored second is compared.
//
// Window is not safe for concurrent use on its own; Engine serializes
// access.
type Window struct {
	buckets [WindowSeconds]bucket
	sum     float64
	count   int64
	min     float64
	max     float64
}

func NewWindow() *Window {
	w := &Window{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
	return w
}

// Record folds one price into the bucket for epochSec, evicting the
// slot's previous second from the running totals if it held data.
//
// Running min/max only tighten here; they are not re-derived when a
// bucket is evicted, so an extreme can outlive its window until a
// tighter value arrives (see DESIGN.md).
func (w *Window) Record(price float64, epochSec int64) {
	b := &w.buckets[epochSec%WindowSeconds]
	if b.epochSec != epochSec {
		if b.count > 0 {
			w.sum -= b.sum
			w.count -= b.count
		}
		b.reset(epochSec)
	}
	b.accumulate(price)

	w.sum += price
	w.count++
	if price < w.min {
		w.min = price
	}
	if price > w.max {
		w.max = price
	}
}

// Snapshot returns the running totals. With no live ticks the result
// is all zeros; count must never be used as a divisor when it is zero.
func (w *Window) Snapshot() domain.Statistics {
	if w.count == 0 {
		return domain.Statistics{}
	}
	return domain.Statistics{
		Avg:   w.sum / float64(w.count),
		Max:   w.max,
		Min:   w.min,
		Count: w.count,
	}
}
