package stats

import "math"

// bucket accumulates all ticks whose timestamp maps to one epoch second.
// The ring reuses buckets in place; epochSec 0 means "never used".
type bucket struct {
	epochSec int64
	sum      float64
	count    int64
	min      float64
	max      float64
}

func (b *bucket) reset(epochSec int64) {
	b.epochSec = epochSec
	b.sum = 0
	b.count = 0
	b.min = math.Inf(1)
	b.max = math.Inf(-1)
}

// accumulate assumes the bucket already represents the tick's second;
// callers reset stale buckets first.
func (b *bucket) accumulate(price float64) {
	b.sum += price
	b.count++
	if price < b.min {
		b.min = price
	}
	if price > b.max {
		b.max = price
	}
}
