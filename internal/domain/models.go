package domain

import "time"

// Tick is one observed price event for an instrument. Timestamp is
// milliseconds since the Unix epoch, as reported by the producer.
type Tick struct {
	Instrument string  `json:"instrument"`
	Price      float64 `json:"price"`
	Timestamp  int64   `json:"timestamp"`
}

// Statistics is a point-in-time rollup over the trailing window.
// An all-zero value with Count == 0 means "no ticks in the window".
type Statistics struct {
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Count int64   `json:"count"`
}

// MinuteAggregate is one persisted per-instrument rollup row.
type MinuteAggregate struct {
	Instrument    string
	Ts            time.Time
	Avg, Min, Max float64
	Count         int64
}
