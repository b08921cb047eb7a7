package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksAccepted counts ticks admitted into the window, labeled by
	// the source that produced them.
	TicksAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickstats_ticks_accepted_total",
		Help: "Ticks admitted into the sliding window.",
	}, []string{"source"})

	// TicksRejected counts ticks dropped before ingestion, labeled by
	// reason ("too_old" or "invalid").
	TicksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickstats_ticks_rejected_total",
		Help: "Ticks dropped before reaching the window.",
	}, []string{"reason"})

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickstats_http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"route", "code"})
)
