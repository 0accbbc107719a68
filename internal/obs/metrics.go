package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsTotal      = promauto.NewCounter(prometheus.CounterOpts{Name: "codeopen_connections_total", Help: "Connections accepted"})
	RequestsTotal         = promauto.NewCounterVec(prometheus.CounterOpts{Name: "codeopen_requests_total", Help: "Decoded requests by kind"}, []string{"kind"})
	AliasResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "codeopen_alias_resolutions_total", Help: "Alias lookups by outcome"}, []string{"outcome"})
	ErrorsTotal           = promauto.NewCounterVec(prometheus.CounterOpts{Name: "codeopen_errors_total", Help: "Errors by type"}, []string{"type"})
	AliasEntries          = promauto.NewGauge(prometheus.GaugeOpts{Name: "codeopen_alias_entries", Help: "Entries in the loaded alias table"})
	DispatchSeconds       = promauto.NewHistogram(prometheus.HistogramOpts{Name: "codeopen_dispatch_seconds", Help: "Time from accept to editor launch", Buckets: prometheus.ExponentialBuckets(0.001, 2, 14)})
)
