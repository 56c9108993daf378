package simdb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleai_simdb",
			Name:      "requests_total",
			Help:      "SimDB API requests that completed successfully.",
		},
		[]string{"op"},
	)

	queriesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nucleai_simdb",
			Name:      "request_failures_total",
			Help:      "SimDB API requests that returned an error.",
		},
		[]string{"op"},
	)
)
