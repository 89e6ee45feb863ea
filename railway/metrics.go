package railway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "railway_upstream_requests_total",
	Help: "Requests issued against the 12306 endpoints, by operation and outcome.",
}, []string{"operation", "outcome"})
