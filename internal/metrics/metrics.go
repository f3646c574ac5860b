// Package metrics holds the prometheus collectors shared across the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path and status code.",
		},
		[]string{"path", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	WalletCreations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_registry_creations_total",
			Help: "Wallet registry create calls by outcome (created, exists, failed).",
		},
		[]string{"outcome"},
	)

	AgentQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_queries_total",
			Help: "Agent queries by outcome (ok, failed).",
		},
		[]string{"outcome"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		HTTPRequests, HTTPDuration, WalletCreations, AgentQueries,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
