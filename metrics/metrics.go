// Package metrics exposes Prometheus counters for the protocol layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts JSON-RPC requests by method.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdex_rpc_requests_total",
		Help: "Total JSON-RPC requests processed, by method.",
	}, []string{"method"})

	// ToolCallsTotal counts tool invocations by tool name and outcome
	// (ok, error, unknown).
	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdex_tool_calls_total",
		Help: "Total tool calls executed, by tool and outcome.",
	}, []string{"tool", "outcome"})
)

// Handler returns the HTTP handler serving the Prometheus scrape
// endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
