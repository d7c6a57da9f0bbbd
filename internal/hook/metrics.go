// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for hook execution metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
	StatusPanic   = "panic"
)

// HookExecutions is the counter for individual handler invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var HookExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "asyncapi_hook_executions_total",
		Help: "Total number of hook handler invocations",
	},
	[]string{"hook", "status"},
)

// HookDuration is the histogram for handler invocation duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var HookDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "asyncapi_hook_duration_seconds",
		Help:    "Hook handler invocation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"hook"},
)

// RegisterMetrics registers hook package metrics with the given Prometheus
// registry. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HookExecutions)
	reg.MustRegister(HookDuration)
}

// RecordHookExecution increments the invocation counter.
func RecordHookExecution(hook, status string) {
	HookExecutions.WithLabelValues(hook, status).Inc()
}

// RecordHookDuration records the duration of a handler invocation.
func RecordHookDuration(hook string, d time.Duration) {
	HookDuration.WithLabelValues(hook).Observe(d.Seconds())
}
