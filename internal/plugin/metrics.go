// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for plugin load metrics.
const (
	StatusLoaded    = "loaded"
	StatusSkipped   = "skipped"
	StatusLoadError = "load_error"
	StatusInitError = "init_error"
)

// PluginLoads is the counter for plugin load attempts.
// Use RegisterMetrics to register this with a Prometheus registry.
var PluginLoads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "asyncapi_plugin_loads_total",
		Help: "Total number of plugin load attempts",
	},
	[]string{"source", "status"},
)

// RegisterMetrics registers plugin package metrics with the given
// Prometheus registry. Panics if registration fails (following prometheus
// convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(PluginLoads)
}

// RecordPluginLoad increments the plugin load counter.
func RecordPluginLoad(source Source, status string) {
	PluginLoads.WithLabelValues(string(source), status).Inc()
}
