// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package command

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome constants for not-found resolution metrics.
const (
	OutcomeHelped      = "helped"
	OutcomeEmpty       = "empty"
	OutcomePrimary     = "resolved_primary"
	OutcomeAlternative = "resolved_alternative"
	OutcomeFailed      = "failed"
)

// NotFoundResolutions counts not-found workflow outcomes.
// Use RegisterMetrics to register this with a Prometheus registry.
var NotFoundResolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "asyncapi_command_not_found_total",
		Help: "Total number of command-not-found resolutions by outcome",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers command package metrics with the given
// Prometheus registry. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(NotFoundResolutions)
}

// RecordResolution records one workflow outcome.
func RecordResolution(outcome string) {
	NotFoundResolutions.WithLabelValues(outcome).Inc()
}
