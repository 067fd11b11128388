package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsTotal counts dispatched actions.
	// Labels: method, action, outcome (page, success, error, invalid, noop, render_failed)
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pm",
			Subsystem: "project",
			Name:      "actions_total",
			Help:      "Total number of project controller actions by outcome",
		},
		[]string{"method", "action", "outcome"},
	)

	// ActionDuration tracks how long an action takes, rendering included.
	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pm",
			Subsystem: "project",
			Name:      "action_duration_seconds",
			Help:      "Duration of project controller actions in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "action"},
	)
)
