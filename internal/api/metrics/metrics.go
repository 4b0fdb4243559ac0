// Package metrics defines and registers all custom Prometheus metrics for the
// Farm Guardian API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "farm_guardian"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts sign-up attempts.
// Labels:
//   - role: "farmer" or "vet"
//   - result: "created", "invalid" or "conflict"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "accepted" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionRejectsTotal counts requests turned away by the session gate.
// Label:
//   - reason: "missing", "invalid", "revoked" or "user_gone"
var SessionRejectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejects_total",
		Help:      "Total number of rejected session tokens, by reason.",
	},
	[]string{"reason"},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// UploadsTotal counts files accepted or refused by the upload policy.
// Labels:
//   - field: form field name (e.g. "license", "profileImage")
//   - result: "stored", "rejected" or "failed"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of uploaded files, by form field and result.",
	},
	[]string{"field", "result"},
)

// ── Assessment metrics ────────────────────────────────────────────────────────

// AssessmentsTotal counts scored questionnaires.
// Label:
//   - risk_level: "High", "Medium" or "Low"
var AssessmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_total",
		Help:      "Total number of biosecurity assessments, by resulting risk level.",
	},
	[]string{"risk_level"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts domain events handed to the publisher.
// Labels:
//   - type: event type (e.g. "user.registered")
//   - result: "ok", "error" or "dropped"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain events published, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long a single publish takes.
// Label:
//   - type: event type
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of a single event publish from dequeue to broker ack.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
