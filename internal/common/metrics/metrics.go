// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ContactSubmissions besides error codes.
const (
	OutcomeSuccess = "success"
)

var (
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact submissions by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	ContactDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contact_delivery_duration_seconds",
			Help:    "Duration of forwarding an inquiry to its channel in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"channel", "status"},
	)

	ContactDeliveriesActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contact_deliveries_active",
			Help: "Number of inquiries currently being forwarded",
		},
		[]string{"channel"},
	)

	MailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_mails_sent_total",
			Help: "Mails handed to a mail transport, by channel, kind and status",
		},
		[]string{"channel", "kind", "status"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_wizard_transitions_total",
			Help: "Wizard actions by action and resulting state",
		},
		[]string{"action", "state"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency by route pattern",
		},
		[]string{"route"},
	)
)
