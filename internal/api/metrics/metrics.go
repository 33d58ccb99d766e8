// Package metrics defines the custom Prometheus metrics of the forms API.
// It is the single source of truth for metric names, labels and help strings.
//
// Build one Metrics per registry with New; the router owns the registry so
// tests can create as many routers as they like.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forms"

// Label values shared by handlers and middleware.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultConflict           = "conflict"
	ResultInvalid            = "invalid"
	ResultError              = "error"

	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

type Metrics struct {
	// LoginsTotal counts password logins.
	// Label result: success, invalid_credentials, error.
	LoginsTotal *prometheus.CounterVec

	// RegistrationsTotal counts sign-ups.
	// Label result: success, conflict, invalid, error.
	RegistrationsTotal *prometheus.CounterVec

	SessionsCreatedTotal   prometheus.Counter
	SessionsDestroyedTotal prometheus.Counter

	// AuthorizationDeniedTotal counts requests rejected before the handler ran.
	// Labels route (the registered path) and reason (unauthenticated, forbidden).
	AuthorizationDeniedTotal *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of password login attempts, by result.",
			},
			[]string{"result"},
		),
		RegistrationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of registration attempts, by result.",
			},
			[]string{"result"},
		),
		SessionsCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created at login.",
		}),
		SessionsDestroyedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_destroyed_total",
			Help:      "Total number of sessions destroyed at logout.",
		}),
		AuthorizationDeniedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_denied_total",
				Help:      "Total number of requests denied by authentication or role checks.",
			},
			[]string{"route", "reason"},
		),
	}
}
