// Package metrics defines and registers all custom Prometheus metrics for the
// account service. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accountsvc"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "needs_verification", or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "conflict", or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"result"},
)

// VerificationsTotal counts verification-link redemptions by outcome.
// Label:
//   - result: "verified" or "invalid_key"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of verification token redemptions, by outcome.",
	},
	[]string{"result"},
)

// ResetsTotal counts password-reset operations.
// Labels:
//   - step: "request" or "complete"
//   - result: "ok", "invalid", or "denied"
var ResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset requests and completions, by outcome.",
	},
	[]string{"step", "result"},
)

// VerificationEmailsTotal counts dispatched verification emails, including
// resends.
var VerificationEmailsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_emails_total",
		Help:      "Total number of verification emails handed to the dispatcher.",
	},
)
