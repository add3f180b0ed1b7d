// Package metrics defines and registers the custom Prometheus metrics for
// the accounts API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// LoginsTotal counts login attempts that reached the credential check.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LockoutRejectionsTotal counts requests rejected by the brute-force
// lockout before the handler ran.
var LockoutRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockout_rejections_total",
		Help:      "Total number of requests rejected by the brute-force lockout.",
	},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "invalid", or "duplicate"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer-token verification outcomes.
// Label:
//   - result: "valid" or "invalid"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// DeletionsTotal counts accounts removed through the admin endpoint.
var DeletionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletions_total",
		Help:      "Total number of accounts deleted by administrators.",
	},
)
