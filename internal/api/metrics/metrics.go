// Package metrics defines and registers the custom Prometheus metrics for the
// marketplace auth API. It is the single source of truth for metric names,
// labels and help strings.
//
// All metrics are registered with the default Prometheus registry on package
// initialisation via promauto. HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bazaar/marketplace-api/internal/core/domain"
)

const namespace = "marketplace"

// ── Auth flow metrics ─────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or a failure reason from domain.Reason (e.g. "invalid_credentials")
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful registrations.
// Label:
//   - role: "customer", "seller" or "admin"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// TokenRefreshTotal counts access-token refresh requests.
// Label:
//   - result: "success" or a failure reason from domain.Reason
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh requests, by result.",
	},
	[]string{"result"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardRejectionsTotal counts requests rejected by the session guard.
// Label:
//   - reason: e.g. "missing_header", "expired", "revoked", "forbidden"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditFailuresTotal counts audit events that were dropped or failed to persist.
// Label:
//   - reason: "queue_full", "closed" or "store"
var AuditFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Total number of auth audit events dropped or not persisted.",
	},
	[]string{"reason"},
)

// Result returns "success" for a nil error and domain.Reason(err) otherwise.
func Result(err error) string {
	if err == nil {
		return "success"
	}
	return domain.Reason(err)
}
