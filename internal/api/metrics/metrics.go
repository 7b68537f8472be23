// Package metrics defines and registers all custom Prometheus metrics for the
// SMS rental API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smsrental"

// ── Rental metrics ────────────────────────────────────────────────────────────

// RentalsCreatedTotal counts successfully leased numbers.
// Label:
//   - service: the requested service code (e.g. "wa", "tg")
var RentalsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_created_total",
		Help:      "Total number of rentals created, by service code.",
	},
	[]string{"service"},
)

// RentalErrorsTotal counts failed rental creations.
// Label:
//   - reason: short failure class (e.g. "insufficient_balance", "no_numbers",
//     "rate_limited", "upstream_unknown")
var RentalErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rental_errors_total",
		Help:      "Total number of rental creations that failed, by reason.",
	},
	[]string{"reason"},
)

// ReservationsLeakedTotal counts upstream reservations that succeeded while
// the local debit failed. Each increment is a manual reconciliation item.
var ReservationsLeakedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_leaked_total",
		Help:      "Total number of upstream reservations left unpaid after a local debit failure.",
	},
)

// ── Settlement metrics ────────────────────────────────────────────────────────

// PollResultsTotal counts settlement poll outcomes.
// Label:
//   - result: "completed", "waiting", "cancelled", "expired", or "error"
var PollResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_results_total",
		Help:      "Total number of settlement polls, by result.",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerTransactionsTotal counts committed ledger entries.
// Label:
//   - kind: "credit", "debit", "refund", or "admin_adjustment"
var LedgerTransactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_transactions_total",
		Help:      "Total number of committed ledger transactions, by kind.",
	},
	[]string{"kind"},
)

// ── Provider metrics ──────────────────────────────────────────────────────────

// ProviderRequestsTotal counts upstream API calls.
// Labels:
//   - action: "getNumber", "getStatus", or "getBalance"
//   - outcome: the parsed outcome tag, or "transport_error"
var ProviderRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of upstream provider requests, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ProviderRequestDuration measures upstream call latency.
// Label:
//   - action: "getNumber", "getStatus", or "getBalance"
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of upstream provider HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)
