// Package metrics defines and registers all custom Prometheus metrics for
// the storefront API. It is the single source of truth for metric names,
// labels, and help strings; metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Purchase metrics ──────────────────────────────────────────────────────────

// PurchasesCommittedTotal counts fully committed purchases.
// Label:
//   - product: the catalog product name
var PurchasesCommittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_committed_total",
		Help:      "Total number of purchases that committed with all keys issued.",
	},
	[]string{"product"},
)

// PurchaseFailuresTotal counts purchase attempts that did not commit.
// Label:
//   - reason: "insufficient_balance", "issuance", "commit", or "duplicate"
var PurchaseFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_failures_total",
		Help:      "Total number of purchase attempts that failed, by reason.",
	},
	[]string{"reason"},
)

// KeysIssuedTotal counts keys successfully minted by the remote issuer.
// Label:
//   - duration: "1_day", "7_day", or "30_day"
var KeysIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keys_issued_total",
		Help:      "Total number of keys issued by the remote endpoint, by duration tier.",
	},
	[]string{"duration"},
)

// KeysLeakedTotal counts keys that were issued remotely but discarded
// because a later key in the same purchase failed and the whole amount was
// refunded.
var KeysLeakedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keys_leaked_total",
		Help:      "Total number of issued keys discarded by the full-refund policy.",
	},
)

// RefundsTotal counts compensating refunds after failed issuance.
var RefundsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Total number of full refunds credited after a failed purchase.",
	},
)

// KeyIssuanceDuration measures a single remote issuance call end-to-end.
// Label:
//   - duration: the requested tier
var KeyIssuanceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "key_issuance_duration_seconds",
		Help:      "Duration of individual remote key issuance calls.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"duration"},
)
