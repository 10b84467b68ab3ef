package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets issued per event",
		},
		[]string{"event_id"},
	)

	purchaseRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_rejections_total",
			Help: "Rejected purchase attempts by reason",
		},
		[]string{"reason"},
	)

	checkinOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_outcomes_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	inventoryReleases = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_releases_total",
			Help: "Inventory released back by cancellations and refunds",
		},
	)

	purchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchase_duration_seconds",
			Help:    "Duration of the purchase transaction",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)
)

// TicketsIssued records n tickets issued for an event.
func TicketsIssued(eventID string, n int) {
	ticketsIssued.WithLabelValues(eventID).Add(float64(n))
}

// PurchaseRejected records a rejected purchase attempt.  Reason is one
// of the user-facing error names (insufficient_inventory,
// event_not_published, ...).
func PurchaseRejected(reason string) {
	purchaseRejections.WithLabelValues(reason).Inc()
}

// CheckinOutcome records one redeem attempt by its outcome.
func CheckinOutcome(outcome string) {
	checkinOutcomes.WithLabelValues(outcome).Inc()
}

// InventoryReleased records inventory returned to a tier.
func InventoryReleased(n uint32) {
	inventoryReleases.Add(float64(n))
}

// ObservePurchase records the wall time of one purchase transaction.
func ObservePurchase(seconds float64) {
	purchaseDuration.Observe(seconds)
}
