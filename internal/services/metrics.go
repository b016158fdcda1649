// Package services – domain metrics
//
// Prometheus counters for booking outcomes. Labels are limited to the
// business id, which is bounded by configuration, to keep cardinality low.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// bookingsConfirmed counts successful booking commits per business.
	bookingsConfirmed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_confirmed_total",
			Help: "Total number of confirmed bookings.",
		},
		[]string{"business"},
	)

	// slotConflicts counts commits and reinstates that lost the race for an
	// already-confirmed slot.
	slotConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_slot_conflicts_total",
			Help: "Total number of booking attempts rejected by the slot-uniqueness constraint.",
		},
		[]string{"business"},
	)

	// conversationTurns counts conversation turns per business.
	conversationTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total number of conversation turns handled.",
		},
		[]string{"business"},
	)
)

func init() {
	prometheus.MustRegister(bookingsConfirmed, slotConflicts, conversationTurns)
}
