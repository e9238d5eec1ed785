// Package metrics exposes the core's operational counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "kikoba_"

var (
	// TransactionsAppended counts ledger appends by kind and category.
	TransactionsAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "transactions_appended_total",
			Help: "Total ledger transactions appended, by kind and category",
		},
		[]string{"kind", "category"},
	)

	// LoanRequests counts loan request lifecycle events.
	LoanRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "loan_requests_total",
			Help: "Total loan request events, by outcome (submitted/approved/rejected)",
		},
		[]string{"outcome"},
	)

	// PenaltiesApplied counts overdue-loan surcharges.
	PenaltiesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "penalties_applied_total",
			Help: "Total overdue Dharura penalties applied",
		},
	)

	// BulkRows counts bulk import rows by outcome.
	BulkRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "bulk_rows_total",
			Help: "Total bulk import rows processed, by outcome",
		},
		[]string{"outcome"},
	)

	// OutstandingLoans tracks members that still owe, per category. Set by
	// the reminder summary job.
	OutstandingLoans = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "outstanding_loans",
			Help: "Members with an outstanding loan balance, by category",
		},
		[]string{"category"},
	)
)
