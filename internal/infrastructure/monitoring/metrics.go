package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal     prometheus.Counter
	PaymentsTotal         *prometheus.CounterVec
	LoansPaidOffTotal     prometheus.Counter
	DueRemindersSweepLast prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loantrack_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loantrack_loans_created_total",
				Help: "Total number of loans created with their installment schedule.",
			},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loantrack_payments_total",
				Help: "Total number of installment payment attempts by outcome.",
			},
			[]string{"status"},
		),
		LoansPaidOffTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loantrack_loans_paid_off_total",
				Help: "Total number of loans auto-deactivated by paying the final installment.",
			},
		),
		DueRemindersSweepLast: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loantrack_due_reminder_sweep_installments",
				Help: "Number of due installments found by the most recent reminder sweep.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanPaidOff() {
	Business.LoansPaidOffTotal.Inc()
}

func RecordDueSweep(count int) {
	Business.DueRemindersSweepLast.Set(float64(count))
}
