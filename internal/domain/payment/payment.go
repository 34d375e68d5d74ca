// Package payment holds the append-only payment audit trail. One record is
// written per successful installment payment; nothing in the application
// updates or deletes a record once written.
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"loantrack/internal/pkg/dates"
)

type Payment struct {
	ID     int64
	LoanID int64
	Amount decimal.Decimal
	// PaymentDate is the instant the payment was applied.
	PaymentDate time.Time
	// ReferenceDueDate is the due date of the installment the payment covered.
	ReferenceDueDate dates.Date
	Notes            string
	CreatedAt        time.Time
}
