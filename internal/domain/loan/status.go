package loan

import "loantrack/internal/pkg/dates"

type InstallmentStatus string

const (
	StatusPending InstallmentStatus = "PENDING"
	StatusOverdue InstallmentStatus = "OVERDUE"
	StatusPaid    InstallmentStatus = "PAID"
)

// Classify derives an installment's display status at the reference date.
// Paid is terminal and wins over any date comparison; overdue is a purely
// time-derived reclassification that is never stored.
func Classify(dueDate dates.Date, isPaid bool, ref dates.Date) InstallmentStatus {
	if isPaid {
		return StatusPaid
	}
	if dueDate.Before(ref) {
		return StatusOverdue
	}
	return StatusPending
}
