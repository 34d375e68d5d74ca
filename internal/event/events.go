package event

import (
	"context"
	"time"
)

// InstallmentDueEvent is published by the daily sweep for every unpaid
// installment of an active loan that falls due on the sweep date. Downstream
// consumers (reminder delivery, dashboards) decide what to do with it.
type InstallmentDueEvent struct {
	InstallmentID int64     `json:"installmentId"`
	LoanID        int64     `json:"loanId"`
	LoanCode      string    `json:"loanCode,omitempty"`
	BankName      string    `json:"bankName"`
	Sequence      int       `json:"sequence"`
	DueDate       string    `json:"dueDate"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// LoanPaidOffEvent is published after a payment transaction commits having
// flipped the loan's active flag off.
type LoanPaidOffEvent struct {
	LoanID        int64     `json:"loanId"`
	LoanCode      string    `json:"loanCode,omitempty"`
	InstallmentID int64     `json:"installmentId"`
	PaidAt        time.Time `json:"paidAt"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishInstallmentDue(ctx context.Context, event InstallmentDueEvent) error
	PublishLoanPaidOff(ctx context.Context, event LoanPaidOffEvent) error
}
