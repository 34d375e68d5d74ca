package loan

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"loantrack/internal/domain/payment"
	"loantrack/internal/pkg/dates"
)

// DueInstallment is an installment joined with the loan fields the reminder
// sweep needs to describe it.
type DueInstallment struct {
	Installment
	LoanCode string
	BankName string
}

type Repository interface {
	// CreateLoan inserts the loan row and its full installment set in a single
	// transaction.
	CreateLoan(ctx context.Context, newLoan *Loan, installments []Installment) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, activeOnly bool) ([]Loan, error)

	GetInstallmentsByLoanID(ctx context.Context, loanID int64) ([]Installment, error)

	// RegenerateInstallments updates the loan's terms and inserts a fresh
	// installment set, all in one transaction. Fails with ErrConflict when the
	// loan already has installments.
	RegenerateInstallments(ctx context.Context, updated *Loan, installments []Installment) error

	UpdateInstallmentDetails(ctx context.Context, installmentID int64, lateFee *decimal.Decimal, notes *string) (*Installment, error)

	DeactivateLoan(ctx context.Context, loanID int64) error

	// FindDueUnpaidOn returns unpaid installments of active loans due exactly
	// on the given date, for the reminder sweep.
	FindDueUnpaidOn(ctx context.Context, due dates.Date) ([]DueInstallment, error)

	FindInstallmentForUpdate(ctx context.Context, tx pgx.Tx, installmentID int64) (*Installment, error)

	MarkInstallmentPaidInTx(ctx context.Context, tx pgx.Tx, inst *Installment) error

	InsertPaymentInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error

	CountUnpaidInTx(ctx context.Context, tx pgx.Tx, loanID int64) (int, error)

	SetLoanActiveInTx(ctx context.Context, tx pgx.Tx, loanID int64, active bool) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
