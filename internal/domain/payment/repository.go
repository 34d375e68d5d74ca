package payment

import "context"

type Repository interface {
	ListByLoanID(ctx context.Context, loanID int64) ([]Payment, error)
}
