package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loantrack/internal/domain/payment"
	"loantrack/internal/infrastructure/monitoring"
	"loantrack/internal/pkg/apperrors"
	"loantrack/internal/pkg/dates"
)

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID int64) ([]payment.Payment, error) {
	query := `
        SELECT id, loan_id, amount, payment_date, reference_due_date, notes, created_at
        FROM payments
        WHERE loan_id = $1
        ORDER BY payment_date ASC, id ASC`
	status := "success"
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		monitoring.RecordDBQuery("ListPaymentsByLoanID", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query payments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]payment.Payment, 0)
	for rows.Next() {
		var p payment.Payment
		var refDue time.Time
		var notes *string
		err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &p.PaymentDate, &refDue, &notes, &p.CreatedAt)
		if err != nil {
			status = "error"
			monitoring.RecordDBQuery("ListPaymentsByLoanID", status, time.Since(startTime))
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		p.ReferenceDueDate = dates.FromTime(refDue, time.UTC)
		if notes != nil {
			p.Notes = *notes
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		monitoring.RecordDBQuery("ListPaymentsByLoanID", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("ListPaymentsByLoanID", status, time.Since(startTime))
	return payments, nil
}
