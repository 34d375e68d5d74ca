package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loantrack/internal/pkg/apperrors"
)

type PaymentService interface {
	ListPayments(ctx context.Context, loanID int64) ([]Payment, error)
}

type paymentServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewPaymentService(r Repository, logger *slog.Logger) PaymentService {
	return &paymentServiceImpl{repo: r, logger: logger.With("component", "PaymentService")}
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context, loanID int64) ([]Payment, error) {
	s.logger.Info("Listing payment history", "loanID", loanID)
	payments, err := s.repo.ListByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to list payments", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to list payments for loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return payments, nil
}
