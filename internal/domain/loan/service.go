package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"loantrack/internal/domain/payment"
	"loantrack/internal/event"
	"loantrack/internal/infrastructure/monitoring"
	"loantrack/internal/pkg/apperrors"
	"loantrack/internal/pkg/dates"
)

type CreateLoanInput struct {
	NewLoanParams
	// PreMarkedPaid lists installment sequence numbers to create already paid,
	// used when importing a loan that has prior payment history.
	PreMarkedPaid []int
}

type LoanService interface {
	CreateLoan(ctx context.Context, input CreateLoanInput) (*Loan, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, activeOnly bool) ([]Loan, error)

	PayInstallment(ctx context.Context, installmentID int64, method, notes string) (*Installment, error)

	RegenerateInstallments(ctx context.Context, loanID int64, count int) (*Loan, error)

	UpdateInstallment(ctx context.Context, installmentID int64, lateFee *decimal.Decimal, notes *string) (*Installment, error)

	DeactivateLoan(ctx context.Context, loanID int64) error

	ListInstallmentsDueOn(ctx context.Context, due dates.Date) ([]DueInstallment, error)
}

type loanServiceImpl struct {
	repo      Repository
	publisher event.Publisher
	logger    *slog.Logger
}

func NewLoanService(r Repository, publisher event.Publisher, logger *slog.Logger) LoanService {
	return &loanServiceImpl{repo: r, publisher: publisher, logger: logger.With("component", "LoanService")}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, input CreateLoanInput) (*Loan, error) {
	s.logger.Info("Creating new loan", "bank", input.BankName, "installments", input.InstallmentCount)

	newLoan, err := NewLoan(input.NewLoanParams)
	if err != nil {
		s.logger.Error("Failed to build loan object", "error", err)
		return nil, err
	}

	installments, err := newLoan.BuildInstallments(input.PreMarkedPaid, time.Now())
	if err != nil {
		s.logger.Error("Failed to generate installments", "error", err)
		return nil, err
	}
	if len(installments) < newLoan.InstallmentCount {
		s.logger.Warn("Schedule truncated at loan end date",
			"requested", newLoan.InstallmentCount, "generated", len(installments))
	}

	createdLoan, err := s.repo.CreateLoan(ctx, newLoan, installments)
	if err != nil {
		s.logger.Error("Failed to save loan and installments", "error", err)
		return nil, fmt.Errorf("failed to save loan and installments: %w", err)
	}

	monitoring.RecordLoanCreated()
	s.logger.Info("Loan created successfully", "loanID", createdLoan.ID, "installments", len(createdLoan.Installments))
	return createdLoan, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.Info("Getting loan details", "loanID", loanID)
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to get loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	installments, err := s.repo.GetInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		s.logger.Error("Failed to get loan installments", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to get installments for loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	l.Installments = installments
	return l, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context, activeOnly bool) ([]Loan, error) {
	s.logger.Info("Listing loans", "activeOnly", activeOnly)
	loans, err := s.repo.ListLoans(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Failed to list loans", "error", err)
		return nil, fmt.Errorf("%w: failed to list loans: %v", apperrors.ErrInternalServer, err)
	}
	return loans, nil
}

// PayInstallment applies a payment to one installment. Marking the installment
// paid, appending the audit record and the possible loan deactivation cascade
// all happen inside one transaction; any failure rolls everything back.
func (s *loanServiceImpl) PayInstallment(ctx context.Context, installmentID int64, method, notes string) (inst *Installment, err error) {
	s.logger.Info("Paying installment", "installmentID", installmentID)
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, apperrors.ErrAlreadyPaid):
			status = "failure_already_paid"
		case errors.Is(err, apperrors.ErrNotFound):
			status = "failure_not_found"
		case err != nil:
			status = "failure_internal"
		}
		monitoring.RecordPayment(status)

		if p := recover(); p != nil {
			s.logger.Error("Panic occurred during payment processing", "installmentID", installmentID, "error", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			s.logger.Error("Rolling back payment transaction", "installmentID", installmentID, "error", err)
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	entry, err := s.repo.FindInstallmentForUpdate(ctx, tx, installmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: installment with ID %d not found", apperrors.ErrNotFound, installmentID)
		}
		return nil, fmt.Errorf("%w: could not load installment for payment: %v", apperrors.ErrInternalServer, err)
	}

	if entry.IsPaid {
		return nil, fmt.Errorf("%w: installment #%d of loan %d", apperrors.ErrAlreadyPaid, entry.Sequence, entry.LoanID)
	}

	now := time.Now()
	entry.IsPaid = true
	entry.PaidDate = &now
	entry.UpdatedAt = now

	if err = s.repo.MarkInstallmentPaidInTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("%w: could not mark installment paid: %v", apperrors.ErrInternalServer, err)
	}

	if method == "" {
		method = "unspecified"
	}
	record := &payment.Payment{
		LoanID:           entry.LoanID,
		Amount:           entry.Amount,
		PaymentDate:      now,
		ReferenceDueDate: entry.DueDate,
		Notes:            fmt.Sprintf("Installment #%d payment. Method: %s. %s", entry.Sequence, method, notes),
	}
	if err = s.repo.InsertPaymentInTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("%w: could not append payment record: %v", apperrors.ErrInternalServer, err)
	}

	remaining, err := s.repo.CountUnpaidInTx(ctx, tx, entry.LoanID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not count remaining unpaid installments: %v", apperrors.ErrInternalServer, err)
	}

	paidOff := remaining == 0
	if paidOff {
		if err = s.repo.SetLoanActiveInTx(ctx, tx, entry.LoanID, false); err != nil {
			return nil, fmt.Errorf("%w: could not deactivate fully paid loan: %v", apperrors.ErrInternalServer, err)
		}
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit payment transaction: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.Info("Payment processed successfully",
		"installmentID", installmentID, "loanID", entry.LoanID, "amount", entry.Amount.StringFixed(2), "paidOff", paidOff)

	if paidOff {
		monitoring.RecordLoanPaidOff()
		publishErr := s.publisher.PublishLoanPaidOff(ctx, event.LoanPaidOffEvent{
			LoanID:        entry.LoanID,
			InstallmentID: entry.ID,
			PaidAt:        now,
		})
		if publishErr != nil {
			s.logger.Error("Failed to publish loan paid off event", "loanID", entry.LoanID, "error", publishErr)
		}
	}

	return entry, nil
}

// RegenerateInstallments rebuilds the schedule of a loan that currently has no
// installments. The loan's terms are recomputed for the requested count; a
// loan that already has installments is rejected with ErrConflict.
func (s *loanServiceImpl) RegenerateInstallments(ctx context.Context, loanID int64, count int) (*Loan, error) {
	s.logger.Info("Regenerating installments", "loanID", loanID, "count", count)

	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	if count < 1 {
		count = l.InstallmentCount
	}

	payment, finalTotal, err := ComputeTerms(l.AmortizationMode, l.PrincipalAmount, l.AnnualInterestRate, count)
	if err != nil {
		return nil, err
	}
	l.InstallmentCount = count
	l.InstallmentAmount = payment
	l.FinalTotalAmount = finalTotal

	installments, err := l.BuildInstallments(nil, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.RegenerateInstallments(ctx, l, installments); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Warn("Loan already has installments, refusing to regenerate", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan %d already has installments", apperrors.ErrConflict, loanID)
		}
		s.logger.Error("Failed to regenerate installments", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("%w: failed to regenerate installments for loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	return s.GetLoan(ctx, loanID)
}

// UpdateInstallment edits an installment's late fee and notes. Paid state is
// deliberately not editable here; it belongs to PayInstallment alone.
func (s *loanServiceImpl) UpdateInstallment(ctx context.Context, installmentID int64, lateFee *decimal.Decimal, notes *string) (*Installment, error) {
	s.logger.Info("Updating installment details", "installmentID", installmentID)

	if lateFee == nil && notes == nil {
		return nil, apperrors.NewValidationError("", "nothing to update")
	}
	if lateFee != nil && lateFee.IsNegative() {
		return nil, apperrors.NewValidationError("lateFee", "must not be negative")
	}

	inst, err := s.repo.UpdateInstallmentDetails(ctx, installmentID, lateFee, notes)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: installment with ID %d not found", apperrors.ErrNotFound, installmentID)
		}
		return nil, fmt.Errorf("%w: failed to update installment %d: %v", apperrors.ErrInternalServer, installmentID, err)
	}
	return inst, nil
}

// DeactivateLoan is the explicit soft delete. Paid installments and the
// payment trail survive it.
func (s *loanServiceImpl) DeactivateLoan(ctx context.Context, loanID int64) error {
	s.logger.Info("Deactivating loan", "loanID", loanID)
	if err := s.repo.DeactivateLoan(ctx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to deactivate loan", "loanID", loanID, "error", err)
		return fmt.Errorf("%w: failed to deactivate loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return nil
}

func (s *loanServiceImpl) ListInstallmentsDueOn(ctx context.Context, due dates.Date) ([]DueInstallment, error) {
	s.logger.Info("Listing installments due", "date", due.String())
	installments, err := s.repo.FindDueUnpaidOn(ctx, due)
	if err != nil {
		s.logger.Error("Failed to list due installments", "date", due.String(), "error", err)
		return nil, fmt.Errorf("%w: failed to list installments due on %s: %v", apperrors.ErrInternalServer, due, err)
	}
	return installments, nil
}
