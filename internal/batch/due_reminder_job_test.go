package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loantrack/internal/batch"
	"loantrack/internal/domain/loan"
	"loantrack/internal/event"
	"loantrack/internal/pkg/dates"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, input loan.CreateLoanInput) (*loan.Loan, error) {
	args := m.Called(ctx, input)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, activeOnly bool) ([]loan.Loan, error) {
	args := m.Called(ctx, activeOnly)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) PayInstallment(ctx context.Context, installmentID int64, method, notes string) (*loan.Installment, error) {
	args := m.Called(ctx, installmentID, method, notes)
	if inst, ok := args.Get(0).(*loan.Installment); ok {
		return inst, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RegenerateInstallments(ctx context.Context, loanID int64, count int) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, count)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) UpdateInstallment(ctx context.Context, installmentID int64, lateFee *decimal.Decimal, notes *string) (*loan.Installment, error) {
	args := m.Called(ctx, installmentID, lateFee, notes)
	if inst, ok := args.Get(0).(*loan.Installment); ok {
		return inst, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DeactivateLoan(ctx context.Context, loanID int64) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockLoanService) ListInstallmentsDueOn(ctx context.Context, due dates.Date) ([]loan.DueInstallment, error) {
	args := m.Called(ctx, due)
	if entries, ok := args.Get(0).([]loan.DueInstallment); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishInstallmentDue(ctx context.Context, e event.InstallmentDueEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) PublishLoanPaidOff(ctx context.Context, e event.LoanPaidOffEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func newJobForTest() (*MockLoanService, *MockPublisher, *batch.DueReminderJob) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockLoanService)
	mockPublisher := new(MockPublisher)
	job := batch.NewDueReminderJob(mockService, mockPublisher, time.UTC, logger)
	return mockService, mockPublisher, job
}

func dueEntry(id, loanID int64, sequence int) loan.DueInstallment {
	return loan.DueInstallment{
		Installment: loan.Installment{
			ID:       id,
			LoanID:   loanID,
			Sequence: sequence,
			DueDate:  dates.Today(time.UTC),
			Amount:   decimal.NewFromFloat(1066.19),
		},
		LoanCode: "BCP-001",
		BankName: "Banco Central",
	}
}

func TestDueReminderJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one event per due installment", func(t *testing.T) {
		mockService, mockPublisher, job := newJobForTest()
		today := dates.Today(time.UTC)

		entries := []loan.DueInstallment{dueEntry(1, 10, 3), dueEntry(2, 11, 5)}
		mockService.On("ListInstallmentsDueOn", ctx, today).Return(entries, nil)
		mockPublisher.On("PublishInstallmentDue", ctx, mock.Anything).Return(nil)

		err := job.Run(ctx)
		assert.NoError(t, err)

		mockService.AssertExpectations(t)
		mockPublisher.AssertNumberOfCalls(t, "PublishInstallmentDue", 2)
	})

	t.Run("handles no installments due today", func(t *testing.T) {
		mockService, mockPublisher, job := newJobForTest()
		today := dates.Today(time.UTC)

		mockService.On("ListInstallmentsDueOn", ctx, today).Return([]loan.DueInstallment{}, nil)

		err := job.Run(ctx)
		assert.NoError(t, err)

		mockService.AssertExpectations(t)
		mockPublisher.AssertNotCalled(t, "PublishInstallmentDue", mock.Anything, mock.Anything)
	})

	t.Run("aborts when the listing fails", func(t *testing.T) {
		mockService, mockPublisher, job := newJobForTest()
		today := dates.Today(time.UTC)

		mockService.On("ListInstallmentsDueOn", ctx, today).Return(nil, errors.New("query timeout"))

		err := job.Run(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list due installments")

		mockService.AssertExpectations(t)
		mockPublisher.AssertNotCalled(t, "PublishInstallmentDue", mock.Anything, mock.Anything)
	})

	t.Run("reports publish failures in the job result", func(t *testing.T) {
		mockService, mockPublisher, job := newJobForTest()
		today := dates.Today(time.UTC)

		entries := []loan.DueInstallment{dueEntry(1, 10, 3), dueEntry(2, 11, 5)}
		mockService.On("ListInstallmentsDueOn", ctx, today).Return(entries, nil)
		mockPublisher.On("PublishInstallmentDue", ctx, mock.Anything).Return(errors.New("broker unavailable"))

		err := job.Run(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "2 errors")

		mockService.AssertExpectations(t)
		mockPublisher.AssertNumberOfCalls(t, "PublishInstallmentDue", 2)
	})
}
