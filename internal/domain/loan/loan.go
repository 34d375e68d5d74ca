package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loantrack/internal/pkg/apperrors"
	"loantrack/internal/pkg/dates"
)

// reconciliationTolerance is the maximum accepted drift between the sum of a
// full installment set and the loan's computed final total.
var reconciliationTolerance = decimal.NewFromFloat(0.01)

type Loan struct {
	ID                 int64
	LoanCode           string
	BankName           string
	LoanType           string
	PrincipalAmount    decimal.Decimal
	AnnualInterestRate decimal.Decimal
	AmortizationMode   AmortizationMode
	InstallmentCount   int
	Strategy           PaymentStrategy
	StartDate          dates.Date
	EndDate            dates.Date
	InstallmentAmount  decimal.Decimal
	FinalTotalAmount   decimal.Decimal
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Installments       []Installment
}

type Installment struct {
	ID        int64
	LoanID    int64
	Sequence  int
	DueDate   dates.Date
	Amount    decimal.Decimal
	IsPaid    bool
	PaidDate  *time.Time
	LateFee   decimal.NullDecimal
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the display status of the installment at the reference date.
func (i Installment) Status(ref dates.Date) InstallmentStatus {
	return Classify(i.DueDate, i.IsPaid, ref)
}

type NewLoanParams struct {
	LoanCode            string
	BankName            string
	LoanType            string
	Principal           decimal.Decimal
	AnnualInterestRate  decimal.Decimal
	AmortizationMode    string
	InstallmentCount    int
	PaymentType         string
	StartDate           dates.Date
	EndDate             dates.Date
}

// NewLoan validates the parameters, decodes the payment-type descriptor into a
// strategy and computes the loan's payment terms. The installment set is built
// separately via BuildInstallments so both can be persisted in one transaction.
func NewLoan(p NewLoanParams) (*Loan, error) {
	if !p.Principal.IsPositive() {
		return nil, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if p.AnnualInterestRate.IsNegative() || p.AnnualInterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.NewValidationError("annualInterestRate", "must be between 0 and 100")
	}
	if p.InstallmentCount < 1 {
		return nil, apperrors.NewValidationError("installmentCount", "must be at least 1")
	}
	if p.StartDate.IsZero() {
		return nil, apperrors.NewValidationError("startDate", "is required")
	}
	if p.EndDate.IsZero() {
		return nil, apperrors.NewValidationError("endDate", "is required")
	}
	if !p.EndDate.After(p.StartDate) {
		return nil, apperrors.NewValidationError("endDate", "must be after start date")
	}
	if p.BankName == "" {
		return nil, apperrors.NewValidationError("bankName", "is required")
	}

	mode, err := ParseAmortizationMode(p.AmortizationMode)
	if err != nil {
		return nil, err
	}

	payment, finalTotal, err := ComputeTerms(mode, p.Principal, p.AnnualInterestRate, p.InstallmentCount)
	if err != nil {
		return nil, err
	}

	return &Loan{
		LoanCode:           p.LoanCode,
		BankName:           p.BankName,
		LoanType:           p.LoanType,
		PrincipalAmount:    p.Principal,
		AnnualInterestRate: p.AnnualInterestRate,
		AmortizationMode:   mode,
		InstallmentCount:   p.InstallmentCount,
		Strategy:           ParseStrategy(p.PaymentType),
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		InstallmentAmount:  payment,
		FinalTotalAmount:   finalTotal,
		Active:             true,
	}, nil
}

// BuildInstallments generates the loan's installment rows. Fewer rows than
// InstallmentCount may come back when the schedule truncates at the end date;
// callers must not assume the full count exists. Sequence numbers in
// preMarkedPaid are created already paid with now as their paid date, which is
// how loans with prior payment history are imported at creation.
func (l *Loan) BuildInstallments(preMarkedPaid []int, now time.Time) ([]Installment, error) {
	dueDates := l.Strategy.DueDates(l.StartDate, l.EndDate, l.InstallmentCount)

	paidSet := make(map[int]bool, len(preMarkedPaid))
	for _, seq := range preMarkedPaid {
		if seq < 1 || seq > len(dueDates) {
			return nil, apperrors.NewValidationError("paidInstallments",
				fmt.Sprintf("sequence %d is outside the generated schedule (1..%d)", seq, len(dueDates)))
		}
		paidSet[seq] = true
	}

	installments := make([]Installment, 0, len(dueDates))
	accumulated := decimal.Zero

	for idx, due := range dueDates {
		seq := idx + 1
		amount := l.InstallmentAmount

		// The final row of a complete schedule absorbs the rounding remainder
		// so the emitted sum reconciles with the computed final total. A
		// truncated schedule keeps flat amounts: its sum is deliberately short.
		if seq == l.InstallmentCount {
			amount = l.FinalTotalAmount.Sub(accumulated).Round(2)
			if amount.IsNegative() {
				amount = decimal.Zero
			}
		}

		inst := Installment{
			Sequence: seq,
			DueDate:  due,
			Amount:   amount,
		}
		if paidSet[seq] {
			paidAt := now
			inst.IsPaid = true
			inst.PaidDate = &paidAt
		}

		installments = append(installments, inst)
		accumulated = accumulated.Add(amount)
	}

	if len(installments) == l.InstallmentCount {
		if accumulated.Sub(l.FinalTotalAmount).Abs().GreaterThan(reconciliationTolerance) {
			return nil, fmt.Errorf("%w: installment sum %s does not reconcile with final total %s",
				apperrors.ErrInternalServer, accumulated.StringFixed(2), l.FinalTotalAmount.StringFixed(2))
		}
	}

	return installments, nil
}
