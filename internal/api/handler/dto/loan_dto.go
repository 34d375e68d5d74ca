package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loantrack/internal/domain/loan"
	"loantrack/internal/domain/payment"
	"loantrack/internal/pkg/dates"
)

type CreateLoanRequest struct {
	LoanCode           string `json:"loanCode"`
	BankName           string `json:"bankName"`
	LoanType           string `json:"loanType"`
	Principal          string `json:"principal"`
	AnnualInterestRate string `json:"annualInterestRate"`
	AmortizationMode   string `json:"amortizationMode"`
	InstallmentCount   int    `json:"installmentCount"`
	PaymentType        string `json:"paymentType"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	PaidInstallments   []int  `json:"paidInstallments"`
}

func (r *CreateLoanRequest) Validate() error {
	if strings.TrimSpace(r.BankName) == "" {
		return fmt.Errorf("bankName cannot be empty")
	}
	if _, err := decimal.NewFromString(r.Principal); err != nil {
		return fmt.Errorf("invalid principal amount: %w", err)
	}
	if _, err := decimal.NewFromString(r.AnnualInterestRate); err != nil {
		return fmt.Errorf("invalid annualInterestRate: %w", err)
	}
	if r.InstallmentCount < 1 {
		return fmt.Errorf("installmentCount must be at least 1")
	}
	if _, err := dates.Parse(r.StartDate); err != nil {
		return fmt.Errorf("invalid startDate format (use YYYY-MM-DD): %w", err)
	}
	if _, err := dates.Parse(r.EndDate); err != nil {
		return fmt.Errorf("invalid endDate format (use YYYY-MM-DD): %w", err)
	}
	return nil
}

// ToParams converts the request into domain creation parameters. Validate must
// have passed first; the conversions here cannot fail after it.
func (r *CreateLoanRequest) ToParams() loan.CreateLoanInput {
	principal, _ := decimal.NewFromString(r.Principal)
	rate, _ := decimal.NewFromString(r.AnnualInterestRate)
	startDate, _ := dates.Parse(r.StartDate)
	endDate, _ := dates.Parse(r.EndDate)

	return loan.CreateLoanInput{
		NewLoanParams: loan.NewLoanParams{
			LoanCode:           r.LoanCode,
			BankName:           r.BankName,
			LoanType:           r.LoanType,
			Principal:          principal,
			AnnualInterestRate: rate,
			AmortizationMode:   r.AmortizationMode,
			InstallmentCount:   r.InstallmentCount,
			PaymentType:        r.PaymentType,
			StartDate:          startDate,
			EndDate:            endDate,
		},
		PreMarkedPaid: r.PaidInstallments,
	}
}

type PayInstallmentRequest struct {
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

func (r *PayInstallmentRequest) Validate() error {
	return nil
}

type UpdateInstallmentRequest struct {
	LateFee *string `json:"lateFee"`
	Notes   *string `json:"notes"`
}

func (r *UpdateInstallmentRequest) Validate() error {
	if r.LateFee == nil && r.Notes == nil {
		return fmt.Errorf("at least one of lateFee or notes is required")
	}
	if r.LateFee != nil {
		if _, err := decimal.NewFromString(*r.LateFee); err != nil {
			return fmt.Errorf("invalid lateFee: %w", err)
		}
	}
	return nil
}

func (r *UpdateInstallmentRequest) LateFeeDecimal() *decimal.Decimal {
	if r.LateFee == nil {
		return nil
	}
	d, _ := decimal.NewFromString(*r.LateFee)
	return &d
}

type RegenerateInstallmentsRequest struct {
	InstallmentCount int `json:"installmentCount"`
}

func (r *RegenerateInstallmentsRequest) Validate() error {
	if r.InstallmentCount < 0 {
		return fmt.Errorf("installmentCount must not be negative")
	}
	return nil
}

type LoanResponse struct {
	ID                 string                `json:"id"`
	LoanCode           string                `json:"loanCode,omitempty"`
	BankName           string                `json:"bankName"`
	LoanType           string                `json:"loanType,omitempty"`
	PrincipalAmount    string                `json:"principalAmount"`
	AnnualInterestRate string                `json:"annualInterestRate"`
	AmortizationMode   string                `json:"amortizationMode"`
	InstallmentCount   int                   `json:"installmentCount"`
	PaymentType        string                `json:"paymentType"`
	StartDate          string                `json:"startDate"`
	EndDate            string                `json:"endDate"`
	InstallmentAmount  string                `json:"installmentAmount"`
	FinalTotalAmount   string                `json:"finalTotalAmount"`
	Active             bool                  `json:"active"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	Installments       []InstallmentResponse `json:"installments,omitempty"`
}

type InstallmentResponse struct {
	ID       string     `json:"id"`
	LoanID   string     `json:"loanId"`
	Sequence int        `json:"sequence"`
	DueDate  string     `json:"dueDate"`
	Amount   string     `json:"amount"`
	IsPaid   bool       `json:"isPaid"`
	PaidDate *time.Time `json:"paidDate,omitempty"`
	LateFee  *string    `json:"lateFee,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	Status   string     `json:"status"`
}

type PaymentResponse struct {
	ID               string    `json:"id"`
	LoanID           string    `json:"loanId"`
	Amount           string    `json:"amount"`
	PaymentDate      time.Time `json:"paymentDate"`
	ReferenceDueDate string    `json:"referenceDueDate"`
	Notes            string    `json:"notes,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

// NewLoanResponse renders a loan. today drives the derived status of each
// installment; pass the caller's notion of the current date.
func NewLoanResponse(domainLoan *loan.Loan, includeInstallments bool, today dates.Date) LoanResponse {
	resp := LoanResponse{
		ID:                 strconv.FormatInt(domainLoan.ID, 10),
		LoanCode:           domainLoan.LoanCode,
		BankName:           domainLoan.BankName,
		LoanType:           domainLoan.LoanType,
		PrincipalAmount:    domainLoan.PrincipalAmount.StringFixed(2),
		AnnualInterestRate: domainLoan.AnnualInterestRate.String(),
		AmortizationMode:   string(domainLoan.AmortizationMode),
		InstallmentCount:   domainLoan.InstallmentCount,
		PaymentType:        domainLoan.Strategy.Descriptor(),
		StartDate:          domainLoan.StartDate.String(),
		EndDate:            domainLoan.EndDate.String(),
		InstallmentAmount:  domainLoan.InstallmentAmount.StringFixed(2),
		FinalTotalAmount:   domainLoan.FinalTotalAmount.StringFixed(2),
		Active:             domainLoan.Active,
		CreatedAt:          domainLoan.CreatedAt,
		UpdatedAt:          domainLoan.UpdatedAt,
	}

	if includeInstallments && domainLoan.Installments != nil {
		resp.Installments = make([]InstallmentResponse, len(domainLoan.Installments))
		for i, entry := range domainLoan.Installments {
			resp.Installments[i] = NewInstallmentResponse(&entry, today)
		}
	}

	return resp
}

func NewInstallmentResponse(entry *loan.Installment, today dates.Date) InstallmentResponse {
	var lateFeeStr *string
	if entry.LateFee.Valid {
		s := entry.LateFee.Decimal.StringFixed(2)
		lateFeeStr = &s
	}

	return InstallmentResponse{
		ID:       strconv.FormatInt(entry.ID, 10),
		LoanID:   strconv.FormatInt(entry.LoanID, 10),
		Sequence: entry.Sequence,
		DueDate:  entry.DueDate.String(),
		Amount:   entry.Amount.StringFixed(2),
		IsPaid:   entry.IsPaid,
		PaidDate: entry.PaidDate,
		LateFee:  lateFeeStr,
		Notes:    entry.Notes,
		Status:   string(entry.Status(today)),
	}
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               strconv.FormatInt(p.ID, 10),
		LoanID:           strconv.FormatInt(p.LoanID, 10),
		Amount:           p.Amount.StringFixed(2),
		PaymentDate:      p.PaymentDate,
		ReferenceDueDate: p.ReferenceDueDate.String(),
		Notes:            p.Notes,
	}
}
