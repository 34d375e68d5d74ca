package loan

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"loantrack/internal/pkg/apperrors"
)

// AmortizationMode selects the payment formula. The annuity (French) system is
// canonical; the flat-rate formula survives only as an explicitly named
// alternate for loans entered from sources that used it.
type AmortizationMode string

const (
	ModeAnnuity  AmortizationMode = "ANNUITY"
	ModeFlatRate AmortizationMode = "FLAT_RATE"
)

const powPrecision = 24

var (
	one        = decimal.NewFromInt(1)
	hundred    = decimal.NewFromInt(100)
	oneTwelfth = decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
)

func ParseAmortizationMode(s string) (AmortizationMode, error) {
	switch AmortizationMode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ModeAnnuity:
		return ModeAnnuity, nil
	case ModeFlatRate:
		return ModeFlatRate, nil
	default:
		return "", apperrors.NewValidationError("amortizationMode",
			fmt.Sprintf("unknown mode %q (use ANNUITY or FLAT_RATE)", s))
	}
}

// MonthlyEffectiveRate converts an annual effective rate (percent) to its
// monthly effective equivalent: (1 + rate/100)^(1/12) - 1.
func MonthlyEffectiveRate(annualRate decimal.Decimal) (decimal.Decimal, error) {
	base := one.Add(annualRate.Div(hundred))
	powed, err := base.PowWithPrecision(oneTwelfth, powPrecision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrCalculation, err)
	}
	return powed.Sub(one), nil
}

// AnnuityPayment computes the fixed periodic payment of the French system:
// principal * tem / (1 - (1+tem)^-count), falling back to straight division
// when the monthly rate is zero.
func AnnuityPayment(principal, annualRate decimal.Decimal, count int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if annualRate.IsNegative() || annualRate.GreaterThan(hundred) {
		return decimal.Zero, apperrors.NewValidationError("annualInterestRate", "must be between 0 and 100")
	}
	if count < 1 {
		return decimal.Zero, apperrors.NewValidationError("installmentCount", "must be at least 1")
	}

	tem, err := MonthlyEffectiveRate(annualRate)
	if err != nil {
		return decimal.Zero, err
	}
	if tem.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(count)), powPrecision), nil
	}

	discount, err := one.Add(tem).PowInt32(int32(-count))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrCalculation, err)
	}
	denominator := one.Sub(discount)
	if denominator.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: annuity denominator underflowed to zero", apperrors.ErrCalculation)
	}

	payment := principal.Mul(tem).DivRound(denominator, powPrecision)
	if !payment.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive payment %s", apperrors.ErrCalculation, payment)
	}
	return payment, nil
}

// FlatRateTerms is the legacy formula: the whole rate is applied once to the
// principal and the result is split evenly. Not equivalent to the annuity
// system; only loans explicitly created in FLAT_RATE mode use it.
func FlatRateTerms(principal, annualRate decimal.Decimal, count int) (payment, finalTotal decimal.Decimal, err error) {
	if !principal.IsPositive() {
		return decimal.Zero, decimal.Zero, apperrors.NewValidationError("principal", "must be greater than zero")
	}
	if annualRate.IsNegative() || annualRate.GreaterThan(hundred) {
		return decimal.Zero, decimal.Zero, apperrors.NewValidationError("annualInterestRate", "must be between 0 and 100")
	}
	if count < 1 {
		return decimal.Zero, decimal.Zero, apperrors.NewValidationError("installmentCount", "must be at least 1")
	}

	finalTotal = principal.Mul(one.Add(annualRate.Div(hundred)))
	payment = finalTotal.DivRound(decimal.NewFromInt(int64(count)), powPrecision)
	return payment, finalTotal, nil
}

// ComputeTerms fixes the periodic payment and final total for a loan. Rounding
// to 2 places happens here, at the boundary where the terms become stored loan
// fields, never inside the formulas.
func ComputeTerms(mode AmortizationMode, principal, annualRate decimal.Decimal, count int) (payment, finalTotal decimal.Decimal, err error) {
	switch mode {
	case ModeFlatRate:
		payment, finalTotal, err = FlatRateTerms(principal, annualRate, count)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return payment.Round(2), finalTotal.Round(2), nil
	default:
		payment, err = AnnuityPayment(principal, annualRate, count)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		payment = payment.Round(2)
		return payment, payment.Mul(decimal.NewFromInt(int64(count))), nil
	}
}
