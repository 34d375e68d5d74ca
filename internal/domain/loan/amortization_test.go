package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmortizationMode(t *testing.T) {
	t.Run("should default to annuity for empty input", func(t *testing.T) {
		mode, err := ParseAmortizationMode("")
		assert.NoError(t, err)
		assert.Equal(t, ModeAnnuity, mode)
	})

	t.Run("should accept both modes case insensitively", func(t *testing.T) {
		mode, err := ParseAmortizationMode("annuity")
		assert.NoError(t, err)
		assert.Equal(t, ModeAnnuity, mode)

		mode, err = ParseAmortizationMode(" flat_rate ")
		assert.NoError(t, err)
		assert.Equal(t, ModeFlatRate, mode)
	})

	t.Run("should reject unknown modes", func(t *testing.T) {
		_, err := ParseAmortizationMode("BALLOON")
		assert.Error(t, err)
	})
}

func TestMonthlyEffectiveRate(t *testing.T) {
	t.Run("should be zero for a zero annual rate", func(t *testing.T) {
		tem, err := MonthlyEffectiveRate(decimal.Zero)
		assert.NoError(t, err)
		assert.True(t, tem.IsZero())
	})

	t.Run("should compound back to the annual rate", func(t *testing.T) {
		tem, err := MonthlyEffectiveRate(decimal.NewFromInt(12))
		assert.NoError(t, err)
		assert.True(t, tem.IsPositive())

		// (1+tem)^12 must recover 1.12 within the working precision.
		compounded, err := one.Add(tem).PowInt32(12)
		assert.NoError(t, err)
		diff := compounded.Sub(decimal.NewFromFloat(1.12)).Abs()
		assert.True(t, diff.LessThan(decimal.NewFromFloat(0.0000001)), "got %s", compounded)
	})
}

func TestAnnuityPayment(t *testing.T) {
	t.Run("should split principal evenly at zero rate", func(t *testing.T) {
		payment, err := AnnuityPayment(decimal.NewFromInt(1200), decimal.Zero, 12)
		assert.NoError(t, err)
		assert.True(t, payment.Equal(decimal.NewFromInt(100)), "got %s", payment)
	})

	t.Run("should charge more than straight division at a positive rate", func(t *testing.T) {
		principal := decimal.NewFromInt(10000)
		payment, err := AnnuityPayment(principal, decimal.NewFromInt(12), 12)
		assert.NoError(t, err)

		straight := principal.Div(decimal.NewFromInt(12))
		assert.True(t, payment.GreaterThan(straight), "payment %s should exceed %s", payment, straight)

		// Total repaid stays below the flat-rate total: interest accrues on a
		// declining balance.
		total := payment.Mul(decimal.NewFromInt(12))
		flatTotal := principal.Mul(decimal.NewFromFloat(1.12))
		assert.True(t, total.LessThan(flatTotal), "total %s should be below %s", total, flatTotal)
	})

	t.Run("should validate inputs", func(t *testing.T) {
		_, err := AnnuityPayment(decimal.Zero, decimal.NewFromInt(10), 12)
		assert.Error(t, err)

		_, err = AnnuityPayment(decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12)
		assert.Error(t, err)

		_, err = AnnuityPayment(decimal.NewFromInt(1000), decimal.NewFromInt(101), 12)
		assert.Error(t, err)

		_, err = AnnuityPayment(decimal.NewFromInt(1000), decimal.NewFromInt(10), 0)
		assert.Error(t, err)
	})
}

func TestFlatRateTerms(t *testing.T) {
	t.Run("should apply the rate once to the principal", func(t *testing.T) {
		payment, finalTotal, err := FlatRateTerms(decimal.NewFromInt(1000), decimal.NewFromInt(10), 4)
		assert.NoError(t, err)
		assert.True(t, finalTotal.Equal(decimal.NewFromInt(1100)), "got %s", finalTotal)
		assert.True(t, payment.Equal(decimal.NewFromInt(275)), "got %s", payment)
	})

	t.Run("should validate inputs", func(t *testing.T) {
		_, _, err := FlatRateTerms(decimal.NewFromInt(-5), decimal.NewFromInt(10), 4)
		assert.Error(t, err)

		_, _, err = FlatRateTerms(decimal.NewFromInt(1000), decimal.NewFromInt(10), 0)
		assert.Error(t, err)
	})
}

func TestComputeTerms(t *testing.T) {
	t.Run("annuity final total should equal rounded payment times count", func(t *testing.T) {
		for _, tc := range []struct {
			principal float64
			rate      float64
			count     int
		}{
			{1000, 12, 12},
			{35000, 9.5, 48},
			{999.99, 0, 3},
			{250000, 45, 60},
			{1, 100, 1},
		} {
			payment, finalTotal, err := ComputeTerms(ModeAnnuity,
				decimal.NewFromFloat(tc.principal), decimal.NewFromFloat(tc.rate), tc.count)
			assert.NoError(t, err)
			assert.True(t, payment.IsPositive())
			assert.True(t, finalTotal.Equal(payment.Mul(decimal.NewFromInt(int64(tc.count)))),
				"principal=%v rate=%v count=%d", tc.principal, tc.rate, tc.count)
			assert.Equal(t, payment.Round(2).String(), payment.String(), "payment should be rounded to cents")
		}
	})

	t.Run("flat rate terms should round at the boundary", func(t *testing.T) {
		payment, finalTotal, err := ComputeTerms(ModeFlatRate,
			decimal.NewFromInt(1000), decimal.NewFromInt(10), 3)
		assert.NoError(t, err)
		assert.Equal(t, "366.67", payment.StringFixed(2))
		assert.Equal(t, "1100.00", finalTotal.StringFixed(2))
	})

	t.Run("should propagate validation errors", func(t *testing.T) {
		_, _, err := ComputeTerms(ModeAnnuity, decimal.Zero, decimal.NewFromInt(10), 12)
		assert.Error(t, err)
	})
}
