package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewNormalizesOverflow(t *testing.T) {
	assert.Equal(t, New(2025, time.February, 28), New(2025, time.March, 0))
	assert.Equal(t, New(2025, time.March, 3), New(2025, time.February, 31))
	assert.Equal(t, New(2026, time.January, 15), New(2025, time.December+1, 15))
}

func TestFromTimeUsesZone(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	assert.NoError(t, err)

	// 03:00 UTC is still the previous day in Lima (UTC-5).
	instant := time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, New(2025, time.June, 9), FromTime(instant, lima))
	assert.Equal(t, New(2025, time.June, 10), FromTime(instant, time.UTC))
}

func TestComparisons(t *testing.T) {
	a := New(2025, time.January, 15)
	b := New(2025, time.February, 15)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(New(2025, time.January, 15)))
}

func TestArithmetic(t *testing.T) {
	d := New(2025, time.January, 1)

	assert.Equal(t, New(2025, time.January, 31), d.AddDays(30))
	assert.Equal(t, New(2025, time.February, 1), d.AddMonths(1))
	assert.Equal(t, New(2025, time.January, 31), d.LastDayOfMonth())
	assert.Equal(t, New(2025, time.January, 15), d.WithDay(15))
	assert.Equal(t, New(2024, time.February, 29), New(2024, time.February, 1).LastDayOfMonth())
}

func TestParseAndString(t *testing.T) {
	d, err := Parse("2025-06-30")
	assert.NoError(t, err)
	assert.Equal(t, New(2025, time.June, 30), d)
	assert.Equal(t, "2025-06-30", d.String())

	_, err = Parse("30/06/2025")
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2025, time.April, 5)

	raw, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.Equal(t, `"2025-04-05"`, string(raw))

	var decoded Date
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, d, decoded)

	assert.Error(t, json.Unmarshal([]byte(`20250405`), &decoded))
}
