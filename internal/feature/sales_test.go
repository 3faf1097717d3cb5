package feature

import (
	"testing"
	"time"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateSales(t *testing.T) {
	orders := []OrderRecord{
		{ProductID: 2, Quantity: 1, UnitPrice: 10, OrderDate: day(2024, 1, 5)},
		{ProductID: 1, Quantity: 3, UnitPrice: 4, OrderDate: day(2024, 1, 5).Add(15 * time.Hour)},
		{ProductID: 1, Quantity: 2, UnitPrice: 6, OrderDate: day(2024, 1, 5)},
		{ProductID: 1, Quantity: 5, UnitPrice: 5, OrderDate: day(2024, 1, 2)},
	}

	points := AggregateSales(orders)
	require.Len(t, points, 3)

	assert.Equal(t, uint(1), points[0].ProductID)
	assert.Equal(t, day(2024, 1, 2), points[0].Date)
	assert.Equal(t, 5.0, points[0].Quantity)

	assert.Equal(t, day(2024, 1, 5), points[1].Date)
	assert.Equal(t, 5.0, points[1].Quantity)
	assert.InDelta(t, 5.0, points[1].UnitPrice, 1e-9)

	assert.Equal(t, uint(2), points[2].ProductID)
}

func TestCalendarVector(t *testing.T) {
	// 2024-03-04 is a Monday and the 64th day of a leap year.
	vec := CalendarVector(day(2024, 3, 4), 19.99)
	assert.Equal(t, []float64{2024, 3, 0, 64, 19.99}, vec)

	sunday := CalendarVector(day(2024, 3, 10), 1)
	assert.Equal(t, 6.0, sunday[2])
}

func TestFutureDates(t *testing.T) {
	// Wednesday.
	start := time.Date(2024, 1, 31, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		period model.ForecastPeriod
		n      int
		want   []time.Time
	}{
		{model.PeriodDaily, 3, []time.Time{day(2024, 1, 31), day(2024, 2, 1), day(2024, 2, 2)}},
		{model.PeriodWeekly, 2, []time.Time{day(2024, 2, 4), day(2024, 2, 11)}},
		{model.PeriodMonthly, 3, []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 31)}},
		{model.PeriodQuarterly, 3, []time.Time{day(2024, 3, 31), day(2024, 6, 30), day(2024, 9, 30)}},
		{model.PeriodYearly, 2, []time.Time{day(2024, 12, 31), day(2025, 12, 31)}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, err := FutureDates(start, tt.period, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFutureDates_Invalid(t *testing.T) {
	_, err := FutureDates(time.Now(), "hourly", 3)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)

	_, err = FutureDates(time.Now(), model.PeriodDaily, 0)
	assert.ErrorIs(t, err, dto.ErrInvalidInput)
}

func TestClampQuantity(t *testing.T) {
	v, q := ClampQuantity(-5)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 0, q)

	v, q = ClampQuantity(7.9)
	assert.Equal(t, 7.9, v)
	assert.Equal(t, 7, q)
}
