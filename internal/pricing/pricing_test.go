package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDays(t *testing.T) {
	t.Run("WholeDays", func(t *testing.T) {
		days, err := Days(date(2024, 3, 1), date(2024, 3, 4))
		assert.NoError(t, err)
		assert.Equal(t, int32(3), days)
	})

	t.Run("FractionalDayRoundsUp", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		end := time.Date(2024, 3, 3, 15, 0, 0, 0, time.UTC)
		days, err := Days(start, end)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), days)
	})

	t.Run("EndEqualsStart", func(t *testing.T) {
		_, err := Days(date(2024, 3, 1), date(2024, 3, 1))
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := Days(date(2024, 3, 4), date(2024, 3, 1))
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})
}

func TestForBooking_RegularPlan(t *testing.T) {
	// 800/day for 3 days on the regular plan.
	q, err := ForBooking(80000, date(2024, 5, 1), date(2024, 5, 4), domain.PlanRegular, nil)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), q.Days)
	assert.Equal(t, int64(240000), q.SubtotalCents)
	assert.Equal(t, int64(0), q.ExtrasTotalCents)
	assert.Equal(t, int64(240000), q.TotalCents)
	assert.Equal(t, int64(72000), q.DepositCents)
}

func TestForBooking_PremiumSurcharge(t *testing.T) {
	q, err := ForBooking(80000, date(2024, 5, 1), date(2024, 5, 4), domain.PlanPremium, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(288000), q.SubtotalCents)
	assert.Equal(t, int64(288000), q.TotalCents)
}

func TestForBooking_ExtrasPerOccurrence(t *testing.T) {
	extras := []domain.Extra{
		{Name: "child seat", UnitPriceCents: 5000, Quantity: 2},
		{Name: "gps", UnitPriceCents: 3000, Quantity: 1},
	}
	q, err := ForBooking(80000, date(2024, 5, 1), date(2024, 5, 4), domain.PlanRegular, extras)
	assert.NoError(t, err)
	// Extras do not scale with rental length.
	assert.Equal(t, int64(13000), q.ExtrasTotalCents)
	assert.Equal(t, int64(253000), q.TotalCents)
	assert.Equal(t, q.SubtotalCents+q.ExtrasTotalCents, q.TotalCents)
	assert.Equal(t, q.TotalCents*30/100, q.DepositCents)
}

func TestExtrasTotal_ZeroQuantityCountsAsOne(t *testing.T) {
	total := ExtrasTotal([]domain.Extra{{Name: "gps", UnitPriceCents: 3000, Quantity: 0}})
	assert.Equal(t, int64(3000), total)
}

func TestReprice_Extension(t *testing.T) {
	rv := &domain.Reservation{
		DailyRateCents:   80000,
		Plan:             domain.PlanRegular,
		ExtrasTotalCents: 10000,
		StartDate:        date(2024, 5, 1),
		EndDate:          date(2024, 5, 6),
	}

	days, subtotal, total, err := Reprice(rv, rv.StartDate, date(2024, 5, 8))
	assert.NoError(t, err)
	assert.Equal(t, int32(7), days)
	// Two extra days at the original rate; extras carried unchanged.
	assert.Equal(t, int64(560000), subtotal)
	assert.Equal(t, int64(570000), total)
}

func TestReprice_EarlyReturnRefund(t *testing.T) {
	rv := &domain.Reservation{
		DailyRateCents: 80000,
		Plan:           domain.PlanRegular,
		StartDate:      date(2024, 5, 1),
		EndDate:        date(2024, 5, 6),
		TotalCents:     400000,
	}

	days, _, total, err := Reprice(rv, rv.StartDate, date(2024, 5, 4))
	assert.NoError(t, err)
	assert.Equal(t, int32(3), days)
	refund := rv.TotalCents - total
	assert.Equal(t, int64(160000), refund)
	assert.Greater(t, refund, int64(0))
}

func TestDeposit(t *testing.T) {
	assert.Equal(t, int64(30), Deposit(100))
	assert.Equal(t, int64(0), Deposit(0))
	// Integer cents, truncated.
	assert.Equal(t, int64(29), Deposit(99))
}
