package pricing

import (
	"fmt"
	"time"

	"carrental-backend/internal/domain"
)

const (
	// PremiumSurchargePercent is the plan surcharge applied to the
	// subtotal for the Premium plan tier.
	PremiumSurchargePercent = 20

	// DepositPercent is the upfront fraction of the total due before a
	// reservation is confirmed. Computed once at creation.
	DepositPercent = 30
)

// Quote is the monetary breakdown for a booking window.
type Quote struct {
	Days             int32 `json:"days"`
	SubtotalCents    int64 `json:"subtotal_cents"`
	ExtrasTotalCents int64 `json:"extras_total_cents"`
	TotalCents       int64 `json:"total_cents"`
	DepositCents     int64 `json:"deposit_cents"`
}

// Days returns the chargeable day count for [start, end): the ceiling of
// the day difference, time-of-day ignored. Fails when end <= start.
func Days(start, end time.Time) (int32, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidRange)
	}
	diff := end.Sub(start)
	days := int64(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int32(days), nil
}

// Subtotal prices days at the daily rate, applying the Premium plan
// surcharge.
func Subtotal(dailyRateCents int64, days int32, plan domain.Plan) int64 {
	subtotal := dailyRateCents * int64(days)
	if plan == domain.PlanPremium {
		subtotal += subtotal * PremiumSurchargePercent / 100
	}
	return subtotal
}

// ExtrasTotal sums the selected extras per occurrence: unit price times
// quantity, independent of the rental length.
func ExtrasTotal(extras []domain.Extra) int64 {
	var total int64
	for _, e := range extras {
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		total += e.UnitPriceCents * int64(qty)
	}
	return total
}

// Deposit returns the upfront fraction of the total, in whole cents.
func Deposit(totalCents int64) int64 {
	return totalCents * DepositPercent / 100
}

// ForBooking computes the full breakdown for a new reservation. The same
// function backs both the quote shown before commit and the amounts stored
// at commit, so the two can never drift.
func ForBooking(dailyRateCents int64, start, end time.Time, plan domain.Plan, extras []domain.Extra) (Quote, error) {
	days, err := Days(start, end)
	if err != nil {
		return Quote{}, err
	}
	subtotal := Subtotal(dailyRateCents, days, plan)
	extrasTotal := ExtrasTotal(extras)
	total := subtotal + extrasTotal
	return Quote{
		Days:             days,
		SubtotalCents:    subtotal,
		ExtrasTotalCents: extrasTotal,
		TotalCents:       total,
		DepositCents:     Deposit(total),
	}, nil
}

// Reprice recomputes a reservation's money for a changed date range
// (extension or early return) at the original rate and plan. The extras
// total is carried over unchanged and the deposit is not recomputed.
func Reprice(r *domain.Reservation, start, end time.Time) (days int32, subtotal, total int64, err error) {
	days, err = Days(start, end)
	if err != nil {
		return 0, 0, 0, err
	}
	subtotal = Subtotal(r.DailyRateCents, days, r.Plan)
	total = subtotal + r.ExtrasTotalCents
	return days, subtotal, total, nil
}
