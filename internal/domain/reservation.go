package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusRequested ReservationStatus = "REQUESTED"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusExtended  ReservationStatus = "EXTENDED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// BlockingStatuses are the statuses that occupy a vehicle's calendar. A
// merely REQUESTED reservation (deposit unpaid) never blocks another
// request for the same window.
var BlockingStatuses = []ReservationStatus{
	ReservationStatusConfirmed,
	ReservationStatusActive,
	ReservationStatusExtended,
}

// Blocking reports whether the status occupies the vehicle's calendar.
func (s ReservationStatus) Blocking() bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusActive, ReservationStatusExtended:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

// transitions is the closed transition table. Every status change in the
// system goes through CanTransition; anything not listed here is rejected.
var transitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusRequested: {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusActive, ReservationStatusCancelled},
	ReservationStatusActive:    {ReservationStatusActive, ReservationStatusExtended, ReservationStatusCompleted},
	ReservationStatusExtended:  {ReservationStatusExtended, ReservationStatusCompleted},
	ReservationStatusCompleted: {},
	ReservationStatusCancelled: {},
}

// CanTransition reports whether moving from s to target is allowed by the
// transition table.
func (s ReservationStatus) CanTransition(target ReservationStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

type Plan string

const (
	PlanRegular Plan = "REGULAR"
	PlanPremium Plan = "PREMIUM"
)

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	return p == PlanRegular || p == PlanPremium
}

// Extra is a selected add-on, snapshotted on the reservation at creation.
type Extra struct {
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int32  `json:"quantity"`
}

type Reservation struct {
	ID        int32 `json:"id"`
	VehicleID int32 `json:"vehicle_id"`
	RenterID  int32 `json:"renter_id"`
	// [StartDate, EndDate) half-open: a reservation ending on day N does
	// not block one starting on day N.
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	OriginalEndDate *time.Time `json:"original_end_date,omitempty"`
	Plan            Plan       `json:"plan"`
	TotalDays       int32      `json:"total_days"`
	// Price snapshot captured from the vehicle at creation. All
	// recomputation (extension, early return, substitution with
	// keepOriginalPrice) uses this rate, not the live vehicle rate.
	DailyRateCents   int64   `json:"daily_rate_cents"`
	Extras           []Extra `json:"extras"`
	SubtotalCents    int64   `json:"subtotal_cents"`
	ExtrasTotalCents int64   `json:"extras_total_cents"`
	TotalCents       int64   `json:"total_cents"`
	// DepositCents is fixed at creation and never recomputed; after an
	// extension the renter owes the delta as a future final payment.
	DepositCents     int64             `json:"deposit_cents"`
	DepositPaid      bool              `json:"deposit_paid"`
	DepositPaidAt    *time.Time        `json:"deposit_paid_at,omitempty"`
	FinalPaid        bool              `json:"final_paid"`
	FinalPaidAt      *time.Time        `json:"final_paid_at,omitempty"`
	IsEarlyReturn    bool              `json:"is_early_return"`
	EarlyReturnDate  *time.Time        `json:"early_return_date,omitempty"`
	ConfirmationCode string            `json:"confirmation_code"`
	Status           ReservationStatus `json:"status"`
	CreatedOn        string            `json:"created_on"`
	UpdatedOn        string            `json:"updated_on"`
}

// Overlaps applies the half-open interval test against another date range.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !(r.EndDate.Before(start) || r.EndDate.Equal(start) ||
		r.StartDate.After(end) || r.StartDate.Equal(end))
}
