package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

// Actor identifies who is performing an operation. The auth middleware
// builds it from the token claims.
type Actor struct {
	ID   int32
	Role domain.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.UserRoleAdmin
}

// AvailabilityResult reports whether a vehicle is bookable for a window
// and, when it is not, which comparable vehicles are.
type AvailabilityResult struct {
	Available    bool                 `json:"available"`
	Conflicts    []domain.Reservation `json:"conflicts,omitempty"`
	Alternatives []domain.Vehicle     `json:"alternatives,omitempty"`
}

type AuthService interface {
	Signup(ctx context.Context, firstName, lastName, email, phone, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetProfile(ctx context.Context, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int32, firstName, lastName, email, phone string) (*domain.User, error)
}

type VehicleService interface {
	AddVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error
	UpdateVehicleStatus(ctx context.Context, actor Actor, id int32, status domain.VehicleStatus) error
	DeleteVehicle(ctx context.Context, actor Actor, id int32) error
	ListVehicles(ctx context.Context, filter VehicleListFilter) ([]domain.Vehicle, error)
}

// VehicleListFilter mirrors the repository filter with parsed dates.
type VehicleListFilter struct {
	Segment       domain.Segment
	Transmission  string
	MinSeats      int32
	MinRateCents  int64
	MaxRateCents  int64
	AvailableFrom *time.Time
	AvailableTo   *time.Time
}

type ReservationService interface {
	// Quote prices a prospective booking without committing anything. The
	// committed amounts come from the same calculation.
	Quote(ctx context.Context, vehicleID int32, start, end time.Time, plan domain.Plan, extras []domain.Extra) (*pricing.Quote, error)

	// CheckAvailability runs the half-open overlap test against blocking
	// reservations and, when the window is taken, proposes up to five
	// same-or-better alternatives.
	CheckAvailability(ctx context.Context, vehicleID int32, start, end time.Time, excludeReservationID int32) (*AvailabilityResult, error)

	CreateReservation(ctx context.Context, actor Actor, vehicleID int32, start, end time.Time, plan domain.Plan, extras []domain.Extra) (*domain.Reservation, error)
	GetReservation(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)
	ListMyReservations(ctx context.Context, actor Actor) ([]domain.Reservation, error)
	ListReservations(ctx context.Context, actor Actor, status domain.ReservationStatus) ([]domain.Reservation, error)

	// ConfirmDeposit reacts to a captured deposit: REQUESTED -> CONFIRMED.
	// A second capture for the same reservation is a conflict.
	ConfirmDeposit(ctx context.Context, actor Actor, id int32, method domain.PaymentMethod) (*domain.Reservation, error)

	// ConfirmFinalPayment reacts to the captured balance: CONFIRMED ->
	// ACTIVE. Duplicate delivery returns the reservation unchanged.
	ConfirmFinalPayment(ctx context.Context, actor Actor, id int32, method domain.PaymentMethod) (*domain.Reservation, error)

	// NotifyPickupCompleted stores the pickup inspection and activates the
	// reservation if the final payment has not already done so.
	NotifyPickupCompleted(ctx context.Context, actor Actor, id int32, ins *domain.Inspection) (*domain.Reservation, error)

	// NotifyReturnCompleted stores the return inspection and folds any
	// assessed charges into the extras total. Status is untouched until
	// MarkReturned.
	NotifyReturnCompleted(ctx context.Context, actor Actor, id int32, ins *domain.Inspection) (*domain.Reservation, error)

	ExtendReservation(ctx context.Context, actor Actor, id int32, newEnd time.Time) (*domain.Reservation, error)

	// EarlyReturn shortens the rental and reports the advisory refund in
	// cents. No money moves here.
	EarlyReturn(ctx context.Context, actor Actor, id int32, date time.Time) (*domain.Reservation, int64, error)

	CancelReservation(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)

	// MarkReturned closes out the rental: COMPLETED, vehicle released,
	// renter's rental counter bumped.
	MarkReturned(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error)

	// CreateSubstitute swaps a same-or-better vehicle onto the original's
	// schedule, cancelling the original and creating the replacement in
	// one step.
	CreateSubstitute(ctx context.Context, actor Actor, originalID, substituteVehicleID int32, keepOriginalPrice bool) (*domain.Reservation, error)

	GetInspection(ctx context.Context, actor Actor, reservationID int32, t domain.InspectionType) (*domain.Inspection, error)
}

type PaymentService interface {
	ListByReservation(ctx context.Context, actor Actor, reservationID int32) ([]domain.Payment, *domain.PaymentTotals, error)
	ListByRenter(ctx context.Context, actor Actor, renterID int32) ([]domain.Payment, *domain.PaymentTotals, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendReservationConfirmation(ctx context.Context, email, name, vehicleName, code string, totalCents int64) error
	SendReservationCancellation(ctx context.Context, email, name, vehicleName string) error
	SendPaymentReceipt(ctx context.Context, email, name, kind string, amountCents int64) error
	SendPickupReminder(ctx context.Context, email, name, vehicleName, code string, pickupDate time.Time) error
}
