package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

// VehicleFilter narrows fleet listings. Zero values mean "no constraint".
// When AvailableFrom/To are both set, vehicles with a blocking reservation
// overlapping the window are excluded.
type VehicleFilter struct {
	Segment       domain.Segment
	Transmission  string
	MinSeats      int32
	MinRateCents  int64
	MaxRateCents  int64
	AvailableFrom *time.Time
	AvailableTo   *time.Time
}

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	Update(ctx context.Context, v *domain.Vehicle) error
	UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error)

	// ListAlternatives returns up to limit vehicles of the same or better
	// segment that are operationally available and free of blocking
	// overlap for [start, end), ordered by segment rank then rating.
	ListAlternatives(ctx context.Context, excludeVehicleID int32, segment domain.Segment, start, end time.Time, limit int32) ([]domain.Vehicle, error)
}

type ReservationRepository interface {
	// CreateIfAvailable inserts the reservation and re-verifies inside a
	// serializable transaction that no blocking reservation overlaps the
	// window, so check-then-insert cannot race. Returns
	// domain.ErrConflict when the window is taken.
	CreateIfAvailable(ctx context.Context, r *domain.Reservation) error

	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error

	// ConfirmDeposit persists the REQUESTED -> CONFIRMED flip after
	// re-checking, in the same transaction, that no blocking reservation
	// overlaps the window. Two unpaid holds for one window can coexist;
	// only the first deposit capture may become blocking.
	ConfirmDeposit(ctx context.Context, r *domain.Reservation) error

	// Extend persists an extension after verifying, in the same
	// transaction, that [addedFrom, addedTo) is free of blocking overlap
	// for the reservation's vehicle (the reservation itself excluded).
	Extend(ctx context.Context, r *domain.Reservation, addedFrom, addedTo time.Time) error

	// Substitute cancels the original and inserts the substitute in one
	// transaction, verifying the substitute vehicle's window is free.
	// A partial substitution can never leave the renter without a live
	// reservation.
	Substitute(ctx context.Context, original, substitute *domain.Reservation) error

	// ListBlockingOverlaps returns blocking reservations of the vehicle
	// overlapping [start, end) under the half-open test, excluding
	// excludeID when non-zero.
	ListBlockingOverlaps(ctx context.Context, vehicleID int32, start, end time.Time, excludeID int32) ([]domain.Reservation, error)

	CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error)
	ListByRenter(ctx context.Context, renterID int32) ([]domain.Reservation, error)
	ListAll(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)
}

type InspectionRepository interface {
	Create(ctx context.Context, ins *domain.Inspection) error
	GetByReservationAndType(ctx context.Context, reservationID int32, t domain.InspectionType) (*domain.Inspection, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	ListByReservation(ctx context.Context, reservationID int32) ([]domain.Payment, error)
	ListByRenter(ctx context.Context, renterID int32) ([]domain.Payment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	IncrementTotalRentals(ctx context.Context, id int32) error
}
