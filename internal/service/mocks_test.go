package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) CreateIfAvailable(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if rv := args.Get(0); rv != nil {
		return rv.(*domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) ConfirmDeposit(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) Extend(ctx context.Context, r *domain.Reservation, addedFrom, addedTo time.Time) error {
	args := m.Called(ctx, r, addedFrom, addedTo)
	return args.Error(0)
}

func (m *mockReservationRepo) Substitute(ctx context.Context, original, substitute *domain.Reservation) error {
	args := m.Called(ctx, original, substitute)
	return args.Error(0)
}

func (m *mockReservationRepo) ListBlockingOverlaps(ctx context.Context, vehicleID int32, start, end time.Time, excludeID int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, vehicleID, start, end, excludeID)
	if rv := args.Get(0); rv != nil {
		return rv.([]domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *mockReservationRepo) ListByRenter(ctx context.Context, renterID int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, renterID)
	if rv := args.Get(0); rv != nil {
		return rv.([]domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) ListAll(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	args := m.Called(ctx, status)
	if rv := args.Get(0); rv != nil {
		return rv.([]domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVehicleRepo struct {
	mock.Mock
}

func (m *mockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	args := m.Called(ctx, plate)
	if v := args.Get(0); v != nil {
		return v.(*domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVehicleRepo) UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVehicleRepo) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) ListAlternatives(ctx context.Context, excludeVehicleID int32, segment domain.Segment, start, end time.Time, limit int32) ([]domain.Vehicle, error) {
	args := m.Called(ctx, excludeVehicleID, segment, start, end, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInspectionRepo struct {
	mock.Mock
}

func (m *mockInspectionRepo) Create(ctx context.Context, ins *domain.Inspection) error {
	args := m.Called(ctx, ins)
	return args.Error(0)
}

func (m *mockInspectionRepo) GetByReservationAndType(ctx context.Context, reservationID int32, t domain.InspectionType) (*domain.Inspection, error) {
	args := m.Called(ctx, reservationID, t)
	if ins := args.Get(0); ins != nil {
		return ins.(*domain.Inspection), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepo) ListByReservation(ctx context.Context, reservationID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, reservationID)
	if p := args.Get(0); p != nil {
		return p.([]domain.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentRepo) ListByRenter(ctx context.Context, renterID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, renterID)
	if p := args.Get(0); p != nil {
		return p.([]domain.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) IncrementTotalRentals(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if n := args.Get(0); n != nil {
		return n.([]domain.Notification), args.Get(1).(int32), args.Error(2)
	}
	return nil, args.Get(1).(int32), args.Error(2)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendReservationConfirmation(ctx context.Context, email, name, vehicleName, code string, totalCents int64) error {
	args := m.Called(ctx, email, name, vehicleName, code, totalCents)
	return args.Error(0)
}

func (m *mockEmailService) SendReservationCancellation(ctx context.Context, email, name, vehicleName string) error {
	args := m.Called(ctx, email, name, vehicleName)
	return args.Error(0)
}

func (m *mockEmailService) SendPaymentReceipt(ctx context.Context, email, name, kind string, amountCents int64) error {
	args := m.Called(ctx, email, name, kind, amountCents)
	return args.Error(0)
}

func (m *mockEmailService) SendPickupReminder(ctx context.Context, email, name, vehicleName, code string, pickupDate time.Time) error {
	args := m.Called(ctx, email, name, vehicleName, code, pickupDate)
	return args.Error(0)
}
