package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
)

type reservationFixture struct {
	svc          ReservationService
	reservations *mockReservationRepo
	vehicles     *mockVehicleRepo
	inspections  *mockInspectionRepo
	payments     *mockPaymentRepo
	users        *mockUserRepo
	notes        *mockNotificationRepo
	email        *mockEmailService
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		reservations: &mockReservationRepo{},
		vehicles:     &mockVehicleRepo{},
		inspections:  &mockInspectionRepo{},
		payments:     &mockPaymentRepo{},
		users:        &mockUserRepo{},
		notes:        &mockNotificationRepo{},
		email:        &mockEmailService{},
	}
	f.svc = NewReservationService(f.reservations, f.vehicles, f.inspections, f.payments, f.users, f.notes, f.email)
	return f
}

func day(d int) time.Time {
	return time.Date(2024, 7, d, 0, 0, 0, 0, time.UTC)
}

var (
	renter = Actor{ID: 7, Role: domain.UserRoleRenter}
	admin  = Actor{ID: 1, Role: domain.UserRoleAdmin}
)

func testVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		ID:             3,
		Brand:          "Toyota",
		Model:          "Corolla",
		Segment:        domain.SegmentStandard,
		DailyRateCents: 80000,
		Status:         domain.VehicleStatusAvailable,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("PricesAndStoresRequested", func(t *testing.T) {
		f := newReservationFixture()
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.reservations.On("CreateIfAvailable", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)

		rv, err := f.svc.CreateReservation(ctx, renter, 3, day(1), day(4), domain.PlanRegular, nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusRequested, rv.Status)
		assert.Equal(t, int32(3), rv.TotalDays)
		assert.Equal(t, int64(240000), rv.SubtotalCents)
		assert.Equal(t, int64(240000), rv.TotalCents)
		assert.Equal(t, int64(72000), rv.DepositCents)
		assert.NotEmpty(t, rv.ConfirmationCode)
		assert.False(t, rv.DepositPaid)
	})

	t.Run("MaintenanceVehicleRejected", func(t *testing.T) {
		f := newReservationFixture()
		v := testVehicle()
		v.Status = domain.VehicleStatusMaintenance
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(v, nil)

		_, err := f.svc.CreateReservation(ctx, renter, 3, day(1), day(4), domain.PlanRegular, nil)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("BadRangeRejected", func(t *testing.T) {
		f := newReservationFixture()
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)

		_, err := f.svc.CreateReservation(ctx, renter, 3, day(4), day(4), domain.PlanRegular, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})

	t.Run("UnknownPlanRejected", func(t *testing.T) {
		f := newReservationFixture()
		_, err := f.svc.CreateReservation(ctx, renter, 3, day(1), day(4), domain.Plan("GOLD"), nil)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("RepositoryConflictPropagates", func(t *testing.T) {
		f := newReservationFixture()
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.reservations.On("CreateIfAvailable", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		_, err := f.svc.CreateReservation(ctx, renter, 3, day(1), day(4), domain.PlanRegular, nil)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func requestedReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:               10,
		VehicleID:        3,
		RenterID:         7,
		StartDate:        day(1),
		EndDate:          day(4),
		Plan:             domain.PlanRegular,
		TotalDays:        3,
		DailyRateCents:   80000,
		SubtotalCents:    240000,
		TotalCents:       240000,
		DepositCents:     72000,
		ConfirmationCode: "abc-123",
		Status:           domain.ReservationStatusRequested,
	}
}

func activeReservation() *domain.Reservation {
	rv := requestedReservation()
	rv.Status = domain.ReservationStatusActive
	rv.DepositPaid = true
	rv.FinalPaid = true
	return rv
}

func TestConfirmDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmsAndRecordsPayment", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("ConfirmDeposit", mock.Anything, rv).Return(nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Type == domain.PaymentTypeDeposit && p.AmountCents == 72000
		})).Return(nil)
		f.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.users.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7, Email: "r@x.io"}, nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.email.On("SendReservationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.ConfirmDeposit(ctx, renter, 10, domain.PaymentMethodCard)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusConfirmed, out.Status)
		assert.True(t, out.DepositPaid)
		f.payments.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("DuplicateDepositConflicts", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.DepositPaid = true
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, err := f.svc.ConfirmDeposit(ctx, renter, 10, domain.PaymentMethodCard)
		assert.True(t, errors.Is(err, domain.ErrConflict))
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ForeignRenterForbidden", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(requestedReservation(), nil)

		_, err := f.svc.ConfirmDeposit(ctx, Actor{ID: 99, Role: domain.UserRoleRenter}, 10, domain.PaymentMethodCard)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("CancelledReservationConflicts", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusCancelled
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, err := f.svc.ConfirmDeposit(ctx, renter, 10, domain.PaymentMethodCard)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func TestConfirmFinalPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("ActivatesAndAllocatesVehicle", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusConfirmed
		rv.DepositPaid = true
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)
		f.vehicles.On("UpdateStatus", mock.Anything, int32(3), domain.VehicleStatusRented).Return(nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Type == domain.PaymentTypeFinal && p.AmountCents == 240000-72000
		})).Return(nil)
		f.notes.On("Create", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.ConfirmFinalPayment(ctx, renter, 10, domain.PaymentMethodCard)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
		assert.True(t, out.FinalPaid)
	})

	t.Run("DuplicateDeliveryIsIdempotent", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		out, err := f.svc.ConfirmFinalPayment(ctx, renter, 10, domain.PaymentMethodCard)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.vehicles.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DepositUnpaidConflicts", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(requestedReservation(), nil)

		_, err := f.svc.ConfirmFinalPayment(ctx, renter, 10, domain.PaymentMethodCard)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func pickupInspection() *domain.Inspection {
	return &domain.Inspection{
		Inspector:           "Ana",
		ExteriorCondition:   domain.ConditionGood,
		InteriorCondition:   domain.ConditionGood,
		TiresCondition:      domain.ConditionGood,
		LightsCondition:     domain.ConditionGood,
		MechanicalCondition: domain.ConditionGood,
		FuelLevel:           100,
	}
}

func TestNotifyPickupCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("ActivatesConfirmedReservation", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusConfirmed
		rv.DepositPaid = true
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.inspections.On("Create", mock.Anything, mock.MatchedBy(func(ins *domain.Inspection) bool {
			return ins.Type == domain.InspectionTypePickup && ins.ReservationID == 10
		})).Return(nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)
		f.vehicles.On("UpdateStatus", mock.Anything, int32(3), domain.VehicleStatusRented).Return(nil)

		out, err := f.svc.NotifyPickupCompleted(ctx, admin, 10, pickupInspection())
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
	})

	t.Run("AlreadyActiveDoesNotReallocate", func(t *testing.T) {
		// Final payment activated first; the pickup report only stores
		// the inspection.
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.inspections.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)

		out, err := f.svc.NotifyPickupCompleted(ctx, admin, 10, pickupInspection())
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
		f.vehicles.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnpaidReservationConflicts", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(requestedReservation(), nil)

		_, err := f.svc.NotifyPickupCompleted(ctx, admin, 10, pickupInspection())
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("RenterForbidden", func(t *testing.T) {
		f := newReservationFixture()
		_, err := f.svc.NotifyPickupCompleted(ctx, renter, 10, pickupInspection())
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("DuplicateInspectionConflicts", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.inspections.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

		_, err := f.svc.NotifyPickupCompleted(ctx, admin, 10, pickupInspection())
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func TestNotifyReturnCompleted(t *testing.T) {
	ctx := context.Background()

	returnInspection := func() *domain.Inspection {
		ins := pickupInspection()
		ins.VehiclePhoto = "photo.jpg"
		ins.ReceivedBy = "Ana"
		return ins
	}

	t.Run("FoldsChargesIntoExtrasTotal", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.inspections.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Type == domain.PaymentTypeExtra && p.AmountCents == 15000
		})).Return(nil)

		ins := returnInspection()
		ins.ExtraCharges = []domain.ExtraCharge{
			{Description: "scratched bumper", AmountCents: 10000},
			{Description: "fuel missing", AmountCents: 5000},
		}

		out, err := f.svc.NotifyReturnCompleted(ctx, admin, 10, ins)
		assert.NoError(t, err)
		assert.Equal(t, int64(15000), out.ExtrasTotalCents)
		assert.Equal(t, out.SubtotalCents+out.ExtrasTotalCents, out.TotalCents)
		// Status untouched until the admin confirms the return.
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
	})

	t.Run("NoChargesNoPaymentRow", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.inspections.On("Create", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.NotifyReturnCompleted(ctx, admin, 10, returnInspection())
		assert.NoError(t, err)
		assert.Equal(t, int64(0), out.ExtrasTotalCents)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingVehiclePhotoRejected", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(activeReservation(), nil)

		ins := returnInspection()
		ins.VehiclePhoto = ""
		_, err := f.svc.NotifyReturnCompleted(ctx, admin, 10, ins)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("DamageWithoutPhotoRejected", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(activeReservation(), nil)

		ins := returnInspection()
		ins.Damages = []domain.Damage{{Description: "dent"}}
		_, err := f.svc.NotifyReturnCompleted(ctx, admin, 10, ins)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestExtendReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("RepricesAtOriginalRate", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		rv.EndDate = day(6)
		rv.TotalDays = 5
		rv.SubtotalCents = 400000
		rv.TotalCents = 400000
		f.reservations.On("Extend", mock.Anything, rv, day(6), day(8)).Return(nil)

		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		out, err := f.svc.ExtendReservation(ctx, renter, 10, day(8))
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusExtended, out.Status)
		assert.Equal(t, int32(7), out.TotalDays)
		assert.Equal(t, int64(560000), out.SubtotalCents)
		assert.Equal(t, int64(560000), out.TotalCents)
		// Deposit is fixed at creation.
		assert.Equal(t, int64(72000), out.DepositCents)
		assert.NotNil(t, out.OriginalEndDate)
		assert.Equal(t, day(6), *out.OriginalEndDate)
	})

	t.Run("NonIncreasingEndRejected", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, err := f.svc.ExtendReservation(ctx, renter, 10, rv.EndDate)
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})

	t.Run("ConfirmedReservationConflicts", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusConfirmed
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, err := f.svc.ExtendReservation(ctx, renter, 10, day(10))
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("SecondExtensionKeepsOriginalEndDate", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		rv.Status = domain.ReservationStatusExtended
		orig := day(4)
		rv.OriginalEndDate = &orig
		rv.EndDate = day(6)
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("Extend", mock.Anything, rv, day(6), day(9)).Return(nil)

		out, err := f.svc.ExtendReservation(ctx, renter, 10, day(9))
		assert.NoError(t, err)
		assert.Equal(t, day(4), *out.OriginalEndDate)
	})
}

func TestEarlyReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("RefundIsAdvisoryDelta", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		rv.EndDate = day(6)
		rv.TotalDays = 5
		rv.SubtotalCents = 400000
		rv.TotalCents = 400000
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)

		out, refund, err := f.svc.EarlyReturn(ctx, renter, 10, day(4))
		assert.NoError(t, err)
		assert.Equal(t, int64(160000), refund)
		assert.Equal(t, int32(3), out.TotalDays)
		assert.True(t, out.IsEarlyReturn)
		assert.Equal(t, day(4), out.EndDate)
		// Shortening never raises the bill.
		assert.LessOrEqual(t, out.TotalCents, int64(400000))
		// Status unchanged; the return flow still runs.
		assert.Equal(t, domain.ReservationStatusActive, out.Status)
	})

	t.Run("DateOutsideWindowRejected", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		rv.EndDate = day(6)
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, _, err := f.svc.EarlyReturn(ctx, renter, 10, day(6))
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))

		_, _, err = f.svc.EarlyReturn(ctx, renter, 10, day(1))
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmedCancels", func(t *testing.T) {
		f := newReservationFixture()
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusConfirmed
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)
		f.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.users.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7, Email: "r@x.io"}, nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.email.On("SendReservationCancellation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.CancelReservation(ctx, renter, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCancelled, out.Status)
	})

	t.Run("ActiveCannotCancel", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(activeReservation(), nil)

		_, err := f.svc.CancelReservation(ctx, renter, 10)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func TestMarkReturned(t *testing.T) {
	ctx := context.Background()

	t.Run("CompletesAndReleases", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)
		f.reservations.On("Update", mock.Anything, rv).Return(nil)
		f.vehicles.On("UpdateStatus", mock.Anything, int32(3), domain.VehicleStatusAvailable).Return(nil)
		f.users.On("IncrementTotalRentals", mock.Anything, int32(7)).Return(nil)
		f.notes.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Kind == domain.NotificationRatingRequest
		})).Return(nil)

		out, err := f.svc.MarkReturned(ctx, admin, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCompleted, out.Status)
		f.users.AssertCalled(t, "IncrementTotalRentals", mock.Anything, int32(7))
	})

	t.Run("RenterForbidden", func(t *testing.T) {
		f := newReservationFixture()
		_, err := f.svc.MarkReturned(ctx, renter, 10)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("CompletedConflicts", func(t *testing.T) {
		f := newReservationFixture()
		rv := activeReservation()
		rv.Status = domain.ReservationStatusCompleted
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(rv, nil)

		_, err := f.svc.MarkReturned(ctx, admin, 10)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("FreeWindowOnAvailableVehicle", func(t *testing.T) {
		f := newReservationFixture()
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(3), day(1), day(4), int32(0)).
			Return([]domain.Reservation{}, nil)

		res, err := f.svc.CheckAvailability(ctx, 3, day(1), day(4), 0)
		assert.NoError(t, err)
		assert.True(t, res.Available)
		f.vehicles.AssertNotCalled(t, "ListAlternatives", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RentedVehicleNotBookable", func(t *testing.T) {
		// A clear calendar is not enough; the vehicle itself must be
		// operationally AVAILABLE.
		f := newReservationFixture()
		v := testVehicle()
		v.Status = domain.VehicleStatusRented
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(v, nil)
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(3), day(1), day(4), int32(0)).
			Return([]domain.Reservation{}, nil)
		alt := domain.Vehicle{ID: 9, Segment: domain.SegmentStandard, Status: domain.VehicleStatusAvailable}
		f.vehicles.On("ListAlternatives", mock.Anything, int32(3), domain.SegmentStandard, day(1), day(4), int32(5)).
			Return([]domain.Vehicle{alt}, nil)

		res, err := f.svc.CheckAvailability(ctx, 3, day(1), day(4), 0)
		assert.NoError(t, err)
		assert.False(t, res.Available)
		assert.Len(t, res.Alternatives, 1)
	})

	t.Run("OverlapYieldsConflictsAndAlternatives", func(t *testing.T) {
		f := newReservationFixture()
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		blocker := *requestedReservation()
		blocker.Status = domain.ReservationStatusConfirmed
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(3), day(1), day(4), int32(0)).
			Return([]domain.Reservation{blocker}, nil)
		f.vehicles.On("ListAlternatives", mock.Anything, int32(3), domain.SegmentStandard, day(1), day(4), int32(5)).
			Return([]domain.Vehicle{}, nil)

		res, err := f.svc.CheckAvailability(ctx, 3, day(1), day(4), 0)
		assert.NoError(t, err)
		assert.False(t, res.Available)
		assert.Len(t, res.Conflicts, 1)
	})

	t.Run("BadRangeRejected", func(t *testing.T) {
		f := newReservationFixture()
		_, err := f.svc.CheckAvailability(ctx, 3, day(4), day(4), 0)
		assert.True(t, errors.Is(err, domain.ErrInvalidRange))
	})
}

func TestCreateSubstitute(t *testing.T) {
	ctx := context.Background()

	confirmedOriginal := func() *domain.Reservation {
		rv := requestedReservation()
		rv.Status = domain.ReservationStatusConfirmed
		rv.DepositPaid = true
		return rv
	}
	substituteVehicle := func() *domain.Vehicle {
		return &domain.Vehicle{
			ID:             4,
			Brand:          "Honda",
			Model:          "Civic",
			Segment:        domain.SegmentStandard,
			DailyRateCents: 90000,
			Status:         domain.VehicleStatusAvailable,
		}
	}
	wireHappyPath := func(f *reservationFixture, sub *domain.Vehicle) {
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(confirmedOriginal(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(4)).Return(sub, nil)
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(4), day(1), day(4), int32(0)).
			Return([]domain.Reservation{}, nil)
		f.reservations.On("Substitute", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
	}

	t.Run("KeepOriginalPriceUsesOriginalRate", func(t *testing.T) {
		f := newReservationFixture()
		wireHappyPath(f, substituteVehicle())

		sub, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, true)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusRequested, sub.Status)
		assert.Equal(t, int32(4), sub.VehicleID)
		assert.Equal(t, int32(7), sub.RenterID)
		assert.Equal(t, day(1), sub.StartDate)
		assert.Equal(t, day(4), sub.EndDate)
		assert.Equal(t, int64(80000), sub.DailyRateCents)
		assert.Equal(t, int64(240000), sub.TotalCents)
		assert.NotEqual(t, "abc-123", sub.ConfirmationCode)
	})

	t.Run("SubstituteRateWhenPriceNotKept", func(t *testing.T) {
		f := newReservationFixture()
		wireHappyPath(f, substituteVehicle())

		sub, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, false)
		assert.NoError(t, err)
		assert.Equal(t, int64(90000), sub.DailyRateCents)
		assert.Equal(t, int64(270000), sub.TotalCents)
	})

	t.Run("SegmentDowngradeRejected", func(t *testing.T) {
		f := newReservationFixture()
		sub := substituteVehicle()
		sub.Segment = domain.SegmentBasic
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(confirmedOriginal(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(4)).Return(sub, nil)

		_, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, true)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		f.reservations.AssertNotCalled(t, "Substitute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SubstituteWindowTakenConflicts", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(confirmedOriginal(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(4)).Return(substituteVehicle(), nil)
		blocker := *requestedReservation()
		blocker.Status = domain.ReservationStatusConfirmed
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(4), day(1), day(4), int32(0)).
			Return([]domain.Reservation{blocker}, nil)
		f.vehicles.On("ListAlternatives", mock.Anything, int32(4), domain.SegmentStandard, day(1), day(4), int32(5)).
			Return([]domain.Vehicle{}, nil)

		_, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, true)
		assert.True(t, errors.Is(err, domain.ErrConflict))
		f.reservations.AssertNotCalled(t, "Substitute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RentedSubstituteRejected", func(t *testing.T) {
		f := newReservationFixture()
		sub := substituteVehicle()
		sub.Status = domain.VehicleStatusRented
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(confirmedOriginal(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(3)).Return(testVehicle(), nil)
		f.vehicles.On("GetByID", mock.Anything, int32(4)).Return(sub, nil)
		f.reservations.On("ListBlockingOverlaps", mock.Anything, int32(4), day(1), day(4), int32(0)).
			Return([]domain.Reservation{}, nil)
		f.vehicles.On("ListAlternatives", mock.Anything, int32(4), domain.SegmentStandard, day(1), day(4), int32(5)).
			Return([]domain.Vehicle{}, nil)

		_, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, true)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("ActiveOriginalConflicts", func(t *testing.T) {
		f := newReservationFixture()
		f.reservations.On("GetByID", mock.Anything, int32(10)).Return(activeReservation(), nil)

		_, err := f.svc.CreateSubstitute(ctx, admin, 10, 4, true)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("RenterForbidden", func(t *testing.T) {
		f := newReservationFixture()
		_, err := f.svc.CreateSubstitute(ctx, renter, 10, 4, true)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})
}
