package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/pricing"
	"carrental-backend/internal/repository"
)

const maxAlternatives = 5

type reservationService struct {
	reservationRepo repository.ReservationRepository
	vehicleRepo     repository.VehicleRepository
	inspectionRepo  repository.InspectionRepository
	paymentRepo     repository.PaymentRepository
	userRepo        repository.UserRepository
	noteRepo        repository.NotificationRepository
	emailSvc        EmailService
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	vehicleRepo repository.VehicleRepository,
	inspectionRepo repository.InspectionRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		inspectionRepo:  inspectionRepo,
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		noteRepo:        noteRepo,
		emailSvc:        emailSvc,
	}
}

func (s *reservationService) Quote(ctx context.Context, vehicleID int32, start, end time.Time, plan domain.Plan, extras []domain.Extra) (*pricing.Quote, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrValidation, plan)
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	q, err := pricing.ForBooking(vehicle.DailyRateCents, start, end, plan, extras)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, vehicleID int32, start, end time.Time, excludeReservationID int32) (*AvailabilityResult, error) {
	if _, err := pricing.Days(start, end); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.reservationRepo.ListBlockingOverlaps(ctx, vehicleID, start, end, excludeReservationID)
	if err != nil {
		return nil, err
	}
	// The verdict requires the vehicle to be operationally AVAILABLE, not
	// merely free of calendar conflicts. RENTED and MAINTENANCE both fail.
	if len(conflicts) == 0 && vehicle.Status == domain.VehicleStatusAvailable {
		return &AvailabilityResult{Available: true}, nil
	}

	alts, err := s.vehicleRepo.ListAlternatives(ctx, vehicleID, vehicle.Segment, start, end, maxAlternatives)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{Available: false, Conflicts: conflicts, Alternatives: alts}, nil
}

func (s *reservationService) CreateReservation(ctx context.Context, actor Actor, vehicleID int32, start, end time.Time, plan domain.Plan, extras []domain.Extra) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "renterID", actor.ID, "vehicleID", vehicleID)

	if !plan.Valid() {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrValidation, plan)
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == domain.VehicleStatusMaintenance {
		return nil, fmt.Errorf("%w: vehicle %d is in maintenance", domain.ErrConflict, vehicleID)
	}

	quote, err := pricing.ForBooking(vehicle.DailyRateCents, start, end, plan, extras)
	if err != nil {
		return nil, err
	}

	rv := &domain.Reservation{
		VehicleID:        vehicleID,
		RenterID:         actor.ID,
		StartDate:        start,
		EndDate:          end,
		Plan:             plan,
		TotalDays:        quote.Days,
		DailyRateCents:   vehicle.DailyRateCents,
		Extras:           extras,
		SubtotalCents:    quote.SubtotalCents,
		ExtrasTotalCents: quote.ExtrasTotalCents,
		TotalCents:       quote.TotalCents,
		DepositCents:     quote.DepositCents,
		ConfirmationCode: uuid.NewString(),
		Status:           domain.ReservationStatusRequested,
	}

	if err := s.reservationRepo.CreateIfAvailable(ctx, rv); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "vehicleID", vehicleID)
		return nil, err
	}

	logger.ExitMethod("reservationService.CreateReservation", "reservationID", rv.ID)
	return rv, nil
}

// loadOwned fetches the reservation and enforces that the actor is the
// owning renter or an admin.
func (s *reservationService) loadOwned(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.RenterID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: reservation %d belongs to another renter", domain.ErrForbidden, id)
	}
	return rv, nil
}

func (s *reservationService) GetReservation(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	return s.loadOwned(ctx, actor, id)
}

func (s *reservationService) ListMyReservations(ctx context.Context, actor Actor) ([]domain.Reservation, error) {
	return s.reservationRepo.ListByRenter(ctx, actor.ID)
}

func (s *reservationService) ListReservations(ctx context.Context, actor Actor, status domain.ReservationStatus) ([]domain.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	return s.reservationRepo.ListAll(ctx, status)
}

func (s *reservationService) ConfirmDeposit(ctx context.Context, actor Actor, id int32, method domain.PaymentMethod) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.ConfirmDeposit", "reservationID", id)

	rv, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if rv.DepositPaid {
		return nil, fmt.Errorf("%w: deposit already paid for reservation %d", domain.ErrConflict, id)
	}
	if !rv.Status.CanTransition(domain.ReservationStatusConfirmed) {
		return nil, fmt.Errorf("%w: cannot confirm a %s reservation", domain.ErrConflict, rv.Status)
	}

	if err := s.reservationRepo.ConfirmDeposit(ctx, rv); err != nil {
		logger.ExitMethodWithError("reservationService.ConfirmDeposit", err, "reservationID", id)
		return nil, err
	}
	now := time.Now()
	rv.Status = domain.ReservationStatusConfirmed
	rv.DepositPaid = true
	rv.DepositPaidAt = &now

	s.recordPayment(ctx, rv.ID, rv.DepositCents, domain.PaymentTypeDeposit, method)
	s.notifyRenter(ctx, rv, domain.NotificationReservationConfirmed, "Reservation confirmed",
		fmt.Sprintf("Your reservation %s is confirmed.", rv.ConfirmationCode))
	s.sendConfirmationEmail(ctx, rv)

	logger.ExitMethod("reservationService.ConfirmDeposit", "reservationID", id)
	return rv, nil
}

func (s *reservationService) ConfirmFinalPayment(ctx context.Context, actor Actor, id int32, method domain.PaymentMethod) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.ConfirmFinalPayment", "reservationID", id)

	rv, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !rv.DepositPaid {
		return nil, fmt.Errorf("%w: deposit not paid for reservation %d", domain.ErrConflict, id)
	}
	if rv.FinalPaid {
		// Duplicate delivery of the same capture event. Nothing to redo.
		return rv, nil
	}

	now := time.Now()
	rv.FinalPaid = true
	rv.FinalPaidAt = &now
	if err := s.activate(ctx, rv); err != nil {
		return nil, err
	}

	s.recordPayment(ctx, rv.ID, rv.TotalCents-rv.DepositCents, domain.PaymentTypeFinal, method)
	s.notifyRenter(ctx, rv, domain.NotificationPaymentReceived, "Payment received",
		fmt.Sprintf("Final payment for reservation %s received.", rv.ConfirmationCode))

	logger.ExitMethod("reservationService.ConfirmFinalPayment", "reservationID", id)
	return rv, nil
}

// activate is the single place a reservation becomes ACTIVE. Both the
// final-payment path and the pickup-inspection path land here, so the
// vehicle flip happens at most once no matter how events arrive.
func (s *reservationService) activate(ctx context.Context, rv *domain.Reservation) error {
	if rv.Status == domain.ReservationStatusActive || rv.Status == domain.ReservationStatusExtended {
		return s.reservationRepo.Update(ctx, rv)
	}
	if !rv.Status.CanTransition(domain.ReservationStatusActive) {
		return fmt.Errorf("%w: cannot activate a %s reservation", domain.ErrConflict, rv.Status)
	}
	rv.Status = domain.ReservationStatusActive
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return err
	}
	if err := s.vehicleRepo.UpdateStatus(ctx, rv.VehicleID, domain.VehicleStatusRented); err != nil {
		logger.Error("failed to mark vehicle rented", "vehicleID", rv.VehicleID, "error", err)
	}
	return nil
}

func (s *reservationService) NotifyPickupCompleted(ctx context.Context, actor Actor, id int32, ins *domain.Inspection) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.NotifyPickupCompleted", "reservationID", id)

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: inspections are recorded by staff", domain.ErrForbidden)
	}
	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch rv.Status {
	case domain.ReservationStatusConfirmed, domain.ReservationStatusActive, domain.ReservationStatusExtended:
	default:
		return nil, fmt.Errorf("%w: pickup reported for a %s reservation", domain.ErrConflict, rv.Status)
	}

	ins.ReservationID = id
	ins.Type = domain.InspectionTypePickup
	if err := s.inspectionRepo.Create(ctx, ins); err != nil {
		return nil, err
	}

	if err := s.activate(ctx, rv); err != nil {
		return nil, err
	}
	logger.ExitMethod("reservationService.NotifyPickupCompleted", "reservationID", id)
	return rv, nil
}

func (s *reservationService) NotifyReturnCompleted(ctx context.Context, actor Actor, id int32, ins *domain.Inspection) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.NotifyReturnCompleted", "reservationID", id)

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: inspections are recorded by staff", domain.ErrForbidden)
	}
	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.Status != domain.ReservationStatusActive && rv.Status != domain.ReservationStatusExtended {
		return nil, fmt.Errorf("%w: return reported for a %s reservation", domain.ErrConflict, rv.Status)
	}

	if ins.VehiclePhoto == "" {
		return nil, fmt.Errorf("%w: return inspection requires a vehicle photo", domain.ErrValidation)
	}
	if ins.ReceivedBy == "" {
		return nil, fmt.Errorf("%w: return inspection requires receivedBy", domain.ErrValidation)
	}
	for _, d := range ins.Damages {
		if d.Photo == "" {
			return nil, fmt.Errorf("%w: damage %q has no photo", domain.ErrValidation, d.Description)
		}
	}

	ins.ReservationID = id
	ins.Type = domain.InspectionTypeReturn
	ins.TotalExtraCents = ins.TotalExtraCharges()
	if err := s.inspectionRepo.Create(ctx, ins); err != nil {
		return nil, err
	}

	if ins.TotalExtraCents > 0 {
		// Assessed charges ride on the extras bucket so that
		// total == subtotal + extrasTotal keeps holding.
		rv.ExtrasTotalCents += ins.TotalExtraCents
		rv.TotalCents = rv.SubtotalCents + rv.ExtrasTotalCents
		if err := s.reservationRepo.Update(ctx, rv); err != nil {
			return nil, err
		}
		s.recordPayment(ctx, rv.ID, ins.TotalExtraCents, domain.PaymentTypeExtra, domain.PaymentMethodCash)
	}

	logger.ExitMethod("reservationService.NotifyReturnCompleted", "reservationID", id, "extraCents", ins.TotalExtraCents)
	return rv, nil
}

func (s *reservationService) ExtendReservation(ctx context.Context, actor Actor, id int32, newEnd time.Time) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.ExtendReservation", "reservationID", id)

	rv, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if rv.Status != domain.ReservationStatusActive && rv.Status != domain.ReservationStatusExtended {
		return nil, fmt.Errorf("%w: cannot extend a %s reservation", domain.ErrConflict, rv.Status)
	}
	if !newEnd.After(rv.EndDate) {
		return nil, fmt.Errorf("%w: new end date must be after the current end date", domain.ErrInvalidRange)
	}

	days, subtotal, total, err := pricing.Reprice(rv, rv.StartDate, newEnd)
	if err != nil {
		return nil, err
	}

	addedFrom, addedTo := rv.EndDate, newEnd
	if rv.OriginalEndDate == nil {
		orig := rv.EndDate
		rv.OriginalEndDate = &orig
	}
	rv.EndDate = newEnd
	rv.TotalDays = days
	rv.SubtotalCents = subtotal
	rv.TotalCents = total
	rv.Status = domain.ReservationStatusExtended

	if err := s.reservationRepo.Extend(ctx, rv, addedFrom, addedTo); err != nil {
		logger.ExitMethodWithError("reservationService.ExtendReservation", err, "reservationID", id)
		return nil, err
	}
	logger.ExitMethod("reservationService.ExtendReservation", "reservationID", id, "newEnd", newEnd)
	return rv, nil
}

func (s *reservationService) EarlyReturn(ctx context.Context, actor Actor, id int32, date time.Time) (*domain.Reservation, int64, error) {
	logger.EnterMethod("reservationService.EarlyReturn", "reservationID", id)

	rv, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, 0, err
	}
	if rv.Status != domain.ReservationStatusActive && rv.Status != domain.ReservationStatusExtended {
		return nil, 0, fmt.Errorf("%w: cannot shorten a %s reservation", domain.ErrConflict, rv.Status)
	}
	if !date.After(rv.StartDate) || !date.Before(rv.EndDate) {
		return nil, 0, fmt.Errorf("%w: early return date must fall inside the rental window", domain.ErrInvalidRange)
	}

	oldTotal := rv.TotalCents
	days, subtotal, total, err := pricing.Reprice(rv, rv.StartDate, date)
	if err != nil {
		return nil, 0, err
	}

	rv.IsEarlyReturn = true
	rv.EarlyReturnDate = &date
	rv.EndDate = date
	rv.TotalDays = days
	rv.SubtotalCents = subtotal
	rv.TotalCents = total

	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, 0, err
	}

	refund := oldTotal - total
	logger.ExitMethod("reservationService.EarlyReturn", "reservationID", id, "refundCents", refund)
	return rv, refund, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CancelReservation", "reservationID", id)

	rv, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !rv.Status.CanTransition(domain.ReservationStatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s reservation", domain.ErrConflict, rv.Status)
	}

	rv.Status = domain.ReservationStatusCancelled
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.notifyRenter(ctx, rv, domain.NotificationReservationCancelled, "Reservation cancelled",
		fmt.Sprintf("Reservation %s has been cancelled.", rv.ConfirmationCode))
	s.sendCancellationEmail(ctx, rv)

	logger.ExitMethod("reservationService.CancelReservation", "reservationID", id)
	return rv, nil
}

func (s *reservationService) MarkReturned(ctx context.Context, actor Actor, id int32) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.MarkReturned", "reservationID", id)

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	rv, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rv.Status.CanTransition(domain.ReservationStatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete a %s reservation", domain.ErrConflict, rv.Status)
	}

	rv.Status = domain.ReservationStatusCompleted
	if err := s.reservationRepo.Update(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.UpdateStatus(ctx, rv.VehicleID, domain.VehicleStatusAvailable); err != nil {
		logger.Error("failed to release vehicle", "vehicleID", rv.VehicleID, "error", err)
	}
	if err := s.userRepo.IncrementTotalRentals(ctx, rv.RenterID); err != nil {
		logger.Error("failed to bump total rentals", "renterID", rv.RenterID, "error", err)
	}
	s.notifyRenter(ctx, rv, domain.NotificationRatingRequest, "How was your rental?",
		"Your rental is complete. Rate the vehicle to help other renters.")

	logger.ExitMethod("reservationService.MarkReturned", "reservationID", id)
	return rv, nil
}

func (s *reservationService) CreateSubstitute(ctx context.Context, actor Actor, originalID, substituteVehicleID int32, keepOriginalPrice bool) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateSubstitute", "originalID", originalID, "substituteVehicleID", substituteVehicleID)

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	original, err := s.reservationRepo.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if !original.Status.CanTransition(domain.ReservationStatusCancelled) {
		return nil, fmt.Errorf("%w: cannot substitute a %s reservation", domain.ErrConflict, original.Status)
	}

	origVehicle, err := s.vehicleRepo.GetByID(ctx, original.VehicleID)
	if err != nil {
		return nil, err
	}
	subVehicle, err := s.vehicleRepo.GetByID(ctx, substituteVehicleID)
	if err != nil {
		return nil, err
	}
	if !subVehicle.Segment.AtLeast(origVehicle.Segment) {
		return nil, fmt.Errorf("%w: substitute must be segment %s or better", domain.ErrValidation, origVehicle.Segment)
	}
	if subVehicle.Status == domain.VehicleStatusMaintenance {
		return nil, fmt.Errorf("%w: vehicle %d is in maintenance", domain.ErrConflict, substituteVehicleID)
	}

	avail, err := s.CheckAvailability(ctx, substituteVehicleID, original.StartDate, original.EndDate, 0)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, fmt.Errorf("%w: substitute vehicle %d is not free for the window", domain.ErrConflict, substituteVehicleID)
	}

	rate := subVehicle.DailyRateCents
	if keepOriginalPrice {
		rate = original.DailyRateCents
	}
	quote, err := pricing.ForBooking(rate, original.StartDate, original.EndDate, original.Plan, original.Extras)
	if err != nil {
		return nil, err
	}

	substitute := &domain.Reservation{
		VehicleID:        substituteVehicleID,
		RenterID:         original.RenterID,
		StartDate:        original.StartDate,
		EndDate:          original.EndDate,
		Plan:             original.Plan,
		TotalDays:        quote.Days,
		DailyRateCents:   rate,
		Extras:           original.Extras,
		SubtotalCents:    quote.SubtotalCents,
		ExtrasTotalCents: quote.ExtrasTotalCents,
		TotalCents:       quote.TotalCents,
		DepositCents:     quote.DepositCents,
		ConfirmationCode: uuid.NewString(),
		Status:           domain.ReservationStatusRequested,
	}

	if err := s.reservationRepo.Substitute(ctx, original, substitute); err != nil {
		logger.ExitMethodWithError("reservationService.CreateSubstitute", err, "originalID", originalID)
		return nil, err
	}

	s.notifyRenter(ctx, substitute, domain.NotificationReservationCancelled, "Vehicle substituted",
		fmt.Sprintf("Your reservation was moved to %s %s. New confirmation code: %s.",
			subVehicle.Brand, subVehicle.Model, substitute.ConfirmationCode))

	logger.ExitMethod("reservationService.CreateSubstitute", "substituteID", substitute.ID)
	return substitute, nil
}

func (s *reservationService) GetInspection(ctx context.Context, actor Actor, reservationID int32, t domain.InspectionType) (*domain.Inspection, error) {
	if _, err := s.loadOwned(ctx, actor, reservationID); err != nil {
		return nil, err
	}
	return s.inspectionRepo.GetByReservationAndType(ctx, reservationID, t)
}

// recordPayment writes the capture row. Failures are logged, not
// propagated; the state change already happened.
func (s *reservationService) recordPayment(ctx context.Context, reservationID int32, amountCents int64, t domain.PaymentType, method domain.PaymentMethod) {
	now := time.Now()
	p := &domain.Payment{
		ReservationID: reservationID,
		AmountCents:   amountCents,
		Type:          t,
		Method:        method,
		Status:        domain.PaymentStatusCompleted,
		TransactionID: uuid.NewString(),
		PaidAt:        &now,
	}
	if t == domain.PaymentTypeExtra {
		// Assessed at return, collected later.
		p.Status = domain.PaymentStatusPending
		p.PaidAt = nil
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		logger.Error("failed to record payment", "reservationID", reservationID, "type", t, "error", err)
	}
}

func (s *reservationService) notifyRenter(ctx context.Context, rv *domain.Reservation, kind domain.NotificationKind, title, message string) {
	rid := rv.ID
	note := &domain.Notification{
		UserID:        rv.RenterID,
		Kind:          kind,
		Title:         title,
		Message:       message,
		ReservationID: &rid,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("failed to create notification", "reservationID", rv.ID, "kind", kind, "error", err)
	}
}

func (s *reservationService) sendConfirmationEmail(ctx context.Context, rv *domain.Reservation) {
	renter, err := s.userRepo.GetByID(ctx, rv.RenterID)
	if err != nil {
		return
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rv.VehicleID)
	if err != nil {
		return
	}
	name := renter.FirstName + " " + renter.LastName
	vehicleName := vehicle.Brand + " " + vehicle.Model
	if err := s.emailSvc.SendReservationConfirmation(ctx, renter.Email, name, vehicleName, rv.ConfirmationCode, rv.TotalCents); err != nil {
		logger.Error("failed to send confirmation email", "reservationID", rv.ID, "error", err)
	}
}

func (s *reservationService) sendCancellationEmail(ctx context.Context, rv *domain.Reservation) {
	renter, err := s.userRepo.GetByID(ctx, rv.RenterID)
	if err != nil {
		return
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rv.VehicleID)
	if err != nil {
		return
	}
	name := renter.FirstName + " " + renter.LastName
	if err := s.emailSvc.SendReservationCancellation(ctx, renter.Email, name, vehicle.Brand+" "+vehicle.Model); err != nil {
		logger.Error("failed to send cancellation email", "reservationID", rv.ID, "error", err)
	}
}
