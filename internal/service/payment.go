package service

import (
	"context"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type paymentService struct {
	paymentRepo     repository.PaymentRepository
	reservationRepo repository.ReservationRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository, reservationRepo repository.ReservationRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, reservationRepo: reservationRepo}
}

func (s *paymentService) ListByReservation(ctx context.Context, actor Actor, reservationID int32) ([]domain.Payment, *domain.PaymentTotals, error) {
	rv, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if rv.RenterID != actor.ID && !actor.IsAdmin() {
		return nil, nil, fmt.Errorf("%w: reservation %d belongs to another renter", domain.ErrForbidden, reservationID)
	}
	payments, err := s.paymentRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	return payments, totals(payments), nil
}

func (s *paymentService) ListByRenter(ctx context.Context, actor Actor, renterID int32) ([]domain.Payment, *domain.PaymentTotals, error) {
	if renterID != actor.ID && !actor.IsAdmin() {
		return nil, nil, fmt.Errorf("%w: cannot read another renter's payments", domain.ErrForbidden)
	}
	payments, err := s.paymentRepo.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, nil, err
	}
	return payments, totals(payments), nil
}

func totals(payments []domain.Payment) *domain.PaymentTotals {
	t := &domain.PaymentTotals{}
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentStatusCompleted:
			t.TotalPaidCents += p.AmountCents
			t.CompletedCount++
		case domain.PaymentStatusPending:
			t.PendingCents += p.AmountCents
			t.PendingCount++
		}
		if p.Status != domain.PaymentStatusFailed {
			switch p.Type {
			case domain.PaymentTypeDeposit:
				t.DepositTotalCents += p.AmountCents
			case domain.PaymentTypeFinal:
				t.FinalTotalCents += p.AmountCents
			case domain.PaymentTypeExtra:
				t.ExtraTotalCents += p.AmountCents
			}
		}
	}
	return t
}
