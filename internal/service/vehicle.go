package service

import (
	"context"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type vehicleService struct {
	vehicleRepo     repository.VehicleRepository
	reservationRepo repository.ReservationRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, reservationRepo repository.ReservationRepository) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, reservationRepo: reservationRepo}
}

func (s *vehicleService) AddVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	if !v.Segment.Valid() {
		return fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, v.Segment)
	}
	if v.DailyRateCents <= 0 {
		return fmt.Errorf("%w: daily rate must be positive", domain.ErrValidation)
	}
	if v.Status == "" {
		v.Status = domain.VehicleStatusAvailable
	}
	return s.vehicleRepo.Create(ctx, v)
}

func (s *vehicleService) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, actor Actor, v *domain.Vehicle) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	if !v.Segment.Valid() {
		return fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, v.Segment)
	}
	return s.vehicleRepo.Update(ctx, v)
}

func (s *vehicleService) UpdateVehicleStatus(ctx context.Context, actor Actor, id int32, status domain.VehicleStatus) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	switch status {
	case domain.VehicleStatusAvailable, domain.VehicleStatusRented, domain.VehicleStatusMaintenance:
	default:
		return fmt.Errorf("%w: unknown vehicle status %q", domain.ErrValidation, status)
	}
	return s.vehicleRepo.UpdateStatus(ctx, id, status)
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, actor Actor, id int32) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", domain.ErrForbidden)
	}
	count, err := s.reservationRepo.CountBlockingByVehicle(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: vehicle %d has %d open reservations", domain.ErrConflict, id, count)
	}
	return s.vehicleRepo.Delete(ctx, id)
}

func (s *vehicleService) ListVehicles(ctx context.Context, filter VehicleListFilter) ([]domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx, repository.VehicleFilter{
		Segment:       filter.Segment,
		Transmission:  filter.Transmission,
		MinSeats:      filter.MinSeats,
		MinRateCents:  filter.MinRateCents,
		MaxRateCents:  filter.MaxRateCents,
		AvailableFrom: filter.AvailableFrom,
		AvailableTo:   filter.AvailableTo,
	})
}
