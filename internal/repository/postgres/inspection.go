package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type inspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) repository.InspectionRepository {
	return &inspectionRepository{db: db}
}

func (r *inspectionRepository) Create(ctx context.Context, ins *domain.Inspection) error {
	damages, err := json.Marshal(ins.Damages)
	if err != nil {
		return fmt.Errorf("encode damages: %w", err)
	}
	charges, err := json.Marshal(ins.ExtraCharges)
	if err != nil {
		return fmt.Errorf("encode extra charges: %w", err)
	}

	query := `INSERT INTO inspections (reservation_id, type, inspector, inspector_role,
	            exterior_condition, interior_condition, tires_condition, lights_condition,
	            mechanical_condition, fuel_level, damages, vehicle_photo, received_by, received_at,
	            extra_charges, total_extra_cents, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`
	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		ins.ReservationID, ins.Type, ins.Inspector, ins.InspectorRole,
		ins.ExteriorCondition, ins.InteriorCondition, ins.TiresCondition, ins.LightsCondition,
		ins.MechanicalCondition, ins.FuelLevel, damages, ins.VehiclePhoto, ins.ReceivedBy, ins.ReceivedAt,
		charges, ins.TotalExtraCents, ins.Notes, now,
	).Scan(&ins.ID)
	if err != nil {
		// One inspection per reservation and type.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s inspection already recorded for reservation %d", domain.ErrConflict, ins.Type, ins.ReservationID)
		}
		return err
	}
	ins.CreatedOn = now.Format("2006-01-02")
	return nil
}

func (r *inspectionRepository) GetByReservationAndType(ctx context.Context, reservationID int32, t domain.InspectionType) (*domain.Inspection, error) {
	query := `SELECT id, reservation_id, type, inspector, inspector_role,
	            exterior_condition, interior_condition, tires_condition, lights_condition,
	            mechanical_condition, fuel_level, damages, COALESCE(vehicle_photo, ''),
	            COALESCE(received_by, ''), received_at, extra_charges, total_extra_cents,
	            COALESCE(notes, ''), created_on
	          FROM inspections WHERE reservation_id = $1 AND type = $2`
	ins := &domain.Inspection{}
	var damages, charges []byte
	var createdOn time.Time
	err := r.db.QueryRowContext(ctx, query, reservationID, t).Scan(
		&ins.ID, &ins.ReservationID, &ins.Type, &ins.Inspector, &ins.InspectorRole,
		&ins.ExteriorCondition, &ins.InteriorCondition, &ins.TiresCondition, &ins.LightsCondition,
		&ins.MechanicalCondition, &ins.FuelLevel, &damages, &ins.VehiclePhoto,
		&ins.ReceivedBy, &ins.ReceivedAt, &charges, &ins.TotalExtraCents,
		&ins.Notes, &createdOn,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s inspection for reservation %d", domain.ErrNotFound, t, reservationID)
	}
	if err != nil {
		return nil, err
	}
	ins.CreatedOn = createdOn.Format("2006-01-02")
	if len(damages) > 0 {
		if err := json.Unmarshal(damages, &ins.Damages); err != nil {
			return nil, fmt.Errorf("decode damages: %w", err)
		}
	}
	if len(charges) > 0 {
		if err := json.Unmarshal(charges, &ins.ExtraCharges); err != nil {
			return nil, fmt.Errorf("decode extra charges: %w", err)
		}
	}
	return ins, nil
}
