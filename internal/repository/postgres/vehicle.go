package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

const vehicleColumns = `id, brand, model, year, segment, transmission, fuel_type, seats, doors,
	daily_rate_cents, status, rating, total_ratings, features, COALESCE(description, ''),
	license_plate, created_on, updated_on`

// segmentRankSQL mirrors domain.Segment.Rank for ordering inside queries.
const segmentRankSQL = `CASE segment WHEN 'PREMIUM' THEN 1 WHEN 'STANDARD' THEN 2 WHEN 'BASIC' THEN 3 ELSE 4 END`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func scanVehicle(row interface{ Scan(...any) error }) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	var createdOn, updatedOn time.Time
	err := row.Scan(
		&v.ID, &v.Brand, &v.Model, &v.Year, &v.Segment, &v.Transmission, &v.FuelType, &v.Seats, &v.Doors,
		&v.DailyRateCents, &v.Status, &v.Rating, &v.TotalRatings, pq.Array(&v.Features), &v.Description,
		&v.LicensePlate, &createdOn, &updatedOn,
	)
	if err != nil {
		return nil, err
	}
	v.CreatedOn = createdOn.Format("2006-01-02")
	v.UpdatedOn = updatedOn.Format("2006-01-02")
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (brand, model, year, segment, transmission, fuel_type, seats, doors,
	            daily_rate_cents, status, rating, total_ratings, features, description, license_plate,
	            created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		v.Brand, v.Model, v.Year, v.Segment, v.Transmission, v.FuelType, v.Seats, v.Doors,
		v.DailyRateCents, v.Status, v.Rating, v.TotalRatings, pq.Array(v.Features), v.Description,
		v.LicensePlate, now, now,
	).Scan(&v.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("%w: license plate %s already registered", domain.ErrConflict, v.LicensePlate)
		}
		return err
	}
	v.CreatedOn = now.Format("2006-01-02")
	v.UpdatedOn = v.CreatedOn
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE UPPER(license_plate) = UPPER($1)`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, plate))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vehicle with plate %s", domain.ErrNotFound, plate)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles
	          SET brand=$1, model=$2, year=$3, segment=$4, transmission=$5, fuel_type=$6, seats=$7,
	              doors=$8, daily_rate_cents=$9, status=$10, rating=$11, total_ratings=$12,
	              features=$13, description=$14, license_plate=$15, updated_on=$16
	          WHERE id=$17`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query,
		v.Brand, v.Model, v.Year, v.Segment, v.Transmission, v.FuelType, v.Seats,
		v.Doors, v.DailyRateCents, v.Status, v.Rating, v.TotalRatings,
		pq.Array(v.Features), v.Description, v.LicensePlate, now, v.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, v.ID)
	}
	v.UpdatedOn = now.Format("2006-01-02")
	return nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("%w: vehicle %d has reservations", domain.ErrConflict, id)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, id)
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Segment != "" {
		query += ` AND segment = ` + arg(filter.Segment)
	}
	if filter.Transmission != "" {
		query += ` AND transmission = ` + arg(filter.Transmission)
	}
	if filter.MinSeats > 0 {
		query += ` AND seats >= ` + arg(filter.MinSeats)
	}
	if filter.MinRateCents > 0 {
		query += ` AND daily_rate_cents >= ` + arg(filter.MinRateCents)
	}
	if filter.MaxRateCents > 0 {
		query += ` AND daily_rate_cents <= ` + arg(filter.MaxRateCents)
	}
	if filter.AvailableFrom != nil && filter.AvailableTo != nil {
		query += ` AND status != '` + string(domain.VehicleStatusMaintenance) + `'
		           AND NOT EXISTS (
		             SELECT 1 FROM reservations rv
		             WHERE rv.vehicle_id = vehicles.id
		               AND rv.status IN ` + blockingSet + `
		               AND NOT (rv.end_date <= ` + arg(*filter.AvailableFrom) + ` OR rv.start_date >= ` + arg(*filter.AvailableTo) + `))`
	}
	query += ` ORDER BY ` + segmentRankSQL + `, rating DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (r *vehicleRepository) ListAlternatives(ctx context.Context, excludeVehicleID int32, segment domain.Segment, start, end time.Time, limit int32) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
	          WHERE id != $1
	            AND status = $2
	            AND ` + segmentRankSQL + ` <= $3
	            AND NOT EXISTS (
	              SELECT 1 FROM reservations rv
	              WHERE rv.vehicle_id = vehicles.id
	                AND rv.status IN ` + blockingSet + `
	                AND NOT (rv.end_date <= $4 OR rv.start_date >= $5))
	          ORDER BY ` + segmentRankSQL + `, rating DESC, id
	          LIMIT $6`
	rows, err := r.db.QueryContext(ctx, query,
		excludeVehicleID, domain.VehicleStatusAvailable, segment.Rank(), start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows *sql.Rows) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
