package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

// blockingSet is the SQL literal for domain.BlockingStatuses, inlined into
// overlap queries.
var blockingSet = func() string {
	quoted := make([]string, len(domain.BlockingStatuses))
	for i, s := range domain.BlockingStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

const reservationColumns = `id, vehicle_id, renter_id, start_date, end_date, original_end_date,
	plan, total_days, daily_rate_cents, extras, subtotal_cents, extras_total_cents,
	total_cents, deposit_cents, deposit_paid, deposit_paid_at, final_paid, final_paid_at,
	is_early_return, early_return_date, confirmation_code, status, created_on, updated_on`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	rv := &domain.Reservation{}
	var extrasJSON []byte
	var createdOn, updatedOn time.Time
	err := row.Scan(
		&rv.ID, &rv.VehicleID, &rv.RenterID, &rv.StartDate, &rv.EndDate, &rv.OriginalEndDate,
		&rv.Plan, &rv.TotalDays, &rv.DailyRateCents, &extrasJSON, &rv.SubtotalCents, &rv.ExtrasTotalCents,
		&rv.TotalCents, &rv.DepositCents, &rv.DepositPaid, &rv.DepositPaidAt, &rv.FinalPaid, &rv.FinalPaidAt,
		&rv.IsEarlyReturn, &rv.EarlyReturnDate, &rv.ConfirmationCode, &rv.Status, &createdOn, &updatedOn,
	)
	if err != nil {
		return nil, err
	}
	rv.CreatedOn = createdOn.Format("2006-01-02")
	rv.UpdatedOn = updatedOn.Format("2006-01-02")
	if len(extrasJSON) > 0 {
		if err := json.Unmarshal(extrasJSON, &rv.Extras); err != nil {
			return nil, fmt.Errorf("decode extras: %w", err)
		}
	}
	return rv, nil
}

// lockBlockingOverlap locks blocking reservations of the vehicle that
// overlap [start, end) under the half-open test, excluding excludeID.
// Returns domain.ErrConflict when any exist.
func lockBlockingOverlap(ctx context.Context, tx *sql.Tx, vehicleID int32, start, end time.Time, excludeID int32) error {
	query := `SELECT id FROM reservations
	          WHERE vehicle_id = $1
	            AND id != $2
	            AND status IN ` + blockingSet + `
	            AND NOT (end_date <= $3 OR start_date >= $4)
	          LIMIT 1
	          FOR UPDATE`
	var blocker int32
	err := tx.QueryRowContext(ctx, query, vehicleID, excludeID, start, end).Scan(&blocker)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: vehicle %d already reserved in that window (reservation %d)", domain.ErrConflict, vehicleID, blocker)
}

// isSerializationFailure reports whether err is a Postgres serialization
// failure; racing bookings surface as these under SERIALIZABLE.
func isSerializationFailure(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "40001"
	}
	return false
}

func (r *reservationRepository) CreateIfAvailable(ctx context.Context, rv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockBlockingOverlap(ctx, tx, rv.VehicleID, rv.StartDate, rv.EndDate, 0); err != nil {
		return err
	}

	extrasJSON, err := json.Marshal(rv.Extras)
	if err != nil {
		return fmt.Errorf("encode extras: %w", err)
	}

	query := `INSERT INTO reservations (vehicle_id, renter_id, start_date, end_date, plan, total_days,
	            daily_rate_cents, extras, subtotal_cents, extras_total_cents, total_cents, deposit_cents,
	            confirmation_code, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id`
	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		rv.VehicleID, rv.RenterID, rv.StartDate, rv.EndDate, rv.Plan, rv.TotalDays,
		rv.DailyRateCents, extrasJSON, rv.SubtotalCents, rv.ExtrasTotalCents, rv.TotalCents, rv.DepositCents,
		rv.ConfirmationCode, rv.Status, now, now,
	).Scan(&rv.ID)
	if err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: concurrent booking for the same window", domain.ErrConflict)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: concurrent booking for the same window", domain.ErrConflict)
		}
		return err
	}
	rv.CreatedOn = now.Format("2006-01-02")
	rv.UpdatedOn = rv.CreatedOn
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: reservation %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reservationRepository) Update(ctx context.Context, rv *domain.Reservation) error {
	extrasJSON, err := json.Marshal(rv.Extras)
	if err != nil {
		return fmt.Errorf("encode extras: %w", err)
	}
	query := `UPDATE reservations
	          SET end_date=$1, original_end_date=$2, total_days=$3, extras=$4, subtotal_cents=$5,
	              extras_total_cents=$6, total_cents=$7, deposit_paid=$8, deposit_paid_at=$9,
	              final_paid=$10, final_paid_at=$11, is_early_return=$12, early_return_date=$13,
	              status=$14, updated_on=$15
	          WHERE id=$16`
	res, err := r.db.ExecContext(ctx, query,
		rv.EndDate, rv.OriginalEndDate, rv.TotalDays, extrasJSON, rv.SubtotalCents,
		rv.ExtrasTotalCents, rv.TotalCents, rv.DepositPaid, rv.DepositPaidAt,
		rv.FinalPaid, rv.FinalPaidAt, rv.IsEarlyReturn, rv.EarlyReturnDate,
		rv.Status, time.Now(), rv.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: reservation %d", domain.ErrNotFound, rv.ID)
	}
	return nil
}

func (r *reservationRepository) ConfirmDeposit(ctx context.Context, rv *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A REQUESTED hold never blocks; the window must still be free at the
	// moment it becomes blocking.
	if err := lockBlockingOverlap(ctx, tx, rv.VehicleID, rv.StartDate, rv.EndDate, rv.ID); err != nil {
		return err
	}

	query := `UPDATE reservations
	          SET status=$1, deposit_paid=TRUE, deposit_paid_at=$2, updated_on=$2
	          WHERE id=$3 AND status=$4 AND deposit_paid=FALSE`
	res, err := tx.ExecContext(ctx, query,
		domain.ReservationStatusConfirmed, time.Now(), rv.ID, domain.ReservationStatusRequested)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: deposit already captured for reservation %d", domain.ErrConflict, rv.ID)
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: concurrent confirmation for the same window", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *reservationRepository) Extend(ctx context.Context, rv *domain.Reservation, addedFrom, addedTo time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockBlockingOverlap(ctx, tx, rv.VehicleID, addedFrom, addedTo, rv.ID); err != nil {
		return err
	}

	query := `UPDATE reservations
	          SET end_date=$1, original_end_date=$2, total_days=$3, subtotal_cents=$4,
	              total_cents=$5, status=$6, updated_on=$7
	          WHERE id=$8`
	if _, err := tx.ExecContext(ctx, query,
		rv.EndDate, rv.OriginalEndDate, rv.TotalDays, rv.SubtotalCents,
		rv.TotalCents, rv.Status, time.Now(), rv.ID,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: concurrent booking in the extension window", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *reservationRepository) Substitute(ctx context.Context, original, substitute *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockBlockingOverlap(ctx, tx, substitute.VehicleID, substitute.StartDate, substitute.EndDate, 0); err != nil {
		return err
	}

	cancel := `UPDATE reservations SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
	res, err := tx.ExecContext(ctx, cancel,
		domain.ReservationStatusCancelled, time.Now(), original.ID, original.Status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: reservation %d changed state during substitution", domain.ErrConflict, original.ID)
	}

	extrasJSON, err := json.Marshal(substitute.Extras)
	if err != nil {
		return fmt.Errorf("encode extras: %w", err)
	}
	insert := `INSERT INTO reservations (vehicle_id, renter_id, start_date, end_date, plan, total_days,
	             daily_rate_cents, extras, subtotal_cents, extras_total_cents, total_cents, deposit_cents,
	             confirmation_code, status, created_on, updated_on)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	           RETURNING id`
	now := time.Now()
	err = tx.QueryRowContext(ctx, insert,
		substitute.VehicleID, substitute.RenterID, substitute.StartDate, substitute.EndDate,
		substitute.Plan, substitute.TotalDays, substitute.DailyRateCents, extrasJSON,
		substitute.SubtotalCents, substitute.ExtrasTotalCents, substitute.TotalCents,
		substitute.DepositCents, substitute.ConfirmationCode, substitute.Status, now, now,
	).Scan(&substitute.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: concurrent booking for the substitute window", domain.ErrConflict)
		}
		return err
	}
	original.Status = domain.ReservationStatusCancelled
	return nil
}

func (r *reservationRepository) ListBlockingOverlaps(ctx context.Context, vehicleID int32, start, end time.Time, excludeID int32) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE vehicle_id = $1
	            AND id != $2
	            AND status IN ` + blockingSet + `
	            AND NOT (end_date <= $3 OR start_date >= $4)
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, vehicleID, excludeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error) {
	query := `SELECT count(*) FROM reservations WHERE vehicle_id = $1 AND status IN ` + blockingSet
	var count int32
	if err := r.db.QueryRowContext(ctx, query, vehicleID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reservationRepository) ListByRenter(ctx context.Context, renterID int32) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE renter_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListAll(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}
