package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
)

var reservationRows = []string{
	"id", "vehicle_id", "renter_id", "start_date", "end_date", "original_end_date",
	"plan", "total_days", "daily_rate_cents", "extras", "subtotal_cents", "extras_total_cents",
	"total_cents", "deposit_cents", "deposit_paid", "deposit_paid_at", "final_paid", "final_paid_at",
	"is_early_return", "early_return_date", "confirmation_code", "status", "created_on", "updated_on",
}

func reservationRow(id int32, status domain.ReservationStatus, start, end time.Time) []driver.Value {
	now := time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, int32(3), int32(7), start, end, nil,
		string(domain.PlanRegular), int32(3), int64(80000), []byte(`[]`), int64(240000), int64(0),
		int64(240000), int64(72000), false, nil, false, nil,
		false, nil, "abc-123", string(status), now, now,
	}
}

func addRow(rs *sqlmock.Rows, vals []driver.Value) {
	rs.AddRow(vals...)
}

func TestReservationRepository_CreateIfAvailable(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	newReservation := func() *domain.Reservation {
		return &domain.Reservation{
			VehicleID:        3,
			RenterID:         7,
			StartDate:        start,
			EndDate:          end,
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

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WithArgs(int32(3), int32(0), start, end).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(42)))
		mock.ExpectCommit()

		rv := newReservation()
		err = repo.CreateIfAvailable(context.Background(), rv)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), rv.ID)
		assert.NotEmpty(t, rv.CreatedOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WindowTakenConflicts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WithArgs(int32(3), int32(0), start, end).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(11)))
		mock.ExpectRollback()

		err = repo.CreateIfAvailable(context.Background(), newReservation())
		assert.True(t, errors.Is(err, domain.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SerializationFailureConflicts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "40001"})
		mock.ExpectRollback()

		err = repo.CreateIfAvailable(context.Background(), newReservation())
		assert.True(t, errors.Is(err, domain.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		rows := sqlmock.NewRows(reservationRows)
		addRow(rows, reservationRow(10, domain.ReservationStatusRequested, start, end))
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id").
			WithArgs(int32(10)).
			WillReturnRows(rows)

		rv, err := repo.GetByID(context.Background(), 10)
		assert.NoError(t, err)
		assert.Equal(t, int32(10), rv.ID)
		assert.Equal(t, domain.ReservationStatusRequested, rv.Status)
		assert.Equal(t, "2024-06-30", rv.CreatedOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id").
			WithArgs(int32(99)).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.GetByID(context.Background(), 99)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestReservationRepository_ConfirmDeposit(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	rv := &domain.Reservation{
		ID:        10,
		VehicleID: 3,
		StartDate: start,
		EndDate:   end,
		Status:    domain.ReservationStatusRequested,
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WithArgs(int32(3), int32(10), start, end).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("UPDATE reservations").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.ConfirmDeposit(context.Background(), rv)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyCapturedConflicts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("UPDATE reservations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.ConfirmDeposit(context.Background(), rv)
		assert.True(t, errors.Is(err, domain.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AnotherBookingTookTheWindow", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		repo := NewReservationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM reservations").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int32(55)))
		mock.ExpectRollback()

		err = repo.ConfirmDeposit(context.Background(), rv)
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})
}

func TestReservationRepository_ListBlockingOverlaps(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepository(db)

	rows := sqlmock.NewRows(reservationRows)
	addRow(rows, reservationRow(21, domain.ReservationStatusConfirmed, start, end))
	mock.ExpectQuery("SELECT (.+) FROM reservations").
		WithArgs(int32(3), int32(0), start, end).
		WillReturnRows(rows)

	out, err := repo.ListBlockingOverlaps(context.Background(), 3, start, end, 0)
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, domain.ReservationStatusConfirmed, out[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_CountBlockingByVehicle(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepository(db)

	mock.ExpectQuery("SELECT count").
		WithArgs(int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int32(2)))

	count, err := repo.CountBlockingByVehicle(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), count)
}
