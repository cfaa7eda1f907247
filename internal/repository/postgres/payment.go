package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, reservation_id, amount_cents, type, method, status, COALESCE(transaction_id, ''), paid_at, created_on`

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	p := &domain.Payment{}
	var createdOn time.Time
	err := row.Scan(&p.ID, &p.ReservationID, &p.AmountCents, &p.Type, &p.Method, &p.Status, &p.TransactionID, &p.PaidAt, &createdOn)
	if err != nil {
		return nil, err
	}
	p.CreatedOn = createdOn.Format("2006-01-02")
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (reservation_id, amount_cents, type, method, status, transaction_id, paid_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		p.ReservationID, p.AmountCents, p.Type, p.Method, p.Status, p.TransactionID, p.PaidAt, now,
	).Scan(&p.ID)
	if err != nil {
		return err
	}
	p.CreatedOn = now.Format("2006-01-02")
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, transaction_id=$2, paid_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, p.Status, p.TransactionID, p.PaidAt, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: payment %d", domain.ErrNotFound, p.ID)
	}
	return nil
}

func (r *paymentRepository) ListByReservation(ctx context.Context, reservationID int32) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = $1 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepository) ListByRenter(ctx context.Context, renterID int32) ([]domain.Payment, error) {
	query := `SELECT p.id, p.reservation_id, p.amount_cents, p.type, p.method, p.status,
	            COALESCE(p.transaction_id, ''), p.paid_at, p.created_on
	          FROM payments p
	          JOIN reservations rv ON rv.id = p.reservation_id
	          WHERE rv.renter_id = $1 ORDER BY p.created_on DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query, renterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]domain.Payment, error) {
	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
