package jobs

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// MarkOverdueReservations flags rentals whose end date has passed while the
// car is still out. The reservation stays ACTIVE/EXTENDED; the sweep only
// notifies. Forcing COMPLETED is an admin decision.
func (jr *JobRunner) MarkOverdueReservations() {
	jr.runWithRecovery("MarkOverdueReservations", func() {
		ctx := context.Background()

		query := `
			SELECT rv.id, rv.renter_id, rv.end_date, rv.confirmation_code,
			       v.brand, v.model
			FROM reservations rv
			JOIN vehicles v ON v.id = rv.vehicle_id
			WHERE rv.status IN ('ACTIVE', 'EXTENDED')
			  AND rv.end_date < $1
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now())
		if err != nil {
			logger.Error("Failed to query overdue reservations", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				id       int32
				renterID int32
				endDate  time.Time
				code     string
				brand    string
				model    string
			)
			if err := rows.Scan(&id, &renterID, &endDate, &code, &brand, &model); err != nil {
				logger.Error("Failed to scan overdue reservation", "error", err)
				continue
			}

			note := &domain.Notification{
				UserID:        renterID,
				Kind:          domain.NotificationReturnOverdue,
				Title:         "Vehicle return overdue",
				Message:       fmt.Sprintf("Your rental of the %s %s (reservation %s) was due on %s. Please return the vehicle.", brand, model, code, endDate.Format("2006-01-02")),
				ReservationID: &id,
			}
			if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
				logger.Error("Failed to create overdue notification", "reservation_id", id, "error", err)
				continue
			}

			logger.Debug("Reservation overdue",
				"reservation_id", id,
				"renter_id", renterID,
				"end_date", endDate.Format("2006-01-02"))
			count++
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue reservations", "error", err)
			return
		}

		logger.Info("Overdue reservations notified", "count", count)
	})
}

// SendPickupReminders notifies renters whose confirmed reservation starts
// tomorrow.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		ctx := context.Background()

		tomorrow := time.Now().AddDate(0, 0, 1)
		query := `
			SELECT rv.id, rv.renter_id, rv.start_date, rv.confirmation_code,
			       v.brand, v.model, u.email, u.first_name, u.last_name
			FROM reservations rv
			JOIN vehicles v ON v.id = rv.vehicle_id
			JOIN users u ON u.id = rv.renter_id
			WHERE rv.status = 'CONFIRMED'
			  AND rv.start_date::date = $1::date
		`

		rows, err := jr.db.QueryContext(ctx, query, tomorrow)
		if err != nil {
			logger.Error("Failed to query upcoming pickups", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				id        int32
				renterID  int32
				startDate time.Time
				code      string
				brand     string
				model     string
				email     string
				firstName string
				lastName  string
			)
			if err := rows.Scan(&id, &renterID, &startDate, &code, &brand, &model, &email, &firstName, &lastName); err != nil {
				logger.Error("Failed to scan upcoming pickup", "error", err)
				continue
			}

			note := &domain.Notification{
				UserID:        renterID,
				Kind:          domain.NotificationPickupReminder,
				Title:         "Pickup tomorrow",
				Message:       fmt.Sprintf("Your %s %s (reservation %s) is ready for pickup on %s.", brand, model, code, startDate.Format("2006-01-02")),
				ReservationID: &id,
			}
			if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
				logger.Error("Failed to create pickup reminder", "reservation_id", id, "error", err)
				continue
			}

			if jr.services != nil && jr.services.Email != nil {
				name := firstName + " " + lastName
				if err := jr.services.Email.SendPickupReminder(ctx, email, name, brand+" "+model, code, startDate); err != nil {
					logger.Error("Failed to email pickup reminder", "reservation_id", id, "error", err)
				}
			}
			count++
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating upcoming pickups", "error", err)
			return
		}

		logger.Info("Pickup reminders sent", "count", count)
	})
}
