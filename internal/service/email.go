package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"carrental-backend/internal/logger"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(m *gomail.Message) error {
	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func money(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func (s *emailService) SendReservationConfirmation(ctx context.Context, email, name, vehicleName, code string, totalCents int64) error {
	logger.ExternalServiceCall("smtp", "SendReservationConfirmation", "to", email)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your reservation is confirmed")

	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s is confirmed.\n\nConfirmation code: %s\nTotal: %s\n\nPlease bring your driver's license to pickup.\n\nBest regards,\nThe Rentals Team", name, vehicleName, code, money(totalCents))
	m.SetBody("text/plain", body)

	err := s.send(m)
	logger.ExternalServiceResult("smtp", "SendReservationConfirmation", err, "to", email)
	return err
}

func (s *emailService) SendReservationCancellation(ctx context.Context, email, name, vehicleName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your reservation was cancelled")

	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s has been cancelled.\n\nBest regards,\nThe Rentals Team", name, vehicleName)
	m.SetBody("text/plain", body)

	return s.send(m)
}

func (s *emailService) SendPickupReminder(ctx context.Context, email, name, vehicleName, code string, pickupDate time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your rental starts tomorrow")

	body := fmt.Sprintf("Hello %s,\n\nYour %s (reservation %s) is ready for pickup on %s.\n\nBest regards,\nThe Rentals Team", name, vehicleName, code, pickupDate.Format("January 2, 2006"))
	m.SetBody("text/plain", body)

	return s.send(m)
}

func (s *emailService) SendPaymentReceipt(ctx context.Context, email, name, kind string, amountCents int64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Payment received")

	body := fmt.Sprintf("Hello %s,\n\nWe received your %s payment of %s.\n\nBest regards,\nThe Rentals Team", name, kind, money(amountCents))
	m.SetBody("text/plain", body)

	return s.send(m)
}
