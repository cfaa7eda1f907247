package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth          service.AuthService
	Vehicles      service.VehicleService
	Reservations  service.ReservationService
	Payments      service.PaymentService
	Notifications service.NotificationService
	Tokens        security.TokenManager
}

// NewRouter builds the full API route table.
func NewRouter(svcs Services) *mux.Router {
	validate := validator.New()

	authHandler := NewAuthHandler(svcs.Auth, validate)
	vehicleHandler := NewVehicleHandler(svcs.Vehicles, validate)
	reservationHandler := NewReservationHandler(svcs.Reservations, validate)
	paymentHandler := NewPaymentHandler(svcs.Payments)
	notificationHandler := NewNotificationHandler(svcs.Notifications)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", vehicleHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id:[0-9]+}/availability", reservationHandler.CheckAvailability).Methods(http.MethodGet)
	api.HandleFunc("/reservations/quote", reservationHandler.Quote).Methods(http.MethodPost)

	// Authenticated routes
	auth := api.NewRoute().Subrouter()
	auth.Use(AuthMiddleware(svcs.Tokens))

	auth.HandleFunc("/users/me", authHandler.GetProfile).Methods(http.MethodGet)
	auth.HandleFunc("/users/me", authHandler.UpdateProfile).Methods(http.MethodPut)
	auth.HandleFunc("/users/{id:[0-9]+}/payments", paymentHandler.ListByRenter).Methods(http.MethodGet)

	auth.HandleFunc("/vehicles", vehicleHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Update).Methods(http.MethodPut)
	auth.HandleFunc("/vehicles/{id:[0-9]+}/status", vehicleHandler.UpdateStatus).Methods(http.MethodPatch)
	auth.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Delete).Methods(http.MethodDelete)

	auth.HandleFunc("/reservations", reservationHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/reservations", reservationHandler.ListMine).Methods(http.MethodGet)
	auth.HandleFunc("/admin/reservations", reservationHandler.ListAll).Methods(http.MethodGet)
	auth.HandleFunc("/reservations/{id:[0-9]+}", reservationHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/reservations/{id:[0-9]+}/deposit", reservationHandler.ConfirmDeposit).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/final-payment", reservationHandler.ConfirmFinalPayment).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/pickup", reservationHandler.NotifyPickup).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/return", reservationHandler.NotifyReturn).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/inspections/{type}", reservationHandler.GetInspection).Methods(http.MethodGet)
	auth.HandleFunc("/reservations/{id:[0-9]+}/extend", reservationHandler.Extend).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/early-return", reservationHandler.EarlyReturn).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/cancel", reservationHandler.Cancel).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/mark-returned", reservationHandler.MarkReturned).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/substitute", reservationHandler.CreateSubstitute).Methods(http.MethodPost)
	auth.HandleFunc("/reservations/{id:[0-9]+}/payments", paymentHandler.ListByReservation).Methods(http.MethodGet)

	auth.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkAsRead).Methods(http.MethodPost)

	return r
}
