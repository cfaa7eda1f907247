package http

import (
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type paymentListResponse struct {
	Payments []domain.Payment      `json:"payments"`
	Totals   *domain.PaymentTotals `json:"totals"`
}

func (h *PaymentHandler) ListByReservation(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	payments, totals, err := h.payments.ListByReservation(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentListResponse{Payments: payments, Totals: totals})
}

func (h *PaymentHandler) ListByRenter(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	renterID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	payments, totals, err := h.payments.ListByRenter(r.Context(), actor, renterID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentListResponse{Payments: payments, Totals: totals})
}
