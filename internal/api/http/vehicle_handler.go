package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type VehicleHandler struct {
	vehicles service.VehicleService
	validate *validator.Validate
}

func NewVehicleHandler(vehicles service.VehicleService, validate *validator.Validate) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, validate: validate}
}

type vehicleRequest struct {
	Brand          string   `json:"brand" validate:"required"`
	Model          string   `json:"model" validate:"required"`
	Year           int32    `json:"year" validate:"required,gte=1980"`
	Segment        string   `json:"segment" validate:"required,oneof=PREMIUM STANDARD BASIC"`
	Transmission   string   `json:"transmission" validate:"required"`
	FuelType       string   `json:"fuel_type"`
	Seats          int32    `json:"seats" validate:"required,gte=1"`
	Doors          int32    `json:"doors" validate:"gte=0"`
	DailyRateCents int64    `json:"daily_rate_cents" validate:"required,gt=0"`
	Features       []string `json:"features"`
	Description    string   `json:"description"`
	LicensePlate   string   `json:"license_plate" validate:"required"`
}

func (req *vehicleRequest) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		Brand:          req.Brand,
		Model:          req.Model,
		Year:           req.Year,
		Segment:        domain.Segment(req.Segment),
		Transmission:   req.Transmission,
		FuelType:       req.FuelType,
		Seats:          req.Seats,
		Doors:          req.Doors,
		DailyRateCents: req.DailyRateCents,
		Features:       req.Features,
		Description:    req.Description,
		LicensePlate:   req.LicensePlate,
	}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req vehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	v := req.toDomain()
	if err := h.vehicles.AddVehicle(r.Context(), actor, v); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req vehicleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	v := req.toDomain()
	v.ID = id
	if err := h.vehicles.UpdateVehicle(r.Context(), actor, v); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type vehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE RENTED MAINTENANCE"`
}

func (h *VehicleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req vehicleStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	if err := h.vehicles.UpdateVehicleStatus(r.Context(), actor, id, domain.VehicleStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vehicles.DeleteVehicle(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.VehicleListFilter{
		Segment:      domain.Segment(q.Get("segment")),
		Transmission: q.Get("transmission"),
	}
	if raw := q.Get("min_seats"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeError(w, fmt.Errorf("%w: bad min_seats", domain.ErrValidation))
			return
		}
		filter.MinSeats = int32(n)
	}
	if raw := q.Get("min_rate_cents"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: bad min_rate_cents", domain.ErrValidation))
			return
		}
		filter.MinRateCents = n
	}
	if raw := q.Get("max_rate_cents"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: bad max_rate_cents", domain.ErrValidation))
			return
		}
		filter.MaxRateCents = n
	}
	if from, to := q.Get("available_from"), q.Get("available_to"); from != "" && to != "" {
		start, err := parseDate("available_from", from)
		if err != nil {
			writeError(w, err)
			return
		}
		end, err := parseDate("available_to", to)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.AvailableFrom = &start
		filter.AvailableTo = &end
	}

	list, err := h.vehicles.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
