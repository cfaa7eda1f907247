package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	reservations service.ReservationService
	validate     *validator.Validate
}

func NewReservationHandler(reservations service.ReservationService, validate *validator.Validate) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, validate: validate}
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", domain.ErrValidation, name, raw)
	}
	return int32(id), nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, field)
	}
	return t, nil
}

type extraDTO struct {
	Name           string `json:"name" validate:"required"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
	Quantity       int32  `json:"quantity" validate:"gte=1"`
}

func toExtras(dtos []extraDTO) []domain.Extra {
	extras := make([]domain.Extra, 0, len(dtos))
	for _, e := range dtos {
		extras = append(extras, domain.Extra{Name: e.Name, UnitPriceCents: e.UnitPriceCents, Quantity: e.Quantity})
	}
	return extras
}

type createReservationRequest struct {
	VehicleID int32      `json:"vehicle_id" validate:"required,gt=0"`
	StartDate string     `json:"start_date" validate:"required"`
	EndDate   string     `json:"end_date" validate:"required"`
	Plan      string     `json:"plan" validate:"required,oneof=REGULAR PREMIUM"`
	Extras    []extraDTO `json:"extras" validate:"dive"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req createReservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	rv, err := h.reservations.CreateReservation(r.Context(), actor, req.VehicleID, start, end, domain.Plan(req.Plan), toExtras(req.Extras))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

type quoteRequest struct {
	VehicleID int32      `json:"vehicle_id" validate:"required,gt=0"`
	StartDate string     `json:"start_date" validate:"required"`
	EndDate   string     `json:"end_date" validate:"required"`
	Plan      string     `json:"plan" validate:"required,oneof=REGULAR PREMIUM"`
	Extras    []extraDTO `json:"extras" validate:"dive"`
}

func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	quote, err := h.reservations.Quote(r.Context(), req.VehicleID, start, end, domain.Plan(req.Plan), toExtras(req.Extras))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	start, err := parseDate("start", q.Get("start"))
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate("end", q.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}
	var excludeID int32
	if raw := q.Get("exclude_reservation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeError(w, fmt.Errorf("%w: bad exclude_reservation_id", domain.ErrValidation))
			return
		}
		excludeID = int32(id)
	}

	result, err := h.reservations.CheckAvailability(r.Context(), vehicleID, start, end, excludeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.reservations.GetReservation(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	list, err := h.reservations.ListMyReservations(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	status := domain.ReservationStatus(r.URL.Query().Get("status"))
	list, err := h.reservations.ListReservations(r.Context(), actor, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type paymentEventRequest struct {
	Method string `json:"method" validate:"required,oneof=CASH CARD TRANSFER"`
}

func (h *ReservationHandler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	rv, err := h.reservations.ConfirmDeposit(r.Context(), actor, id, domain.PaymentMethod(req.Method))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) ConfirmFinalPayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	rv, err := h.reservations.ConfirmFinalPayment(r.Context(), actor, id, domain.PaymentMethod(req.Method))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type damageDTO struct {
	Description string `json:"description" validate:"required"`
	Photo       string `json:"photo"`
}

type extraChargeDTO struct {
	Description string `json:"description" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
}

type inspectionRequest struct {
	Inspector           string           `json:"inspector" validate:"required"`
	InspectorRole       string           `json:"inspector_role"`
	ExteriorCondition   string           `json:"exterior_condition" validate:"required,oneof=GOOD FAIR DAMAGED"`
	InteriorCondition   string           `json:"interior_condition" validate:"required,oneof=GOOD FAIR DAMAGED"`
	TiresCondition      string           `json:"tires_condition" validate:"required,oneof=GOOD FAIR DAMAGED"`
	LightsCondition     string           `json:"lights_condition" validate:"required,oneof=GOOD FAIR DAMAGED"`
	MechanicalCondition string           `json:"mechanical_condition" validate:"required,oneof=GOOD FAIR DAMAGED"`
	FuelLevel           int32            `json:"fuel_level" validate:"gte=0,lte=100"`
	Damages             []damageDTO      `json:"damages" validate:"dive"`
	VehiclePhoto        string           `json:"vehicle_photo"`
	ReceivedBy          string           `json:"received_by"`
	ExtraCharges        []extraChargeDTO `json:"extra_charges" validate:"dive"`
	Notes               string           `json:"notes"`
}

func (req *inspectionRequest) toDomain() *domain.Inspection {
	ins := &domain.Inspection{
		Inspector:           req.Inspector,
		InspectorRole:       req.InspectorRole,
		ExteriorCondition:   domain.ConditionStatus(req.ExteriorCondition),
		InteriorCondition:   domain.ConditionStatus(req.InteriorCondition),
		TiresCondition:      domain.ConditionStatus(req.TiresCondition),
		LightsCondition:     domain.ConditionStatus(req.LightsCondition),
		MechanicalCondition: domain.ConditionStatus(req.MechanicalCondition),
		FuelLevel:           req.FuelLevel,
		VehiclePhoto:        req.VehiclePhoto,
		ReceivedBy:          req.ReceivedBy,
		Notes:               req.Notes,
	}
	for _, d := range req.Damages {
		ins.Damages = append(ins.Damages, domain.Damage{Description: d.Description, Photo: d.Photo})
	}
	for _, c := range req.ExtraCharges {
		ins.ExtraCharges = append(ins.ExtraCharges, domain.ExtraCharge{Description: c.Description, AmountCents: c.AmountCents})
	}
	if req.ReceivedBy != "" {
		now := time.Now()
		ins.ReceivedAt = &now
	}
	return ins
}

func (h *ReservationHandler) decodeInspection(w http.ResponseWriter, r *http.Request) (*domain.Inspection, bool) {
	var req inspectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return nil, false
	}
	return req.toDomain(), true
}

func (h *ReservationHandler) NotifyPickup(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ins, ok := h.decodeInspection(w, r)
	if !ok {
		return
	}

	rv, err := h.reservations.NotifyPickupCompleted(r.Context(), actor, id, ins)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) NotifyReturn(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ins, ok := h.decodeInspection(w, r)
	if !ok {
		return
	}

	rv, err := h.reservations.NotifyReturnCompleted(r.Context(), actor, id, ins)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) GetInspection(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	t := domain.InspectionType(mux.Vars(r)["type"])
	if t != domain.InspectionTypePickup && t != domain.InspectionTypeReturn {
		writeError(w, fmt.Errorf("%w: inspection type must be PICKUP or RETURN", domain.ErrValidation))
		return
	}

	ins, err := h.reservations.GetInspection(r.Context(), actor, id, t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

type extendRequest struct {
	NewEndDate string `json:"new_end_date" validate:"required"`
}

func (h *ReservationHandler) Extend(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req extendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	newEnd, err := parseDate("new_end_date", req.NewEndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	rv, err := h.reservations.ExtendReservation(r.Context(), actor, id, newEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type earlyReturnRequest struct {
	ReturnDate string `json:"return_date" validate:"required"`
}

type earlyReturnResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
	RefundCents int64               `json:"refund_cents"`
}

func (h *ReservationHandler) EarlyReturn(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req earlyReturnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	date, err := parseDate("return_date", req.ReturnDate)
	if err != nil {
		writeError(w, err)
		return
	}

	rv, refund, err := h.reservations.EarlyReturn(r.Context(), actor, id, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, earlyReturnResponse{Reservation: rv, RefundCents: refund})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.reservations.CancelReservation(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReservationHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.reservations.MarkReturned(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type substituteRequest struct {
	SubstituteVehicleID int32 `json:"substitute_vehicle_id" validate:"required,gt=0"`
	KeepOriginalPrice   bool  `json:"keep_original_price"`
}

func (h *ReservationHandler) CreateSubstitute(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req substituteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	rv, err := h.reservations.CreateSubstitute(r.Context(), actor, id, req.SubstituteVehicleID, req.KeepOriginalPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}
