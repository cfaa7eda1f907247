package domain

import "time"

type InspectionType string

const (
	InspectionTypePickup InspectionType = "PICKUP"
	InspectionTypeReturn InspectionType = "RETURN"
)

type ConditionStatus string

const (
	ConditionGood    ConditionStatus = "GOOD"
	ConditionFair    ConditionStatus = "FAIR"
	ConditionDamaged ConditionStatus = "DAMAGED"
)

// Damage is a single reported damage. Return inspections require a photo
// for every damage.
type Damage struct {
	Description string `json:"description"`
	Photo       string `json:"photo,omitempty"`
}

// ExtraCharge is a charge assessed during the return inspection; its total
// is folded into the reservation's extras total.
type ExtraCharge struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// Inspection is the physical pickup/return condition report. Produced once
// at pickup and once at return per reservation.
type Inspection struct {
	ID                  int32           `json:"id"`
	ReservationID       int32           `json:"reservation_id"`
	Type                InspectionType  `json:"type"`
	Inspector           string          `json:"inspector"`
	InspectorRole       string          `json:"inspector_role"`
	ExteriorCondition   ConditionStatus `json:"exterior_condition"`
	InteriorCondition   ConditionStatus `json:"interior_condition"`
	TiresCondition      ConditionStatus `json:"tires_condition"`
	LightsCondition     ConditionStatus `json:"lights_condition"`
	MechanicalCondition ConditionStatus `json:"mechanical_condition"`
	FuelLevel           int32           `json:"fuel_level"`
	Damages             []Damage        `json:"damages"`
	VehiclePhoto        string          `json:"vehicle_photo,omitempty"`
	ReceivedBy          string          `json:"received_by,omitempty"`
	ReceivedAt          *time.Time      `json:"received_at,omitempty"`
	ExtraCharges        []ExtraCharge   `json:"extra_charges"`
	TotalExtraCents     int64           `json:"total_extra_cents"`
	Notes               string          `json:"notes,omitempty"`
	CreatedOn           string          `json:"created_on"`
}

// TotalExtraCharges sums the assessed charges.
func (i *Inspection) TotalExtraCharges() int64 {
	var total int64
	for _, c := range i.ExtraCharges {
		total += c.AmountCents
	}
	return total
}
