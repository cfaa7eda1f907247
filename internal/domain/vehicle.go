package domain

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusRented      VehicleStatus = "RENTED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
)

// Segment is a vehicle's quality tier. Substitution must stay at or above
// the original reservation's tier.
type Segment string

const (
	SegmentPremium  Segment = "PREMIUM"
	SegmentStandard Segment = "STANDARD"
	SegmentBasic    Segment = "BASIC"
)

// segmentRank orders segments best to worst; lower is better.
var segmentRank = map[Segment]int{
	SegmentPremium:  1,
	SegmentStandard: 2,
	SegmentBasic:    3,
}

// Rank returns the segment's order, lower meaning better. Unknown segments
// rank worst.
func (s Segment) Rank() int {
	if r, ok := segmentRank[s]; ok {
		return r
	}
	return len(segmentRank) + 1
}

// AtLeast reports whether s is the same tier as other or better.
func (s Segment) AtLeast(other Segment) bool {
	return s.Rank() <= other.Rank()
}

// Valid reports whether s is one of the known segments.
func (s Segment) Valid() bool {
	_, ok := segmentRank[s]
	return ok
}

type Vehicle struct {
	ID             int32         `json:"id"`
	Brand          string        `json:"brand"`
	Model          string        `json:"model"`
	Year           int32         `json:"year"`
	Segment        Segment       `json:"segment"`
	Transmission   string        `json:"transmission"`
	FuelType       string        `json:"fuel_type"`
	Seats          int32         `json:"seats"`
	Doors          int32         `json:"doors"`
	DailyRateCents int64         `json:"daily_rate_cents"`
	Status         VehicleStatus `json:"status"`
	Rating         float64       `json:"rating"`
	TotalRatings   int32         `json:"total_ratings"`
	Features       []string      `json:"features"`
	Description    string        `json:"description"`
	LicensePlate   string        `json:"license_plate"`
	CreatedOn      string        `json:"created_on"`
	UpdatedOn      string        `json:"updated_on"`
}
