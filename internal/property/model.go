// Package property provides the property record model, free-text parsing
// and structural validation for the scoring and recommendation engine.
package property

// Condition is the closed set of property condition values.
type Condition string

// Valid condition constants. ConditionUnknown covers both an explicit
// "unknown" value and an absent column.
const (
	ConditionNew       Condition = "new"
	ConditionRenovated Condition = "renovated"
	ConditionOld       Condition = "old"
	ConditionUnknown   Condition = "unknown"
)

// Record is an immutable snapshot of one property's attributes at scoring
// time. Optional numeric fields are pointers so that absence stays
// distinguishable from zero.
type Record struct {
	ID           int64     `json:"id"`
	PropertyType string    `json:"property_type"`
	Condition    Condition `json:"property_condition"`
	Location     string    `json:"location,omitempty"`

	FloorAreaM2  *float64 `json:"floor_area_m2,omitempty"`
	NumRooms     *int     `json:"num_rooms,omitempty"`
	NumBathrooms *int     `json:"num_bathrooms,omitempty"`

	AirConditioning bool `json:"air_conditioning"`
	Heating         bool `json:"heating"`
	HasGym          bool `json:"has_gym"`
	HasParking      bool `json:"has_parking"`
	HasPool         bool `json:"has_pool"`

	// Amenities holds the raw free-text amenity field. Tokenize is the
	// single normalization step feeding both the amenity sub-score and
	// the bag-of-words vector block.
	Amenities string `json:"amenities,omitempty"`

	CrimeRate          *float64 `json:"crime_rate,omitempty"`
	TransportScore     *float64 `json:"transport_score,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	Income             *float64 `json:"income,omitempty"`
	PriceToIncomeRatio *float64 `json:"price_to_income_ratio,omitempty"`
	PricePerM2         *float64 `json:"price_per_m2,omitempty"`
}

// PTIRatio returns the price-to-income ratio, deriving it from price and
// income when the column itself is absent. The second return reports
// whether any usable value exists.
func (r *Record) PTIRatio() (float64, bool) {
	if r.PriceToIncomeRatio != nil {
		return *r.PriceToIncomeRatio, true
	}
	if r.Price != nil && r.Income != nil && *r.Income > 0 {
		return *r.Price / *r.Income, true
	}
	return 0, false
}

// Float returns a pointer's value, or 0 when absent.
func Float(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// FloatPtr is a convenience constructor for optional numeric fields.
func FloatPtr(v float64) *float64 { return &v }

// IntPtr is a convenience constructor for optional count fields.
func IntPtr(v int) *int { return &v }
