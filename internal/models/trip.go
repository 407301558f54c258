package models

type TripType string

const (
	TripBudget    TripType = "budget"
	TripLuxury    TripType = "luxury"
	TripAdventure TripType = "adventure"
	TripCultural  TripType = "cultural"
)

// TripTypes lists the accepted trip types in the order shown in usage text.
var TripTypes = []TripType{TripBudget, TripLuxury, TripAdventure, TripCultural}

type TripRequest struct {
	PreferredRegion string   `json:"preferred_region" validate:"required,max=200"`
	TripType        TripType `json:"trip_type" validate:"required,trip_type"`
}

// Inputs returns the placeholder values interpolated into crew task descriptions.
func (r TripRequest) Inputs() map[string]string {
	return map[string]string{
		"preferred_region": r.PreferredRegion,
		"trip_type":        string(r.TripType),
	}
}
