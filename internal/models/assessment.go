package models

// Assessment is a yearly valuation snapshot for a property.
// Exactly one row exists per (property, year).
type Assessment struct {
	MarketValue   float64 `json:"marketValue"`
	AssessedValue float64 `json:"assessedValue"`
	LandValue     float64 `json:"landValue"`
	BuildingValue float64 `json:"buildingValue"`
	PropertyID    int     `json:"propertyId"`
	Year          int     `json:"year"`
}
