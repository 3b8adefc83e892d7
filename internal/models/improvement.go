package models

// Improvement is a physical addition to a property (pool, roof, ...).
// There is no uniqueness constraint; duplicate rows are acceptable.
type Improvement struct {
	Type       string   `json:"type"`
	YearBuilt  *int     `json:"yearBuilt,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	ID         int      `json:"id"`
	PropertyID int      `json:"propertyId"`
}
