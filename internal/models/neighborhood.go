package models

// Neighborhood groups properties under a unique code.
type Neighborhood struct {
	Code string `json:"code"`
	Name string `json:"name"`
	ID   int    `json:"id"`
}
