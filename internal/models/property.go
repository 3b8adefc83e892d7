package models

import (
	"time"
)

// Property is an appraisal record keyed by its folio (tax parcel id).
// All nullable columns use pointers to distinguish between zero values and NULL.
type Property struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Folio          string    `json:"folio"`
	Address        *string   `json:"address,omitempty"`
	ZipCode        *string   `json:"zipCode,omitempty"`
	LandValue      *float64  `json:"landValue,omitempty"`
	BuildingValue  *float64  `json:"buildingValue,omitempty"`
	OwnerID        *int      `json:"ownerId,omitempty"`
	NeighborhoodID *int      `json:"neighborhoodId,omitempty"`
	ID             int       `json:"id"`
}
