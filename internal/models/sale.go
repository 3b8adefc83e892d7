package models

import (
	"time"
)

// Sale is an append-only record of a property transfer.
// Rows are never updated or deleted once written.
type Sale struct {
	SaleDate   time.Time `json:"saleDate"`
	DocNumber  *string   `json:"docNumber,omitempty"`
	Buyer      *string   `json:"buyer,omitempty"`
	Seller     *string   `json:"seller,omitempty"`
	Price      float64   `json:"price"`
	ID         int       `json:"id"`
	PropertyID int       `json:"propertyId"`
}
