package models

// Owner is a property owner. Phone and email are optional contact fields.
type Owner struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	ID    int     `json:"id"`
}
