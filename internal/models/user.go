package models

// User is an application account used for credential checks.
// Password holds a bcrypt hash and is never serialized.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"-"`
	ID       int    `json:"id"`
}
