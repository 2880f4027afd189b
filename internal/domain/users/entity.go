package users

import "time"

// User account. Immutable after registration except for future password
// reset flows.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CompanyName  string    `json:"company_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
