// README: User record keyed by email.
package domain

import (
	"time"

	"carpool/internal/types"
)

const DefaultSeatsNeeded = 1

type User struct {
	Email       types.Email `json:"email"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Role        Role        `json:"role"`
	IsAdmin     bool        `json:"isAdmin"`
	SeatsNeeded int         `json:"seatsNeeded"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DisplayName falls back to the email when no name was saved.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return string(u.Email)
}

// Demand is the passenger's total seat need, never below one.
func (u User) Demand() int {
	if u.SeatsNeeded < 1 {
		return DefaultSeatsNeeded
	}
	return u.SeatsNeeded
}
