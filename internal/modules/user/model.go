// README: Profile payloads and contact card for the user module.
package user

import (
	"carpool/internal/domain"
	"carpool/internal/types"
)

// Profile is the editable part of a user record. A nil SeatsNeeded keeps the stored value.
type Profile struct {
	Name        string
	Phone       string
	SeatsNeeded *int
}

// ProfileCheck vets a profile write against the locked user and the requests
// they hold as passenger.
type ProfileCheck func(u domain.User, requests []domain.Request) error

type PassengerProfileCommand struct {
	Email       types.Email
	Name        string
	Phone       string
	SeatsNeeded int
}

// Contact is what one participant may see of another.
type Contact struct {
	Email types.Email `json:"email"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
}
