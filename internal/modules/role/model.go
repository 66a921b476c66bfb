// README: Role change commands and results.
package role

import (
	"carpool/internal/domain"
	"carpool/internal/types"
)

// Change is one role write. Name and IsAdmin are only set by admin edits.
type Change struct {
	Email   types.Email
	From    domain.Role
	To      domain.Role
	Name    *string
	IsAdmin *bool
}

// GuardFunc re-checks a change against the locked user and their requests.
type GuardFunc func(u domain.User, requests []domain.Request) error

type Outcome struct {
	User   domain.User `json:"user"`
	Screen Screen      `json:"screen"`
}

// AdminEditCommand carries an admin's edit of another account; nil fields are left alone.
type AdminEditCommand struct {
	Actor   domain.User
	Email   types.Email
	Name    *string
	Role    *string
	IsAdmin *bool
}
