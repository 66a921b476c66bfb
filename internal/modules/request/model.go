// README: Request lifecycle definitions: transition table, commands and admission checks.
package request

import (
	"carpool/internal/domain"
	"carpool/internal/types"
)

// AllowedTransitions represents the request state flow as code. Deletion is
// not a transition; it removes the row from any status.
var AllowedTransitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestPending: {domain.RequestApproved, domain.RequestRejected},
}

func CanTransition(from, to domain.RequestStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// CreateCheck decides whether a new request may be stored, given the
// passenger, the target vehicle and every request touching either of them.
type CreateCheck func(passenger domain.User, v domain.Vehicle, requests []domain.Request) error

// ApproveCheck decides whether the vehicle can still take the request's seats.
type ApproveCheck func(v domain.Vehicle, requests []domain.Request) error

type CreateCommand struct {
	PassengerEmail types.Email
	DriverEmail    types.Email
	SeatsRequested int
}

// ActCommand identifies a request and the user acting on it.
type ActCommand struct {
	ID    types.ID
	Actor domain.User
}
