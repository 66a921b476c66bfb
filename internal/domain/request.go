// README: Seat request record, its status enumeration and audit events.
package domain

import (
	"strings"
	"time"

	"carpool/internal/types"
)

type RequestStatus string

// Approved is the single "seat held" status. Legacy rows written as
// "confirmed" parse to it.
const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

const legacyConfirmed = "confirmed"

func ParseRequestStatus(raw string) (RequestStatus, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case string(RequestPending), string(RequestApproved), string(RequestRejected):
		return RequestStatus(v), nil
	case legacyConfirmed:
		return RequestApproved, nil
	default:
		return "", MalformedError{Field: "request status", Value: raw}
	}
}

// Active covers pending and approved requests.
func (s RequestStatus) Active() bool {
	switch s {
	case RequestPending, RequestApproved:
		return true
	case RequestRejected:
		return false
	default:
		panic("unhandled request status " + string(s))
	}
}

// Holding reports whether the request occupies seats in the vehicle.
func (s RequestStatus) Holding() bool {
	switch s {
	case RequestApproved:
		return true
	case RequestPending, RequestRejected:
		return false
	default:
		panic("unhandled request status " + string(s))
	}
}

type Request struct {
	ID             types.ID      `json:"id"`
	PassengerEmail types.Email   `json:"passengerEmail"`
	DriverEmail    types.Email   `json:"driverEmail"`
	SeatsRequested int           `json:"seatsRequested"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Counterpart returns the other party of the request from the viewpoint of email.
func (r Request) Counterpart(email types.Email) types.Email {
	if r.PassengerEmail == email {
		return r.DriverEmail
	}
	return r.PassengerEmail
}

type EventKind string

const (
	EventCreated  EventKind = "created"
	EventApproved EventKind = "approved"
	EventRejected EventKind = "rejected"
	EventDeleted  EventKind = "deleted"
)

type RequestEvent struct {
	ID         int64         `json:"id"`
	RequestID  types.ID      `json:"requestId"`
	Kind       EventKind     `json:"kind"`
	FromStatus RequestStatus `json:"fromStatus,omitempty"`
	ActorEmail types.Email   `json:"actorEmail"`
	CreatedAt  time.Time     `json:"createdAt"`
}
