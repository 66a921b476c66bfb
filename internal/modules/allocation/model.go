// README: Snapshot and derived view types consumed by every presentation surface.
package allocation

import (
	"time"

	"carpool/internal/domain"
	"carpool/internal/types"
)

// Snapshot is the full set of records fetched at one point in time.
// Every derived quantity is recomputed from it; nothing is cached between loads.
type Snapshot struct {
	Users    []domain.User
	Vehicles []domain.Vehicle
	Requests []domain.Request
	TakenAt  time.Time
}

func (s Snapshot) User(email types.Email) (domain.User, bool) {
	for _, u := range s.Users {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s Snapshot) Vehicle(driver types.Email) (domain.Vehicle, bool) {
	for _, v := range s.Vehicles {
		if v.DriverEmail == driver {
			return v, true
		}
	}
	return domain.Vehicle{}, false
}

func (s Snapshot) displayName(email types.Email) string {
	if u, ok := s.User(email); ok {
		return u.DisplayName()
	}
	return string(email)
}

func (s Snapshot) phone(email types.Email) string {
	if u, ok := s.User(email); ok {
		return u.Phone
	}
	return ""
}

// Action is the state of the "request a seat" affordance on a vehicle card.
type Action string

const (
	ActionRequest    Action = "request"
	ActionPending    Action = "pending"
	ActionApproved   Action = "approved"
	ActionAllBooked  Action = "all-booked"
	ActionFull       Action = "full"
	ActionOwnVehicle Action = "own-vehicle"
	ActionHidden     Action = "hidden"
)

type RequestOption struct {
	Action  Action `json:"action"`
	Enabled bool   `json:"enabled"`
	Cap     int    `json:"cap"`
}

// Move is an operation a participant may perform on an existing request.
type Move string

const (
	MoveApprove  Move = "approve"
	MoveReject   Move = "reject"
	MoveCancel   Move = "cancel"
	MoveLeave    Move = "leave"
	MoveRemove   Move = "remove"
	MoveUnassign Move = "unassign"
)

type VehicleView struct {
	Vehicle        domain.Vehicle       `json:"vehicle"`
	DriverName     string               `json:"driverName"`
	DriverPhone    string               `json:"driverPhone"`
	AssignedSeats  int                  `json:"assignedSeats"`
	AvailableSeats int                  `json:"availableSeats"`
	Status         domain.VehicleStatus `json:"status"`
	Option         RequestOption        `json:"option"`
}

type RequestView struct {
	Request          domain.Request `json:"request"`
	CounterpartEmail types.Email    `json:"counterpartEmail"`
	CounterpartName  string         `json:"counterpartName"`
	CounterpartPhone string         `json:"counterpartPhone"`
	VehicleType      string         `json:"vehicleType,omitempty"`
	Moves            []Move         `json:"moves"`
}

type PassengerList struct {
	Passengers  []RequestView `json:"passengers"`
	BookedSeats int           `json:"bookedSeats"`
}

type Badges struct {
	IncomingPending int `json:"incomingPending"`
	Outgoing        int `json:"outgoing"`
	Passengers      int `json:"passengers"`
}

type Dashboard struct {
	Viewer          domain.User    `json:"viewer"`
	Vehicles        []VehicleView  `json:"vehicles"`
	Requests        []RequestView  `json:"requests"`
	Passengers      *PassengerList `json:"passengers,omitempty"`
	RemainingDemand int            `json:"remainingDemand"`
	Badges          Badges         `json:"badges"`
}

type AssignmentView struct {
	Request       domain.Request `json:"request"`
	PassengerName string         `json:"passengerName"`
	DriverName    string         `json:"driverName"`
}

// VehicleForm is the driver's profile-and-vehicle save payload.
type VehicleForm struct {
	Name          string
	Phone         string
	VehicleType   string
	TotalSeats    int
	FamilyMembers int
	Status        domain.VehicleStatus
}
