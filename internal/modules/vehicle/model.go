// README: Vehicle save command and the seat state returned to drivers.
package vehicle

import (
	"carpool/internal/domain"
	"carpool/internal/types"
)

// BuildFunc turns the driver's current requests into the vehicle to persist, or refuses.
type BuildFunc func(requests []domain.Request) (domain.Vehicle, error)

type SaveCommand struct {
	Email         types.Email
	Name          string
	Phone         string
	VehicleType   string
	TotalSeats    int
	FamilyMembers int
	Status        string
}

// State is a vehicle with its seat arithmetic applied.
type State struct {
	Vehicle        domain.Vehicle       `json:"vehicle"`
	AssignedSeats  int                  `json:"assignedSeats"`
	AvailableSeats int                  `json:"availableSeats"`
	Status         domain.VehicleStatus `json:"status"`
}
