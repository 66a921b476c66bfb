// README: Admin overview types.
package admin

import (
	"carpool/internal/domain"
	"carpool/internal/modules/allocation"
	"carpool/internal/types"
)

// VehicleRow is a vehicle with its seat state, retired ones included.
type VehicleRow struct {
	Vehicle        domain.Vehicle       `json:"vehicle"`
	DriverName     string               `json:"driverName"`
	AssignedSeats  int                  `json:"assignedSeats"`
	AvailableSeats int                  `json:"availableSeats"`
	Status         domain.VehicleStatus `json:"status"`
}

type Overview struct {
	Summary     domain.Summary              `json:"summary"`
	Users       []domain.User               `json:"users"`
	Vehicles    []VehicleRow                `json:"vehicles"`
	Assignments []allocation.AssignmentView `json:"assignments"`
}

type DeleteUserCommand struct {
	Actor domain.User
	Email types.Email
}

type RemoveAssignmentCommand struct {
	Actor domain.User
	ID    types.ID
}
