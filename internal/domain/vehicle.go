// README: Vehicle record, one per driver, and its status enumeration.
package domain

import (
	"strings"
	"time"

	"carpool/internal/types"
)

type VehicleStatus string

const (
	VehicleOpen        VehicleStatus = "open"
	VehicleFull        VehicleStatus = "full"
	VehicleNotBringing VehicleStatus = "not-bringing"
)

func ParseVehicleStatus(raw string) (VehicleStatus, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch VehicleStatus(v) {
	case VehicleOpen, VehicleFull, VehicleNotBringing:
		return VehicleStatus(v), nil
	default:
		return "", MalformedError{Field: "vehicle status", Value: raw}
	}
}

type Vehicle struct {
	DriverEmail   types.Email   `json:"driverEmail"`
	VehicleType   string        `json:"vehicleType"`
	TotalSeats    int           `json:"totalSeats"`
	FamilyMembers int           `json:"familyMembers"`
	Status        VehicleStatus `json:"status"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Retired vehicles keep their history but leave the active listing.
func (v Vehicle) Retired() bool {
	return v.Status == VehicleNotBringing
}

// Capacity is the seat count offered to passengers before any assignment.
func (v Vehicle) Capacity() int {
	return v.TotalSeats - v.FamilyMembers
}
