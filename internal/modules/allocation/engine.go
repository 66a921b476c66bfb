// README: Allocation engine; pure seat arithmetic and eligibility rules over a snapshot.
package allocation

import (
	"fmt"
	"strings"

	"carpool/internal/domain"
	"carpool/internal/types"
)

// AssignedSeats sums seats held by approved requests addressed to driver.
func AssignedSeats(driver types.Email, requests []domain.Request) int {
	n := 0
	for _, r := range requests {
		if r.DriverEmail == driver && r.Status.Holding() {
			n += r.SeatsRequested
		}
	}
	return n
}

// BookedSeats sums seats across the passenger's active requests.
func BookedSeats(passenger types.Email, requests []domain.Request) int {
	n := 0
	for _, r := range requests {
		if r.PassengerEmail == passenger && r.Status.Active() {
			n += r.SeatsRequested
		}
	}
	return n
}

func AvailableSeats(v domain.Vehicle, requests []domain.Request) int {
	return max(0, v.Capacity()-AssignedSeats(v.DriverEmail, requests))
}

func RemainingDemand(p domain.User, requests []domain.Request) int {
	return max(0, p.Demand()-BookedSeats(p.Email, requests))
}

// ExistingRequest finds the request between passenger and driver, preferring an
// active one over a rejected leftover.
func ExistingRequest(passenger, driver types.Email, requests []domain.Request) (domain.Request, bool) {
	var found domain.Request
	ok := false
	for _, r := range requests {
		if r.PassengerEmail != passenger || r.DriverEmail != driver {
			continue
		}
		if r.Status.Active() {
			return r, true
		}
		if !ok {
			found, ok = r, true
		}
	}
	return found, ok
}

func hasLiveRequest(passenger, driver types.Email, requests []domain.Request) bool {
	r, ok := ExistingRequest(passenger, driver, requests)
	return ok && r.Status.Active()
}

// CanRequestSeat is true iff the passenger is not the vehicle's driver, still
// needs seats, the vehicle has free seats and no non-rejected request exists
// between the two.
func CanRequestSeat(p domain.User, v domain.Vehicle, requests []domain.Request) bool {
	if p.Email == v.DriverEmail {
		return false
	}
	if RemainingDemand(p, requests) <= 0 {
		return false
	}
	if AvailableSeats(v, requests) <= 0 {
		return false
	}
	return !hasLiveRequest(p.Email, v.DriverEmail, requests)
}

func RequestedSeatCap(p domain.User, v domain.Vehicle, requests []domain.Request) int {
	return min(RemainingDemand(p, requests), AvailableSeats(v, requests))
}

// ClampSeatRequest accepts n only within [1, limit].
func ClampSeatRequest(n, limit int) error {
	if n <= 0 {
		return domain.ValidationError{Field: "seatsRequested", Msg: "seats requested must be at least 1"}
	}
	if n > limit {
		return domain.ValidationError{Field: "seatsRequested", Msg: fmt.Sprintf("seats requested cannot exceed %d", limit)}
	}
	return nil
}

func CanRaiseFamilyMembers(v domain.Vehicle, newFamilyMembers int, requests []domain.Request) bool {
	return newFamilyMembers+AssignedSeats(v.DriverEmail, requests) <= v.TotalSeats
}

// DeriveStatus applies the auto-status rule: no free seats forces full, and a
// manual full flips back to open once seats free up. not-bringing is sticky.
func DeriveStatus(requested domain.VehicleStatus, available int) domain.VehicleStatus {
	switch requested {
	case domain.VehicleNotBringing:
		return domain.VehicleNotBringing
	case domain.VehicleOpen, domain.VehicleFull:
		if available == 0 {
			return domain.VehicleFull
		}
		return domain.VehicleOpen
	default:
		panic("unhandled vehicle status " + string(requested))
	}
}

func EffectiveStatus(v domain.Vehicle, requests []domain.Request) domain.VehicleStatus {
	return DeriveStatus(v.Status, AvailableSeats(v, requests))
}

// ValidateVehicleForm runs the save checks in order: name, vehicle type,
// seat bounds, then the conflict with seats already assigned to passengers.
func ValidateVehicleForm(f VehicleForm, assigned int) error {
	if strings.TrimSpace(f.Name) == "" {
		return domain.ValidationError{Field: "name", Msg: "please enter your name"}
	}
	if strings.TrimSpace(f.VehicleType) == "" {
		return domain.ValidationError{Field: "vehicleType", Msg: "please select vehicle type"}
	}
	if f.TotalSeats < 1 {
		return domain.ValidationError{Field: "totalSeats", Msg: "total seats must be at least 1"}
	}
	if f.FamilyMembers < 0 {
		return domain.ValidationError{Field: "familyMembers", Msg: "family members cannot be negative"}
	}
	if f.FamilyMembers > f.TotalSeats {
		return domain.ValidationError{Field: "familyMembers", Msg: "family members cannot exceed total seats"}
	}
	if assigned > 0 && f.FamilyMembers+assigned > f.TotalSeats {
		return domain.ConflictError{
			Resource: "seats",
			Msg:      fmt.Sprintf("cannot add family members: %d seat(s) already assigned to passengers, remove passengers first", assigned),
		}
	}
	return nil
}

// Permits reports whether viewer may perform m on r.
func Permits(viewer domain.User, r domain.Request, m Move) bool {
	isDriver := viewer.Email == r.DriverEmail
	isPassenger := viewer.Email == r.PassengerEmail
	switch m {
	case MoveApprove, MoveReject:
		return isDriver && r.Status == domain.RequestPending
	case MoveCancel:
		return isPassenger && (r.Status == domain.RequestPending || r.Status == domain.RequestRejected)
	case MoveLeave:
		return isPassenger && r.Status == domain.RequestApproved
	case MoveRemove:
		return isDriver && (r.Status == domain.RequestApproved || r.Status == domain.RequestRejected)
	case MoveUnassign:
		return viewer.IsAdmin
	default:
		panic("unhandled move " + string(m))
	}
}

// DeleteMove picks the delete flavour for viewer: the participant's own moves
// first, then the admin override.
func DeleteMove(viewer domain.User, r domain.Request) (Move, bool) {
	for _, m := range []Move{MoveCancel, MoveLeave, MoveRemove, MoveUnassign} {
		if Permits(viewer, r, m) {
			return m, true
		}
	}
	return "", false
}

func participantMoves(viewer domain.User, r domain.Request) []Move {
	out := []Move{}
	for _, m := range []Move{MoveApprove, MoveReject, MoveCancel, MoveLeave, MoveRemove} {
		if Permits(viewer, r, m) {
			out = append(out, m)
		}
	}
	return out
}
