// README: Role transition guards and landing-screen routing; pure functions over a user's requests.
package role

import (
	"fmt"

	"carpool/internal/domain"
	"carpool/internal/types"
)

// Screen is where the client should land after login or a role change.
type Screen string

const (
	ScreenRoleSelect     Screen = "role-select"
	ScreenDriverSetup    Screen = "driver-setup"
	ScreenPassengerSetup Screen = "passenger-setup"
	ScreenDashboard      Screen = "dashboard"
	ScreenAdmin          Screen = "admin"
)

// NameFunc resolves an email to the name shown in refusal messages.
type NameFunc func(types.Email) string

// CanEnter checks account-level preconditions for holding a role.
func CanEnter(u domain.User, to domain.Role) error {
	if to == domain.RoleAdmin && !u.IsAdmin {
		return domain.ForbiddenError{Msg: "admin access is required for the admin role"}
	}
	return nil
}

// Guard refuses to move u away from driver or passenger while requests
// addressed to or sent by them are still live.
func Guard(u domain.User, to domain.Role, requests []domain.Request, name NameFunc) error {
	if to == u.Role {
		return nil
	}
	switch u.Role {
	case domain.RoleDriver:
		return leavingDriver(u, to, requests)
	case domain.RolePassenger:
		return leavingPassenger(u, to, requests, name)
	case domain.RoleNone, domain.RoleAdmin:
		return nil
	default:
		panic("unhandled role " + string(u.Role))
	}
}

func leavingDriver(u domain.User, to domain.Role, requests []domain.Request) error {
	approved, pending := 0, 0
	for _, r := range requests {
		if r.DriverEmail != u.Email {
			continue
		}
		switch r.Status {
		case domain.RequestApproved:
			approved++
		case domain.RequestPending:
			pending++
		case domain.RequestRejected:
		default:
			panic("unhandled request status " + string(r.Status))
		}
	}
	if approved == 0 && pending == 0 {
		return nil
	}
	var blocking []string
	if approved > 0 {
		blocking = append(blocking, fmt.Sprintf("%d approved passenger(s)", approved))
	}
	if pending > 0 {
		blocking = append(blocking, fmt.Sprintf("%d pending request(s)", pending))
	}
	return domain.GuardRefusal{
		From:     u.Role,
		To:       to,
		Reason:   "remove all passengers and reject all pending requests first",
		Blocking: blocking,
	}
}

func leavingPassenger(u domain.User, to domain.Role, requests []domain.Request, name NameFunc) error {
	var blocking []string
	for _, r := range requests {
		if r.PassengerEmail != u.Email || !r.Status.Active() {
			continue
		}
		what := "confirmed ride"
		if r.Status == domain.RequestPending {
			what = "pending request"
		}
		who := string(r.DriverEmail)
		if name != nil {
			who = name(r.DriverEmail)
		}
		blocking = append(blocking, fmt.Sprintf("%s with %s", what, who))
	}
	if len(blocking) == 0 {
		return nil
	}
	return domain.GuardRefusal{
		From:     u.Role,
		To:       to,
		Reason:   "cancel or leave the ride first and inform the driver",
		Blocking: blocking,
	}
}

// ScreenFor routes a user by saved role. Drivers who never saved a vehicle and
// passengers with neither a name nor a live request go to setup first. A
// not-bringing vehicle still counts as configured.
func ScreenFor(u domain.User, v domain.Vehicle, hasVehicle bool, requests []domain.Request) Screen {
	switch u.Role {
	case domain.RoleNone:
		return ScreenRoleSelect
	case domain.RoleAdmin:
		if u.IsAdmin {
			return ScreenAdmin
		}
		return ScreenRoleSelect
	case domain.RoleDriver:
		if hasVehicle && v.VehicleType != "" {
			return ScreenDashboard
		}
		return ScreenDriverSetup
	case domain.RolePassenger:
		if u.Name != "" {
			return ScreenDashboard
		}
		for _, r := range requests {
			if r.PassengerEmail == u.Email && r.Status.Active() {
				return ScreenDashboard
			}
		}
		return ScreenPassengerSetup
	default:
		panic("unhandled role " + string(u.Role))
	}
}
