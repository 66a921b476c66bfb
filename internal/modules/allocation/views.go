// README: Derived views (listings, request lists, badges) built from one snapshot.
package allocation

import (
	"sort"

	"carpool/internal/domain"
	"carpool/internal/types"
)

// ActiveVehicles drops retired vehicles regardless of their seat math.
func ActiveVehicles(s Snapshot) []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if v.Retired() {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RequestAction computes the request affordance viewer sees on v.
// Enabled always agrees with CanRequestSeat.
func RequestAction(s Snapshot, viewer domain.User, v domain.Vehicle) RequestOption {
	if viewer.Email == v.DriverEmail {
		return RequestOption{Action: ActionOwnVehicle}
	}
	if viewer.Role != domain.RolePassenger {
		return RequestOption{Action: ActionHidden}
	}
	if r, ok := ExistingRequest(viewer.Email, v.DriverEmail, s.Requests); ok {
		switch r.Status {
		case domain.RequestPending:
			return RequestOption{Action: ActionPending}
		case domain.RequestApproved:
			return RequestOption{Action: ActionApproved}
		case domain.RequestRejected:
			// a rejection never blocks asking again
		default:
			panic("unhandled request status " + string(r.Status))
		}
	}
	if RemainingDemand(viewer, s.Requests) <= 0 {
		return RequestOption{Action: ActionAllBooked}
	}
	if AvailableSeats(v, s.Requests) <= 0 {
		return RequestOption{Action: ActionFull}
	}
	return RequestOption{
		Action:  ActionRequest,
		Enabled: CanRequestSeat(viewer, v, s.Requests),
		Cap:     RequestedSeatCap(viewer, v, s.Requests),
	}
}

func VehicleListing(s Snapshot, viewer domain.User) []VehicleView {
	active := ActiveVehicles(s)
	out := make([]VehicleView, 0, len(active))
	for _, v := range active {
		out = append(out, VehicleView{
			Vehicle:        v,
			DriverName:     s.displayName(v.DriverEmail),
			DriverPhone:    s.phone(v.DriverEmail),
			AssignedSeats:  AssignedSeats(v.DriverEmail, s.Requests),
			AvailableSeats: AvailableSeats(v, s.Requests),
			Status:         EffectiveStatus(v, s.Requests),
			Option:         RequestAction(s, viewer, v),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvailableSeats > out[j].AvailableSeats
	})
	return out
}

func (s Snapshot) requestView(viewer domain.User, r domain.Request) RequestView {
	other := r.Counterpart(viewer.Email)
	view := RequestView{
		Request:          r,
		CounterpartEmail: other,
		CounterpartName:  s.displayName(other),
		CounterpartPhone: s.phone(other),
		Moves:            participantMoves(viewer, r),
	}
	if v, ok := s.Vehicle(r.DriverEmail); ok {
		view.VehicleType = v.VehicleType
	}
	return view
}

func newestFirst(views []RequestView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Request.CreatedAt.After(views[j].Request.CreatedAt)
	})
}

// OutgoingRequests lists every request the passenger has sent, in any status.
func OutgoingRequests(s Snapshot, passenger domain.User) []RequestView {
	out := []RequestView{}
	for _, r := range s.Requests {
		if r.PassengerEmail == passenger.Email {
			out = append(out, s.requestView(passenger, r))
		}
	}
	newestFirst(out)
	return out
}

// IncomingRequests lists the driver's requests that still need attention:
// pending ones to decide and rejected ones to clear.
func IncomingRequests(s Snapshot, driver domain.User) []RequestView {
	out := []RequestView{}
	for _, r := range s.Requests {
		if r.DriverEmail != driver.Email || r.Status.Holding() {
			continue
		}
		out = append(out, s.requestView(driver, r))
	}
	newestFirst(out)
	return out
}

func DriverPassengers(s Snapshot, driver domain.User) PassengerList {
	list := PassengerList{Passengers: []RequestView{}}
	for _, r := range s.Requests {
		if r.DriverEmail != driver.Email || !r.Status.Holding() {
			continue
		}
		list.Passengers = append(list.Passengers, s.requestView(driver, r))
		list.BookedSeats += r.SeatsRequested
	}
	newestFirst(list.Passengers)
	return list
}

func countBadges(s Snapshot, viewer types.Email) Badges {
	var b Badges
	for _, r := range s.Requests {
		switch {
		case r.DriverEmail == viewer && r.Status == domain.RequestPending:
			b.IncomingPending++
		case r.DriverEmail == viewer && r.Status.Holding():
			b.Passengers++
		}
		if r.PassengerEmail == viewer {
			b.Outgoing++
		}
	}
	return b
}

// BadgesFor returns the counters relevant to viewer's current role; the others stay zero.
func BadgesFor(s Snapshot, viewer domain.User) Badges {
	all := countBadges(s, viewer.Email)
	switch viewer.Role {
	case domain.RoleDriver:
		return Badges{IncomingPending: all.IncomingPending, Passengers: all.Passengers}
	case domain.RolePassenger:
		return Badges{Outgoing: all.Outgoing}
	case domain.RoleNone, domain.RoleAdmin:
		return Badges{}
	default:
		panic("unhandled role " + string(viewer.Role))
	}
}

// Assignments lists every approved request for the admin view.
func Assignments(s Snapshot) []AssignmentView {
	out := []AssignmentView{}
	for _, r := range s.Requests {
		if !r.Status.Holding() {
			continue
		}
		out = append(out, AssignmentView{
			Request:       r,
			PassengerName: s.displayName(r.PassengerEmail),
			DriverName:    s.displayName(r.DriverEmail),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DriverName != out[j].DriverName {
			return out[i].DriverName < out[j].DriverName
		}
		return out[i].PassengerName < out[j].PassengerName
	})
	return out
}

// BuildDashboard assembles everything the shared dashboard shows for viewer.
// The viewer record is taken from the snapshot when present so a stale
// session copy never drives the arithmetic.
func BuildDashboard(s Snapshot, viewer domain.User) Dashboard {
	if fresh, ok := s.User(viewer.Email); ok {
		viewer = fresh
	}
	d := Dashboard{
		Viewer:   viewer,
		Vehicles: VehicleListing(s, viewer),
		Requests: []RequestView{},
		Badges:   BadgesFor(s, viewer),
	}
	switch viewer.Role {
	case domain.RoleDriver:
		d.Requests = IncomingRequests(s, viewer)
		passengers := DriverPassengers(s, viewer)
		d.Passengers = &passengers
	case domain.RolePassenger:
		d.Requests = OutgoingRequests(s, viewer)
		d.RemainingDemand = RemainingDemand(viewer, s.Requests)
	case domain.RoleNone, domain.RoleAdmin:
	default:
		panic("unhandled role " + string(viewer.Role))
	}
	return d
}
