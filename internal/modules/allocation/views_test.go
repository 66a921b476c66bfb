package allocation

import (
	"testing"
	"time"

	"carpool/internal/domain"
)

func sampleSnapshot() Snapshot {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	r1 := req("r1", passengerX, driverA, 1, domain.RequestApproved)
	r1.CreatedAt = t0
	r2 := req("r2", passengerY, driverA, 1, domain.RequestPending)
	r2.CreatedAt = t0.Add(time.Minute)
	r3 := req("r3", passengerY, driverB, 1, domain.RequestRejected)
	r3.CreatedAt = t0.Add(2 * time.Minute)

	retired := vehicle(driverB, 4, 0)
	retired.Status = domain.VehicleNotBringing

	return Snapshot{
		Users: []domain.User{
			{Email: driverA, Name: "Alex", Role: domain.RoleDriver, SeatsNeeded: 1},
			{Email: driverB, Name: "Blair", Role: domain.RolePassenger, SeatsNeeded: 1},
			{Email: passengerX, Name: "Xia", Role: domain.RolePassenger, SeatsNeeded: 1},
			{Email: passengerY, Role: domain.RolePassenger, SeatsNeeded: 2},
		},
		Vehicles: []domain.Vehicle{vehicle(driverA, 3, 1), retired},
		Requests: []domain.Request{r1, r2, r3},
		TakenAt:  t0.Add(time.Hour),
	}
}

func TestVehicleListingExcludesRetired(t *testing.T) {
	s := sampleSnapshot()
	viewer, _ := s.User(passengerY)
	got := VehicleListing(s, viewer)
	if len(got) != 1 {
		t.Fatalf("expected 1 active vehicle, got %d", len(got))
	}
	v := got[0]
	if v.DriverName != "Alex" || v.AssignedSeats != 1 || v.AvailableSeats != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Option.Action != ActionPending || v.Option.Enabled {
		t.Fatalf("pending request should disable the button, got %+v", v.Option)
	}
}

func TestRequestActionStates(t *testing.T) {
	s := sampleSnapshot()
	v, _ := s.Vehicle(driverA)

	driver, _ := s.User(driverA)
	if got := RequestAction(s, driver, v); got.Action != ActionOwnVehicle {
		t.Fatalf("own vehicle: got %s", got.Action)
	}
	x, _ := s.User(passengerX)
	if got := RequestAction(s, x, v); got.Action != ActionApproved {
		t.Fatalf("approved: got %s", got.Action)
	}

	fresh := passenger("new@corp.test", 3)
	got := RequestAction(s, fresh, v)
	if got.Action != ActionRequest || !got.Enabled || got.Cap != 1 {
		t.Fatalf("fresh passenger: got %+v", got)
	}
	if got.Enabled != CanRequestSeat(fresh, v, s.Requests) {
		t.Fatal("Enabled must agree with CanRequestSeat")
	}

	admin := domain.User{Email: "boss@corp.test", Role: domain.RoleAdmin, IsAdmin: true}
	if got := RequestAction(s, admin, v); got.Action != ActionHidden {
		t.Fatalf("admin: got %s", got.Action)
	}

	s.Requests = append(s.Requests, req("r4", passengerY, driverA, 1, domain.RequestApproved))
	if got := RequestAction(s, fresh, v); got.Action != ActionFull {
		t.Fatalf("full vehicle: got %s", got.Action)
	}
}

func TestRequestActionAllBooked(t *testing.T) {
	s := sampleSnapshot()
	s.Vehicles = append(s.Vehicles, vehicle("driver.c@corp.test", 5, 0))
	x, _ := s.User(passengerX)
	v, _ := s.Vehicle("driver.c@corp.test")
	if got := RequestAction(s, x, v); got.Action != ActionAllBooked {
		t.Fatalf("got %s, want all-booked", got.Action)
	}
}

func TestDashboardForDriver(t *testing.T) {
	s := sampleSnapshot()
	driver, _ := s.User(driverA)
	d := BuildDashboard(s, driver)

	if len(d.Requests) != 1 || d.Requests[0].Request.ID != "r2" {
		t.Fatalf("incoming requests = %+v", d.Requests)
	}
	if d.Requests[0].CounterpartName != string(passengerY) {
		t.Fatalf("nameless passenger should show email, got %q", d.Requests[0].CounterpartName)
	}
	if d.Passengers == nil || len(d.Passengers.Passengers) != 1 || d.Passengers.BookedSeats != 1 {
		t.Fatalf("passengers = %+v", d.Passengers)
	}
	if d.Badges != (Badges{IncomingPending: 1, Passengers: 1}) {
		t.Fatalf("badges = %+v", d.Badges)
	}
	moves := d.Requests[0].Moves
	if len(moves) != 2 || moves[0] != MoveApprove || moves[1] != MoveReject {
		t.Fatalf("moves = %v", moves)
	}
}

func TestDashboardForPassenger(t *testing.T) {
	s := sampleSnapshot()
	y, _ := s.User(passengerY)
	d := BuildDashboard(s, y)

	if len(d.Requests) != 2 || d.Requests[0].Request.ID != "r3" {
		t.Fatalf("outgoing requests should be newest first: %+v", d.Requests)
	}
	if d.RemainingDemand != 1 {
		t.Fatalf("remaining demand = %d, want 1", d.RemainingDemand)
	}
	if d.Passengers != nil {
		t.Fatal("passenger dashboard must not carry a passenger list")
	}
	if d.Badges != (Badges{Outgoing: 2}) {
		t.Fatalf("badges = %+v", d.Badges)
	}
}

func TestAssignments(t *testing.T) {
	got := Assignments(sampleSnapshot())
	if len(got) != 1 || got[0].PassengerName != "Xia" || got[0].DriverName != "Alex" {
		t.Fatalf("assignments = %+v", got)
	}
}
