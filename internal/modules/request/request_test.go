package request

import (
	"context"
	"sync"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/modules/allocation"
	"carpool/internal/testutil"
	"carpool/internal/types"
)

type memStore struct {
	mu       sync.Mutex
	users    map[types.Email]domain.User
	vehicles map[types.Email]domain.Vehicle
	requests []domain.Request
	events   []domain.RequestEvent
	stale    bool
}

func newMemStore() *memStore {
	return &memStore{users: map[types.Email]domain.User{}, vehicles: map[types.Email]domain.Vehicle{}}
}

func (m *memStore) Get(_ context.Context, id types.ID) (domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Request{}, domain.NotFoundError{Resource: "request"}
}

func (m *memStore) Create(_ context.Context, r domain.Request, check CreateCheck) (domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[r.DriverEmail]
	if !ok {
		return domain.Request{}, domain.NotFoundError{Resource: "vehicle"}
	}
	if err := check(m.users[r.PassengerEmail], v, m.requests); err != nil {
		return domain.Request{}, err
	}
	kept := m.requests[:0]
	for _, old := range m.requests {
		if old.PassengerEmail == r.PassengerEmail && old.DriverEmail == r.DriverEmail && old.Status == domain.RequestRejected {
			continue
		}
		kept = append(kept, old)
	}
	r.CreatedAt = time.Now()
	m.requests = append(kept, r)
	m.events = append(m.events, domain.RequestEvent{RequestID: r.ID, Kind: domain.EventCreated, ActorEmail: r.PassengerEmail})
	return r, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id types.ID, from, to domain.RequestStatus, actor types.Email, check ApproveCheck) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale {
		return false, nil
	}
	for i, r := range m.requests {
		if r.ID != id {
			continue
		}
		if check != nil {
			if err := check(m.vehicles[r.DriverEmail], m.requests); err != nil {
				return false, err
			}
		}
		if r.Status != from {
			return false, nil
		}
		m.requests[i].Status = to
		return true, nil
	}
	return false, nil
}

func (m *memStore) Delete(_ context.Context, id types.ID, from domain.RequestStatus, actor types.Email) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.requests {
		if r.ID == id && r.Status == from {
			m.requests = append(m.requests[:i], m.requests[i+1:]...)
			m.events = append(m.events, domain.RequestEvent{RequestID: id, Kind: domain.EventDeleted, FromStatus: from, ActorEmail: actor})
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) filter(keep func(domain.Request) bool) []domain.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Request{}
	for _, r := range m.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) ByPassenger(_ context.Context, email types.Email) ([]domain.Request, error) {
	return m.filter(func(r domain.Request) bool { return r.PassengerEmail == email }), nil
}

func (m *memStore) ByDriver(_ context.Context, email types.Email) ([]domain.Request, error) {
	return m.filter(func(r domain.Request) bool { return r.DriverEmail == email }), nil
}

func (m *memStore) List(_ context.Context) ([]domain.Request, error) {
	return m.filter(func(domain.Request) bool { return true }), nil
}

func (m *memStore) Events(_ context.Context, id types.ID) ([]domain.RequestEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.RequestEvent{}
	for _, e := range m.events {
		if e.RequestID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

var (
	driver = domain.User{Email: "drew@corp.test", Name: "Drew", Role: domain.RoleDriver, SeatsNeeded: 1}
	pax    = domain.User{Email: "pia@corp.test", Name: "Pia", Role: domain.RolePassenger, SeatsNeeded: 2}
	other  = domain.User{Email: "olly@corp.test", Name: "Olly", Role: domain.RolePassenger, SeatsNeeded: 3}
	admin  = domain.User{Email: "ada@corp.test", Role: domain.RoleAdmin, IsAdmin: true}
)

func setup(total, family int) (*Service, *memStore) {
	store := newMemStore()
	for _, u := range []domain.User{driver, pax, other, admin} {
		store.users[u.Email] = u
	}
	store.vehicles[driver.Email] = domain.Vehicle{
		DriverEmail: driver.Email, VehicleType: "sedan", TotalSeats: total, FamilyMembers: family, Status: domain.VehicleOpen,
	}
	return NewService(store, nil), store
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(domain.RequestPending, domain.RequestApproved) || !CanTransition(domain.RequestPending, domain.RequestRejected) {
		t.Fatal("pending must move to approved or rejected")
	}
	if CanTransition(domain.RequestApproved, domain.RequestRejected) || CanTransition(domain.RequestRejected, domain.RequestApproved) {
		t.Fatal("decided requests must not move again")
	}
}

func TestRequestApproveScenario(t *testing.T) {
	svc, store := setup(4, 0)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: "  Drew@Corp.Test ", SeatsRequested: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != domain.RequestPending || r.DriverEmail != driver.Email || r.ID == "" {
		t.Fatalf("unexpected request %+v", r)
	}

	if _, err := svc.Approve(ctx, ActCommand{ID: r.ID, Actor: pax}); !domain.IsForbidden(err) {
		t.Fatalf("passenger approving: expected forbidden, got %v", err)
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: r.ID, Actor: driver}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	v := store.vehicles[driver.Email]
	if got := allocation.AvailableSeats(v, store.requests); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if got := allocation.RemainingDemand(pax, store.requests); got != 0 {
		t.Fatalf("remaining demand = %d, want 0", got)
	}
	if _, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1}); !domain.IsConflict(err) {
		t.Fatalf("second request to same driver: expected conflict, got %v", err)
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: r.ID, Actor: driver}); !domain.IsConflict(err) {
		t.Fatalf("re-approve: expected conflict, got %v", err)
	}
}

func TestRequestAfterRejectionIsAllowed(t *testing.T) {
	svc, store := setup(4, 0)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Reject(ctx, ActCommand{ID: r.ID, Actor: driver}); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	again, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 2})
	if err != nil {
		t.Fatalf("re-request after rejection: %v", err)
	}
	if len(store.requests) != 1 || store.requests[0].ID != again.ID {
		t.Fatalf("rejected leftover should be replaced, have %+v", store.requests)
	}
}

func TestCreateRefusals(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		prep  func(*memStore)
		cmd   CreateCommand
		check func(error) bool
	}{
		{"own vehicle", nil, CreateCommand{PassengerEmail: driver.Email, DriverEmail: driver.Email, SeatsRequested: 1}, domain.IsValidation},
		{"zero seats", nil, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email}, domain.IsValidation},
		{"over cap", nil, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 3}, domain.IsValidation},
		{"not a passenger", nil, CreateCommand{PassengerEmail: admin.Email, DriverEmail: driver.Email, SeatsRequested: 1}, domain.IsForbidden},
		{"no vehicle", nil, CreateCommand{PassengerEmail: pax.Email, DriverEmail: "nobody@corp.test", SeatsRequested: 1}, domain.IsNotFound},
		{
			"retired vehicle",
			func(m *memStore) {
				v := m.vehicles[driver.Email]
				v.Status = domain.VehicleNotBringing
				m.vehicles[driver.Email] = v
			},
			CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1},
			domain.IsConflict,
		},
		{
			"vehicle full",
			func(m *memStore) {
				m.requests = append(m.requests, domain.Request{ID: "x", PassengerEmail: other.Email, DriverEmail: driver.Email, SeatsRequested: 3, Status: domain.RequestApproved})
			},
			CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1},
			domain.IsConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setup(4, 1)
			if tt.prep != nil {
				tt.prep(store)
			}
			if _, err := svc.Create(ctx, tt.cmd); !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestApproveRefusesOverbooking(t *testing.T) {
	svc, store := setup(3, 1)
	ctx := context.Background()
	a, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 2})
	if err != nil {
		t.Fatalf("Create pax: %v", err)
	}
	b, err := svc.Create(ctx, CreateCommand{PassengerEmail: other.Email, DriverEmail: driver.Email, SeatsRequested: 2})
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: a.ID, Actor: driver}); err != nil {
		t.Fatalf("Approve a: %v", err)
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: b.ID, Actor: driver}); !domain.IsConflict(err) {
		t.Fatalf("Approve b: expected seat conflict, got %v", err)
	}
	if got := allocation.AssignedSeats(driver.Email, store.requests); got != 2 {
		t.Fatalf("assigned = %d, want 2", got)
	}
}

func TestStaleUpdateIsConflict(t *testing.T) {
	svc, store := setup(4, 0)
	ctx := context.Background()
	r, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.stale = true
	if _, err := svc.Reject(ctx, ActCommand{ID: r.ID, Actor: driver}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteAuthority(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		status domain.RequestStatus
		actor  domain.User
		want   allocation.Move
		check  func(error) bool
	}{
		{"passenger cancels pending", domain.RequestPending, pax, allocation.MoveCancel, nil},
		{"passenger clears rejected", domain.RequestRejected, pax, allocation.MoveCancel, nil},
		{"passenger leaves ride", domain.RequestApproved, pax, allocation.MoveLeave, nil},
		{"driver removes passenger", domain.RequestApproved, driver, allocation.MoveRemove, nil},
		{"driver clears rejected", domain.RequestRejected, driver, allocation.MoveRemove, nil},
		{"admin unassigns", domain.RequestApproved, admin, allocation.MoveUnassign, nil},
		{"driver cannot delete pending", domain.RequestPending, driver, "", domain.IsForbidden},
		{"stranger cannot delete", domain.RequestApproved, other, "", domain.IsForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setup(4, 0)
			store.requests = []domain.Request{{ID: "r1", PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1, Status: tt.status}}
			move, err := svc.Delete(ctx, ActCommand{ID: "r1", Actor: tt.actor})
			if tt.check != nil {
				if !tt.check(err) {
					t.Fatalf("unexpected error %v", err)
				}
				if len(store.requests) != 1 {
					t.Fatal("refused delete must leave the request")
				}
				return
			}
			if err != nil || move != tt.want {
				t.Fatalf("Delete = %s, %v; want %s", move, err, tt.want)
			}
			if len(store.requests) != 0 {
				t.Fatal("request should be gone")
			}
			events, _ := svc.Events(ctx, "r1")
			if len(events) != 1 || events[0].Kind != domain.EventDeleted || events[0].ActorEmail != tt.actor.Email {
				t.Fatalf("unexpected events %+v", events)
			}
		})
	}
}

func TestStoreLifecycle(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, string(driver.Email), "Drew", "driver", 1)
	testutil.SeedUser(t, db, string(pax.Email), "Pia", "passenger", 2)
	testutil.SeedUser(t, db, string(other.Email), "Olly", "passenger", 3)
	testutil.SeedVehicle(t, db, string(driver.Email), 4, 1, "open")

	svc := NewService(NewStore(db), nil)

	r, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 1}); !domain.IsConflict(err) {
		t.Fatalf("duplicate live pair: expected conflict, got %v", err)
	}
	if _, err := svc.Reject(ctx, ActCommand{ID: r.ID, Actor: driver}); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	r2, err := svc.Create(ctx, CreateCommand{PassengerEmail: pax.Email, DriverEmail: driver.Email, SeatsRequested: 2})
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: r2.ID, Actor: driver}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	r3, err := svc.Create(ctx, CreateCommand{PassengerEmail: other.Email, DriverEmail: driver.Email, SeatsRequested: 1})
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{PassengerEmail: other.Email, DriverEmail: driver.Email, SeatsRequested: 2}); err == nil {
		t.Fatal("expected refusal for existing pair")
	}
	if _, err := svc.Approve(ctx, ActCommand{ID: r3.ID, Actor: driver}); err != nil {
		t.Fatalf("Approve other: %v", err)
	}

	held, err := NewStore(db).ByDriver(ctx, driver.Email)
	if err != nil {
		t.Fatalf("ByDriver: %v", err)
	}
	if got := allocation.AssignedSeats(driver.Email, held); got != 3 {
		t.Fatalf("assigned = %d, want 3", got)
	}

	if move, err := svc.Delete(ctx, ActCommand{ID: r2.ID, Actor: driver}); err != nil || move != allocation.MoveRemove {
		t.Fatalf("Delete: %s %v", move, err)
	}
	if _, err := svc.Get(ctx, r2.ID); !domain.IsNotFound(err) {
		t.Fatalf("deleted request should be gone, got %v", err)
	}
	events, err := svc.Events(ctx, r2.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	kinds := []domain.EventKind{domain.EventCreated, domain.EventApproved, domain.EventDeleted}
	if len(events) != len(kinds) {
		t.Fatalf("events = %+v", events)
	}
	for i, k := range kinds {
		if events[i].Kind != k {
			t.Fatalf("event %d = %s, want %s", i, events[i].Kind, k)
		}
	}
}
