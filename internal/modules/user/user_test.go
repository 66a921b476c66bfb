package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/testutil"
	"carpool/internal/types"
)

type memStore struct {
	mu       sync.Mutex
	users    map[types.Email]domain.User
	requests []domain.Request
}

func newMemStore(users ...domain.User) *memStore {
	m := &memStore{users: map[types.Email]domain.User{}}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *memStore) Get(_ context.Context, email types.Email) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *memStore) CreateIfAbsent(_ context.Context, email types.Email) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, false, nil
	}
	u := domain.User{Email: email, Role: domain.RoleNone, SeatsNeeded: 1, CreatedAt: time.Now()}
	m.users[email] = u
	return u, true, nil
}

func (m *memStore) UpdateProfile(_ context.Context, email types.Email, p Profile, check ProfileCheck) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if check != nil {
		var held []domain.Request
		for _, r := range m.requests {
			if r.PassengerEmail == email {
				held = append(held, r)
			}
		}
		if err := check(u, held); err != nil {
			return domain.User{}, err
		}
	}
	u.Name, u.Phone = p.Name, p.Phone
	if p.SeatsNeeded != nil {
		u.SeatsNeeded = *p.SeatsNeeded
	}
	m.users[email] = u
	return u, nil
}

func (m *memStore) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func TestLoginNormalizesAndRegisters(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	u, err := svc.Login(context.Background(), "  Carol@Corp.Test ")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "carol@corp.test" || u.Role != domain.RoleNone {
		t.Fatalf("unexpected user %+v", u)
	}

	again, err := svc.Login(context.Background(), "carol@corp.test")
	if err != nil || again.Email != u.Email {
		t.Fatalf("second login: %+v %v", again, err)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(store.users))
	}
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	if _, err := svc.Login(context.Background(), "not an email"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSavePassengerProfile(t *testing.T) {
	pax := domain.User{Email: "pax@corp.test", Role: domain.RolePassenger, SeatsNeeded: 1}
	driver := domain.User{Email: "drv@corp.test", Role: domain.RoleDriver, SeatsNeeded: 1}
	store := newMemStore(pax, driver)
	store.requests = []domain.Request{
		{ID: "r1", PassengerEmail: pax.Email, DriverEmail: "a@corp.test", SeatsRequested: 2, Status: domain.RequestApproved},
		{ID: "r2", PassengerEmail: pax.Email, DriverEmail: "b@corp.test", SeatsRequested: 3, Status: domain.RequestRejected},
	}
	svc := NewService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		cmd   PassengerProfileCommand
		check func(error) bool
	}{
		{"missing name", PassengerProfileCommand{Email: pax.Email, Name: " ", SeatsNeeded: 2}, domain.IsValidation},
		{"negative seats", PassengerProfileCommand{Email: pax.Email, Name: "Pat", SeatsNeeded: -1}, domain.IsValidation},
		{"below booked", PassengerProfileCommand{Email: pax.Email, Name: "Pat", SeatsNeeded: 1}, domain.IsConflict},
		{"wrong role", PassengerProfileCommand{Email: driver.Email, Name: "Dee", SeatsNeeded: 1}, domain.IsForbidden},
		{"unknown user", PassengerProfileCommand{Email: "ghost@corp.test", Name: "Gus", SeatsNeeded: 1}, domain.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SavePassengerProfile(ctx, tt.cmd); !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	u, err := svc.SavePassengerProfile(ctx, PassengerProfileCommand{Email: pax.Email, Name: " Pat ", Phone: "555", SeatsNeeded: 2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if u.Name != "Pat" || u.SeatsNeeded != 2 || u.Phone != "555" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestContactFallsBackToEmail(t *testing.T) {
	svc := NewService(newMemStore(domain.User{Email: "nameless@corp.test", Phone: "123"}), nil)
	c, err := svc.Contact(context.Background(), "Nameless@Corp.Test")
	if err != nil {
		t.Fatalf("Contact: %v", err)
	}
	if c.Name != "nameless@corp.test" || c.Phone != "123" {
		t.Fatalf("unexpected contact %+v", c)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	store := NewStore(db)
	ctx := context.Background()

	u, created, err := store.CreateIfAbsent(ctx, "first@corp.test")
	if err != nil || !created {
		t.Fatalf("CreateIfAbsent: %v created=%v", err, created)
	}
	if u.Role != domain.RoleNone || u.SeatsNeeded != 1 {
		t.Fatalf("unexpected defaults %+v", u)
	}
	if _, created, err = store.CreateIfAbsent(ctx, "first@corp.test"); err != nil || created {
		t.Fatalf("second CreateIfAbsent: %v created=%v", err, created)
	}

	seats := 3
	u, err = store.UpdateProfile(ctx, "first@corp.test", Profile{Name: "Fi", Phone: "42", SeatsNeeded: &seats}, nil)
	if err != nil || u.SeatsNeeded != 3 || u.Name != "Fi" {
		t.Fatalf("UpdateProfile: %+v %v", u, err)
	}

	if _, err := store.Get(ctx, "missing@corp.test"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := db.Exec(ctx, `UPDATE users SET role = 'pilot' WHERE email = 'first@corp.test'`); err != nil {
		t.Fatalf("corrupt role: %v", err)
	}
	if _, err := store.Get(ctx, "first@corp.test"); !domain.IsMalformed(err) {
		t.Fatalf("expected malformed role error, got %v", err)
	}
}

func TestStoreProfileCheckSeesRequestsUnderLock(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "pax@corp.test", "Pat", "passenger", 3)
	testutil.SeedUser(t, db, "drv@corp.test", "Dee", "driver", 1)
	testutil.SeedVehicle(t, db, "drv@corp.test", 4, 0, "open")
	if _, err := db.Exec(ctx, `
		INSERT INTO requests (id, passenger_email, driver_email, seats_requested, status)
		VALUES ('r1', 'pax@corp.test', 'drv@corp.test', 2, 'pending')`); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	svc := NewService(NewStore(db), nil)
	if _, err := svc.SavePassengerProfile(ctx, PassengerProfileCommand{Email: "pax@corp.test", Name: "Pat", SeatsNeeded: 1}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict below requested seats, got %v", err)
	}
	if u, err := NewStore(db).Get(ctx, "pax@corp.test"); err != nil || u.SeatsNeeded != 3 {
		t.Fatalf("refused save must not write: %+v %v", u, err)
	}
	u, err := svc.SavePassengerProfile(ctx, PassengerProfileCommand{Email: "pax@corp.test", Name: "Pat", SeatsNeeded: 2})
	if err != nil || u.SeatsNeeded != 2 {
		t.Fatalf("save at requested seats: %+v %v", u, err)
	}
	if _, err := svc.SavePassengerProfile(ctx, PassengerProfileCommand{Email: "drv@corp.test", Name: "Dee", SeatsNeeded: 1}); !domain.IsForbidden(err) {
		t.Fatalf("driver saving passenger profile: expected forbidden, got %v", err)
	}
}
