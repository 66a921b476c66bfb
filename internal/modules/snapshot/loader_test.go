package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
)

type users []domain.User

func (u users) List(context.Context) ([]domain.User, error) { return u, nil }

type vehicles []domain.Vehicle

func (v vehicles) List(context.Context) ([]domain.Vehicle, error) { return v, nil }

type requests struct {
	rows []domain.Request
	err  error
}

func (r requests) List(ctx context.Context) ([]domain.Request, error) { return r.rows, r.err }

func TestLoadCombinesCollections(t *testing.T) {
	l := NewLoader(
		users{{Email: "a@corp.test"}},
		vehicles{{DriverEmail: "a@corp.test"}},
		requests{rows: []domain.Request{{ID: "r1"}, {ID: "r2"}}},
	)
	fixed := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Users) != 1 || len(snap.Vehicles) != 1 || len(snap.Requests) != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !snap.TakenAt.Equal(fixed) {
		t.Fatalf("TakenAt = %s", snap.TakenAt)
	}
}

func TestLoadSurfacesStoreMessage(t *testing.T) {
	failure := domain.StoreFailure{Op: "list requests", Err: errors.New("connection reset by peer")}
	l := NewLoader(users{}, vehicles{}, requests{err: failure})
	_, err := l.Load(context.Background())
	if !domain.IsStoreFailure(err) || err.Error() != "connection reset by peer" {
		t.Fatalf("expected store failure with original message, got %v", err)
	}
}
