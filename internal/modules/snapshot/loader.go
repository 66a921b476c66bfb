// README: Loads users, vehicles and requests concurrently into one allocation snapshot.
package snapshot

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"carpool/internal/domain"
	"carpool/internal/modules/allocation"
)

type UserLister interface {
	List(ctx context.Context) ([]domain.User, error)
}

type VehicleLister interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
}

type RequestLister interface {
	List(ctx context.Context) ([]domain.Request, error)
}

type Loader struct {
	users    UserLister
	vehicles VehicleLister
	requests RequestLister
	now      func() time.Time
}

func NewLoader(users UserLister, vehicles VehicleLister, requests RequestLister) *Loader {
	return &Loader{users: users, vehicles: vehicles, requests: requests, now: time.Now}
}

// Load fetches the three collections in parallel. The first failure cancels
// the others and is returned unchanged.
func (l *Loader) Load(ctx context.Context) (allocation.Snapshot, error) {
	var snap allocation.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Users, err = l.users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Vehicles, err = l.vehicles.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Requests, err = l.requests.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return allocation.Snapshot{}, err
	}
	snap.TakenAt = l.now()
	return snap, nil
}
