// README: Admin store: the summary aggregate and cascading user deletion.
package admin

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/domain"
	"carpool/internal/modules/request"
	"carpool/internal/modules/request/requestrow"
	"carpool/internal/modules/user"
	"carpool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Summary counts participants, active vehicles, their offered seats and
// passengers still without an approved ride.
func (s *Store) Summary(ctx context.Context) (domain.Summary, error) {
	var out domain.Summary
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role IN ('driver', 'passenger')),
			(SELECT COUNT(*) FROM vehicles WHERE status <> 'not-bringing'),
			(SELECT COALESCE(SUM(total_seats - family_members), 0) FROM vehicles WHERE status <> 'not-bringing'),
			(SELECT COUNT(*) FROM users u
			 WHERE u.role = 'passenger'
			   AND NOT EXISTS (
				SELECT 1 FROM requests r
				WHERE r.passenger_email = u.email AND r.status IN ('approved', 'confirmed')
			   ))`,
	).Scan(&out.TotalPeople, &out.TotalCars, &out.TotalSeats, &out.UnassignedPassengers)
	if err != nil {
		return domain.Summary{}, domain.Fail("summary", err)
	}
	return out, nil
}

// DeleteUser removes the user together with their vehicle and every request
// they take part in. Each removed request leaves a deleted event behind.
func (s *Store) DeleteUser(ctx context.Context, email, actor types.Email) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := user.Load(ctx, tx, email, true); err != nil {
			return err
		}
		requests, err := requestrow.Touching(ctx, tx, email)
		if err != nil {
			return err
		}
		for _, r := range requests {
			if err := request.AppendEvent(ctx, tx, domain.RequestEvent{
				RequestID:  r.ID,
				Kind:       domain.EventDeleted,
				FromStatus: r.Status,
				ActorEmail: actor,
			}); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `DELETE FROM users WHERE email = $1`, string(email))
		return err
	})
	return domain.Fail("delete user", err)
}
