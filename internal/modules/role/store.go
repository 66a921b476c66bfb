// README: Applies a role change atomically; vehicle retirement and the role write share one transaction.
package role

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/domain"
	"carpool/internal/modules/request/requestrow"
	"carpool/internal/modules/user"
	"carpool/internal/modules/vehicle"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Apply locks the user row, re-runs guard against the requests visible inside
// the transaction, retires the vehicle when leaving driver and writes the role.
func (s *Store) Apply(ctx context.Context, c Change, guard GuardFunc) (domain.User, error) {
	var updated domain.User
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		u, err := user.Load(ctx, tx, c.Email, true)
		if err != nil {
			return err
		}
		if u.Role != c.From {
			return domain.ConflictError{Resource: "role", Msg: "role changed since it was loaded, reload and try again"}
		}
		requests, err := requestrow.Touching(ctx, tx, c.Email)
		if err != nil {
			return err
		}
		if err := guard(u, requests); err != nil {
			return err
		}
		if c.From == domain.RoleDriver && c.To != domain.RoleDriver {
			if err := vehicle.Retire(ctx, tx, c.Email); err != nil {
				return err
			}
		}
		updated, err = user.Scan(tx.QueryRow(ctx, `
			UPDATE users
			SET role = $2,
			    name = COALESCE($3, name),
			    is_admin = COALESCE($4, is_admin),
			    updated_at = NOW()
			WHERE email = $1
			RETURNING `+user.Columns,
			string(c.Email), string(c.To), c.Name, c.IsAdmin,
		))
		return err
	})
	if err != nil {
		return domain.User{}, domain.Fail("change role", err)
	}
	return updated, nil
}
