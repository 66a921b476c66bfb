// README: User store backed by PostgreSQL; roles are parsed into domain.Role on read.
package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/domain"
	"carpool/internal/infra"
	"carpool/internal/modules/request/requestrow"
	"carpool/internal/types"
)

// Columns is the select list understood by Scan.
const Columns = `email, name, phone, role, is_admin, seats_needed, created_at, updated_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Scan reads one user row selected with Columns.
func Scan(row pgx.Row) (domain.User, error) {
	var u domain.User
	var email, role string
	if err := row.Scan(&email, &u.Name, &u.Phone, &role, &u.IsAdmin, &u.SeatsNeeded, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	u.Email = types.Email(email)
	u.Role = parsed
	return u, nil
}

// Load reads a user; forUpdate locks the row for the surrounding transaction.
func Load(ctx context.Context, q infra.DBTX, email types.Email, forUpdate bool) (domain.User, error) {
	sql := `SELECT ` + Columns + ` FROM users WHERE email = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	u, err := Scan(q.QueryRow(ctx, sql, string(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, domain.Fail("get user", err)
}

func (s *Store) Get(ctx context.Context, email types.Email) (domain.User, error) {
	return Load(ctx, s.db, email, false)
}

// CreateIfAbsent inserts a fresh user with no role. created is false when the
// email was already registered.
func (s *Store) CreateIfAbsent(ctx context.Context, email types.Email) (domain.User, bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO users (email, role, seats_needed)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		string(email), string(domain.RoleNone), domain.DefaultSeatsNeeded,
	)
	if err != nil {
		return domain.User{}, false, domain.Fail("create user", err)
	}
	u, err := s.Get(ctx, email)
	if err != nil {
		return domain.User{}, false, err
	}
	return u, tag.RowsAffected() == 1, nil
}

// WriteProfile writes name and phone, and seats needed when non-nil.
func WriteProfile(ctx context.Context, q infra.DBTX, email types.Email, p Profile) (domain.User, error) {
	u, err := Scan(q.QueryRow(ctx, `
		UPDATE users
		SET name = $2,
		    phone = $3,
		    seats_needed = COALESCE($4, seats_needed),
		    updated_at = NOW()
		WHERE email = $1
		RETURNING `+Columns,
		string(email), p.Name, p.Phone, p.SeatsNeeded,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, domain.Fail("update user", err)
}

// UpdateProfile writes p in one transaction. check, when set, runs first with
// the user row locked, the same lock request creation takes on the passenger.
func (s *Store) UpdateProfile(ctx context.Context, email types.Email, p Profile, check ProfileCheck) (domain.User, error) {
	var updated domain.User
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if check != nil {
			u, err := Load(ctx, tx, email, true)
			if err != nil {
				return err
			}
			held, err := requestrow.ByPassenger(ctx, tx, email)
			if err != nil {
				return err
			}
			if err := check(u, held); err != nil {
				return err
			}
		}
		var err error
		updated, err = WriteProfile(ctx, tx, email, p)
		return err
	})
	if err != nil {
		return domain.User{}, domain.Fail("update user", err)
	}
	return updated, nil
}

func (s *Store) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+Columns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, domain.Fail("list users", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := Scan(rows)
		if err != nil {
			return nil, domain.Fail("list users", err)
		}
		out = append(out, u)
	}
	return out, domain.Fail("list users", rows.Err())
}
