// README: Vehicle store backed by PostgreSQL; one row per driver, retired instead of deleted.
package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/domain"
	"carpool/internal/infra"
	"carpool/internal/modules/request/requestrow"
	"carpool/internal/modules/user"
	"carpool/internal/types"
)

const Columns = `driver_email, vehicle_type, total_seats, family_members, status, updated_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func Scan(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	var driver, status string
	if err := row.Scan(&driver, &v.VehicleType, &v.TotalSeats, &v.FamilyMembers, &status, &v.UpdatedAt); err != nil {
		return domain.Vehicle{}, err
	}
	parsed, err := domain.ParseVehicleStatus(status)
	if err != nil {
		return domain.Vehicle{}, err
	}
	v.DriverEmail = types.Email(driver)
	v.Status = parsed
	return v, nil
}

func Load(ctx context.Context, q infra.DBTX, driver types.Email, forUpdate bool) (domain.Vehicle, error) {
	sql := `SELECT ` + Columns + ` FROM vehicles WHERE driver_email = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	v, err := Scan(q.QueryRow(ctx, sql, string(driver)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vehicle{}, domain.NotFoundError{Resource: "vehicle"}
	}
	return v, domain.Fail("get vehicle", err)
}

// Retire marks the driver's vehicle not-bringing. A driver without a vehicle is a no-op.
func Retire(ctx context.Context, q infra.DBTX, driver types.Email) error {
	_, err := q.Exec(ctx, `
		UPDATE vehicles SET status = $2, updated_at = NOW()
		WHERE driver_email = $1`,
		string(driver), string(domain.VehicleNotBringing),
	)
	return domain.Fail("retire vehicle", err)
}

func (s *Store) Get(ctx context.Context, driver types.Email) (domain.Vehicle, error) {
	return Load(ctx, s.db, driver, false)
}

// Save writes the driver's profile and vehicle in one transaction. build runs
// with the driver and vehicle rows locked and receives the driver's requests
// as seen inside it, so the capacity check and the write see the same state.
func (s *Store) Save(ctx context.Context, email types.Email, profile user.Profile, build BuildFunc) (domain.Vehicle, error) {
	var saved domain.Vehicle
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		u, err := user.Load(ctx, tx, email, true)
		if err != nil {
			return err
		}
		if u.Role != domain.RoleDriver {
			return domain.ForbiddenError{Msg: "switch to the driver role before saving a vehicle"}
		}
		if _, err := Load(ctx, tx, email, true); err != nil && !domain.IsNotFound(err) {
			return err
		}
		held, err := requestrow.ByDriver(ctx, tx, email)
		if err != nil {
			return err
		}
		v, err := build(held)
		if err != nil {
			return err
		}
		if _, err := user.WriteProfile(ctx, tx, email, profile); err != nil {
			return err
		}
		saved, err = Scan(tx.QueryRow(ctx, `
			INSERT INTO vehicles (driver_email, vehicle_type, total_seats, family_members, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (driver_email) DO UPDATE
			SET vehicle_type = EXCLUDED.vehicle_type,
			    total_seats = EXCLUDED.total_seats,
			    family_members = EXCLUDED.family_members,
			    status = EXCLUDED.status,
			    updated_at = NOW()
			RETURNING `+Columns,
			string(email), v.VehicleType, v.TotalSeats, v.FamilyMembers, string(v.Status),
		))
		return err
	})
	if err != nil {
		return domain.Vehicle{}, domain.Fail("save vehicle", err)
	}
	return saved, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := s.db.Query(ctx, `SELECT `+Columns+` FROM vehicles ORDER BY driver_email`)
	if err != nil {
		return nil, domain.Fail("list vehicles", err)
	}
	defer rows.Close()

	out := []domain.Vehicle{}
	for rows.Next() {
		v, err := Scan(rows)
		if err != nil {
			return nil, domain.Fail("list vehicles", err)
		}
		out = append(out, v)
	}
	return out, domain.Fail("list vehicles", rows.Err())
}
