// README: Request rows as stored in PostgreSQL; shared by every store that reads requests inside its own transaction.
package requestrow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"carpool/internal/domain"
	"carpool/internal/infra"
	"carpool/internal/types"
)

// Columns is the select list understood by Scan.
const Columns = `id, passenger_email, driver_email, seats_requested, status, created_at, updated_at`

// Scan reads one request row; a legacy "confirmed" status parses to approved.
func Scan(row pgx.Row) (domain.Request, error) {
	var r domain.Request
	var id, passenger, driver, status string
	if err := row.Scan(&id, &passenger, &driver, &r.SeatsRequested, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return domain.Request{}, err
	}
	parsed, err := domain.ParseRequestStatus(status)
	if err != nil {
		return domain.Request{}, err
	}
	r.ID = types.ID(id)
	r.PassengerEmail = types.Email(passenger)
	r.DriverEmail = types.Email(driver)
	r.Status = parsed
	return r, nil
}

// Query runs a request select and parses every row.
func Query(ctx context.Context, q infra.DBTX, op, where string, args ...any) ([]domain.Request, error) {
	rows, err := q.Query(ctx, `SELECT `+Columns+` FROM requests `+where, args...)
	if err != nil {
		return nil, domain.Fail(op, err)
	}
	defer rows.Close()

	out := []domain.Request{}
	for rows.Next() {
		r, err := Scan(rows)
		if err != nil {
			return nil, domain.Fail(op, err)
		}
		out = append(out, r)
	}
	return out, domain.Fail(op, rows.Err())
}

// Touching returns every request where email is passenger or driver.
func Touching(ctx context.Context, q infra.DBTX, email types.Email) ([]domain.Request, error) {
	return Query(ctx, q, "list user requests",
		`WHERE passenger_email = $1 OR driver_email = $1 ORDER BY created_at`, string(email))
}

func ByDriver(ctx context.Context, q infra.DBTX, email types.Email) ([]domain.Request, error) {
	return Query(ctx, q, "list driver requests", `WHERE driver_email = $1 ORDER BY created_at`, string(email))
}

func ByPassenger(ctx context.Context, q infra.DBTX, email types.Email) ([]domain.Request, error) {
	return Query(ctx, q, "list passenger requests", `WHERE passenger_email = $1 ORDER BY created_at`, string(email))
}
