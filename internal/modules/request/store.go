// README: Request store backed by PostgreSQL with conditional status updates and an audit log.
package request

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carpool/internal/domain"
	"carpool/internal/infra"
	"carpool/internal/modules/request/requestrow"
	"carpool/internal/modules/user"
	"carpool/internal/modules/vehicle"
	"carpool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// AppendEvent records one lifecycle step in request_events.
func AppendEvent(ctx context.Context, q infra.DBTX, e domain.RequestEvent) error {
	var from *string
	if e.FromStatus != "" {
		v := string(e.FromStatus)
		from = &v
	}
	_, err := q.Exec(ctx, `
		INSERT INTO request_events (request_id, kind, from_status, actor_email)
		VALUES ($1, $2, $3, $4)`,
		string(e.RequestID), string(e.Kind), from, string(e.ActorEmail),
	)
	return domain.Fail("append request event", err)
}

func (s *Store) Get(ctx context.Context, id types.ID) (domain.Request, error) {
	r, err := requestrow.Scan(s.db.QueryRow(ctx, `SELECT `+requestrow.Columns+` FROM requests WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Request{}, domain.NotFoundError{Resource: "request"}
	}
	return r, domain.Fail("get request", err)
}

// lockUsers locks both parties in email order so concurrent creates and role
// changes serialize without deadlocking.
func lockUsers(ctx context.Context, tx pgx.Tx, emails ...types.Email) (map[types.Email]domain.User, error) {
	sorted := append([]types.Email(nil), emails...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make(map[types.Email]domain.User, len(sorted))
	for _, e := range sorted {
		u, err := user.Load(ctx, tx, e, true)
		if err != nil {
			return nil, err
		}
		out[e] = u
	}
	return out, nil
}

// Create stores r after check approves it under lock. A rejected leftover for
// the same pair is replaced in the same transaction.
func (s *Store) Create(ctx context.Context, r domain.Request, check CreateCheck) (domain.Request, error) {
	var created domain.Request
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		users, err := lockUsers(ctx, tx, r.PassengerEmail, r.DriverEmail)
		if err != nil {
			return err
		}
		v, err := vehicle.Load(ctx, tx, r.DriverEmail, true)
		if err != nil {
			return err
		}
		related, err := requestrow.Query(ctx, tx, "list related requests",
			`WHERE passenger_email = $1 OR driver_email = $2`, string(r.PassengerEmail), string(r.DriverEmail))
		if err != nil {
			return err
		}
		if err := check(users[r.PassengerEmail], v, related); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			DELETE FROM requests
			WHERE passenger_email = $1 AND driver_email = $2 AND status = $3
			RETURNING id`,
			string(r.PassengerEmail), string(r.DriverEmail), string(domain.RequestRejected),
		)
		if err != nil {
			return err
		}
		replaced, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, id := range replaced {
			if err := AppendEvent(ctx, tx, domain.RequestEvent{
				RequestID:  types.ID(id),
				Kind:       domain.EventDeleted,
				FromStatus: domain.RequestRejected,
				ActorEmail: r.PassengerEmail,
			}); err != nil {
				return err
			}
		}

		created, err = requestrow.Scan(tx.QueryRow(ctx, `
			INSERT INTO requests (id, passenger_email, driver_email, seats_requested, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+requestrow.Columns,
			string(r.ID), string(r.PassengerEmail), string(r.DriverEmail), r.SeatsRequested, string(r.Status),
		))
		if infra.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "request", Msg: "a request to this driver already exists"}
		}
		if err != nil {
			return err
		}
		return AppendEvent(ctx, tx, domain.RequestEvent{
			RequestID:  created.ID,
			Kind:       domain.EventCreated,
			ActorEmail: r.PassengerEmail,
		})
	})
	if err != nil {
		return domain.Request{}, domain.Fail("create request", err)
	}
	return created, nil
}

// UpdateStatus moves the request from one status to another only if it is
// still in from. check, when set, runs with the driver's vehicle locked.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to domain.RequestStatus, actor types.Email, check ApproveCheck) (bool, error) {
	changed := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if check != nil {
			var driver string
			err := tx.QueryRow(ctx, `SELECT driver_email FROM requests WHERE id = $1`, string(id)).Scan(&driver)
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFoundError{Resource: "request"}
			}
			if err != nil {
				return err
			}
			v, err := vehicle.Load(ctx, tx, types.Email(driver), true)
			if err != nil {
				return err
			}
			held, err := requestrow.ByDriver(ctx, tx, types.Email(driver))
			if err != nil {
				return err
			}
			if err := check(v, held); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `
			UPDATE requests
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3`,
			string(to), string(id), string(from),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return nil
		}
		changed = true
		kind := domain.EventApproved
		if to == domain.RequestRejected {
			kind = domain.EventRejected
		}
		return AppendEvent(ctx, tx, domain.RequestEvent{RequestID: id, Kind: kind, FromStatus: from, ActorEmail: actor})
	})
	if err != nil {
		return false, domain.Fail("update request status", err)
	}
	return changed, nil
}

// Delete removes the request if it is still in from. Legacy rows stored as
// "confirmed" match an approved from status.
func (s *Store) Delete(ctx context.Context, id types.ID, from domain.RequestStatus, actor types.Email) (bool, error) {
	deleted := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM requests
			WHERE id = $1 AND (status = $2 OR ($2 = 'approved' AND status = 'confirmed'))`,
			string(id), string(from),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return nil
		}
		deleted = true
		return AppendEvent(ctx, tx, domain.RequestEvent{RequestID: id, Kind: domain.EventDeleted, FromStatus: from, ActorEmail: actor})
	})
	if err != nil {
		return false, domain.Fail("delete request", err)
	}
	return deleted, nil
}

func (s *Store) ByPassenger(ctx context.Context, email types.Email) ([]domain.Request, error) {
	return requestrow.ByPassenger(ctx, s.db, email)
}

func (s *Store) ByDriver(ctx context.Context, email types.Email) ([]domain.Request, error) {
	return requestrow.ByDriver(ctx, s.db, email)
}

func (s *Store) List(ctx context.Context) ([]domain.Request, error) {
	return requestrow.Query(ctx, s.db, "list requests", `ORDER BY created_at`)
}

func (s *Store) Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, request_id, kind, COALESCE(from_status, ''), actor_email, created_at
		FROM request_events
		WHERE request_id = $1
		ORDER BY id`, string(id))
	if err != nil {
		return nil, domain.Fail("list request events", err)
	}
	defer rows.Close()

	out := []domain.RequestEvent{}
	for rows.Next() {
		var e domain.RequestEvent
		var requestID, kind, from, actor string
		if err := rows.Scan(&e.ID, &requestID, &kind, &from, &actor, &e.CreatedAt); err != nil {
			return nil, domain.Fail("list request events", err)
		}
		e.RequestID = types.ID(requestID)
		e.Kind = domain.EventKind(kind)
		e.FromStatus = domain.RequestStatus(from)
		e.ActorEmail = types.Email(actor)
		out = append(out, e)
	}
	return out, domain.Fail("list request events", rows.Err())
}
