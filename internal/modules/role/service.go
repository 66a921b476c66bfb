// README: Role Transition Controller; guarded role changes, admin edits and login routing.
package role

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/modules/allocation"
	"carpool/internal/types"
)

type Storage interface {
	Apply(ctx context.Context, c Change, guard GuardFunc) (domain.User, error)
}

type SnapshotLoader interface {
	Load(ctx context.Context) (allocation.Snapshot, error)
}

type Service struct {
	store     Storage
	snapshots SnapshotLoader
	log       logrus.FieldLogger
}

func NewService(store Storage, snapshots SnapshotLoader, log logrus.FieldLogger) *Service {
	return &Service{store: store, snapshots: snapshots, log: logger.Module(log, "role")}
}

// ChangeRole moves the user to the role named by raw. The guard runs on the
// snapshot first and again inside the store transaction.
func (s *Service) ChangeRole(ctx context.Context, email types.Email, raw string) (Outcome, error) {
	to, err := parseRole(raw)
	if err != nil {
		return Outcome{}, err
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	u, ok := snap.User(email)
	if !ok {
		return Outcome{}, domain.NotFoundError{Resource: "user"}
	}
	if err := CanEnter(u, to); err != nil {
		return Outcome{}, err
	}

	updated, err := s.apply(ctx, snap, Change{Email: email, From: u.Role, To: to})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{User: updated, Screen: screenIn(snap, updated)}, nil
}

// AdminEdit lets an admin rename a user, change their role or admin flag.
// Role changes go through the same guard as a self-service change.
func (s *Service) AdminEdit(ctx context.Context, cmd AdminEditCommand) (domain.User, error) {
	if !cmd.Actor.IsAdmin {
		return domain.User{}, domain.ForbiddenError{Msg: "admin access required"}
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	u, ok := snap.User(cmd.Email)
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}

	to := u.Role
	if cmd.Role != nil {
		if to, err = parseRole(*cmd.Role); err != nil {
			return domain.User{}, err
		}
	}
	target := u
	if cmd.IsAdmin != nil {
		target.IsAdmin = *cmd.IsAdmin
		if cmd.Email == cmd.Actor.Email && !target.IsAdmin {
			return domain.User{}, domain.ConflictError{Resource: "user", Msg: "cannot remove your own admin access"}
		}
	}
	if err := CanEnter(target, to); err != nil {
		return domain.User{}, err
	}

	c := Change{Email: cmd.Email, From: u.Role, To: to, IsAdmin: cmd.IsAdmin}
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		c.Name = &name
	}
	updated, err := s.apply(ctx, snap, c)
	if err != nil {
		return domain.User{}, err
	}
	s.log.WithFields(logrus.Fields{"action": "admin_edit", "actor": cmd.Actor.Email, "email": cmd.Email}).Info("user edited")
	return updated, nil
}

// Route reports the landing screen for the user's saved role.
func (s *Service) Route(ctx context.Context, email types.Email) (Outcome, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	u, ok := snap.User(email)
	if !ok {
		return Outcome{}, domain.NotFoundError{Resource: "user"}
	}
	return Outcome{User: u, Screen: screenIn(snap, u)}, nil
}

func (s *Service) apply(ctx context.Context, snap allocation.Snapshot, c Change) (domain.User, error) {
	fields := logrus.Fields{"email": c.Email, "from": c.From, "to": c.To}
	names := nameIn(snap)
	u, _ := snap.User(c.Email)
	if err := Guard(u, c.To, snap.Requests, names); err != nil {
		s.log.WithError(err).WithFields(fields).Warn("role change refused")
		return domain.User{}, err
	}
	updated, err := s.store.Apply(ctx, c, func(locked domain.User, requests []domain.Request) error {
		return Guard(locked, c.To, requests, names)
	})
	if err != nil {
		entry := s.log.WithError(err).WithFields(fields)
		if domain.IsStoreFailure(err) {
			entry.Error("role change failed")
		} else {
			entry.Warn("role change refused")
		}
		return domain.User{}, err
	}
	s.log.WithFields(fields).WithField("action", "change_role").Info("role changed")
	return updated, nil
}

// parseRole reads a role chosen by a person. Unlike the stored column, a
// blank value is refused rather than read as none.
func parseRole(raw string) (domain.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.ValidationError{Field: "role", Msg: "role is required"}
	}
	to, err := domain.ParseRole(raw)
	if err != nil {
		return "", domain.ValidationError{Field: "role", Msg: "role must be none, driver, passenger or admin"}
	}
	return to, nil
}

func nameIn(snap allocation.Snapshot) NameFunc {
	return func(email types.Email) string {
		if u, ok := snap.User(email); ok {
			return u.DisplayName()
		}
		return string(email)
	}
}

func screenIn(snap allocation.Snapshot, u domain.User) Screen {
	v, ok := snap.Vehicle(u.Email)
	return ScreenFor(u, v, ok, snap.Requests)
}
