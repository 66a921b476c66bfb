// README: Admin service: overview, user edits and deletion, assignment removal and exports.
package admin

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/modules/allocation"
	"carpool/internal/modules/export"
	"carpool/internal/modules/request"
	"carpool/internal/modules/role"
	"carpool/internal/types"
)

type Storage interface {
	Summary(ctx context.Context) (domain.Summary, error)
	DeleteUser(ctx context.Context, email, actor types.Email) error
}

type SnapshotLoader interface {
	Load(ctx context.Context) (allocation.Snapshot, error)
}

type RoleEditor interface {
	AdminEdit(ctx context.Context, cmd role.AdminEditCommand) (domain.User, error)
}

type Requests interface {
	Get(ctx context.Context, id types.ID) (domain.Request, error)
	Delete(ctx context.Context, cmd request.ActCommand) (allocation.Move, error)
	Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error)
}

type Service struct {
	store     Storage
	snapshots SnapshotLoader
	roles     RoleEditor
	requests  Requests
	log       logrus.FieldLogger
}

func NewService(store Storage, snapshots SnapshotLoader, roles RoleEditor, requests Requests, log logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		snapshots: snapshots,
		roles:     roles,
		requests:  requests,
		log:       logger.Module(log, "admin"),
	}
}

var errAdminOnly = domain.ForbiddenError{Msg: "admin access required"}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	snap, summary, err := s.load(ctx)
	if err != nil {
		return Overview{}, err
	}
	rows := make([]VehicleRow, 0, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		row := VehicleRow{
			Vehicle:        v,
			DriverName:     v.DriverEmail.String(),
			AssignedSeats:  allocation.AssignedSeats(v.DriverEmail, snap.Requests),
			AvailableSeats: allocation.AvailableSeats(v, snap.Requests),
			Status:         allocation.EffectiveStatus(v, snap.Requests),
		}
		if u, ok := snap.User(v.DriverEmail); ok {
			row.DriverName = u.DisplayName()
		}
		rows = append(rows, row)
	}
	return Overview{
		Summary:     summary,
		Users:       snap.Users,
		Vehicles:    rows,
		Assignments: allocation.Assignments(snap),
	}, nil
}

func (s *Service) EditUser(ctx context.Context, cmd role.AdminEditCommand) (domain.User, error) {
	return s.roles.AdminEdit(ctx, cmd)
}

// DeleteUser removes another account with its vehicle and requests.
func (s *Service) DeleteUser(ctx context.Context, cmd DeleteUserCommand) error {
	if !cmd.Actor.IsAdmin {
		return errAdminOnly
	}
	if cmd.Email == cmd.Actor.Email {
		return domain.ConflictError{Resource: "user", Msg: "cannot delete your own account"}
	}
	fields := logrus.Fields{"action": "delete_user", "actor": cmd.Actor.Email, "email": cmd.Email}
	if err := s.store.DeleteUser(ctx, cmd.Email, cmd.Actor.Email); err != nil {
		entry := s.log.WithError(err).WithFields(fields)
		if domain.IsStoreFailure(err) {
			entry.Error("delete user failed")
		} else {
			entry.Warn("delete user refused")
		}
		return err
	}
	s.log.WithFields(fields).Info("user deleted")
	return nil
}

// RemoveAssignment unassigns an approved request on behalf of an admin.
func (s *Service) RemoveAssignment(ctx context.Context, cmd RemoveAssignmentCommand) error {
	if !cmd.Actor.IsAdmin {
		return errAdminOnly
	}
	r, err := s.requests.Get(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !r.Status.Holding() {
		return domain.ConflictError{Resource: "assignment", Msg: "request is not an approved assignment"}
	}
	_, err = s.requests.Delete(ctx, request.ActCommand{ID: cmd.ID, Actor: cmd.Actor})
	return err
}

func (s *Service) Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error) {
	return s.requests.Events(ctx, id)
}

// Report gathers everything the CSV and PDF exports render.
func (s *Service) Report(ctx context.Context) (export.Report, error) {
	snap, summary, err := s.load(ctx)
	if err != nil {
		return export.Report{}, err
	}
	return export.NewReport(snap, summary), nil
}

func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	r, err := s.Report(ctx)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, r)
}

func (s *Service) ExportPDF(ctx context.Context, w io.Writer) error {
	r, err := s.Report(ctx)
	if err != nil {
		return err
	}
	return export.WritePDF(w, r)
}

func (s *Service) load(ctx context.Context) (allocation.Snapshot, domain.Summary, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return allocation.Snapshot{}, domain.Summary{}, err
	}
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return allocation.Snapshot{}, domain.Summary{}, err
	}
	return snap, summary, nil
}
