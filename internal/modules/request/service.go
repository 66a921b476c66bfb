// README: Request service implements the seat request lifecycle and its authority rules.
package request

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/modules/allocation"
	"carpool/internal/types"
)

type Storage interface {
	Get(ctx context.Context, id types.ID) (domain.Request, error)
	Create(ctx context.Context, r domain.Request, check CreateCheck) (domain.Request, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to domain.RequestStatus, actor types.Email, check ApproveCheck) (bool, error)
	Delete(ctx context.Context, id types.ID, from domain.RequestStatus, actor types.Email) (bool, error)
	ByPassenger(ctx context.Context, email types.Email) ([]domain.Request, error)
	ByDriver(ctx context.Context, email types.Email) ([]domain.Request, error)
	List(ctx context.Context) ([]domain.Request, error)
	Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error)
}

type Service struct {
	store Storage
	log   logrus.FieldLogger
}

func NewService(store Storage, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: logger.Module(log, "request")}
}

var errStale = domain.ConflictError{Resource: "request", Msg: "request changed since it was loaded, reload and try again"}

// Create files a pending request from a passenger to a driver. Eligibility is
// evaluated by the store under lock with Admission.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (domain.Request, error) {
	driver := types.NormalizeEmail(string(cmd.DriverEmail))
	if driver == cmd.PassengerEmail {
		return domain.Request{}, domain.ValidationError{Field: "driverEmail", Msg: "cannot request a seat in your own vehicle"}
	}
	if cmd.SeatsRequested <= 0 {
		return domain.Request{}, domain.ValidationError{Field: "seatsRequested", Msg: "seats requested must be at least 1"}
	}

	r := domain.Request{
		ID:             types.NewID(),
		PassengerEmail: cmd.PassengerEmail,
		DriverEmail:    driver,
		SeatsRequested: cmd.SeatsRequested,
		Status:         domain.RequestPending,
	}
	created, err := s.store.Create(ctx, r, Admission(cmd.SeatsRequested))
	if err != nil {
		s.logRefusal(err, "create", logrus.Fields{"passenger": cmd.PassengerEmail, "driver": driver})
		return domain.Request{}, err
	}
	s.log.WithFields(logrus.Fields{
		"action":    "create",
		"id":        created.ID,
		"passenger": created.PassengerEmail,
		"driver":    created.DriverEmail,
		"seats":     created.SeatsRequested,
	}).Info("request created")
	return created, nil
}

// Admission maps the request affordance the passenger would see onto an error.
func Admission(seats int) CreateCheck {
	return func(p domain.User, v domain.Vehicle, requests []domain.Request) error {
		if p.Role != domain.RolePassenger {
			return domain.ForbiddenError{Msg: "only passengers can request seats"}
		}
		if v.Retired() {
			return domain.ConflictError{Resource: "vehicle", Msg: "driver is not bringing a vehicle"}
		}
		snap := allocation.Snapshot{Users: []domain.User{p}, Vehicles: []domain.Vehicle{v}, Requests: requests}
		opt := allocation.RequestAction(snap, p, v)
		switch opt.Action {
		case allocation.ActionRequest:
			return allocation.ClampSeatRequest(seats, opt.Cap)
		case allocation.ActionPending, allocation.ActionApproved:
			return domain.ConflictError{Resource: "request", Msg: "you already have a request with this driver"}
		case allocation.ActionAllBooked:
			return domain.ConflictError{Resource: "seats", Msg: "all the seats you need are already requested"}
		case allocation.ActionFull:
			return domain.ConflictError{Resource: "vehicle", Msg: "vehicle is full"}
		case allocation.ActionOwnVehicle:
			return domain.ValidationError{Field: "driverEmail", Msg: "cannot request a seat in your own vehicle"}
		case allocation.ActionHidden:
			return domain.ForbiddenError{Msg: "only passengers can request seats"}
		default:
			panic("unhandled request action " + string(opt.Action))
		}
	}
}

func (s *Service) Approve(ctx context.Context, cmd ActCommand) (domain.Request, error) {
	return s.decide(ctx, cmd, allocation.MoveApprove, domain.RequestApproved)
}

func (s *Service) Reject(ctx context.Context, cmd ActCommand) (domain.Request, error) {
	return s.decide(ctx, cmd, allocation.MoveReject, domain.RequestRejected)
}

func (s *Service) decide(ctx context.Context, cmd ActCommand, move allocation.Move, to domain.RequestStatus) (domain.Request, error) {
	r, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return domain.Request{}, err
	}
	if r.DriverEmail != cmd.Actor.Email {
		return domain.Request{}, domain.ForbiddenError{Msg: "only the addressed driver can decide on a request"}
	}
	if !CanTransition(r.Status, to) || !allocation.Permits(cmd.Actor, r, move) {
		return domain.Request{}, domain.ConflictError{Resource: "request", Msg: fmt.Sprintf("cannot %s a %s request", move, r.Status)}
	}

	var check ApproveCheck
	if to == domain.RequestApproved {
		check = func(v domain.Vehicle, requests []domain.Request) error {
			if v.Retired() {
				return domain.ConflictError{Resource: "vehicle", Msg: "vehicle is marked not bringing"}
			}
			if left := allocation.AvailableSeats(v, requests); r.SeatsRequested > left {
				return domain.ConflictError{Resource: "seats", Msg: fmt.Sprintf("only %d seat(s) left in the vehicle", left)}
			}
			return nil
		}
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, cmd.Actor.Email, check)
	if err != nil {
		s.logRefusal(err, string(move), logrus.Fields{"id": r.ID, "actor": cmd.Actor.Email})
		return domain.Request{}, err
	}
	if !ok {
		return domain.Request{}, errStale
	}
	s.log.WithFields(logrus.Fields{"action": string(move), "id": r.ID, "actor": cmd.Actor.Email}).Info("request " + string(to))
	r.Status = to
	return r, nil
}

// Delete removes a request using whichever authority the actor holds:
// passenger cancel or leave, driver remove, or admin unassign.
func (s *Service) Delete(ctx context.Context, cmd ActCommand) (allocation.Move, error) {
	r, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return "", err
	}
	move, ok := allocation.DeleteMove(cmd.Actor, r)
	if !ok {
		if cmd.Actor.Email == r.DriverEmail && r.Status == domain.RequestPending {
			return "", domain.ForbiddenError{Msg: "reject a pending request instead of deleting it"}
		}
		return "", domain.ForbiddenError{Msg: "you cannot delete this request"}
	}
	deleted, err := s.store.Delete(ctx, r.ID, r.Status, cmd.Actor.Email)
	if err != nil {
		s.logRefusal(err, string(move), logrus.Fields{"id": r.ID, "actor": cmd.Actor.Email})
		return "", err
	}
	if !deleted {
		return "", errStale
	}
	s.log.WithFields(logrus.Fields{
		"action": string(move),
		"id":     r.ID,
		"actor":  cmd.Actor.Email,
		"from":   r.Status,
	}).Info("request deleted")
	return move, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (domain.Request, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Request, error) {
	return s.store.List(ctx)
}

func (s *Service) Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error) {
	return s.store.Events(ctx, id)
}

func (s *Service) logRefusal(err error, action string, fields logrus.Fields) {
	entry := s.log.WithError(err).WithFields(fields).WithField("action", action)
	if domain.IsStoreFailure(err) {
		entry.Error("request store failure")
		return
	}
	entry.Warn("request refused")
}
