// README: Vehicle service validates driver saves and reports seat state.
package vehicle

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/modules/allocation"
	"carpool/internal/modules/user"
	"carpool/internal/types"
)

type Storage interface {
	Get(ctx context.Context, driver types.Email) (domain.Vehicle, error)
	Save(ctx context.Context, email types.Email, profile user.Profile, build BuildFunc) (domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
}

type RequestLister interface {
	ByDriver(ctx context.Context, email types.Email) ([]domain.Request, error)
}

type Service struct {
	store        Storage
	requests     RequestLister
	defaultSeats int
	log          logrus.FieldLogger
}

func NewService(store Storage, requests RequestLister, defaultSeats int, log logrus.FieldLogger) *Service {
	if defaultSeats < 1 {
		defaultSeats = 4
	}
	return &Service{store: store, requests: requests, defaultSeats: defaultSeats, log: logger.Module(log, "vehicle")}
}

func (s *Service) List(ctx context.Context) ([]domain.Vehicle, error) {
	return s.store.List(ctx)
}

// Mine returns the driver's vehicle with assigned and available seats.
func (s *Service) Mine(ctx context.Context, driver types.Email) (State, error) {
	v, err := s.store.Get(ctx, driver)
	if err != nil {
		return State{}, err
	}
	requests, err := s.requests.ByDriver(ctx, driver)
	if err != nil {
		return State{}, err
	}
	return stateOf(v, allocation.AssignedSeats(driver, requests)), nil
}

// Save validates the form against the seats already assigned and persists the
// profile and vehicle together. A manual full flips back to open when seats
// remain, and zero free seats forces full.
func (s *Service) Save(ctx context.Context, cmd SaveCommand) (State, error) {
	form, err := s.form(cmd)
	if err != nil {
		return State{}, err
	}

	var assigned int
	saved, err := s.store.Save(ctx, cmd.Email, user.Profile{Name: form.Name, Phone: form.Phone}, func(requests []domain.Request) (domain.Vehicle, error) {
		assigned = allocation.AssignedSeats(cmd.Email, requests)
		if err := allocation.ValidateVehicleForm(form, assigned); err != nil {
			return domain.Vehicle{}, err
		}
		capacity := form.TotalSeats - form.FamilyMembers
		return domain.Vehicle{
			DriverEmail:   cmd.Email,
			VehicleType:   form.VehicleType,
			TotalSeats:    form.TotalSeats,
			FamilyMembers: form.FamilyMembers,
			Status:        allocation.DeriveStatus(form.Status, max(0, capacity-assigned)),
		}, nil
	})
	if err != nil {
		entry := s.log.WithError(err).WithField("email", cmd.Email)
		if domain.IsStoreFailure(err) {
			entry.Error("save vehicle failed")
		} else {
			entry.Warn("save vehicle refused")
		}
		return State{}, err
	}
	s.log.WithFields(logrus.Fields{
		"action":         "save_vehicle",
		"email":          cmd.Email,
		"total_seats":    saved.TotalSeats,
		"family_members": saved.FamilyMembers,
		"status":         saved.Status,
	}).Info("vehicle saved")
	return stateOf(saved, assigned), nil
}

func (s *Service) form(cmd SaveCommand) (allocation.VehicleForm, error) {
	total := cmd.TotalSeats
	if total == 0 {
		total = s.defaultSeats
	}
	status := domain.VehicleOpen
	if strings.TrimSpace(cmd.Status) != "" {
		parsed, err := domain.ParseVehicleStatus(cmd.Status)
		if err != nil {
			return allocation.VehicleForm{}, domain.ValidationError{Field: "status", Msg: "status must be open, full or not-bringing"}
		}
		status = parsed
	}
	form := allocation.VehicleForm{
		Name:          strings.TrimSpace(cmd.Name),
		Phone:         strings.TrimSpace(cmd.Phone),
		VehicleType:   strings.TrimSpace(cmd.VehicleType),
		TotalSeats:    total,
		FamilyMembers: cmd.FamilyMembers,
		Status:        status,
	}
	// checked again under lock with the real assigned count
	if err := allocation.ValidateVehicleForm(form, 0); err != nil {
		return allocation.VehicleForm{}, err
	}
	return form, nil
}

func stateOf(v domain.Vehicle, assigned int) State {
	available := max(0, v.Capacity()-assigned)
	return State{
		Vehicle:        v,
		AssignedSeats:  assigned,
		AvailableSeats: available,
		Status:         allocation.DeriveStatus(v.Status, available),
	}
}
