// README: User service handles login-time registration, passenger profile saves and contact lookups.
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/modules/allocation"
	"carpool/internal/types"
)

type Storage interface {
	Get(ctx context.Context, email types.Email) (domain.User, error)
	CreateIfAbsent(ctx context.Context, email types.Email) (domain.User, bool, error)
	UpdateProfile(ctx context.Context, email types.Email, p Profile, check ProfileCheck) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type Service struct {
	store Storage
	log   logrus.FieldLogger
}

func NewService(store Storage, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: logger.Module(log, "user")}
}

// Login normalizes and validates the email and registers it on first sight.
func (s *Service) Login(ctx context.Context, raw string) (domain.User, error) {
	email, ok := types.ParseEmail(raw)
	if !ok {
		return domain.User{}, domain.ValidationError{Field: "email", Msg: "please enter a valid email"}
	}
	u, created, err := s.store.CreateIfAbsent(ctx, email)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Error("login failed")
		return domain.User{}, err
	}
	if created {
		s.log.WithFields(logrus.Fields{"action": "register", "email": email}).Info("user registered")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, email types.Email) (domain.User, error) {
	return s.store.Get(ctx, email)
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.store.List(ctx)
}

// SavePassengerProfile stores name, phone and seat need. The need may not drop
// below the seats the passenger already holds in active requests.
func (s *Service) SavePassengerProfile(ctx context.Context, cmd PassengerProfileCommand) (domain.User, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.User{}, domain.ValidationError{Field: "name", Msg: "please enter your name"}
	}
	seats := cmd.SeatsNeeded
	if seats == 0 {
		seats = domain.DefaultSeatsNeeded
	}
	if seats < 1 {
		return domain.User{}, domain.ValidationError{Field: "seatsNeeded", Msg: "seats needed must be at least 1"}
	}

	updated, err := s.store.UpdateProfile(ctx, cmd.Email, Profile{
		Name:        name,
		Phone:       strings.TrimSpace(cmd.Phone),
		SeatsNeeded: &seats,
	}, func(u domain.User, requests []domain.Request) error {
		if u.Role != domain.RolePassenger {
			return domain.ForbiddenError{Msg: "switch to the passenger role before saving a passenger profile"}
		}
		if booked := allocation.BookedSeats(cmd.Email, requests); seats < booked {
			return domain.ConflictError{
				Resource: "seats",
				Msg:      fmt.Sprintf("%d seat(s) already requested, cancel a request before lowering seats needed", booked),
			}
		}
		return nil
	})
	if err != nil {
		entry := s.log.WithError(err).WithField("email", cmd.Email)
		if domain.IsStoreFailure(err) {
			entry.Error("save passenger profile failed")
		} else {
			entry.Warn("save passenger profile refused")
		}
		return domain.User{}, err
	}
	s.log.WithFields(logrus.Fields{"action": "save_passenger_profile", "email": cmd.Email, "seats_needed": seats}).Info("profile saved")
	return updated, nil
}

func (s *Service) Contact(ctx context.Context, email types.Email) (Contact, error) {
	u, err := s.store.Get(ctx, types.NormalizeEmail(string(email)))
	if err != nil {
		return Contact{}, err
	}
	return Contact{Email: u.Email, Name: u.DisplayName(), Phone: u.Phone}, nil
}
