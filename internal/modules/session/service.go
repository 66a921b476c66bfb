// README: Session service: email login, token authentication and logout.
package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/types"
)

type Storage interface {
	Save(ctx context.Context, id string, email types.Email, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (types.Email, bool, error)
	Revoke(ctx context.Context, id string) error
}

// Registrar logs a user in by email, creating the account on first use.
type Registrar interface {
	Login(ctx context.Context, raw string) (domain.User, error)
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type Service struct {
	users  Registrar
	tokens *Tokens
	store  Storage
	log    logrus.FieldLogger
}

func NewService(users Registrar, tokens *Tokens, store Storage, log logrus.FieldLogger) *Service {
	return &Service{users: users, tokens: tokens, store: store, log: logger.Module(log, "session")}
}

func (s *Service) Login(ctx context.Context, raw string) (Session, error) {
	u, err := s.users.Login(ctx, raw)
	if err != nil {
		return Session{}, err
	}
	token, claims, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Session{}, err
	}
	expires := claims.ExpiresAt.Time
	if err := s.store.Save(ctx, claims.ID, u.Email, time.Until(expires)); err != nil {
		s.log.WithError(err).WithField("email", u.Email).Error("save session failed")
		return Session{}, domain.StoreFailure{Op: "save session", Err: err}
	}
	s.log.WithFields(logrus.Fields{"action": "login", "email": u.Email}).Info("session started")
	return Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// Authenticate resolves a bearer token to the email of a live session.
func (s *Service) Authenticate(ctx context.Context, raw string) (types.Email, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return "", err
	}
	email, ok, err := s.store.Lookup(ctx, claims.ID)
	if err != nil {
		return "", domain.StoreFailure{Op: "lookup session", Err: err}
	}
	if !ok || string(email) != claims.Email {
		return "", ErrUnauthorized
	}
	return email, nil
}

func (s *Service) Logout(ctx context.Context, raw string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	if err := s.store.Revoke(ctx, claims.ID); err != nil {
		return domain.StoreFailure{Op: "revoke session", Err: err}
	}
	s.log.WithFields(logrus.Fields{"action": "logout", "email": claims.Email}).Info("session revoked")
	return nil
}
