// README: Session handlers (email login, logout).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/http/middleware"
	"carpool/internal/modules/role"
	"carpool/internal/modules/session"
	"carpool/internal/types"
)

type Sessions interface {
	Login(ctx context.Context, raw string) (session.Session, error)
	Logout(ctx context.Context, token string) error
}

type Router interface {
	Route(ctx context.Context, email types.Email) (role.Outcome, error)
}

type SessionHandler struct {
	sessions Sessions
	roles    Router
}

func NewSessionHandler(sessions Sessions, roles Router) *SessionHandler {
	return &SessionHandler{sessions: sessions, roles: roles}
}

type loginReq struct {
	Email string `json:"email"`
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.sessions.Login(c.Request.Context(), req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out, err := h.roles.Route(c.Request.Context(), s.User.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"token":     s.Token,
		"expiresAt": s.ExpiresAt,
		"user":      out.User,
		"screen":    out.Screen,
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), middleware.CallerToken(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
