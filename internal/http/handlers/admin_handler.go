// README: Admin handlers (overview, user edit/delete, assignments, audit trail, exports).
package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/modules/admin"
	"carpool/internal/modules/role"
	"carpool/internal/types"
)

type Admin interface {
	Overview(ctx context.Context) (admin.Overview, error)
	EditUser(ctx context.Context, cmd role.AdminEditCommand) (domain.User, error)
	DeleteUser(ctx context.Context, cmd admin.DeleteUserCommand) error
	RemoveAssignment(ctx context.Context, cmd admin.RemoveAssignmentCommand) error
	Events(ctx context.Context, id types.ID) ([]domain.RequestEvent, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportPDF(ctx context.Context, w io.Writer) error
}

type AdminHandler struct {
	admin Admin
}

func NewAdminHandler(svc Admin) *AdminHandler {
	return &AdminHandler{admin: svc}
}

func (h *AdminHandler) Overview(c *gin.Context) {
	o, err := h.admin.Overview(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

type editUserReq struct {
	Name    *string `json:"name"`
	Role    *string `json:"role"`
	IsAdmin *bool   `json:"isAdmin"`
}

func (h *AdminHandler) EditUser(c *gin.Context) {
	var req editUserReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.admin.EditUser(c.Request.Context(), role.AdminEditCommand{
		Actor:   middleware.Caller(c),
		Email:   types.NormalizeEmail(c.Param("email")),
		Name:    req.Name,
		Role:    req.Role,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	err := h.admin.DeleteUser(c.Request.Context(), admin.DeleteUserCommand{
		Actor: middleware.Caller(c),
		Email: types.NormalizeEmail(c.Param("email")),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) RemoveAssignment(c *gin.Context) {
	err := h.admin.RemoveAssignment(c.Request.Context(), admin.RemoveAssignmentCommand{
		Actor: middleware.Caller(c),
		ID:    types.ID(c.Param("id")),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Events(c *gin.Context) {
	events, err := h.admin.Events(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, events)
}

func (h *AdminHandler) ExportCSV(c *gin.Context) {
	h.export(c, "text/csv; charset=utf-8", "carpooling-data.csv", h.admin.ExportCSV)
}

func (h *AdminHandler) ExportPDF(c *gin.Context) {
	h.export(c, "application/pdf", "carpooling-report.pdf", h.admin.ExportPDF)
}

// export renders into a buffer first so a failure can still be reported as JSON.
func (h *AdminHandler) export(c *gin.Context, contentType, filename string, render func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := render(c.Request.Context(), &buf); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
