// README: Seat request handlers (create, approve, reject, delete).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/modules/allocation"
	"carpool/internal/modules/request"
	"carpool/internal/types"
)

type Requests interface {
	Create(ctx context.Context, cmd request.CreateCommand) (domain.Request, error)
	Approve(ctx context.Context, cmd request.ActCommand) (domain.Request, error)
	Reject(ctx context.Context, cmd request.ActCommand) (domain.Request, error)
	Delete(ctx context.Context, cmd request.ActCommand) (allocation.Move, error)
}

type RequestHandler struct {
	requests Requests
}

func NewRequestHandler(requests Requests) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestReq struct {
	DriverEmail    string `json:"driverEmail"`
	SeatsRequested int    `json:"seatsRequested"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req createRequestReq
	if !bindJSON(c, &req) {
		return
	}
	if req.DriverEmail == "" {
		writeError(c, http.StatusBadRequest, "missing driverEmail")
		return
	}
	r, err := h.requests.Create(c.Request.Context(), request.CreateCommand{
		PassengerEmail: middleware.Caller(c).Email,
		DriverEmail:    types.Email(req.DriverEmail),
		SeatsRequested: req.SeatsRequested,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RequestHandler) Approve(c *gin.Context) {
	h.act(c, h.requests.Approve)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	h.act(c, h.requests.Reject)
}

func (h *RequestHandler) act(c *gin.Context, fn func(context.Context, request.ActCommand) (domain.Request, error)) {
	r, err := fn(c.Request.Context(), request.ActCommand{ID: types.ID(c.Param("id")), Actor: middleware.Caller(c)})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	move, err := h.requests.Delete(c.Request.Context(), request.ActCommand{ID: types.ID(c.Param("id")), Actor: middleware.Caller(c)})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": c.Param("id"), "move": move})
}
