// README: Base handler utilities (JSON helpers, domain error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Blocking []string `json:"blocking,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// RespondDomainError maps the error taxonomy onto HTTP statuses. Store
// failures surface the store's own message.
func RespondDomainError(c *gin.Context, err error) {
	var refusal domain.GuardRefusal
	switch {
	case domain.IsValidation(err), domain.IsMalformed(err):
		writeError(c, http.StatusBadRequest, err.Error())
	case domain.IsForbidden(err):
		writeError(c, http.StatusForbidden, err.Error())
	case domain.IsNotFound(err):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &refusal):
		writeJSON(c, http.StatusConflict, errorResponse{Error: err.Error(), Blocking: refusal.Blocking})
	case domain.IsConflict(err):
		writeError(c, http.StatusConflict, err.Error())
	case domain.IsStoreFailure(err):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
