// README: Dashboard handler; every view is derived from one snapshot.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/modules/allocation"
)

type Snapshots interface {
	Load(ctx context.Context) (allocation.Snapshot, error)
}

type DashboardHandler struct {
	snapshots Snapshots
}

func NewDashboardHandler(snapshots Snapshots) *DashboardHandler {
	return &DashboardHandler{snapshots: snapshots}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	caller := middleware.Caller(c)
	if !caller.Role.Operational() {
		RespondDomainError(c, domain.ForbiddenError{Msg: "choose driver or passenger to see the dashboard"})
		return
	}
	snap, err := h.snapshots.Load(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, allocation.BuildDashboard(snap, caller))
}
