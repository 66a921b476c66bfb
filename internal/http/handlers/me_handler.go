// README: Handlers for the caller's own account: role, passenger profile, vehicle and contacts.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/modules/role"
	"carpool/internal/modules/user"
	"carpool/internal/modules/vehicle"
	"carpool/internal/types"
)

type Roles interface {
	Router
	ChangeRole(ctx context.Context, email types.Email, raw string) (role.Outcome, error)
}

type Profiles interface {
	SavePassengerProfile(ctx context.Context, cmd user.PassengerProfileCommand) (domain.User, error)
	Contact(ctx context.Context, email types.Email) (user.Contact, error)
}

type Vehicles interface {
	Mine(ctx context.Context, driver types.Email) (vehicle.State, error)
	Save(ctx context.Context, cmd vehicle.SaveCommand) (vehicle.State, error)
}

type MeHandler struct {
	roles    Roles
	profiles Profiles
	vehicles Vehicles
}

func NewMeHandler(roles Roles, profiles Profiles, vehicles Vehicles) *MeHandler {
	return &MeHandler{roles: roles, profiles: profiles, vehicles: vehicles}
}

func (h *MeHandler) Get(c *gin.Context) {
	out, err := h.roles.Route(c.Request.Context(), middleware.Caller(c).Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

type roleReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *MeHandler) ChangeRole(c *gin.Context) {
	var req roleReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.roles.ChangeRole(c.Request.Context(), middleware.Caller(c).Email, req.Role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

type passengerReq struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	SeatsNeeded int    `json:"seatsNeeded"`
}

func (h *MeHandler) SavePassenger(c *gin.Context) {
	var req passengerReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.profiles.SavePassengerProfile(c.Request.Context(), user.PassengerProfileCommand{
		Email:       middleware.Caller(c).Email,
		Name:        req.Name,
		Phone:       req.Phone,
		SeatsNeeded: req.SeatsNeeded,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

func (h *MeHandler) Vehicle(c *gin.Context) {
	st, err := h.vehicles.Mine(c.Request.Context(), middleware.Caller(c).Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

type vehicleReq struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	VehicleType   string `json:"vehicleType"`
	TotalSeats    int    `json:"totalSeats"`
	FamilyMembers int    `json:"familyMembers"`
	Status        string `json:"status"`
}

func (h *MeHandler) SaveVehicle(c *gin.Context) {
	var req vehicleReq
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.vehicles.Save(c.Request.Context(), vehicle.SaveCommand{
		Email:         middleware.Caller(c).Email,
		Name:          req.Name,
		Phone:         req.Phone,
		VehicleType:   req.VehicleType,
		TotalSeats:    req.TotalSeats,
		FamilyMembers: req.FamilyMembers,
		Status:        req.Status,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (h *MeHandler) Contact(c *gin.Context) {
	card, err := h.profiles.Contact(c.Request.Context(), types.Email(c.Param("email")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, card)
}
