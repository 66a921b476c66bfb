// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
	"carpool/internal/logger"
)

// SessionService logs users in and out and authenticates bearer tokens.
type SessionService interface {
	handlers.Sessions
	middleware.Authenticator
}

type ServerDeps struct {
	Sessions    SessionService
	Users       middleware.UserLoader
	Roles       handlers.Roles
	Profiles    handlers.Profiles
	Vehicles    handlers.Vehicles
	Requests    handlers.Requests
	Snapshots   handlers.Snapshots
	Admin       handlers.Admin
	CORSOrigins []string
	Log         logrus.FieldLogger
}

type Server struct {
	deps ServerDeps
	log  logrus.FieldLogger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps, log: logger.Module(deps.Log, "http")}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(s.log), middleware.Recovery(s.log))
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	sessionHandler := handlers.NewSessionHandler(s.deps.Sessions, s.deps.Roles)
	meHandler := handlers.NewMeHandler(s.deps.Roles, s.deps.Profiles, s.deps.Vehicles)
	dashboardHandler := handlers.NewDashboardHandler(s.deps.Snapshots)
	requestHandler := handlers.NewRequestHandler(s.deps.Requests)
	adminHandler := handlers.NewAdminHandler(s.deps.Admin)

	api := r.Group("/api")
	api.POST("/session", sessionHandler.Login)

	authed := api.Group("", middleware.Auth(s.deps.Sessions, s.deps.Users))
	authed.DELETE("/session", sessionHandler.Logout)
	authed.GET("/me", meHandler.Get)
	authed.PUT("/me/role", meHandler.ChangeRole)
	authed.PUT("/me/passenger", meHandler.SavePassenger)
	authed.GET("/me/vehicle", meHandler.Vehicle)
	authed.PUT("/me/vehicle", meHandler.SaveVehicle)
	authed.GET("/dashboard", dashboardHandler.Get)
	authed.GET("/users/:email/contact", meHandler.Contact)
	authed.POST("/requests", requestHandler.Create)
	authed.POST("/requests/:id/approve", requestHandler.Approve)
	authed.POST("/requests/:id/reject", requestHandler.Reject)
	authed.DELETE("/requests/:id", requestHandler.Delete)

	adminGroup := authed.Group("/admin", middleware.RequireAdmin())
	adminGroup.GET("/overview", adminHandler.Overview)
	adminGroup.PUT("/users/:email", adminHandler.EditUser)
	adminGroup.DELETE("/users/:email", adminHandler.DeleteUser)
	adminGroup.DELETE("/assignments/:id", adminHandler.RemoveAssignment)
	adminGroup.GET("/requests/:id/events", adminHandler.Events)
	adminGroup.GET("/export.csv", adminHandler.ExportCSV)
	adminGroup.GET("/export.pdf", adminHandler.ExportPDF)

	return r
}

// corsConfig allows any origin when none are configured.
func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        24 * time.Hour,
	}
	if len(s.deps.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.deps.CORSOrigins
	}
	return cfg
}
