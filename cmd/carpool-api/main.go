// README: Entry point; loads config, wires stores and services, serves the HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"carpool/internal/config"
	httptransport "carpool/internal/http"
	"carpool/internal/infra"
	"carpool/internal/logger"
	"carpool/internal/modules/admin"
	"carpool/internal/modules/request"
	"carpool/internal/modules/role"
	"carpool/internal/modules/session"
	"carpool/internal/modules/snapshot"
	"carpool/internal/modules/user"
	"carpool/internal/modules/vehicle"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.File)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer dbPool.Close()
	if cfg.DB.Migrate {
		if err := infra.Migrate(ctx, dbPool); err != nil {
			log.WithError(err).Fatal("apply migrations")
		}
	}

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	defer redisClient.Close()

	userStore := user.NewStore(dbPool)
	vehicleStore := vehicle.NewStore(dbPool)
	requestStore := request.NewStore(dbPool)
	snapshots := snapshot.NewLoader(userStore, vehicleStore, requestStore)

	userSvc := user.NewService(userStore, log)
	vehicleSvc := vehicle.NewService(vehicleStore, requestStore, cfg.DefaultTotalSeats, log)
	requestSvc := request.NewService(requestStore, log)
	roleSvc := role.NewService(role.NewStore(dbPool), snapshots, log)
	adminSvc := admin.NewService(admin.NewStore(dbPool), snapshots, roleSvc, requestSvc, log)
	sessionSvc := session.NewService(
		userSvc,
		session.NewTokens(cfg.Session.Secret, cfg.Session.TTL),
		session.NewStore(redisClient),
		log,
	)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Sessions:    sessionSvc,
		Users:       userSvc,
		Roles:       roleSvc,
		Profiles:    userSvc,
		Vehicles:    vehicleSvc,
		Requests:    requestSvc,
		Snapshots:   snapshots,
		Admin:       adminSvc,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("http shutdown")
		}
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("carpool api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("http server")
	}
}
