package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"traffic-service/internal/auth"
	"traffic-service/internal/config"
	"traffic-service/internal/db"
	httphandler "traffic-service/internal/http"
	"traffic-service/internal/http/middleware"
	"traffic-service/internal/logger"
	"traffic-service/internal/notify"
	"traffic-service/internal/payment"
	"traffic-service/internal/repository"
	"traffic-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	timeout := cfg.DB.QueryTimeout
	scopeRepo := repository.NewScopeRepository(database, timeout)
	violationRepo := repository.NewViolationRepository(database, timeout)
	typeRepo := repository.NewViolationTypeRepository(database, timeout)
	vehicleRepo := repository.NewVehicleRepository(database, timeout)
	officerRepo := repository.NewOfficerRepository(database, timeout)
	adminRepo := repository.NewAdminRepository(database, timeout)
	statsRepo := repository.NewStatsRepository(database, timeout)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	gateway := payment.NewStripeGateway(cfg.Payment)
	mailer := notify.NewSendGridMailer(cfg.Mail, log)
	notifier := notify.NewNotifier(mailer, cfg.Ticket.CurrencyLabel, cfg.Location)

	violationService := service.NewViolationService(scopeRepo, violationRepo, typeRepo, service.NewTicketGenerator(cfg.Ticket.Prefix), cfg.Location)
	paymentService := service.NewPaymentService(violationRepo, gateway, notifier, log)
	accountService := service.NewAccountService(officerRepo, adminRepo, tokenParser, log)
	vehicleService := service.NewVehicleService(vehicleRepo, statsRepo)
	statsService := service.NewStatsService(statsRepo, cfg.Location)

	handler := httphandler.NewHandler(violationService, paymentService, accountService, vehicleService, statsService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), httphandler.RouterConfig{
		Environment:    cfg.Environment,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Health: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.HealthCheck(ctx, database)
		},
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("timezone", cfg.Location.String()).Msg("starting traffic service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
