package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonflow/config"
	"salonflow/handlers"
	"salonflow/integrations/appointments"
	"salonflow/integrations/professionals"
	"salonflow/middleware"
	"salonflow/routes"
	"salonflow/services/scheduling"
	"salonflow/utils"
	"salonflow/workers"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Integration clients.
	appointmentsClient := appointments.NewClient(
		config.AppConfig.AppointmentsURL,
		time.Duration(config.AppConfig.AppointmentsTimeoutSec)*time.Second,
		logger,
	)
	professionalsClient := professionals.NewClient(
		config.AppConfig.ProfessionalsURL,
		time.Duration(config.AppConfig.ProfessionalsTimeoutSec)*time.Second,
		logger,
	)

	// Session durability store.
	sessionStore := scheduling.NewSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLHours)*time.Hour,
	)

	submitter := scheduling.NewSubmitter(appointmentsClient, logger)
	retryQueue := workers.NewEnqueuer()

	schedulingService := scheduling.NewDefaultSchedulingService(
		sessionStore,
		appointmentsClient,
		professionalsClient,
		submitter,
		retryQueue,
		scheduling.NewClock(),
		logger,
	)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService, logger)

	// Register routes with the assembled handler.
	routes.RegisterRoutes(router, schedulingHandler)

	// Background worker for locally persisted bookings.
	workers.InitRetryWorker(schedulingService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
