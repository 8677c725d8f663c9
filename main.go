// File: homefix/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homefix/config"
	"homefix/cron"
	"homefix/database"
	bookingRepo "homefix/database/repository/booking"
	providerRepo "homefix/database/repository/provider"
	"homefix/handlers"
	"homefix/middleware"
	"homefix/routes"
	"homefix/services/dispatch"
	"homefix/services/notification"
	"homefix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.InitCodeCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	locator := providerRepo.NewMongoProviderLocator()

	// services.
	sink := notification.NewFCMSink()
	dispatchCfg := dispatch.ConfigFromApp()
	dispatcher := &dispatch.Dispatcher{
		Repo:    bookings,
		Locator: locator,
		Sink:    sink,
		Cfg:     dispatchCfg,
		Logger:  logger,
	}
	registry := dispatch.NewRegistry(dispatcher, logger)

	dispatchService := &dispatch.DefaultDispatchService{
		Repo:     bookings,
		Locator:  locator,
		Registry: registry,
		Lifecycle: &dispatch.Lifecycle{
			Repo:   bookings,
			Fees:   dispatch.FeesFromApp(),
			Logger: logger,
		},
		Resolver: &dispatch.Resolver{Repo: bookings, Logger: logger},
		Cfg:      dispatchCfg,
		Logger:   logger,
	}

	// Re-register bookings stranded in SEARCHING by a previous process.
	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := registry.RecoverOnStartup(recoverCtx); err != nil {
		logger.Sugar().Errorf("main: startup recovery scan failed: %v", err)
	}
	recoverCancel()

	// Periodic recovery safety net.
	cron.InitRecoveryWorker(registry)

	utils.StartHealthMonitor([]*redis.Client{
		utils.GetCacheClient(),
		utils.GetAuthCacheClient(),
		utils.GetCodeCacheClient(),
	}, database.MongoClient)

	handlerBundle := &routes.HandlerBundle{
		Booking:          handlers.NewBookingHandler(dispatchService, logger),
		ProviderResponse: handlers.NewProviderResponseHandler(dispatchService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

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

	// Stop all in-flight dispatch tasks; recovery will resume them on the
	// next boot.
	registry.Shutdown()

	logger.Sugar().Info("main: server stopped gracefully")
}
