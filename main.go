package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gounivar/internal/api"
	"gounivar/internal/config"
	"gounivar/internal/logging"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(appConfig.LogLevel, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("pprof server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	server := api.NewServer(api.Config{
		Concurrency:  appConfig.Analysis.Concurrency,
		Precision:    appConfig.Analysis.Precision,
		AssumeNormal: appConfig.Analysis.AssumeNormal,
		MaxBodyBytes: appConfig.Server.MaxBodyBytes,
		Logger:       logger,
	})

	logger.Info("starting gounivar server on port %s", appConfig.Server.Port)
	err = server.ListenAndServe(ctx, ":"+appConfig.Server.Port,
		appConfig.Server.ReadTimeout, appConfig.Server.WriteTimeout, appConfig.Server.ShutdownTimeout)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
