package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exodash/adapters/classifier"
	"exodash/app"
	"exodash/domain/mission"
	"exodash/domain/physics"
	"exodash/internal/analytics"
	"exodash/internal/api"
	"exodash/internal/config"
	"exodash/internal/logging"
	"exodash/ports"
	"exodash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	logger := logging.New("Main")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Infof("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	client, err := classifier.NewClient(appConfig.Classifier)
	if err != nil {
		log.Fatalf("Failed to create classifier client: %v", err)
	}
	logger.Infof("Model service at %s (timeout %v)", appConfig.Classifier.BaseURL, appConfig.Classifier.Timeout)

	physicsClassifier, err := physics.New(appConfig.Breakpoints)
	if err != nil {
		log.Fatalf("Invalid breakpoint table: %v", err)
	}

	var fallback ports.Classifier
	if appConfig.Offline {
		fallback = classifier.HeuristicClassifier{}
		logger.Warnf("Offline fallback enabled: unreachable model service answers come from %s", classifier.HeuristicModelLabel)
	}
	form, err := app.NewCandidateForm(client, mission.Kepler, app.FormOptions{
		Fallback:    fallback,
		Physics:     physicsClassifier,
		CurvePoints: appConfig.LightCurve.Points,
	})
	if err != nil {
		log.Fatalf("Failed to create candidate form: %v", err)
	}

	hub := api.NewSSEHub()
	defer hub.Close()

	batches := app.NewBatchRegistry(client, app.BatchOptions{
		Progress:    appConfig.Progress,
		ChunkSize:   appConfig.Batch.ChunkSize,
		Concurrency: appConfig.Batch.Concurrency,
		MaxJobs:     appConfig.Batch.MaxJobs,
		JobTTL:      appConfig.Batch.JobTTL,
	}, ui.PublishBatchEvents(hub))

	server := ui.NewServer(ui.Dependencies{
		Form:           form,
		Batches:        batches,
		Hub:            hub,
		Analytics:      analytics.NewService(client),
		Physics:        physicsClassifier,
		CurvePoints:    appConfig.LightCurve.Points,
		MaxUploadBytes: appConfig.Server.MaxUploadBytes,
	})

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Starting exoplanet dashboard on port %s (breakpoints %s)", appConfig.Server.Port, appConfig.Breakpoints.Name)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("🛑 Shutting down...")
	form.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
