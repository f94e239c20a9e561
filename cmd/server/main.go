package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/api"
	"github.com/critmon/pulsecheck/internal/notify"
	"github.com/critmon/pulsecheck/internal/service_registry"
	"github.com/critmon/pulsecheck/internal/services"
	"github.com/critmon/pulsecheck/internal/store"
	"github.com/critmon/pulsecheck/internal/utils"
	"github.com/critmon/pulsecheck/pkg/file"
	"github.com/critmon/pulsecheck/pkg/mqtt"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileClient := file.NewFileService()
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	monitorStore, cleanup, err := buildStore(config, fileClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer cleanup()

	monitorService := services.NewMonitorService(
		monitorStore,
		config.Cache.MaxSize,
		config.Cache.Expiration,
		logger,
	)

	var notifier notify.Notifier
	if config.Alerts.SendGridAPIKey != "" && config.Alerts.FromEmail != "" {
		notifier = notify.NewSendGridNotifier(config.Alerts.SendGridAPIKey, config.Alerts.FromEmail, logger)
	} else {
		logger.Warn().Msg("No email delivery configured, alerts go to the log only")
		notifier = notify.NewLogNotifier(logger)
	}

	registry := service_registry.NewServiceRegistry(logger)

	workers := config.Sweep.Workers
	if workers <= 0 {
		workers = 4
	}
	pool := utils.NewWorkerPool(workers)
	defer pool.Shutdown()

	if config.Sweep.Enabled {
		sweep := services.NewSweepService(
			config.Sweep.Interval,
			monitorStore,
			notifier,
			services.NewOncePerOutage(),
			pool,
			logger,
		)
		registry.RegisterService("sweep", sweep)
	}

	var mqttClient *mqtt.MqttService
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Connecting to MQTT broker")

		mqttClient = mqtt.NewMqttService(fileClient)
		if err := mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}

		ingest := services.NewHeartbeatIngestService(
			config.MQTT.Topic,
			config.MQTT.QOS,
			mqttClient,
			monitorService,
			logger,
		)
		registry.RegisterService("heartbeat-ingest", ingest)
	}

	if err := registry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	router := api.NewRouter(monitorService, logger)
	srv := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", config.Server.Port).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if err := registry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop services cleanly")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// buildStore selects the persistence backend from config. The returned
// cleanup is a no-op for the in-memory store.
func buildStore(config *utils.Config, fileClient file.FileOperations, logger zerolog.Logger) (store.MonitorStore, func(), error) {
	if config.Database.Driver == "memory" {
		logger.Warn().Msg("Using in-memory store, monitors will not survive restarts")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.NewPostgresStore(config.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}

	schemaFile := config.Database.SchemaFile
	if schemaFile == "" {
		schemaFile = "schema.sql"
	}
	schema, err := fileClient.ReadFile(schemaFile)
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	if err := pg.ApplySchema(schema); err != nil {
		pg.Close()
		return nil, nil, err
	}

	return pg, func() { pg.Close() }, nil
}
