package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/constants"
	"github.com/critmon/pulsecheck/internal/models"
	"github.com/critmon/pulsecheck/pkg/mqtt"
)

// HeartbeatIngestService consumes heartbeat messages devices publish over
// MQTT and rearms the matching monitors by device id. It is an alternative
// transport next to the HTTP heartbeat endpoint.
type HeartbeatIngestService struct {
	SubTopic   string
	QOS        int
	MqttClient mqtt.MQTTClient
	Monitors   MonitorOperations
	Logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewHeartbeatIngestService initializes a new HeartbeatIngestService.
func NewHeartbeatIngestService(subTopic string, qos int, mqttClient mqtt.MQTTClient,
	monitors MonitorOperations, logger zerolog.Logger) *HeartbeatIngestService {

	return &HeartbeatIngestService{
		SubTopic:   subTopic,
		QOS:        qos,
		MqttClient: mqttClient,
		Monitors:   monitors,
		Logger:     logger,
	}
}

// Start subscribes to the heartbeat topic.
func (h *HeartbeatIngestService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatIngestService is already running")
		return errors.New("heartbeat ingest service is already running")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())

	token := h.MqttClient.Subscribe(h.SubTopic, byte(h.QOS), func(_ MQTT.Client, msg MQTT.Message) {
		h.HandleMessage(msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		h.ctx = nil
		h.cancel = nil
		return err
	}

	h.Logger.Info().Str("topic", h.SubTopic).Msg("HeartbeatIngestService started successfully")
	return nil
}

// Stop unsubscribes from the heartbeat topic.
func (h *HeartbeatIngestService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatIngestService is not running")
		return errors.New("heartbeat ingest service is not running")
	}

	token := h.MqttClient.Unsubscribe(h.SubTopic)
	token.Wait()

	h.cancel()
	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatIngestService stopped successfully")
	return token.Error()
}

// HandleMessage parses one heartbeat payload and rearms the device's
// monitors. Unknown devices and malformed payloads are logged and dropped.
func (h *HeartbeatIngestService) HandleMessage(payload []byte) {
	var hb models.Heartbeat
	if err := json.Unmarshal(payload, &hb); err != nil {
		h.Logger.Error().Err(err).Msg("Failed to parse heartbeat message")
		return
	}
	if hb.DeviceID == "" {
		h.Logger.Error().Msg("Heartbeat message missing device id")
		return
	}
	if hb.Status != "" && hb.Status != constants.StatusAlive {
		h.Logger.Debug().Str("device_id", hb.DeviceID).Str("status", hb.Status).Msg("Ignoring non-alive heartbeat status")
		return
	}

	ctx := h.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.Monitors.HeartbeatByDevice(ctx, hb.DeviceID); err != nil {
		h.Logger.Warn().Err(err).Str("device_id", hb.DeviceID).Msg("Failed to apply device heartbeat")
		return
	}
	h.Logger.Debug().Str("device_id", hb.DeviceID).Msg("Device heartbeat applied")
}
