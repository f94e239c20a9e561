package notify

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/critmon/pulsecheck/internal/models"
)

// Notifier delivers a down-device alert. The sweep decides that an alert
// condition exists; notifiers only deliver it.
type Notifier interface {
	NotifyDown(m *models.Monitor, detectedAt time.Time) error
}

// SendGridNotifier emails liveness alerts through the SendGrid API.
type SendGridNotifier struct {
	apiKey    string
	fromEmail string
	logger    zerolog.Logger
}

// NewSendGridNotifier creates a notifier sending from fromEmail.
func NewSendGridNotifier(apiKey, fromEmail string, logger zerolog.Logger) *SendGridNotifier {
	return &SendGridNotifier{apiKey: apiKey, fromEmail: fromEmail, logger: logger}
}

func (n *SendGridNotifier) NotifyDown(m *models.Monitor, detectedAt time.Time) error {
	subject := fmt.Sprintf("[CRITICAL] device %s missed its heartbeat", m.DeviceID)
	body := fmt.Sprintf(`Device: %s
Monitor: %s

No heartbeat was received within the configured window of %d seconds.

Last heartbeat: %s
Deadline passed: %s
Detected: %s

This usually means:
- The device lost power or connectivity
- The reporting agent stopped
- The device clock drifted badly

Please investigate.`,
		m.DeviceID,
		m.ID,
		m.Timeout,
		m.LastHeartbeat.Format(time.RFC3339),
		m.ExpiresAt.Format(time.RFC3339),
		detectedAt.Format(time.RFC3339),
	)

	from := mail.NewEmail("PulseCheck", n.fromEmail)
	to := mail.NewEmail("", m.AlertEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)
	client := sendgrid.NewSendClient(n.apiKey)

	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	n.logger.Debug().
		Str("device_id", m.DeviceID).
		Int("status_code", resp.StatusCode).
		Msg("Alert email sent")
	return nil
}

// LogNotifier writes alerts to the log. It is the fallback when no email
// delivery is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDown(m *models.Monitor, detectedAt time.Time) error {
	n.logger.Warn().
		Str("monitor_id", m.ID).
		Str("device_id", m.DeviceID).
		Time("last_heartbeat", m.LastHeartbeat).
		Time("expired_at", m.ExpiresAt).
		Msg("Device is down")
	return nil
}
