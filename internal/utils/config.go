package utils

import (
	"os"
	"time"

	"github.com/critmon/pulsecheck/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	Server struct {
		Port string `yaml:"port"` // HTTP listen port
	} `yaml:"server"`

	Database struct {
		Driver     string `yaml:"driver"`      // "postgres" or "memory"
		URL        string `yaml:"url"`         // Postgres connection string
		SchemaFile string `yaml:"schema_file"` // Path to the schema DDL applied at boot
	} `yaml:"database"`

	Cache struct {
		MaxSize    int           `yaml:"max_size"`   // Maximum number of cached monitors
		Expiration time.Duration `yaml:"expiration"` // Entry TTL
	} `yaml:"cache"`

	Sweep struct {
		Enabled  bool          `yaml:"enabled"`  // Enable/disable the expiry sweep
		Interval time.Duration `yaml:"interval"` // Interval between sweeps
		Workers  int           `yaml:"workers"`  // Concurrent alert deliveries
	} `yaml:"sweep"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Enable/disable MQTT heartbeat ingest
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate
		Topic         string `yaml:"topic"`          // Heartbeat topic to subscribe to
		QOS           int    `yaml:"qos"`            // MQTT QoS level for heartbeat messages
	} `yaml:"mqtt"`

	Alerts struct {
		SendGridAPIKey string `yaml:"sendgrid_api_key"` // Empty disables email delivery
		FromEmail      string `yaml:"from_email"`       // Sender address for alert emails
	} `yaml:"alerts"`
}

// LoadConfig loads the YAML configuration from the specified file. Secrets
// and deploy-specific values may be overridden through the environment.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		config.Alerts.SendGridAPIKey = v
	}
	if v := os.Getenv("ALERT_FROM_EMAIL"); v != "" {
		config.Alerts.FromEmail = v
	}

	return &config, nil
}
