// Package config loads service settings from the environment (optionally
// seeded from a .env file) and validates them before anything starts.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	UDPAddr         string        `envconfig:"UDP_ADDR" default:"0.0.0.0:50222"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// StationElevation is the station's height above mean sea level in
	// meters, required to reduce station pressure to barometric pressure.
	StationElevation float64 `envconfig:"STATION_ELEVATION" required:"true" validate:"gte=0"`

	// MetricTTL is how long an exported reading stays fresh after its last
	// update before it is withheld from scrapes.
	MetricTTL time.Duration `envconfig:"METRIC_TTL" default:"5m" validate:"gt=0"`

	MQTT  MQTTConfig
	Kafka KafkaConfig
}

// MQTTConfig configures the optional MQTT publisher sink.
type MQTTConfig struct {
	Enabled     bool   `envconfig:"MQTT_ENABLED" default:"false"`
	BrokerURL   string `envconfig:"MQTT_BROKER_URL" default:"tcp://localhost:1883"`
	ClientID    string `envconfig:"MQTT_CLIENT_ID" default:"tempest-exporter"`
	Username    string `envconfig:"MQTT_USERNAME"`
	Password    string `envconfig:"MQTT_PASSWORD"`
	TopicPrefix string `envconfig:"MQTT_TOPIC_PREFIX" default:"tempest"`
	QueueSize   int    `envconfig:"MQTT_QUEUE_SIZE" default:"1024" validate:"gt=0"`
}

// KafkaConfig configures the optional Kafka sink for decoded messages.
type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"tempest-messages"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Non-fatal when absent; the environment is the source of truth.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// gte=0 rejects NaN but lets +Inf through; elevation must be a real height.
	if math.IsNaN(cfg.StationElevation) || math.IsInf(cfg.StationElevation, 0) {
		return nil, fmt.Errorf("STATION_ELEVATION must be finite, got %v", cfg.StationElevation)
	}

	if cfg.MQTT.Enabled && cfg.MQTT.BrokerURL == "" {
		return nil, fmt.Errorf("MQTT_ENABLED is true but MQTT_BROKER_URL is not set")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return &cfg, nil
}
