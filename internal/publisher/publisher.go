// Package publisher pushes decoded readings to an MQTT broker as retained
// per-topic values, so home-automation consumers always see the latest
// reading on subscribe.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/tempest-exporter/internal/config"
	"github.com/couchcryptid/tempest-exporter/internal/domain"
	"github.com/couchcryptid/tempest-exporter/internal/observability"
)

const publishTimeout = 5 * time.Second

// mqttClient is the slice of paho's client surface the publisher needs;
// tests substitute a recording fake.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// message is one retained topic update queued for delivery.
type message struct {
	topic   string
	payload string
}

// Publisher is a pipeline sink that fans decoded RapidWind and Observation
// messages out to MQTT topics. Enqueueing never blocks the ingest loop: a
// full queue drops the update (the next report will refresh the topic).
type Publisher struct {
	client    mqttClient
	elevation float64
	prefix    string
	queue     chan message
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New connects a paho client and returns the publisher sink. Run must be
// started for queued messages to be delivered.
func New(cfg config.MQTTConfig, elevation float64, logger *slog.Logger, metrics *observability.Metrics) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(15 * time.Second)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.BrokerURL)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return newWithClient(client, cfg, elevation, logger, metrics), nil
}

func newWithClient(client mqttClient, cfg config.MQTTConfig, elevation float64, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		client:    client,
		elevation: elevation,
		prefix:    cfg.TopicPrefix,
		queue:     make(chan message, cfg.QueueSize),
		logger:    logger,
		metrics:   metrics,
	}
}

// Run drains the queue until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-p.queue:
			token := p.client.Publish(m.topic, 1, true, m.payload)
			if token.WaitTimeout(publishTimeout) && token.Error() != nil {
				p.logger.Error("mqtt publish failed", "topic", m.topic, "error", token.Error())
			}
		}
	}
}

// HandleMessage implements pipeline.Sink. Only RapidWind and Observation
// carry readings worth retaining as topics.
func (p *Publisher) HandleMessage(_ context.Context, msg domain.Message) {
	switch m := msg.(type) {
	case domain.RapidWind:
		p.sendWind(p.prefix+"/instant_wind", m.Wind)
	case domain.Observation:
		p.sendObservation(m)
	default:
	}
}

func (p *Publisher) send(topic, payload string) {
	select {
	case p.queue <- message{topic: topic, payload: payload}:
	default:
		p.metrics.PublishDrops.Inc()
		p.logger.Warn("mqtt queue full, dropping update", "topic", topic)
	}
}

func (p *Publisher) sendFloat(topic string, v float64) {
	p.send(topic, strconv.FormatFloat(v, 'g', -1, 64))
}

func (p *Publisher) sendWind(prefix string, wind domain.Wind) {
	p.sendFloat(prefix+"/speed_magnitude_m_per_s", wind.SpeedMagnitude)
	p.sendFloat(prefix+"/source_direction_deg", wind.SourceDirection)
	north, east := wind.ComponentVelocity()
	p.send(prefix+"/component_velocity_m_per_s", fmt.Sprintf("%g %g", north, east))
}

func (p *Publisher) sendObservation(obs domain.Observation) {
	base := p.prefix + "/observation"
	p.send(base+"/timestamp", obs.Timestamp.Format(time.RFC3339))
	p.sendFloat(base+"/battery_volts", obs.BatteryVolts)

	if obs.Wind != nil {
		p.sendWind(base+"/wind/lull", obs.Wind.Lull)
		p.sendWind(base+"/wind/avg", obs.Wind.Avg)
		p.sendWind(base+"/wind/gust", obs.Wind.Gust)
	}
	if obs.StationPressure != nil {
		p.sendFloat(base+"/pressure/station_hpa", *obs.StationPressure)
	}
	if v, ok := obs.BarometricPressure(p.elevation); ok {
		p.sendFloat(base+"/pressure/barometric_hpa", v)
	}
	if obs.AirTemperature != nil {
		p.sendFloat(base+"/thermal/temperature_deg_c", *obs.AirTemperature)
	}
	if obs.RelativeHumidity != nil {
		p.sendFloat(base+"/thermal/relative_humidity_pct", *obs.RelativeHumidity)
	}
	if v, ok := obs.DewPoint(); ok {
		p.sendFloat(base+"/thermal/dew_point_deg_c", v)
	}
	if v, ok := obs.WetBulbTemperature(); ok {
		p.sendFloat(base+"/thermal/wet_bulb_temperature_deg_c", v)
	}
	if v, ok := obs.ApparentTemperature(); ok {
		p.sendFloat(base+"/thermal/apparent_temperature_deg_c", v)
	}
	if obs.Solar != nil {
		p.sendFloat(base+"/solar/illuminance_lux", obs.Solar.Illuminance)
		p.sendFloat(base+"/solar/irradiance_w_per_m2", obs.Solar.Irradiance)
		p.sendFloat(base+"/solar/uv_index", obs.Solar.UltravioletIndex)
	}
	if obs.Precip != nil {
		p.sendFloat(base+"/precip/previous_minute_rain_mm", obs.Precip.QuantityLastMinute)
		p.send(base+"/precip/kind", obs.Precip.Kind.String())
	}
	if obs.Lightning != nil {
		p.sendFloat(base+"/lightning/average_distance_km", obs.Lightning.AverageDistance)
		p.send(base+"/lightning/count", strconv.FormatInt(obs.Lightning.Count, 10))
	}
}
