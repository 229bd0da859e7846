package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tempest-exporter/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tempest-exporter/internal/adapter/kafka"
	"github.com/couchcryptid/tempest-exporter/internal/adapter/udp"
	"github.com/couchcryptid/tempest-exporter/internal/config"
	"github.com/couchcryptid/tempest-exporter/internal/exporter"
	"github.com/couchcryptid/tempest-exporter/internal/observability"
	"github.com/couchcryptid/tempest-exporter/internal/pipeline"
	"github.com/couchcryptid/tempest-exporter/internal/publisher"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	logger.Info("starting tempest exporter", "elevation_m", cfg.StationElevation)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	receiver, err := udp.NewReceiver(cfg.UDPAddr, logger)
	if err != nil {
		logger.Error("failed to bind station port", "error", err)
		os.Exit(1)
	}

	exp := exporter.New(cfg.StationElevation, cfg.MetricTTL, logger)
	prometheus.MustRegister(exp)
	sinks := []pipeline.Sink{exp}

	// Optional MQTT publisher (feature-flagged via MQTT_ENABLED).
	if cfg.MQTT.Enabled {
		pub, err := publisher.New(cfg.MQTT, cfg.StationElevation, logger, metrics)
		if err != nil {
			logger.Error("failed to connect mqtt", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pub)
		go func() {
			if err := pub.Run(ctx); err != nil {
				logger.Error("mqtt publisher error", "error", err)
			}
		}()
		logger.Info("mqtt publishing enabled", "broker", cfg.MQTT.BrokerURL)
	} else {
		logger.Info("mqtt publishing disabled")
	}

	// Optional Kafka sink (feature-flagged via KAFKA_ENABLED).
	var kafkaWriter *kafkaadapter.Writer
	if cfg.Kafka.Enabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg.Kafka, logger)
		sinks = append(sinks, kafkaWriter)
		logger.Info("kafka publishing enabled", "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	reader := pipeline.NewReader(receiver, logger, metrics)
	decoder := pipeline.NewDecoder(reader, logger, metrics)
	p := pipeline.New(decoder, sinks, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
		stop()
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := receiver.Close(); err != nil {
		logger.Error("udp receiver close error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
