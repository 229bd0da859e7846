// Package pipeline composes the ingest stream: UDP datagrams are parsed
// into raw wire messages, decoded into domain messages, and fanned out to
// sinks. Parse and decode failures are scoped to the single offending
// message; the stream itself ends only when the upstream source does.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
	"github.com/couchcryptid/tempest-exporter/internal/observability"
	"github.com/couchcryptid/tempest-exporter/internal/station"
)

// PacketSource yields one datagram per call. Implemented by the UDP adapter.
type PacketSource interface {
	Receive(ctx context.Context) ([]byte, error)
}

// RawSource yields one parsed wire message per call.
type RawSource interface {
	Next(ctx context.Context) (station.RawMessage, error)
}

// Sink consumes decoded messages. Sinks must not block the ingest loop for
// long; slow deliveries belong behind their own queues.
type Sink interface {
	HandleMessage(ctx context.Context, msg domain.Message)
}

// Reader turns a packet source into a raw message source, dropping datagrams
// that do not parse.
type Reader struct {
	source  PacketSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader wraps a packet source with wire-format parsing.
func NewReader(source PacketSource, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{source: source, logger: logger, metrics: metrics}
}

// Next returns the next parseable raw message. It returns an error only when
// the underlying source fails or the context ends.
func (r *Reader) Next(ctx context.Context) (station.RawMessage, error) {
	for {
		data, err := r.source.Receive(ctx)
		if err != nil {
			return nil, err
		}
		r.metrics.PacketsReceived.Inc()

		raw, err := station.Parse(data)
		if err != nil {
			r.logger.Warn("dropped unreadable packet", "error", err, "payload", string(data))
			r.metrics.ParseErrors.Inc()
			continue
		}
		return raw, nil
	}
}

// Decoder turns a raw message source into a domain message source, dropping
// messages that fail domain validation. The dropped raw message is logged in
// full so the failure keeps its context.
type Decoder struct {
	source  RawSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDecoder wraps a raw source with domain decoding.
func NewDecoder(source RawSource, logger *slog.Logger, metrics *observability.Metrics) *Decoder {
	return &Decoder{source: source, logger: logger, metrics: metrics}
}

// Next returns the next decodable domain message. It returns an error only
// when the underlying source fails or the context ends.
func (d *Decoder) Next(ctx context.Context) (domain.Message, error) {
	for {
		raw, err := d.source.Next(ctx)
		if err != nil {
			return nil, err
		}

		msg, err := domain.Decode(raw)
		if err != nil {
			d.logger.Warn("dropped undecodable message", "error", err, "raw", raw)
			d.metrics.DecodeErrors.Inc()
			continue
		}
		d.metrics.MessagesDecoded.WithLabelValues(msg.Kind()).Inc()
		return msg, nil
	}
}

// MessageSource yields one decoded message per call.
type MessageSource interface {
	Next(ctx context.Context) (domain.Message, error)
}

// Pipeline is the single ingest consumer: it pulls decoded messages and
// dispatches each to every sink in order.
type Pipeline struct {
	source  MessageSource
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline over a decoded message source and its sinks.
func New(source MessageSource, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  source,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the pipeline has decoded at least one
// message, i.e. the station is actually broadcasting.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no station message decoded yet")
	}
	return nil
}

// Run pulls messages until the context is cancelled or the source is
// exhausted. Cancellation is observed between whole messages; each message
// is dispatched as a unit.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		msg, err := p.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}

		if !p.ready.Swap(true) {
			p.logger.Info("station is alive", "type", msg.Kind())
		}

		for _, sink := range p.sinks {
			sink.HandleMessage(ctx, msg)
		}
	}
}
