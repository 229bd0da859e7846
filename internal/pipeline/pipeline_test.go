package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
	"github.com/couchcryptid/tempest-exporter/internal/observability"
	"github.com/couchcryptid/tempest-exporter/internal/pipeline"
	"github.com/couchcryptid/tempest-exporter/internal/station"
)

// --- mocks ---

// mockPacketSource replays a fixed set of datagrams, then blocks until the
// context is cancelled, like a quiet socket.
type mockPacketSource struct {
	packets [][]byte
	index   int
}

func (m *mockPacketSource) Receive(ctx context.Context) ([]byte, error) {
	if m.index >= len(m.packets) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p := m.packets[m.index]
	m.index++
	return p, nil
}

// mockRawSource replays raw messages.
type mockRawSource struct {
	raws  []station.RawMessage
	index int
}

func (m *mockRawSource) Next(ctx context.Context) (station.RawMessage, error) {
	if m.index >= len(m.raws) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r := m.raws[m.index]
	m.index++
	return r, nil
}

// mockSink records every dispatched message.
type mockSink struct {
	msgs []domain.Message
}

func (m *mockSink) HandleMessage(_ context.Context, msg domain.Message) {
	m.msgs = append(m.msgs, msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validObservationRow() []*float64 {
	row := make([]*float64, station.ObsSlotCount)
	set := func(i int, v float64) { row[i] = &v }
	set(station.ObsSlotTimestamp, 1675446422)
	set(station.ObsSlotBatteryVolts, 2.41)
	set(station.ObsSlotReportInterval, 1)
	return row
}

// --- tests ---

func TestReader_SkipsUnparseablePackets(t *testing.T) {
	src := &mockPacketSource{packets: [][]byte{
		[]byte(`{garbage`),
		[]byte(`{"type":"evt_imaginary"}`),
		[]byte(`{"type":"rapid_wind","serial_number":"ST-1","hub_sn":"HB-1","ob":[1675446422,2.3,128]}`),
	}}
	metrics := observability.NewMetricsForTesting()
	reader := pipeline.NewReader(src, testLogger(), metrics)

	raw, err := reader.Next(context.Background())
	require.NoError(t, err)
	assert.IsType(t, station.RawRapidWind{}, raw)
}

func TestReader_PropagatesSourceFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := pipeline.NewReader(&mockPacketSource{}, testLogger(), observability.NewMetricsForTesting())
	_, err := reader.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecoder_SkipsUndecodableMessages(t *testing.T) {
	badRow := validObservationRow()
	badCode := 9.0
	badQty := 0.0
	badRow[station.ObsSlotPrecipQuantity] = &badQty
	badRow[station.ObsSlotPrecipKind] = &badCode

	src := &mockRawSource{raws: []station.RawMessage{
		station.RawObservation{SerialNumber: "ST-1", Obs: [][]*float64{badRow}},
		station.RawHubStatus{SerialNumber: "HB-1", ResetFlags: "XYZ"},
		station.RawObservation{SerialNumber: "ST-1", Obs: [][]*float64{validObservationRow()}},
	}}
	decoder := pipeline.NewDecoder(src, testLogger(), observability.NewMetricsForTesting())

	// Both malformed messages are dropped; the valid one still arrives.
	msg, err := decoder.Next(context.Background())
	require.NoError(t, err)
	obs, ok := msg.(domain.Observation)
	require.True(t, ok, "expected Observation, got %T", msg)
	assert.Equal(t, "ST-1", obs.SerialNumber)
}

func TestPipeline_DispatchesToAllSinks(t *testing.T) {
	src := &mockRawSource{raws: []station.RawMessage{
		station.RawRapidWind{SerialNumber: "ST-1", Ob: []float64{1675446422, 2.3, 128}},
		station.RawPrecipEvent{SerialNumber: "ST-1", Evt: []float64{1675446400}},
	}}
	metrics := observability.NewMetricsForTesting()
	decoder := pipeline.NewDecoder(src, testLogger(), metrics)

	sink1 := &mockSink{}
	sink2 := &mockSink{}
	p := pipeline.New(decoder, []pipeline.Sink{sink1, sink2}, testLogger(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sink1.msgs, 2)
	require.Len(t, sink2.msgs, 2)
	assert.IsType(t, domain.RapidWind{}, sink1.msgs[0])
	assert.IsType(t, domain.PrecipEvent{}, sink1.msgs[1])
}

func TestPipeline_Readiness(t *testing.T) {
	src := &mockRawSource{raws: []station.RawMessage{
		station.RawRapidWind{SerialNumber: "ST-1", Ob: []float64{1675446422, 2.3, 128}},
	}}
	metrics := observability.NewMetricsForTesting()
	decoder := pipeline.NewDecoder(src, testLogger(), metrics)
	p := pipeline.New(decoder, nil, testLogger(), metrics)

	require.Error(t, p.CheckReadiness(context.Background()), "not ready before the first message")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_ContextCancellation(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	decoder := pipeline.NewDecoder(&mockRawSource{}, testLogger(), metrics)
	sink := &mockSink{}
	p := pipeline.New(decoder, []pipeline.Sink{sink}, testLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, sink.msgs)
}

func TestPipeline_SourceFailureIsReturned(t *testing.T) {
	wantErr := errors.New("socket closed")
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(failingSource{err: wantErr}, nil, testLogger(), metrics)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, wantErr)
}

type failingSource struct {
	err error
}

func (f failingSource) Next(context.Context) (domain.Message, error) {
	return nil, f.err
}
