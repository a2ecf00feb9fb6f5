package services_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/benmeehan/serial-echo/internal/clock"
	"github.com/benmeehan/serial-echo/internal/constants"
	"github.com/benmeehan/serial-echo/internal/mocks"
	"github.com/benmeehan/serial-echo/internal/models"
	"github.com/benmeehan/serial-echo/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newHeartbeat(port *scriptedPort, clk clock.Clock, sink services.EventSink) *services.HeartbeatEmitter {
	return services.NewHeartbeatEmitter(port, constants.DefaultHeartbeatMessage, "\n",
		constants.DefaultHeartbeatInterval, clk, sink, zerolog.Nop())
}

// TestHeartbeatEmitter_Check_StrictThreshold tests that exactly 5000 ms is not enough.
func TestHeartbeatEmitter_Check_StrictThreshold(t *testing.T) {
	port := &scriptedPort{}
	clk := clock.NewManual(0)
	h := newHeartbeat(port, clk, nil)

	clk.Set(5000)
	emitted, err := h.Check()
	assert.NoError(t, err)
	assert.False(t, emitted)
	assert.Empty(t, port.output())

	clk.Set(5001)
	emitted, err = h.Check()
	assert.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, "Connection Check\n", port.output())
	assert.Equal(t, uint32(5001), h.LastCheck())
}

// TestHeartbeatEmitter_Check_MeasuredFromPreviousHeartbeat tests that the interval restarts at each heartbeat.
func TestHeartbeatEmitter_Check_MeasuredFromPreviousHeartbeat(t *testing.T) {
	port := &scriptedPort{}
	clk := clock.NewManual(7000)
	h := newHeartbeat(port, clk, nil)

	emitted, _ := h.Check()
	assert.True(t, emitted)
	assert.Equal(t, uint32(7000), h.LastCheck())

	clk.Set(12000)
	emitted, _ = h.Check()
	assert.False(t, emitted)

	clk.Set(12001)
	emitted, _ = h.Check()
	assert.True(t, emitted)

	assert.Equal(t, 2, strings.Count(port.output(), "Connection Check\n"))
}

// TestHeartbeatEmitter_Check_Wraparound tests that the uptime counter rolling over does not stall heartbeats.
func TestHeartbeatEmitter_Check_Wraparound(t *testing.T) {
	port := &scriptedPort{}
	clk := clock.NewManual(math.MaxUint32 - 1000)
	h := newHeartbeat(port, clk, nil)

	emitted, _ := h.Check()
	assert.True(t, emitted)

	clk.Advance(3 * time.Second)
	emitted, _ = h.Check()
	assert.False(t, emitted)

	clk.Advance(2001 * time.Millisecond)
	emitted, _ = h.Check()
	assert.True(t, emitted)
	assert.Less(t, h.LastCheck(), uint32(5000))
}

// TestHeartbeatEmitter_Check_WriteError tests that a failed write still resets the interval.
func TestHeartbeatEmitter_Check_WriteError(t *testing.T) {
	mockPort := new(mocks.Port)
	mockPort.On("Write", []byte("Connection Check\n")).Return(0, errors.New("port closed")).Once()

	clk := clock.NewManual(6000)
	h := services.NewHeartbeatEmitter(mockPort, "Connection Check", "\n", 5000, clk, nil, zerolog.Nop())

	emitted, err := h.Check()

	assert.False(t, emitted)
	assert.ErrorContains(t, err, "port closed")
	assert.Equal(t, uint32(6000), h.LastCheck())

	emitted, err = h.Check()
	assert.False(t, emitted)
	assert.NoError(t, err)
	mockPort.AssertExpectations(t)
}

// TestHeartbeatEmitter_Check_PublishesEvent tests that each heartbeat is mirrored to the sink.
func TestHeartbeatEmitter_Check_PublishesEvent(t *testing.T) {
	port := &scriptedPort{}
	mockSink := new(mocks.EventSink)
	mockSink.On("Publish", mock.MatchedBy(func(e models.Event) bool {
		return e.Type == constants.EventHeartbeat && e.UptimeMs == 5001 && e.Bytes == len("Connection Check\n")
	})).Once()

	h := newHeartbeat(port, clock.NewManual(5001), mockSink)

	emitted, err := h.Check()

	assert.NoError(t, err)
	assert.True(t, emitted)
	mockSink.AssertExpectations(t)
}

// slowPort is a writer whose every write takes delay of uptime.
type slowPort struct {
	scriptedPort
	clk   *clock.Manual
	delay time.Duration
}

func (s *slowPort) Write(p []byte) (int, error) {
	s.clk.Advance(s.delay)
	return s.scriptedPort.Write(p)
}

// TestHeartbeatEmitter_Check_SlowWriteDelaysNextHeartbeat tests that the interval is measured
// from the end of the previous write, so write time accumulates as drift.
func TestHeartbeatEmitter_Check_SlowWriteDelaysNextHeartbeat(t *testing.T) {
	clk := clock.NewManual(5001)
	port := &slowPort{clk: clk, delay: 30 * time.Millisecond}
	h := services.NewHeartbeatEmitter(port, "Connection Check", "\n", 5000, clk, nil, zerolog.Nop())

	emitted, err := h.Check()
	assert.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, uint32(5031), h.LastCheck())

	clk.Set(10031)
	emitted, _ = h.Check()
	assert.False(t, emitted)

	clk.Set(10032)
	emitted, _ = h.Check()
	assert.True(t, emitted)
	assert.Equal(t, uint32(10062), h.LastCheck())

	assert.Equal(t, 2, port.writeCount())
}
