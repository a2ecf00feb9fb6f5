package services

import (
	"fmt"
	"io"
	"time"

	"github.com/benmeehan/serial-echo/internal/clock"
	"github.com/benmeehan/serial-echo/internal/constants"
	"github.com/benmeehan/serial-echo/internal/models"
	"github.com/rs/zerolog"
)

// HeartbeatEmitter writes a fixed line whenever more than interval milliseconds
// of uptime have passed since the previous one.
type HeartbeatEmitter struct {
	port     io.Writer
	line     []byte
	interval uint32

	// lastConnectionCheck is the uptime of the most recent heartbeat, 0 at boot.
	lastConnectionCheck uint32

	clock  clock.Clock
	sink   EventSink
	logger zerolog.Logger
}

// NewHeartbeatEmitter creates a HeartbeatEmitter. sink may be nil.
func NewHeartbeatEmitter(port io.Writer, message, terminator string, intervalMs uint32, clk clock.Clock,
	sink EventSink, logger zerolog.Logger) *HeartbeatEmitter {
	return &HeartbeatEmitter{
		port:     port,
		line:     []byte(message + terminator),
		interval: intervalMs,
		clock:    clk,
		sink:     sink,
		logger:   logger,
	}
}

// Check emits a heartbeat if the interval has been exceeded and reports whether it did.
// The timestamp is taken after the write, so time spent writing delays the next heartbeat.
func (h *HeartbeatEmitter) Check() (bool, error) {
	// unsigned subtraction keeps this correct across counter wraparound
	if h.clock.Millis()-h.lastConnectionCheck <= h.interval {
		return false, nil
	}

	_, err := h.port.Write(h.line)
	h.lastConnectionCheck = h.clock.Millis()
	if err != nil {
		return false, fmt.Errorf("failed to write heartbeat: %w", err)
	}

	h.logger.Debug().Uint32("uptime_ms", h.lastConnectionCheck).Msg("Heartbeat written")
	if h.sink != nil {
		h.sink.Publish(models.Event{
			Type:      constants.EventHeartbeat,
			UptimeMs:  h.lastConnectionCheck,
			Timestamp: time.Now().UTC(),
			Bytes:     len(h.line),
		})
	}

	return true, nil
}

// LastCheck returns the uptime of the most recent heartbeat attempt.
func (h *HeartbeatEmitter) LastCheck() uint32 {
	return h.lastConnectionCheck
}
