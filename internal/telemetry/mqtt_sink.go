// Package telemetry mirrors polling loop events to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benmeehan/serial-echo/internal/models"
	"github.com/benmeehan/serial-echo/internal/utils"
	"github.com/benmeehan/serial-echo/pkg/mqtt"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// MQTTSink publishes events as JSON from a small worker pool so callers never wait on the broker.
type MQTTSink struct {
	topic     string
	qos       int
	workers   int
	queueSize int

	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger

	mu      sync.RWMutex
	pool    *utils.WorkerPool
	dropped atomic.Uint64
}

// NewMQTTSink creates a new MQTTSink.
func NewMQTTSink(topic string, qos, workers, queueSize int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *MQTTSink {
	return &MQTTSink{
		topic:      topic,
		qos:        qos,
		workers:    workers,
		queueSize:  queueSize,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// Start launches the publisher workers.
func (s *MQTTSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.logger.Warn().Msg("MQTTSink is already running")
		return errors.New("telemetry sink is already running")
	}
	if s.mqttClient == nil {
		return errors.New("telemetry sink has no mqtt client")
	}

	s.pool = utils.NewWorkerPool(s.workers, s.queueSize)

	s.logger.Info().
		Str("topic", s.topic).
		Int("qos", s.qos).
		Int("workers", s.workers).
		Msg("MQTTSink started successfully")
	return nil
}

// Stop waits for queued events to be published and stops the workers.
func (s *MQTTSink) Stop() error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	if pool == nil {
		s.logger.Warn().Msg("MQTTSink is not running")
		return errors.New("telemetry sink is not running")
	}

	pool.Shutdown()

	s.logger.Info().Uint64("dropped", s.Dropped()).Msg("MQTTSink stopped successfully")
	return nil
}

// Publish queues event for delivery. If the sink is stopped or its queue is full the event is dropped.
func (s *MQTTSink) Publish(event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to serialize telemetry event")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pool == nil || !s.pool.TrySubmit(func() { s.send(event.Type, payload) }) {
		s.dropped.Add(1)
		s.logger.Warn().Str("type", event.Type).Msg("Telemetry event dropped")
	}
}

// Dropped returns how many events were discarded.
func (s *MQTTSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *MQTTSink) send(eventType string, payload []byte) {
	token := s.mqttClient.Publish(s.topic, byte(s.qos), false, payload)
	if !token.WaitTimeout(publishTimeout) {
		s.logger.Error().Str("type", eventType).Msg("Timed out publishing telemetry event")
		return
	}

	if err := token.Error(); err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("Failed to publish telemetry event")
	} else {
		s.logger.Debug().Str("type", eventType).Msg("Telemetry event published successfully")
	}
}
