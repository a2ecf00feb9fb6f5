package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/serial-echo/internal/clock"
	"github.com/benmeehan/serial-echo/internal/registry"
	"github.com/benmeehan/serial-echo/internal/services"
	"github.com/benmeehan/serial-echo/internal/telemetry"
	"github.com/benmeehan/serial-echo/internal/utils"
	"github.com/benmeehan/serial-echo/pkg/mqtt"
	"github.com/benmeehan/serial-echo/pkg/serial"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	mqttClient  mqtt.MQTTClient
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry. mqttClient may be nil when telemetry is disabled.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]registry.Service),
		mqttClient: mqttClient,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Services returns the registered service names in start order.
func (sr *ServiceRegistry) Services() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices builds the telemetry sink (if enabled) and the polling loop around port.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, port serial.Port, clk clock.Clock) error {
	var sink services.EventSink

	if config.Services.Telemetry.Enabled {
		if sr.mqttClient == nil {
			return errors.New("telemetry is enabled but no mqtt client was provided")
		}
		mqttSink := telemetry.NewMQTTSink(
			config.Services.Telemetry.Topic,
			config.Services.Telemetry.QOS,
			config.Services.Telemetry.Workers,
			config.Services.Telemetry.QueueSize,
			sr.mqttClient,
			sr.Logger.With().Str("service", "telemetry").Logger(),
		)
		sr.RegisterService("telemetry", mqttSink)
		sink = mqttSink
	}

	loopLogger := sr.Logger.With().Str("service", "polling_loop").Logger()
	echo := services.NewEchoHandler(
		port,
		config.Serial.LineTerminator,
		config.Serial.ReadBufferSize,
		clk,
		sink,
		loopLogger,
	)
	heartbeat := services.NewHeartbeatEmitter(
		port,
		config.Services.Heartbeat.Message,
		config.Serial.LineTerminator,
		config.Services.Heartbeat.IntervalMs,
		clk,
		sink,
		loopLogger,
	)

	sr.RegisterService("polling_loop", services.NewPollingLoop(echo, heartbeat, config.Serial.PollInterval, loopLogger))

	sr.Logger.Info().Msgf("Registered services in order: %v", sr.serviceKeys)
	return nil
}
