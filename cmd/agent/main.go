package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/serial-echo/internal/clock"
	"github.com/benmeehan/serial-echo/internal/service_registry"
	"github.com/benmeehan/serial-echo/internal/utils"
	"github.com/benmeehan/serial-echo/pkg/file"
	"github.com/benmeehan/serial-echo/pkg/mqtt"
	"github.com/benmeehan/serial-echo/pkg/serial"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// flags override individual config file values when set.
type flags struct {
	configFile string
	device     string
	baudRate   int
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "echo-agent",
		Short: "Echo serial input and emit a periodic connection check",
		Long: `echo-agent opens a serial port, writes every chunk of received input back
to the sender followed by a line terminator, and writes "Connection Check"
on its own line whenever more than 5 seconds have passed since the last one.`,
		Example:       `  echo-agent --device /dev/ttyACM0 --baud 115200`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "configs/config.yaml", "path to the YAML config file")
	cmd.Flags().StringVarP(&f.device, "device", "d", "", "serial device (overrides config)")
	cmd.Flags().IntVarP(&f.baudRate, "baud", "b", 0, "baud rate (overrides config)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (overrides config)")

	return cmd
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(config *utils.Config, f flags) error {
	if f.device != "" {
		config.Serial.Device = f.device
	}
	if f.baudRate != 0 {
		config.Serial.BaudRate = f.baudRate
	}
	if f.logLevel != "" {
		config.LogLevel = f.logLevel
	}
	return config.Validate()
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), nil
}

func run(cmd *cobra.Command, f flags) error {
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(f.configFile, fileClient)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Failed to load configuration:", err)
		return err
	}
	if err := applyFlags(config, f); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Invalid configuration:", err)
		return err
	}

	logger, err := newLogger(config.LogLevel)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	// Uptime starts at initialization, like a device boot
	uptime := clock.NewUptime()

	port, err := serial.Open(&serial.Config{
		Device:      config.Serial.Device,
		Baud:        config.Serial.BaudRate,
		ReadTimeout: config.Serial.ReadTimeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open serial port")
		return err
	}
	defer port.Close()
	logger.Info().
		Str("device", config.Serial.Device).
		Int("baud_rate", config.Serial.BaudRate).
		Msg("Serial port opened")

	var mqttClient mqtt.MQTTClient
	if config.Services.Telemetry.Enabled {
		// Generate a unique MQTT Client ID by appending a UUID
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Connecting to MQTT broker")

		mqttService := mqtt.NewMqttService(fileClient)
		if err := mqttService.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Error().Err(err).Msg("Failed to initialize MQTT connection")
			return err
		}
		defer mqttService.Disconnect(250)
		mqttClient = mqttService
	}

	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, logger)

	if err := serviceRegistry.RegisterServices(config, port, uptime); err != nil {
		logger.Error().Err(err).Msg("Failed to register services")
		return err
	}
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to start services")
		return err
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	return serviceRegistry.StopServices()
}
