package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/serial-echo/internal/constants"
	"github.com/benmeehan/serial-echo/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	LogLevel string `yaml:"log_level"` // zerolog level name (debug, info, warn, ...)

	Serial struct {
		Device         string        `yaml:"device"`           // Path of the serial device
		BaudRate       int           `yaml:"baud_rate"`        // Line speed
		ReadTimeout    time.Duration `yaml:"read_timeout"`     // How long one poll waits for input
		LineTerminator string        `yaml:"line_terminator"`  // Appended to echoes and heartbeats
		ReadBufferSize int           `yaml:"read_buffer_size"` // Bytes requested per port read
		PollInterval   time.Duration `yaml:"poll_interval"`    // Extra sleep after an idle iteration (read timeout normally paces the loop)
	} `yaml:"serial"`

	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate (optional)
	} `yaml:"mqtt"`

	Services struct {
		Heartbeat struct {
			IntervalMs uint32 `yaml:"interval_ms"` // Minimum uptime between heartbeats
			Message    string `yaml:"message"`     // Text written on each heartbeat line
		} `yaml:"heartbeat"`

		Telemetry struct {
			Enabled   bool   `yaml:"enabled"`    // Mirror loop events to MQTT
			Topic     string `yaml:"topic"`      // MQTT topic for loop events
			QOS       int    `yaml:"qos"`        // MQTT QoS level for loop events
			Workers   int    `yaml:"workers"`    // Publisher goroutines
			QueueSize int    `yaml:"queue_size"` // Pending events before new ones are dropped
		} `yaml:"telemetry"`
	} `yaml:"services"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	config := &Config{}
	config.ApplyDefaults()
	return config
}

// LoadConfig loads the YAML configuration from the specified file.
// A missing file yields the defaults.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config

	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", filename, err)
	}

	if exists {
		if err := fileClient.ReadYamlFile(filename, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Serial.Device == "" {
		c.Serial.Device = constants.DefaultDevice
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = constants.DefaultBaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = constants.DefaultReadTimeout
	}
	if c.Serial.LineTerminator == "" {
		c.Serial.LineTerminator = constants.DefaultLineTerminator
	}
	if c.Serial.ReadBufferSize == 0 {
		c.Serial.ReadBufferSize = constants.DefaultReadBufferSize
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "serial-echo"
	}
	if c.Services.Heartbeat.IntervalMs == 0 {
		c.Services.Heartbeat.IntervalMs = constants.DefaultHeartbeatInterval
	}
	if c.Services.Heartbeat.Message == "" {
		c.Services.Heartbeat.Message = constants.DefaultHeartbeatMessage
	}
	if c.Services.Telemetry.Topic == "" {
		c.Services.Telemetry.Topic = "serial-echo/events"
	}
	if c.Services.Telemetry.Workers == 0 {
		c.Services.Telemetry.Workers = 1
	}
	if c.Services.Telemetry.QueueSize == 0 {
		c.Services.Telemetry.QueueSize = 64
	}
}

// Validate rejects configurations the agent cannot run with.
func (c *Config) Validate() error {
	if c.Serial.Device == "" {
		return errors.New("serial device must be set")
	}
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Serial.BaudRate)
	}
	if c.Serial.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %s", c.Serial.ReadTimeout)
	}
	if c.Serial.PollInterval < 0 {
		return fmt.Errorf("invalid poll interval %s", c.Serial.PollInterval)
	}
	if c.Serial.ReadBufferSize < 0 {
		return fmt.Errorf("invalid read buffer size %d", c.Serial.ReadBufferSize)
	}
	if c.Services.Telemetry.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("telemetry is enabled but mqtt broker is not set")
		}
		if c.Services.Telemetry.QOS < 0 || c.Services.Telemetry.QOS > 2 {
			return fmt.Errorf("invalid telemetry qos %d", c.Services.Telemetry.QOS)
		}
		if c.Services.Telemetry.Workers < 0 || c.Services.Telemetry.QueueSize < 0 {
			return errors.New("telemetry workers and queue size must not be negative")
		}
	}
	return nil
}
