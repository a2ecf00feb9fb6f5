package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/serial-echo/internal/mocks"
	"github.com/benmeehan/serial-echo/internal/utils"
	"github.com/benmeehan/serial-echo/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	mockFile := new(mocks.FileOperations)
	mockFile.On("IsFileExists", "configs/config.yaml").Return(false, nil)

	config, err := utils.LoadConfig("configs/config.yaml", mockFile)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", config.Serial.Device)
	assert.Equal(t, 115200, config.Serial.BaudRate)
	assert.Equal(t, 10*time.Millisecond, config.Serial.ReadTimeout)
	assert.Equal(t, "\n", config.Serial.LineTerminator)
	assert.Equal(t, uint32(5000), config.Services.Heartbeat.IntervalMs)
	assert.Equal(t, "Connection Check", config.Services.Heartbeat.Message)
	assert.False(t, config.Services.Telemetry.Enabled)
	mockFile.AssertNotCalled(t, "ReadYamlFile", mock.Anything, mock.Anything)
}

func TestLoadConfig_FromYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
log_level: debug
serial:
  device: /dev/ttyACM0
  baud_rate: 9600
  read_timeout: 25ms
  line_terminator: "\r\n"
services:
  heartbeat:
    interval_ms: 1000
mqtt:
  broker: tcp://localhost:1883
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	config, err := utils.LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "/dev/ttyACM0", config.Serial.Device)
	assert.Equal(t, 9600, config.Serial.BaudRate)
	assert.Equal(t, 25*time.Millisecond, config.Serial.ReadTimeout)
	assert.Equal(t, "\r\n", config.Serial.LineTerminator)
	assert.Equal(t, uint32(1000), config.Services.Heartbeat.IntervalMs)
	assert.Equal(t, "Connection Check", config.Services.Heartbeat.Message)
	assert.Equal(t, "tcp://localhost:1883", config.MQTT.Broker)
}

func TestLoadConfig_StatError(t *testing.T) {
	mockFile := new(mocks.FileOperations)
	mockFile.On("IsFileExists", "config.yaml").Return(false, errors.New("permission denied"))

	config, err := utils.LoadConfig("config.yaml", mockFile)

	assert.Nil(t, config)
	assert.ErrorContains(t, err, "permission denied")
}

func TestLoadConfig_ParseError(t *testing.T) {
	mockFile := new(mocks.FileOperations)
	mockFile.On("IsFileExists", "config.yaml").Return(true, nil)
	mockFile.On("ReadYamlFile", "config.yaml", mock.Anything).Return(errors.New("yaml: line 3: mapping values are not allowed"))

	config, err := utils.LoadConfig("config.yaml", mockFile)

	assert.Nil(t, config)
	assert.ErrorContains(t, err, "failed to parse config file config.yaml")
}

func TestConfig_Validate(t *testing.T) {
	config := utils.DefaultConfig()
	assert.NoError(t, config.Validate())

	config.Serial.BaudRate = -1
	assert.EqualError(t, config.Validate(), "invalid baud rate -1")

	config = utils.DefaultConfig()
	config.Services.Telemetry.Enabled = true
	assert.EqualError(t, config.Validate(), "telemetry is enabled but mqtt broker is not set")

	config.MQTT.Broker = "tcp://localhost:1883"
	config.Services.Telemetry.QOS = 3
	assert.EqualError(t, config.Validate(), "invalid telemetry qos 3")

	config.Services.Telemetry.QOS = 1
	assert.NoError(t, config.Validate())
}
