package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is an open serial channel.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	Device      string        // Device path, e.g. "/dev/ttyUSB0" or "COM3"
	Baud        int           // Line speed
	ReadTimeout time.Duration // How long a read waits for input (0 = block)
}

// Open opens a native serial port.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, errors.New("serial device is not set")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return port, nil
}

// NothingAvailable reports whether a read result means no input was buffered.
// With a read timeout set, the driver returns either (0, nil) or (0, io.EOF)
// when the timeout expires without data.
func NothingAvailable(n int, err error) bool {
	return n == 0 && (err == nil || errors.Is(err, io.EOF))
}
