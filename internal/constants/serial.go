package constants

import "time"

const (
	// DefaultDevice is the serial device opened when none is configured.
	DefaultDevice = "/dev/ttyUSB0"

	// DefaultBaudRate is the serial line speed.
	DefaultBaudRate = 115200

	// DefaultReadTimeout bounds how long a single poll waits for input.
	DefaultReadTimeout = 10 * time.Millisecond

	// DefaultLineTerminator is appended to every echoed chunk and heartbeat.
	DefaultLineTerminator = "\n"

	// DefaultReadBufferSize is how many bytes a single port read asks for.
	DefaultReadBufferSize = 4096
)
