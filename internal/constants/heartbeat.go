package constants

const (
	// DefaultHeartbeatInterval is the minimum uptime, in milliseconds, between heartbeats.
	DefaultHeartbeatInterval uint32 = 5000

	// DefaultHeartbeatMessage is written on its own line every heartbeat.
	DefaultHeartbeatMessage = "Connection Check"
)

// Telemetry event types
const (
	// EventHeartbeat is published after a heartbeat line was written
	EventHeartbeat = "heartbeat"
	// EventEcho is published after an input chunk was echoed
	EventEcho = "echo"
)
