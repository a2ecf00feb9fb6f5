package models

import "time"

// Event is a telemetry record describing something the polling loop wrote to the serial port.
type Event struct {
	Type      string    `json:"type"`
	UptimeMs  uint32    `json:"uptime_ms"`
	Timestamp time.Time `json:"timestamp"`
	Bytes     int       `json:"bytes"`
	Payload   []byte    `json:"payload,omitempty"` // base64 in JSON, so binary input survives intact
}
