package services

import "github.com/benmeehan/serial-echo/internal/models"

// EventSink receives a record of everything the polling loop writes.
// Publish must not block the caller.
type EventSink interface {
	Publish(event models.Event)
}
