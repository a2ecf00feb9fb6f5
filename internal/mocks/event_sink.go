package mocks

import (
	"github.com/benmeehan/serial-echo/internal/models"
	"github.com/stretchr/testify/mock"
)

// EventSink is a mock implementation of the services.EventSink interface
type EventSink struct {
	mock.Mock
}

func (m *EventSink) Publish(event models.Event) {
	m.Called(event)
}
