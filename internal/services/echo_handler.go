package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benmeehan/serial-echo/internal/clock"
	"github.com/benmeehan/serial-echo/internal/constants"
	"github.com/benmeehan/serial-echo/internal/models"
	"github.com/benmeehan/serial-echo/pkg/serial"
	"github.com/rs/zerolog"
)

// EchoHandler writes every chunk of input back to the port it came from.
type EchoHandler struct {
	port       io.ReadWriter
	terminator []byte
	scratch    []byte
	chunk      bytes.Buffer

	clock  clock.Clock
	sink   EventSink
	logger zerolog.Logger
}

// NewEchoHandler creates an EchoHandler. readSize is the size of a single port read;
// a chunk may span any number of reads. sink may be nil.
func NewEchoHandler(port io.ReadWriter, terminator string, readSize int, clk clock.Clock,
	sink EventSink, logger zerolog.Logger) *EchoHandler {
	if readSize <= 0 {
		readSize = constants.DefaultReadBufferSize
	}

	return &EchoHandler{
		port:       port,
		terminator: []byte(terminator),
		scratch:    make([]byte, readSize),
		clock:      clk,
		sink:       sink,
		logger:     logger,
	}
}

// Poll drains everything currently buffered on the port and writes it back
// followed by the line terminator. It returns the number of input bytes echoed;
// zero means there was nothing to read.
func (e *EchoHandler) Poll() (int, error) {
	e.chunk.Reset()

	readErr := e.drain()
	n := e.chunk.Len()
	if n == 0 {
		return 0, readErr
	}

	e.chunk.Write(e.terminator)
	if _, err := e.port.Write(e.chunk.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to echo %d bytes: %w", n, err)
	}

	e.logger.Debug().Int("bytes", n).Msg("Echoed input chunk")
	e.publish(e.chunk.Bytes()[:n])

	return n, readErr
}

// drain reads until the port reports nothing more is available.
func (e *EchoHandler) drain() error {
	for {
		n, err := e.port.Read(e.scratch)
		e.chunk.Write(e.scratch[:n])
		if serial.NothingAvailable(n, err) {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read from serial port: %w", err)
		}
	}
}

func (e *EchoHandler) publish(data []byte) {
	if e.sink == nil {
		return
	}
	e.sink.Publish(models.Event{
		Type:      constants.EventEcho,
		UptimeMs:  e.clock.Millis(),
		Timestamp: time.Now().UTC(),
		Bytes:     len(data),
		Payload:   append([]byte(nil), data...),
	})
}
