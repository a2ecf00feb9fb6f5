package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PollingLoop runs the echo and heartbeat checks, one after the other, on a single goroutine.
type PollingLoop struct {
	echo      *EchoHandler
	heartbeat *HeartbeatEmitter
	idle      time.Duration
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollingLoop creates a PollingLoop. idle is slept after every iteration in which
// nothing was echoed; it may be zero when the port's read timeout already paces the loop.
func NewPollingLoop(echo *EchoHandler, heartbeat *HeartbeatEmitter, idle time.Duration, logger zerolog.Logger) *PollingLoop {
	return &PollingLoop{
		echo:      echo,
		heartbeat: heartbeat,
		idle:      idle,
		logger:    logger,
	}
}

// Start launches the loop in a separate goroutine.
func (p *PollingLoop) Start() error {
	if p.ctx != nil {
		p.logger.Warn().Msg("PollingLoop is already running")
		return errors.New("polling loop is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.ctx, p.cancel = ctx, cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()

	p.logger.Info().Dur("idle", p.idle).Msg("PollingLoop started successfully")
	return nil
}

// Stop gracefully stops the loop after the current iteration.
func (p *PollingLoop) Stop() error {
	if p.ctx == nil {
		p.logger.Warn().Msg("PollingLoop is not running")
		return errors.New("polling loop is not running")
	}

	p.cancel()
	p.wg.Wait()

	p.ctx = nil
	p.cancel = nil

	p.logger.Info().Msg("PollingLoop stopped successfully")
	return nil
}

// Tick performs a single iteration: echo pending input, then heartbeat if due.
// It reports whether any input was echoed. Errors are logged, never fatal.
func (p *PollingLoop) Tick() bool {
	n, err := p.echo.Poll()
	if err != nil {
		p.logger.Error().Err(err).Msg("Echo failed")
	}

	if _, err := p.heartbeat.Check(); err != nil {
		p.logger.Error().Err(err).Msg("Heartbeat failed")
	}

	return n > 0
}

func (p *PollingLoop) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("PollingLoop stopping gracefully")
			return
		default:
		}

		if echoed := p.Tick(); !echoed && p.idle > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.idle):
			}
		}
	}
}
