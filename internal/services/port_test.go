package services_test

import (
	"bytes"
	"io"
	"sync"
)

// scriptedPort hands out queued input chunks and records everything written.
type scriptedPort struct {
	mu      sync.Mutex
	pending [][]byte
	out     bytes.Buffer
	writes  [][]byte
}

func (s *scriptedPort) feed(chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.pending = append(s.pending, []byte(c))
	}
}

// Read behaves like a serial port with a read timeout: one queued chunk per
// call, then io.EOF once the queue is empty.
func (s *scriptedPort) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.pending[0])
	if n < len(s.pending[0]) {
		s.pending[0] = s.pending[0][n:]
	} else {
		s.pending = s.pending[1:]
	}
	return n, nil
}

func (s *scriptedPort) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, append([]byte(nil), p...))
	return s.out.Write(p)
}

func (s *scriptedPort) Close() error { return nil }

func (s *scriptedPort) output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

func (s *scriptedPort) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}
