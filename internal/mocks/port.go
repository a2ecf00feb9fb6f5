package mocks

import "github.com/stretchr/testify/mock"

// Port is a mock implementation of the serial.Port interface
type Port struct {
	mock.Mock
}

func (m *Port) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *Port) Write(p []byte) (int, error) {
	// copy so later reuse of the caller's buffer does not change what was recorded
	buf := append([]byte(nil), p...)
	args := m.Called(buf)
	return args.Int(0), args.Error(1)
}

func (m *Port) Close() error {
	args := m.Called()
	return args.Error(0)
}
