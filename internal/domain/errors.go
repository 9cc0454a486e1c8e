package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBusy         = errors.New("operation already in progress")
	ErrCancelled    = errors.New("connection attempt cancelled")
	ErrNotConnected = errors.New("not connected")
	ErrNotPresenter = errors.New("only a presenter can publish media")
	ErrReleased     = errors.New("local media already released")
)

// ConfigError is returned before any transport call when parameters are incomplete.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing connection parameters: " + strings.Join(e.Missing, ", ")
}

// TransportError wraps a join/leave/publish/unpublish failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DeviceError wraps a camera, microphone or screen acquisition failure.
type DeviceError struct {
	Source TrackSource
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s device: %v", e.Source, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}
