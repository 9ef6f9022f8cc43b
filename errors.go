package datachannel

import (
	"errors"
	"fmt"
)

// InvalidArgumentError indicates open_channel (or another API call) was
// given an argument combination the core rejects outright, before any
// channel table or transport state is touched.
type InvalidArgumentError struct{ Err error }

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("datachannel: InvalidArgument: %v", e.Err)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// Causes wrapped by InvalidArgumentError.
var (
	ErrBadPolicyValue  = errors.New("RELIABLE policy requires value == 0")
	ErrBadChannelID    = errors.New("channel id out of range")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ResourceError indicates the channel table is exhausted. Running out of
// outbound streams is not an error: the channel waits in CONNECTING.
type ResourceError struct{ Err error }

func (e *ResourceError) Error() string {
	return fmt.Sprintf("datachannel: ResourceExhausted: %v", e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ErrNoFreeChannel indicates every slot in the channel table is CONNECTING,
// OPEN, or CLOSING. Wrapped by ResourceError.
var ErrNoFreeChannel = errors.New("no free channel")

// StateError indicates an API call against a channel that is not in the
// state the call requires.
type StateError struct{ Err error }

func (e *StateError) Error() string {
	return fmt.Sprintf("datachannel: InvalidState: %v", e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// ErrChannelNotOpen is wrapped by StateError.
var ErrChannelNotOpen = errors.New("channel is not CONNECTING or OPEN")

// TransportError wraps a failure returned by the Transport the core drives
// (send, add-streams, reset).
type TransportError struct{ Err error }

func (e *TransportError) Error() string {
	return fmt.Sprintf("datachannel: TransportError: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrProtocolViolation marks a received control message inconsistent with
// the current channel table state (e.g. an OpenResponse for an unbound
// outbound stream, or a collision on an already-bound inbound stream). Never
// surfaced to an API caller: the receive path logs it and drops the message.
var ErrProtocolViolation = errors.New("datachannel: protocol violation")
