package wire

import "github.com/pkg/errors"

// Errors returned by Decode and the per-message Unmarshal methods.
var (
	// ErrTruncatedMessage indicates the buffer was shorter than the fixed
	// prefix required for the message's tag.
	ErrTruncatedMessage = errors.New("wire: truncated control message")

	// ErrUnknownMessageType indicates the first byte did not match any of
	// {OpenRequest, OpenResponse, Ack}.
	ErrUnknownMessageType = errors.New("wire: unknown control message type")
)
