package channel

import "errors"

// Channel errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed channel.
	ErrClosed = errors.New("channel: closed")

	// ErrSendFailed is returned when a message could not be written.
	ErrSendFailed = errors.New("channel: send failed")
)
