package pairing

import "errors"

// Pairing errors.
var (
	// ErrCommitmentMismatch is returned when the revealed secret or the final
	// tag does not match what the peer committed to.
	ErrCommitmentMismatch = errors.New("pairing: commitment mismatch")

	// ErrUnexpectedConfirmation is returned for a human confirmation that the
	// session is not waiting for.
	ErrUnexpectedConfirmation = errors.New("pairing: unexpected confirmation")

	// ErrTimeout is returned when an attempt made no progress in time.
	ErrTimeout = errors.New("pairing: step timeout")

	// ErrInvalidConfig is returned for an unusable session configuration.
	ErrInvalidConfig = errors.New("pairing: invalid config")

	// ErrPairingFailed is the user-visible error for an attempt that failed
	// for an internal reason.
	ErrPairingFailed = errors.New("pairing: pairing failed")

	// ErrUserAbort is the cause recorded for a local Abort.
	ErrUserAbort = errors.New("pairing: aborted by user")

	// ErrPeerAbort is the cause recorded when the peer aborted.
	ErrPeerAbort = errors.New("pairing: aborted by peer")

	// ErrNotInitiator is returned for operations only the Initiator may perform.
	ErrNotInitiator = errors.New("pairing: initiator only")

	// ErrDisconnected is returned when the message channel ended.
	ErrDisconnected = errors.New("pairing: channel disconnected")
)
