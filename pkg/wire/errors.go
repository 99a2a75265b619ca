package wire

import "errors"

var (
	// ErrUnexpectedEOF is returned when the input ends in the middle of an element.
	ErrUnexpectedEOF = errors.New("wire: unexpected end of input")

	// ErrInvalidElementType is returned for control octets outside the supported subset.
	ErrInvalidElementType = errors.New("wire: invalid element type")

	// ErrInvalidTagControl is returned for tag forms other than anonymous and context.
	ErrInvalidTagControl = errors.New("wire: invalid tag control")

	// ErrTypeMismatch is returned when a field carries an unexpected element type.
	ErrTypeMismatch = errors.New("wire: type mismatch")

	// ErrContainerNotClosed is returned when a structure has no end marker.
	ErrContainerNotClosed = errors.New("wire: container not closed")

	// ErrTrailingData is returned when bytes follow the top-level structure.
	ErrTrailingData = errors.New("wire: trailing data")

	// ErrOverflow is returned when an integer does not fit its field.
	ErrOverflow = errors.New("wire: value overflow")

	// ErrValueTooLong is returned when an octet string exceeds 65535 bytes.
	ErrValueTooLong = errors.New("wire: value too long")

	// ErrInvalidField is returned for an unknown protocol field.
	ErrInvalidField = errors.New("wire: invalid field")

	// ErrMissingValue is returned when a data field has no payload.
	ErrMissingValue = errors.New("wire: missing value")

	// ErrUnexpectedValue is returned when a signal field carries a payload.
	ErrUnexpectedValue = errors.New("wire: unexpected value")

	// ErrInvalidParameters is returned when pairing parameters are absent or out of range.
	ErrInvalidParameters = errors.New("wire: invalid parameters")

	// ErrEmptyFrame is returned for a zero length prefix.
	ErrEmptyFrame = errors.New("wire: empty frame")

	// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame too large")

	// ErrStreamReadFailed is returned when a stream ends inside a frame.
	ErrStreamReadFailed = errors.New("wire: stream read failed")
)
