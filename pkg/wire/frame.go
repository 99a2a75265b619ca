package wire

import (
	"encoding/binary"
	"io"
)

// Stream framing constants.
const (
	LengthPrefixSize = 4
	MaxFrameSize     = 64 * 1024
)

// StreamWriter wraps an io.Writer to add length-prefix framing.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates a new stream writer.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write writes a frame with a 4-byte little-endian length prefix.
// Prefix and payload go out in a single write.
func (sw *StreamWriter) Write(frame []byte) (int, error) {
	if len(frame) == 0 {
		return 0, ErrEmptyFrame
	}
	if len(frame) > MaxFrameSize {
		return 0, ErrFrameTooLarge
	}
	return sw.w.Write(EncodeWithLengthPrefix(frame))
}

// WriteMessage encodes and writes a message.
func (sw *StreamWriter) WriteMessage(m *Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	_, err = sw.Write(data)
	return err
}

// StreamReader wraps an io.Reader to read length-prefixed frames.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader creates a new stream reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Read reads one frame and returns it without the length prefix.
// Returns io.EOF when the stream ends cleanly between frames.
func (sr *StreamReader) Read() ([]byte, error) {
	var lenBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(sr.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, ErrStreamReadFailed
	}

	frameLen := binary.LittleEndian.Uint32(lenBuf[:])
	if frameLen == 0 {
		return nil, ErrEmptyFrame
	}
	if frameLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(sr.r, frame); err != nil {
		return nil, ErrStreamReadFailed
	}
	return frame, nil
}

// ReadMessage reads and decodes one message.
func (sr *StreamReader) ReadMessage() (*Message, error) {
	data, err := sr.Read()
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// EncodeWithLengthPrefix adds a 4-byte length prefix to frame data.
func EncodeWithLengthPrefix(frame []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(frame))
	binary.LittleEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(frame)))
	copy(buf[LengthPrefixSize:], frame)
	return buf
}
