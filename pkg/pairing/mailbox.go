package pairing

import (
	"github.com/backkem/holopair/pkg/latch"
	"github.com/backkem/holopair/pkg/wire"
)

// mailbox holds the inbound protocol fields of one attempt. Each field
// latches its first value.
type mailbox struct {
	parameters      latch.Cell[Parameters]
	publicKeyA      latch.Cell[[]byte]
	publicKeyB      latch.Cell[[]byte]
	commitHash      latch.Cell[[]byte]
	encryptedSecret latch.Cell[[]byte]
	finalAuthTag    latch.Cell[[]byte]
}

// cell returns the byte-valued cell for f, or nil.
func (m *mailbox) cell(f wire.Field) *latch.Cell[[]byte] {
	switch f {
	case wire.FieldPublicKeyA:
		return &m.publicKeyA
	case wire.FieldPublicKeyB:
		return &m.publicKeyB
	case wire.FieldCommitHash:
		return &m.commitHash
	case wire.FieldEncryptedSecret:
		return &m.encryptedSecret
	case wire.FieldFinalAuthTag:
		return &m.finalAuthTag
	default:
		return nil
	}
}

// store latches the message payload and reports whether it was new.
func (m *mailbox) store(msg *wire.Message) bool {
	if msg.Field == wire.FieldParameters {
		if msg.Params == nil {
			return false
		}
		return m.parameters.TrySet(*msg.Params)
	}
	c := m.cell(msg.Field)
	if c == nil {
		return false
	}
	return c.TrySet(append([]byte(nil), msg.Value...))
}

// get returns a copy of a byte-valued field.
func (m *mailbox) get(f wire.Field) ([]byte, bool) {
	c := m.cell(f)
	if c == nil {
		return nil, false
	}
	v, ok := c.Get()
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (m *mailbox) has(f wire.Field) bool {
	if f == wire.FieldParameters {
		return m.parameters.IsSet()
	}
	c := m.cell(f)
	return c != nil && c.IsSet()
}

func (m *mailbox) reset() {
	m.parameters.Reset()
	m.publicKeyA.Reset()
	m.publicKeyB.Reset()
	m.commitHash.Reset()
	m.encryptedSecret.Reset()
	m.finalAuthTag.Reset()
}
