// Package wire defines the HoloPair protocol messages and their encoding.
//
// Each message is one anonymous TLV structure:
//
//	{
//	  0: field (uint)
//	  1: epoch (uint, 32-bit range)
//	  2: value (octet string, data fields only)
//	  3: parameters (structure, parameters field only) {
//	       0: elements (uint)
//	       1: scheme (uint)
//	       2: attack (bool)
//	     }
//	}
//
// On a stream, messages are framed with a 4-byte little-endian length prefix.
package wire

import (
	"fmt"
	"math"

	"github.com/backkem/holopair/pkg/verification"
)

// Field identifies a protocol message.
type Field uint8

const (
	// FieldParameters carries the attempt parameters (Initiator → Responder).
	FieldParameters Field = iota
	// FieldPublicKeyA carries the Initiator's public key.
	FieldPublicKeyA
	// FieldPublicKeyB carries the Responder's public key.
	FieldPublicKeyB
	// FieldCommitHash carries hash(K).
	FieldCommitHash
	// FieldEncryptedSecret carries K sealed to the Responder's key.
	FieldEncryptedSecret
	// FieldFinalAuthTag carries hash(sharedKey).
	FieldFinalAuthTag
	// FieldAbort tells the peer the attempt failed.
	FieldAbort
	// FieldRestart tells the peer to start a new attempt.
	FieldRestart

	fieldCount
)

// String returns the field name used on the channel.
func (f Field) String() string {
	switch f {
	case FieldParameters:
		return "parameters"
	case FieldPublicKeyA:
		return "publicKeyA"
	case FieldPublicKeyB:
		return "publicKeyB"
	case FieldCommitHash:
		return "commitHash"
	case FieldEncryptedSecret:
		return "encryptedSecret"
	case FieldFinalAuthTag:
		return "finalAuthTag"
	case FieldAbort:
		return "abort"
	case FieldRestart:
		return "restart"
	default:
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f < fieldCount
}

// IsSignal reports whether f is a control signal without payload.
func (f Field) IsSignal() bool {
	return f == FieldAbort || f == FieldRestart
}

// HasValue reports whether f carries an octet string payload.
func (f Field) HasValue() bool {
	return f.Valid() && f != FieldParameters && !f.IsSignal()
}

// Parameters are the per-attempt settings chosen by the Initiator.
type Parameters struct {
	// Elements is the number of artifact elements (cells or points).
	Elements int
	// Scheme is the verification artifact variant.
	Scheme verification.Scheme
	// Attack marks an attack simulation attempt.
	Attack bool
}

// Validate checks the parameters are usable.
func (p Parameters) Validate() error {
	if _, err := verification.ParseScheme(p.Scheme.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if err := p.Scheme.CheckElements(p.Elements); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return nil
}

// Message is a single protocol message.
type Message struct {
	Field  Field
	Epoch  uint32
	Value  []byte
	Params *Parameters
}

// Validate checks the message shape for its field.
func (m *Message) Validate() error {
	switch {
	case !m.Field.Valid():
		return fmt.Errorf("%w: %d", ErrInvalidField, uint8(m.Field))
	case m.Field == FieldParameters:
		if m.Params == nil {
			return fmt.Errorf("%w: missing", ErrInvalidParameters)
		}
		return m.Params.Validate()
	case m.Field.IsSignal():
		if len(m.Value) != 0 || m.Params != nil {
			return fmt.Errorf("%w: %s", ErrUnexpectedValue, m.Field)
		}
	default:
		if len(m.Value) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingValue, m.Field)
		}
	}
	return nil
}

// String returns a short description that never includes the payload.
func (m *Message) String() string {
	if m.Params != nil {
		return fmt.Sprintf("%s[epoch=%d n=%d scheme=%s attack=%t]",
			m.Field, m.Epoch, m.Params.Elements, m.Params.Scheme, m.Params.Attack)
	}
	return fmt.Sprintf("%s[epoch=%d len=%d]", m.Field, m.Epoch, len(m.Value))
}

// Context tags.
const (
	tagField  = 0
	tagEpoch  = 1
	tagValue  = 2
	tagParams = 3

	tagParamElements = 0
	tagParamScheme   = 1
	tagParamAttack   = 2
)

// Encode validates and serializes the message.
func (m *Message) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var e encoder
	e.startStruct(anonymous)
	e.putUint(tagField, uint64(m.Field))
	e.putUint(tagEpoch, uint64(m.Epoch))
	if m.Field.HasValue() {
		if err := e.putBytes(tagValue, m.Value); err != nil {
			return nil, err
		}
	}
	if m.Params != nil {
		e.startStruct(tagParams)
		e.putUint(tagParamElements, uint64(m.Params.Elements))
		e.putUint(tagParamScheme, uint64(m.Params.Scheme))
		e.putBool(tagParamAttack, m.Params.Attack)
		e.endContainer()
	}
	e.endContainer()

	return e.bytes()
}

// Decode parses and validates a message. Unknown context tags are skipped.
func Decode(data []byte) (*Message, error) {
	d := &decoder{data: data}

	el, err := d.next()
	if err != nil {
		return nil, err
	}
	if el.typ != typeStruct || el.tag != anonymous {
		return nil, fmt.Errorf("%w: top level %s", ErrTypeMismatch, el.typ)
	}

	m := &Message{}
	haveField := false
	for {
		if d.done() {
			return nil, ErrContainerNotClosed
		}
		el, err := d.next()
		if err != nil {
			return nil, err
		}
		if el.typ == typeEnd {
			break
		}

		switch el.tag {
		case tagField:
			if !el.typ.isUint() {
				return nil, fmt.Errorf("%w: field is %s", ErrTypeMismatch, el.typ)
			}
			if el.uint >= uint64(fieldCount) {
				return nil, fmt.Errorf("%w: %d", ErrInvalidField, el.uint)
			}
			m.Field = Field(el.uint)
			haveField = true
		case tagEpoch:
			if !el.typ.isUint() {
				return nil, fmt.Errorf("%w: epoch is %s", ErrTypeMismatch, el.typ)
			}
			if el.uint > math.MaxUint32 {
				return nil, ErrOverflow
			}
			m.Epoch = uint32(el.uint)
		case tagValue:
			if !el.typ.isBytes() {
				return nil, fmt.Errorf("%w: value is %s", ErrTypeMismatch, el.typ)
			}
			m.Value = append([]byte(nil), el.value...)
		case tagParams:
			if el.typ != typeStruct {
				return nil, fmt.Errorf("%w: params is %s", ErrTypeMismatch, el.typ)
			}
			if m.Params, err = decodeParams(d); err != nil {
				return nil, err
			}
		default:
			if el.typ == typeStruct {
				if err := d.skipContainer(); err != nil {
					return nil, err
				}
			}
		}
	}

	if !d.done() {
		return nil, ErrTrailingData
	}
	if !haveField {
		return nil, fmt.Errorf("%w: missing", ErrInvalidField)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeParams(d *decoder) (*Parameters, error) {
	p := &Parameters{}
	for {
		if d.done() {
			return nil, ErrContainerNotClosed
		}
		el, err := d.next()
		if err != nil {
			return nil, err
		}

		switch {
		case el.typ == typeEnd:
			return p, nil
		case el.tag == tagParamElements && el.typ.isUint():
			if el.uint > math.MaxInt32 {
				return nil, ErrOverflow
			}
			p.Elements = int(el.uint)
		case el.tag == tagParamScheme && el.typ.isUint():
			if el.uint > math.MaxInt32 {
				return nil, ErrOverflow
			}
			p.Scheme = verification.Scheme(el.uint)
		case el.tag == tagParamAttack && el.typ.isBool():
			p.Attack = el.boolean()
		case el.tag <= tagParamAttack:
			return nil, fmt.Errorf("%w: param %d is %s", ErrTypeMismatch, el.tag, el.typ)
		case el.typ == typeStruct:
			if err := d.skipContainer(); err != nil {
				return nil, err
			}
		}
	}
}
