package wire

import (
	"bytes"
	"encoding/binary"
	"math"
)

// elementType is the lower 5 bits of a control octet. Only the subset the
// protocol uses is supported.
type elementType byte

const (
	typeUInt8  elementType = 0x04
	typeUInt16 elementType = 0x05
	typeUInt32 elementType = 0x06
	typeUInt64 elementType = 0x07
	typeFalse  elementType = 0x08
	typeTrue   elementType = 0x09
	typeBytes1 elementType = 0x10
	typeBytes2 elementType = 0x11
	typeStruct elementType = 0x15
	typeEnd    elementType = 0x18
)

func (e elementType) String() string {
	switch e {
	case typeUInt8:
		return "UInt8"
	case typeUInt16:
		return "UInt16"
	case typeUInt32:
		return "UInt32"
	case typeUInt64:
		return "UInt64"
	case typeFalse:
		return "False"
	case typeTrue:
		return "True"
	case typeBytes1:
		return "Bytes1"
	case typeBytes2:
		return "Bytes2"
	case typeStruct:
		return "Struct"
	case typeEnd:
		return "EndOfContainer"
	default:
		return "Unknown"
	}
}

func (e elementType) isUint() bool {
	return e >= typeUInt8 && e <= typeUInt64
}

func (e elementType) isBool() bool {
	return e == typeFalse || e == typeTrue
}

func (e elementType) isBytes() bool {
	return e == typeBytes1 || e == typeBytes2
}

// Control octet layout.
const (
	elementTypeMask = 0x1F
	tagControlShift = 5

	tagControlAnonymous = 0
	tagControlContext   = 1
)

// anonymous marks an element without a tag.
const anonymous = -1

func controlOctet(t elementType, tag int) byte {
	if tag == anonymous {
		return byte(t)
	}
	return byte(t) | tagControlContext<<tagControlShift
}

// encoder appends TLV elements to a buffer.
type encoder struct {
	buf   bytes.Buffer
	depth int
}

func (e *encoder) header(t elementType, tag int) {
	e.buf.WriteByte(controlOctet(t, tag))
	if tag != anonymous {
		e.buf.WriteByte(byte(tag))
	}
}

// putUint writes v in the smallest width that holds it.
func (e *encoder) putUint(tag int, v uint64) {
	var b [8]byte
	switch {
	case v <= math.MaxUint8:
		e.header(typeUInt8, tag)
		e.buf.WriteByte(byte(v))
	case v <= math.MaxUint16:
		e.header(typeUInt16, tag)
		binary.LittleEndian.PutUint16(b[:2], uint16(v))
		e.buf.Write(b[:2])
	case v <= math.MaxUint32:
		e.header(typeUInt32, tag)
		binary.LittleEndian.PutUint32(b[:4], uint32(v))
		e.buf.Write(b[:4])
	default:
		e.header(typeUInt64, tag)
		binary.LittleEndian.PutUint64(b[:], v)
		e.buf.Write(b[:])
	}
}

func (e *encoder) putBool(tag int, v bool) {
	if v {
		e.header(typeTrue, tag)
		return
	}
	e.header(typeFalse, tag)
}

func (e *encoder) putBytes(tag int, v []byte) error {
	switch {
	case len(v) <= math.MaxUint8:
		e.header(typeBytes1, tag)
		e.buf.WriteByte(byte(len(v)))
	case len(v) <= math.MaxUint16:
		e.header(typeBytes2, tag)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(len(v)))
		e.buf.Write(b[:])
	default:
		return ErrValueTooLong
	}
	e.buf.Write(v)
	return nil
}

func (e *encoder) startStruct(tag int) {
	e.header(typeStruct, tag)
	e.depth++
}

func (e *encoder) endContainer() {
	e.buf.WriteByte(byte(typeEnd))
	e.depth--
}

func (e *encoder) bytes() ([]byte, error) {
	if e.depth != 0 {
		return nil, ErrContainerNotClosed
	}
	return e.buf.Bytes(), nil
}

// element is one decoded TLV element.
type element struct {
	typ   elementType
	tag   int
	uint  uint64
	value []byte
}

func (el element) boolean() bool {
	return el.typ == typeTrue
}

// decoder walks TLV elements in a byte slice.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) done() bool {
	return d.pos >= len(d.data)
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, ErrUnexpectedEOF
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// next decodes the element at the cursor.
func (d *decoder) next() (element, error) {
	ctrl, err := d.take(1)
	if err != nil {
		return element{}, err
	}

	el := element{typ: elementType(ctrl[0] & elementTypeMask), tag: anonymous}
	switch ctrl[0] >> tagControlShift {
	case tagControlAnonymous:
	case tagControlContext:
		t, err := d.take(1)
		if err != nil {
			return element{}, err
		}
		el.tag = int(t[0])
	default:
		return element{}, ErrInvalidTagControl
	}

	switch el.typ {
	case typeUInt8, typeUInt16, typeUInt32, typeUInt64:
		size := 1 << (el.typ - typeUInt8)
		b, err := d.take(size)
		if err != nil {
			return element{}, err
		}
		var full [8]byte
		copy(full[:], b)
		el.uint = binary.LittleEndian.Uint64(full[:])
	case typeBytes1, typeBytes2:
		size := 1 << (el.typ - typeBytes1)
		b, err := d.take(size)
		if err != nil {
			return element{}, err
		}
		var full [2]byte
		copy(full[:], b)
		n := int(binary.LittleEndian.Uint16(full[:]))
		if el.value, err = d.take(n); err != nil {
			return element{}, err
		}
	case typeFalse, typeTrue, typeStruct, typeEnd:
	default:
		return element{}, ErrInvalidElementType
	}

	return el, nil
}

// skipContainer consumes elements up to and including the end marker of the
// container that was just entered.
func (d *decoder) skipContainer() error {
	depth := 1
	for depth > 0 {
		if d.done() {
			return ErrContainerNotClosed
		}
		el, err := d.next()
		if err != nil {
			return err
		}
		switch el.typ {
		case typeStruct:
			depth++
		case typeEnd:
			depth--
		}
	}
	return nil
}
