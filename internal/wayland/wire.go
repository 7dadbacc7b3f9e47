package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire format: every message starts with the object id followed by a word
// holding size<<16 | opcode, both in host byte order. Arguments are 32-bit
// words; strings carry a length including the NUL and are padded to 4 bytes.

const headerSize = 8

var errShortMessage = errors.New("message truncated")

var order = binary.NativeEndian

type message struct {
	sender uint32
	opcode uint16
	body   []byte
}

type encoder struct {
	buf []byte
}

func newMessage(object uint32, opcode uint16) *encoder {
	e := &encoder{buf: make([]byte, headerSize, 64)}
	order.PutUint32(e.buf[0:], object)
	order.PutUint32(e.buf[4:], uint32(opcode))
	return e
}

func (e *encoder) u32(v uint32) *encoder {
	e.buf = order.AppendUint32(e.buf, v)
	return e
}

func (e *encoder) i32(v int32) *encoder {
	return e.u32(uint32(v))
}

func (e *encoder) str(s string) *encoder {
	e.u32(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
	return e
}

// bytes returns the finished message with its size filled in.
func (e *encoder) bytes() []byte {
	word := order.Uint32(e.buf[4:])
	order.PutUint32(e.buf[4:], uint32(len(e.buf))<<16|word&0xffff)
	return e.buf
}

type decoder struct {
	body []byte
	off  int
	err  error
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	if d.off+4 > len(d.body) {
		d.err = errShortMessage
		return 0
	}
	v := order.Uint32(d.body[d.off:])
	d.off += 4
	return v
}

func (d *decoder) i32() int32 {
	return int32(d.u32())
}

func (d *decoder) str() string {
	n := int(d.u32())
	if d.err != nil || n == 0 {
		return ""
	}
	padded := (n + 3) &^ 3
	if d.off+padded > len(d.body) {
		d.err = errShortMessage
		return ""
	}
	s := d.body[d.off : d.off+n-1]
	d.off += padded
	return string(s)
}

func parseHeader(h []byte) (sender uint32, opcode uint16, size int, err error) {
	sender = order.Uint32(h[0:])
	word := order.Uint32(h[4:])
	size = int(word >> 16)
	if size < headerSize {
		return 0, 0, 0, fmt.Errorf("invalid message size %d", size)
	}
	return sender, uint16(word & 0xffff), size, nil
}
