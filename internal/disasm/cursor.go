package disasm

import (
	"bytes"
	"fmt"
)

// Cursor walks a read-only byte buffer. Its position only moves forward and
// never passes the end of the buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the offset of the next unread byte.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Done reports whether every byte has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.buf) }

// ReadByte consumes one byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, fmt.Errorf("need 1 byte at offset %d: %w", c.pos, ErrTruncatedInput)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadN consumes exactly n bytes. The result aliases the buffer. On
// truncation nothing is consumed.
func (c *Cursor) ReadN(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w",
			n, c.pos, len(c.buf)-c.pos, ErrTruncatedInput)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadWord consumes a little-endian 16-bit value.
func (c *Cursor) ReadWord() (uint16, error) {
	b, err := c.ReadN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// span returns a copy of the bytes between start and the current position.
func (c *Cursor) span(start int) []byte {
	return bytes.Clone(c.buf[start:c.pos])
}
