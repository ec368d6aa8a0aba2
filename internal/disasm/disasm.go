// Package disasm decodes 8086 MOV instructions from raw machine code into
// nasm-compatible assembly text.
//
// Instruction layout (Intel 8086 Family User's Manual, table 4-12):
//
//	[opcode|d|w] [mod|reg|r/m] [disp-lo] [disp-hi] [data-lo] [data-hi]
//
// Multi-byte fields are little endian.
package disasm

import (
	"fmt"
	"strings"
)

// Inst is a decoded instruction.
type Inst struct {
	Offset  int     // offset of the first byte in the input
	Raw     []byte  // instruction bytes, copied from the input
	Variant Variant // encoding
	Mode    Mode    // addressing mode of the r/m operand
	Op      string  // mnemonic in lowercase
	Dst     string  // destination operand
	Src     string  // source operand
	Text    string  // formatted instruction, no trailing newline
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Text concatenates every instruction line, each terminated by a newline.
func (s Stream) Text() string {
	var sb strings.Builder
	for _, inst := range s {
		sb.WriteString(inst.Line())
	}
	return sb.String()
}

// Lines returns the instruction texts.
func (s Stream) Lines() []string {
	lines := make([]string, len(s))
	for i, inst := range s {
		lines[i] = inst.Text
	}
	return lines
}

// Options tune the decoder output.
type Options struct {
	// SignedDisplacement renders displacements as signed values, the way
	// the CPU applies them. The default renders them unsigned.
	SignedDisplacement bool
}

// Decoder turns one buffer into a Stream. A Decoder holds no state between
// calls to Decode, so one value may be used for many buffers, and separate
// goroutines may decode separate buffers.
type Decoder struct {
	opts Options
}

// NewDecoder creates a decoder.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Decode decodes buf from start to end. It stops at the first instruction it
// cannot decode and returns the instructions decoded before it together with
// a *DecodeError wrapping ErrUnsupportedOpcode or ErrTruncatedInput.
func (d *Decoder) Decode(buf []byte) (Stream, error) {
	c := NewCursor(buf)
	stream := Stream{}
	for !c.Done() {
		inst, err := d.next(c)
		if err != nil {
			return stream, err
		}
		stream = append(stream, inst)
	}
	return stream, nil
}

// next decodes the instruction at the cursor.
func (d *Decoder) next(c *Cursor) (Inst, error) {
	start := c.Pos()
	op, err := c.ReadByte()
	if err != nil {
		return Inst{}, &DecodeError{Offset: start, Err: err}
	}
	fail := func(err error) (Inst, error) {
		return Inst{}, &DecodeError{Offset: start, Opcode: op, Err: err}
	}

	variant, err := Classify(op)
	if err != nil {
		return fail(err)
	}

	var inst Inst
	switch variant {
	case RegMemToFromReg:
		inst, err = decodeRegMem(c, op, d.opts.SignedDisplacement)
	case ImmToRegShort:
		inst, err = decodeImmShort(c, op)
	case ImmToRegMem:
		err = fmt.Errorf("%s: %w", variant, ErrUnsupportedOpcode)
	default:
		err = fmt.Errorf("variant %d: %w", variant, ErrUnsupportedOpcode)
	}
	if err != nil {
		return fail(err)
	}

	inst.Offset = start
	inst.Raw = c.span(start)
	inst.Text = strings.TrimSuffix(inst.Line(), "\n")
	return inst, nil
}

// Decode decodes buf with default options.
func Decode(buf []byte) (Stream, error) {
	return NewDecoder(Options{}).Decode(buf)
}
