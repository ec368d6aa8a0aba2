package disasm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOpcode means the instruction bytes do not match any
	// encoding this decoder implements.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrTruncatedInput means the buffer ended inside an instruction.
	ErrTruncatedInput = errors.New("truncated input")
)

// DecodeError reports where decoding stopped.
type DecodeError struct {
	Offset int  // offset of the first byte of the failing instruction
	Opcode byte // first byte of the failing instruction
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode at offset 0x%04x (opcode 0x%02x): %v", e.Offset, e.Opcode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
