package disasm

import (
	"fmt"
	"strconv"
)

// Effective address base for each r/m value. r/m 110 with MOD 00 is a
// direct address instead of [bp].
var effectiveAddressBase = [8]string{
	0b000: "bx + si",
	0b001: "bx + di",
	0b010: "bp + si",
	0b011: "bp + di",
	0b100: "si",
	0b101: "di",
	0b110: "bp",
	0b111: "bx",
}

const rmDirect = 0b110

// Address is a memory operand.
type Address struct {
	Base   string // empty for a direct address
	Disp   int
	Direct bool
}

// String renders the operand in nasm syntax, omitting a zero displacement.
func (a Address) String() string {
	if a.Direct {
		return "[" + strconv.Itoa(a.Disp) + "]"
	}
	switch {
	case a.Disp > 0:
		return fmt.Sprintf("[%s + %d]", a.Base, a.Disp)
	case a.Disp < 0:
		return fmt.Sprintf("[%s - %d]", a.Base, -a.Disp)
	default:
		return "[" + a.Base + "]"
	}
}

func isDirectAddress(mode Mode, rm byte) bool {
	return mode == MemNoDisp && rm == rmDirect
}

// ResolveAddress builds the memory operand for rm under mode, consuming any
// displacement bytes from c. With signed set, displacements are read as two's
// complement; otherwise they are unsigned.
func ResolveAddress(c *Cursor, rm byte, mode Mode, signed bool) (Address, error) {
	rm &= 0b111
	if isDirectAddress(mode, rm) {
		w, err := c.ReadWord()
		if err != nil {
			return Address{}, fmt.Errorf("direct address: %w", err)
		}
		return Address{Disp: int(w), Direct: true}, nil
	}

	a := Address{Base: effectiveAddressBase[rm]}
	switch mode {
	case MemNoDisp:
	case MemDisp8:
		b, err := c.ReadByte()
		if err != nil {
			return Address{}, fmt.Errorf("8-bit displacement: %w", err)
		}
		a.Disp = int(b)
		if signed {
			a.Disp = int(int8(b))
		}
	case MemDisp16:
		w, err := c.ReadWord()
		if err != nil {
			return Address{}, fmt.Errorf("16-bit displacement: %w", err)
		}
		a.Disp = int(w)
		if signed {
			a.Disp = int(int16(w))
		}
	case RegisterMode:
		return Address{}, fmt.Errorf("register mode has no effective address")
	default:
		return Address{}, fmt.Errorf("invalid mode %d", mode)
	}
	return a, nil
}
