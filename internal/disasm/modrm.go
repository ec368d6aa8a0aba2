package disasm

// Mode is the MOD field of the ModRM byte.
type Mode byte

const (
	MemNoDisp    Mode = 0b00 // memory, no displacement (except direct address)
	MemDisp8     Mode = 0b01 // memory, 8-bit displacement
	MemDisp16    Mode = 0b10 // memory, 16-bit displacement
	RegisterMode Mode = 0b11 // r/m names a register
)

func (m Mode) String() string {
	switch m {
	case MemNoDisp:
		return "mem"
	case MemDisp8:
		return "mem+d8"
	case MemDisp16:
		return "mem+d16"
	case RegisterMode:
		return "reg"
	default:
		return "invalid"
	}
}

// Width selects byte or word operands.
type Width byte

const (
	Byte Width = 0
	Word Width = 1
)

func (w Width) String() string {
	if w == Word {
		return "word"
	}
	return "byte"
}

// ModRM holds the three fields of a [mod|reg|r/m] byte.
type ModRM struct {
	Mode Mode
	Reg  byte
	RM   byte
}

// DecodeModRM splits b into its fields.
func DecodeModRM(b byte) ModRM {
	return ModRM{
		Mode: Mode(b >> 6),
		Reg:  (b >> 3) & 0b111,
		RM:   b & 0b111,
	}
}

// Opcode flag bits of the reg/mem forms.
func directionBit(op byte) bool { return op&0b10 != 0 }
func widthBit(op byte) Width    { return Width(op & 1) }

// shortForm extracts the register and width of a 1011wreg opcode.
func shortForm(op byte) (reg byte, w Width) {
	return op & 0b111, Width((op >> 3) & 1)
}
