package disasm

import "fmt"

// Variant identifies which MOV encoding an instruction uses.
type Variant int

const (
	VariantUnknown Variant = iota
	RegMemToFromReg        // 100010dw mod reg r/m
	ImmToRegMem            // 1100011w mod 000 r/m
	ImmToRegShort          // 1011wreg data
)

func (v Variant) String() string {
	switch v {
	case RegMemToFromReg:
		return "reg/mem to/from reg"
	case ImmToRegMem:
		return "imm to reg/mem"
	case ImmToRegShort:
		return "imm to reg"
	default:
		return "unknown"
	}
}

// Opcode prefixes, right-aligned.
const (
	opRegMemToFromReg = 0b100010
	opImmToRegMem     = 0b1100011
	opImmToRegShort   = 0b1011
)

// Classify selects the encoding from the first instruction byte.
func Classify(b byte) (Variant, error) {
	switch {
	case b>>2 == opRegMemToFromReg:
		return RegMemToFromReg, nil
	case b>>1 == opImmToRegMem:
		return ImmToRegMem, nil
	case b>>4 == opImmToRegShort:
		return ImmToRegShort, nil
	}
	return VariantUnknown, fmt.Errorf("byte %08b: %w", b, ErrUnsupportedOpcode)
}
