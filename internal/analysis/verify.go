package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"sim8086/internal/disasm"
)

// ReferenceMode is the x86asm decoding mode for 8086 code.
const ReferenceMode = 16

// Mismatch is an instruction where the reference decoder disagrees.
type Mismatch struct {
	Offset    int    `json:"offset"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%04x  %-28s ; %s (x86asm: %s)", m.Offset, m.Text, m.Reason, m.Reference)
}

// Verify decodes every instruction of stream again with x86asm and reports
// disagreements on opcode, length and register operands. buf must be the
// buffer the stream was decoded from.
func Verify(buf []byte, stream disasm.Stream) []Mismatch {
	var mismatches []Mismatch
	for _, inst := range stream {
		if inst.Offset >= len(buf) {
			mismatches = append(mismatches, Mismatch{
				Offset: inst.Offset,
				Text:   inst.Text,
				Reason: "offset outside input",
			})
			continue
		}

		ref, err := x86asm.Decode(buf[inst.Offset:], ReferenceMode)
		if err != nil {
			mismatches = append(mismatches, Mismatch{
				Offset:    inst.Offset,
				Text:      inst.Text,
				Reference: err.Error(),
				Reason:    "reference decode failed",
			})
			continue
		}

		if reason := compare(inst, ref); reason != "" {
			mismatches = append(mismatches, Mismatch{
				Offset:    inst.Offset,
				Text:      inst.Text,
				Reference: x86asm.IntelSyntax(ref, uint64(inst.Offset), nil),
				Reason:    reason,
			})
		}
	}
	return mismatches
}

func compare(inst disasm.Inst, ref x86asm.Inst) string {
	if ref.Op != x86asm.MOV {
		return fmt.Sprintf("opcode %s", strings.ToLower(ref.Op.String()))
	}
	if ref.Len != len(inst.Raw) {
		return fmt.Sprintf("length %d, want %d", len(inst.Raw), ref.Len)
	}

	// Only register operands have a spelling both decoders share.
	ours := []string{inst.Dst, inst.Src}
	for i, arg := range ref.Args {
		if arg == nil || i >= len(ours) {
			break
		}
		reg, ok := arg.(x86asm.Reg)
		if !ok {
			continue
		}
		if name := strings.ToLower(reg.String()); name != ours[i] {
			return fmt.Sprintf("operand %d is %s, want %s", i, ours[i], name)
		}
	}
	return ""
}
