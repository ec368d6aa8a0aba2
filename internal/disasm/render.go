package disasm

import (
	"fmt"
	"strconv"
)

const mnemonicMov = "mov"

// decodeRegMem decodes 100010dw [mod reg r/m] [disp-lo] [disp-hi].
func decodeRegMem(c *Cursor, op byte, signed bool) (Inst, error) {
	b, err := c.ReadByte()
	if err != nil {
		return Inst{}, fmt.Errorf("modrm: %w", err)
	}
	f := DecodeModRM(b)
	w := widthBit(op)

	reg := RegisterName(f.Reg, w)
	var rm string
	if f.Mode == RegisterMode {
		rm = RegisterName(f.RM, w)
	} else {
		addr, err := ResolveAddress(c, f.RM, f.Mode, signed)
		if err != nil {
			return Inst{}, err
		}
		rm = addr.String()
	}

	inst := Inst{Variant: RegMemToFromReg, Mode: f.Mode, Op: mnemonicMov, Dst: rm, Src: reg}
	if directionBit(op) {
		inst.Dst, inst.Src = reg, rm
	}
	return inst, nil
}

// decodeImmShort decodes 1011wreg data [data-hi].
func decodeImmShort(c *Cursor, op byte) (Inst, error) {
	reg, w := shortForm(op)

	var imm int
	if w == Word {
		v, err := c.ReadWord()
		if err != nil {
			return Inst{}, fmt.Errorf("immediate word: %w", err)
		}
		imm = int(v)
	} else {
		v, err := c.ReadByte()
		if err != nil {
			return Inst{}, fmt.Errorf("immediate byte: %w", err)
		}
		imm = int(v)
	}

	return Inst{
		Variant: ImmToRegShort,
		Mode:    RegisterMode,
		Op:      mnemonicMov,
		Dst:     RegisterName(reg, w),
		Src:     strconv.Itoa(imm),
	}, nil
}

// Line renders the instruction as "op dst, src\n".
func (i Inst) Line() string {
	return i.Op + " " + i.Dst + ", " + i.Src + "\n"
}
