package disasm

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		b    byte
		want Variant
	}{
		{0x88, RegMemToFromReg},
		{0x89, RegMemToFromReg},
		{0x8a, RegMemToFromReg},
		{0x8b, RegMemToFromReg},
		{0xc6, ImmToRegMem},
		{0xc7, ImmToRegMem},
		{0xb0, ImmToRegShort},
		{0xb8, ImmToRegShort},
		{0xbf, ImmToRegShort},
	}
	for _, tt := range tests {
		got, err := Classify(tt.b)
		if err != nil {
			t.Errorf("Classify(%#02x) failed: %v", tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%#02x) = %s, want %s", tt.b, got, tt.want)
		}
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, b := range []byte{0x00, 0x8c, 0x8e, 0xa0, 0xa3, 0xaf, 0xc4, 0xc8, 0xf0, 0xfc, 0xff} {
		v, err := Classify(b)
		if !errors.Is(err, ErrUnsupportedOpcode) {
			t.Errorf("Classify(%#02x) = %s, %v; want ErrUnsupportedOpcode", b, v, err)
		}
	}
}

func TestDecodeModRM(t *testing.T) {
	got := DecodeModRM(0b10_011_101)
	want := ModRM{Mode: MemDisp16, Reg: 0b011, RM: 0b101}
	if got != want {
		t.Errorf("DecodeModRM = %+v, want %+v", got, want)
	}

	reg, w := shortForm(0b1011_1_010)
	if reg != 0b010 || w != Word {
		t.Errorf("shortForm = (%d, %s), want (2, word)", reg, w)
	}
	reg, w = shortForm(0b1011_0_111)
	if reg != 0b111 || w != Byte {
		t.Errorf("shortForm = (%d, %s), want (7, byte)", reg, w)
	}
}

func TestRegisterName(t *testing.T) {
	tests := []struct {
		index byte
		w     Width
		want  string
	}{
		{0, Byte, "al"},
		{4, Byte, "ah"},
		{7, Byte, "bh"},
		{0, Word, "ax"},
		{4, Word, "sp"},
		{5, Word, "bp"},
		{7, Word, "di"},
	}
	for _, tt := range tests {
		if got := RegisterName(tt.index, tt.w); got != tt.want {
			t.Errorf("RegisterName(%d, %s) = %q, want %q", tt.index, tt.w, got, tt.want)
		}
	}
	if _, _, ok := RegisterIndex("es"); ok {
		t.Errorf("RegisterIndex(es) succeeded, want failure")
	}
}
