package disasm

// REG field encoding
// | REG | W = 0 | W = 1 |
// |-----|-------|-------|
// | 000 | al    | ax    |
// | 001 | cl    | cx    |
// | 010 | dl    | dx    |
// | 011 | bl    | bx    |
// | 100 | ah    | sp    |
// | 101 | ch    | bp    |
// | 110 | dh    | si    |
// | 111 | bh    | di    |
var registerNames = [2][8]string{
	Byte: {"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"},
	Word: {"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"},
}

// RegisterName returns the mnemonic of register index (low 3 bits) at width w.
func RegisterName(index byte, w Width) string {
	return registerNames[w&1][index&0b111]
}

// RegisterIndex is the inverse of RegisterName.
func RegisterIndex(name string) (byte, Width, bool) {
	for w, names := range registerNames {
		for i, n := range names {
			if n == name {
				return byte(i), Width(w), true
			}
		}
	}
	return 0, Byte, false
}
