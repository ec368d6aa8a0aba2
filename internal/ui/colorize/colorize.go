package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Disabled reports whether SIM8086_NO_COLOR is set.
func Disabled() bool {
	return os.Getenv("SIM8086_NO_COLOR") != ""
}

// Highlighter colours listings. The zero value highlights.
type Highlighter struct {
	plain bool
}

// New returns a Highlighter that passes text through unchanged when plain is set.
func New(plain bool) Highlighter {
	return Highlighter{plain: plain}
}

// Plain reports whether h leaves text uncoloured.
func (h Highlighter) Plain() bool { return h.plain }

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	// nasm understands "bits 16" and [bx + si] operands
	candidates := []string{"nasm", "gas", "GAS"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getDisasmStyle returns the disassembly style with fallbacks
func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// ColorizeAssembly applies syntax highlighting to a nasm listing
func (h Highlighter) ColorizeAssembly(code string) (string, error) {
	if h.plain {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	_ = DisasmDark // Force registration

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeInstructionLine colorizes "offset  bytes  text" rows, keeping the
// offset and raw bytes gray.
func (h Highlighter) ColorizeInstructionLine(line string) string {
	if h.plain {
		return line
	}

	parts := strings.SplitN(line, "  ", 2)
	if len(parts) < 2 || !isHex(parts[0]) {
		return h.colorizeFullLine(line)
	}

	addrColored := fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m", parts[0])
	return addrColored + "  " + h.colorizeFullLine(parts[1])
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

// isHexChar checks if a character is a hexadecimal digit
func isHexChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// colorizeFullLine uses Chroma to colorize an assembly line
func (h Highlighter) colorizeFullLine(line string) string {
	colored, err := h.ColorizeAssembly(line)
	if err != nil {
		return line
	}
	// drop the newline the lexer appends, keeping any reset code after it
	if i := strings.LastIndex(colored, "\n"); i >= 0 && StripANSI(colored[i+1:]) == "" {
		colored = colored[:i] + colored[i+1:]
	}
	return colored
}

// StripANSI removes ANSI escape codes
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
