package cmd

import (
	"errors"
	"fmt"
	"io"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"sim8086/internal/analysis"
	"sim8086/internal/disasm"
	"sim8086/internal/sim8086/styles"
	"sim8086/internal/ui/colorize"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewInstructions
	viewDetails
)

// listingHeaderLines is the number of lines formatListing puts before the
// first instruction.
const listingHeaderLines = 3

type instItem struct {
	inst disasm.Inst
}

func (i instItem) Title() string       { return formatRow(i.inst) }
func (i instItem) Description() string { return "" }
func (i instItem) FilterValue() string { return i.inst.Text }

type itemDelegate struct {
	hl colorize.Highlighter
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(instItem)
	if !ok {
		return
	}

	indicator := " "
	offsetStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		offsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	fmt.Fprintf(w, " %s  %s  %-12s  %s",
		indicator,
		offsetStyle.Render(fmt.Sprintf("%04x", i.inst.Offset)),
		fmt.Sprintf("% x", i.inst.Raw),
		colorizeFullText(d.hl, i.inst.Text))
}

func colorizeFullText(hl colorize.Highlighter, text string) string {
	colored, err := hl.ColorizeAssembly(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(colored, "\n")
}

type model struct {
	listing      viewport.Model
	instructions list.Model
	details      viewport.Model
	spinner      spinner.Model
	mode         viewMode
	filepath     string
	opts         disasm.Options
	hl           colorize.Highlighter
	result       *decodeResult
	loadErr      error
	loading      bool
	width        int
	height       int
}

type decodedMsg struct {
	result decodeResult
	err    error
}

func decodeCmd(filepath string, opts disasm.Options) tea.Cmd {
	return func() tea.Msg {
		res, err := decodeFile(filepath, opts)
		return decodedMsg{result: res, err: err}
	}
}

func NewModel(filepath string, opts disasm.Options, hl colorize.Highlighter) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	instructions := list.New([]list.Item{}, itemDelegate{hl: hl}, 80, 24)
	instructions.SetShowStatusBar(false)
	instructions.SetFilteringEnabled(true)
	instructions.Title = "Instructions"
	instructions.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	instructions.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	m := model{
		listing:      vp,
		instructions: instructions,
		details:      dvp,
		spinner:      s,
		mode:         viewListing,
		filepath:     filepath,
		opts:         opts,
		hl:           hl,
		loading:      true,
		width:        80,
		height:       24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		decodeCmd(m.filepath, m.opts),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case decodedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
		} else {
			res := msg.result
			m.result = &res
			m.updateInstructions()
		}
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.listing.SetWidth(msg.Width)
			m.listing.SetHeight(msg.Height - 2)
			m.instructions.SetWidth(msg.Width)
			m.instructions.SetHeight(msg.Height - 2)
			m.details.SetWidth(msg.Width)
			m.details.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewInstructions && m.instructions.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "l":
			m.mode = viewListing
			return m, nil
		case "i":
			if m.result != nil {
				m.mode = viewInstructions
			}
			return m, nil
		case "d":
			m.mode = viewDetails
			return m, nil
		case "enter":
			if m.mode == viewInstructions {
				if item, ok := m.instructions.SelectedItem().(instItem); ok {
					m.mode = viewListing
					m.listing.SetYOffset(m.lineOf(item.inst))
				}
			}
			return m, nil
		case "tab":
			m.mode = (m.mode + 1) % 3
			if m.mode == viewInstructions && m.result == nil {
				m.mode = viewDetails
			}
			return m, nil
		case "shift+tab":
			m.mode = (m.mode + 2) % 3
			if m.mode == viewInstructions && m.result == nil {
				m.mode = viewListing
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewInstructions:
		m.instructions, cmd = m.instructions.Update(msg)
	case viewDetails:
		m.details, cmd = m.details.Update(msg)
	default:
		m.listing, cmd = m.listing.Update(msg)
	}
	return m, cmd
}

// lineOf returns the listing line of inst.
func (m model) lineOf(inst disasm.Inst) int {
	if m.result == nil {
		return 0
	}
	for i, other := range m.result.Stream {
		if other.Offset == inst.Offset {
			return listingHeaderLines + i
		}
	}
	return 0
}

func (m model) View() string {
	var content string
	var menu string
	switch m.mode {
	case viewInstructions:
		content = m.instructions.View()
		menu = " Enter: show in listing • L: listing • D: details • Tab: cycle • Q: quit "
	case viewDetails:
		content = m.details.View()
		menu = " L: listing • I: instructions • Tab: cycle • Q: quit "
	default:
		content = m.listing.View()
		menu = " I: instructions • D: details • Tab: cycle • Q: quit "
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) updateInstructions() {
	items := make([]list.Item, 0, len(m.result.Stream))
	for _, inst := range m.result.Stream {
		items = append(items, instItem{inst: inst})
	}
	m.instructions.SetItems(items)
	m.instructions.Title = fmt.Sprintf("Instructions (%d total)", len(items))
}

func (m *model) updateContent() {
	name := pathpkg.Base(m.filepath)

	switch {
	case m.loading:
		m.listing.SetContent(fmt.Sprintf("%s Decoding %s...", m.spinner.View(), name))
	case m.loadErr != nil:
		m.listing.SetContent(fmt.Sprintf("; %s\n; %v", name, m.loadErr))
	default:
		listing := formatListing(name, m.result.Stream)
		if m.result.Err != nil {
			listing += fmt.Sprintf("; stopped: %v\n", m.result.Err)
		}
		colored, err := m.hl.ColorizeAssembly(listing)
		if err != nil {
			colored = listing
		}
		m.listing.SetContent(strings.TrimSuffix(colored, "\n"))
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	renderer := styles.GetMarkdownRenderer(width - 2)
	rendered, err := renderer.Render(detailsMarkdown(m.filepath, m.result, m.loadErr))
	if err != nil {
		rendered = err.Error()
	}
	m.details.SetContent(strings.TrimSuffix(rendered, "\n"))
}

// detailsMarkdown describes a decode result for the details view
func detailsMarkdown(filepath string, res *decodeResult, loadErr error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# sim8086\n\n```\n; %s\n", filepath)

	if loadErr != nil {
		fmt.Fprintf(&sb, "; %v\n```\n", loadErr)
		return sb.String()
	}
	if res == nil {
		sb.WriteString("; decoding...\n```\n")
		return sb.String()
	}

	summary := analysis.Summarize(res.Stream)
	fmt.Fprintf(&sb, "; %s\n```\n\n", digest(res.Data))
	fmt.Fprintf(&sb, "**%d** bytes, **%d** decoded into **%d** instructions\n\n",
		len(res.Data), summary.Bytes, summary.Instructions)

	sb.WriteString("## Encodings\n\n| encoding | count |\n|---|---|\n")
	for _, c := range summary.Variants {
		fmt.Fprintf(&sb, "| %s | %d |\n", c.Name, c.Count)
	}
	sb.WriteString("\n## Addressing modes\n\n| mode | count |\n|---|---|\n")
	for _, c := range summary.Modes {
		fmt.Fprintf(&sb, "| %s | %d |\n", c.Name, c.Count)
	}

	if res.Err != nil {
		sb.WriteString("\n## Decode error\n\n")
		var de *disasm.DecodeError
		if errors.As(res.Err, &de) {
			fmt.Fprintf(&sb, "Stopped at offset `0x%04x` (opcode `0x%02x`).\n\n", de.Offset, de.Opcode)
		}
		switch {
		case errors.Is(res.Err, disasm.ErrTruncatedInput):
			sb.WriteString("The input ends inside an instruction.\n")
		case errors.Is(res.Err, disasm.ErrUnsupportedOpcode):
			sb.WriteString("The opcode is not a supported MOV encoding.\n")
		}
		fmt.Fprintf(&sb, "\n```\n%v\n```\n", res.Err)
	}
	return sb.String()
}
