package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"sim8086/internal/analysis"
	"sim8086/internal/disasm"
	"sim8086/internal/sim8086/config"
	"sim8086/internal/sim8086/log"
	"sim8086/internal/ui/colorize"
)

// JSONOutput is the --json document for one input file
type JSONOutput struct {
	File         string           `json:"file"`
	Digest       string           `json:"digest"`
	Instructions []JSONInst       `json:"instructions"`
	Summary      analysis.Summary `json:"summary"`
	Error        string           `json:"error,omitempty"`
}

// JSONInst is one decoded instruction in JSON output
type JSONInst struct {
	Offset int    `json:"offset"`
	Bytes  string `json:"bytes"`
	Text   string `json:"text"`
}

// decodeResult is one decoded input file
type decodeResult struct {
	Path   string
	Data   []byte
	Stream disasm.Stream
	Err    error // decode error; the stream holds everything before it
}

// decodeFile reads and decodes path. Only I/O failures are returned as the
// error; decode failures are kept in the result.
func decodeFile(path string, opts disasm.Options) (decodeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return decodeResult{Path: path}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	stream, decodeErr := disasm.NewDecoder(opts).Decode(data)
	return decodeResult{Path: path, Data: data, Stream: stream, Err: decodeErr}, nil
}

// formatListing renders a nasm-ready listing
func formatListing(name string, stream disasm.Stream) string {
	return fmt.Sprintf("; %s\nbits 16\n\n%s", name, stream.Text())
}

// formatRow renders "offset  bytes  text" for --full output
func formatRow(inst disasm.Inst) string {
	return fmt.Sprintf("%04x  %-12s  %s", inst.Offset, fmt.Sprintf("% x", inst.Raw), inst.Text)
}

// outputPath maps an input file to its .asm listing
func outputPath(input, outDir string) string {
	base := strings.TrimSuffix(pathpkg.Base(input), pathpkg.Ext(input)) + ".asm"
	if outDir == "" {
		outDir = pathpkg.Dir(input)
	}
	return pathpkg.Join(outDir, base)
}

func writeListing(res decodeResult, outDir string) (string, error) {
	out := outputPath(res.Path, outDir)
	return out, writeListingTo(res, out)
}

func writeListingTo(res decodeResult, out string) error {
	if err := os.MkdirAll(pathpkg.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(formatListing(pathpkg.Base(res.Path), res.Stream)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

func digest(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// resolveConfig layers the config file, then explicit flags, then environment
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("signed") {
		cfg.SignedDisplacement, _ = flags.GetBool("signed")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		cfg.OutDir, _ = flags.GetString("out")
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
		if cfg.Jobs < 1 {
			return cfg, fmt.Errorf("--jobs must be at least 1")
		}
	}

	if colorize.Disabled() {
		cfg.NoColor = true
	}
	return cfg, nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the config resolved by the root PersistentPreRunE,
// resolving it here only when the command ran without it.
func configFrom(cmd *cobra.Command) (config.Config, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(config.Config); ok {
			return cfg, nil
		}
	}
	return resolveConfig(cmd)
}

func decoderOptions(cfg config.Config) disasm.Options {
	return disasm.Options{SignedDisplacement: cfg.SignedDisplacement}
}

// runNoTUI prints the listing of one file to w
func runNoTUI(w io.Writer, filePath string, cfg config.Config, showFull bool) error {
	res, err := decodeFile(filePath, decoderOptions(cfg))
	if err != nil {
		return err
	}

	hl := colorize.New(cfg.NoColor)
	if showFull {
		fmt.Fprintf(w, "; %s\n", pathpkg.Base(filePath))
		for _, inst := range res.Stream {
			fmt.Fprintln(w, hl.ColorizeInstructionLine(formatRow(inst)))
		}
	} else {
		listing := formatListing(pathpkg.Base(filePath), res.Stream)
		colored, cerr := hl.ColorizeAssembly(listing)
		if cerr != nil {
			slog.Debug("Colorize failed", "error", cerr)
		}
		fmt.Fprint(w, colored)
	}

	if res.Err != nil {
		return fmt.Errorf("%s: %w", filePath, res.Err)
	}
	return nil
}

// runJSON writes the JSON document of one file to w
func runJSON(w io.Writer, filePath string, cfg config.Config) error {
	res, err := decodeFile(filePath, decoderOptions(cfg))
	if err != nil {
		return err
	}

	out := JSONOutput{
		File:         filePath,
		Digest:       digest(res.Data),
		Instructions: make([]JSONInst, 0, len(res.Stream)),
		Summary:      analysis.Summarize(res.Stream),
	}
	for _, inst := range res.Stream {
		out.Instructions = append(out.Instructions, JSONInst{
			Offset: inst.Offset,
			Bytes:  fmt.Sprintf("% x", inst.Raw),
			Text:   inst.Text,
		})
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if res.Err != nil {
		return fmt.Errorf("%s: %w", filePath, res.Err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "JSON config file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().Bool("signed", false, "Render displacements as signed values")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable syntax highlighting")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the listing without the TUI")
	rootCmd.Flags().BoolP("full", "f", false, "Show offsets and instruction bytes (implies --no-tui)")
	rootCmd.Flags().BoolP("json", "j", false, "Output the decoded instructions as JSON")
	rootCmd.Flags().BoolP("write", "w", false, "Write the listing to <name>.asm")
	rootCmd.Flags().StringP("out", "o", "", "Directory for --write output (default: next to the input)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "sim8086 [file]",
	Short: "8086 MOV disassembler",
	Long: `sim8086 decodes raw 8086 machine code into nasm assembly.
It supports register/memory to/from register and immediate to register MOV instructions.`,
	Example: `
# Print the listing of a nasm output file
sim8086 -n listing_0039_more_movs

# Browse the listing interactively
sim8086 listing_0039_more_movs

# Write listing_0039_more_movs.asm next to the input
sim8086 -w listing_0039_more_movs
  `,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		log.Setup(cfg.Debug)
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}

		file := args[0]
		absPath, err := pathpkg.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %v", err)
		}
		if _, err := os.Stat(absPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file not found: %s", file)
			}
			return fmt.Errorf("cannot access file: %v", err)
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		showFull, _ := cmd.Flags().GetBool("full")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		write, _ := cmd.Flags().GetBool("write")

		if write {
			res, err := decodeFile(absPath, decoderOptions(cfg))
			if err != nil {
				return err
			}
			out, err := writeListing(res, cfg.OutDir)
			if err != nil {
				return err
			}
			slog.Info("Wrote listing", "file", out, "instructions", len(res.Stream))
			if res.Err != nil {
				return fmt.Errorf("%s: %w", file, res.Err)
			}
			return nil
		}

		if jsonOutput {
			return runJSON(cmd.OutOrStdout(), absPath, cfg)
		}

		if showFull || !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}
		if noTUI {
			return runNoTUI(cmd.OutOrStdout(), absPath, cfg, showFull)
		}

		program := tea.NewProgram(
			NewModel(absPath, decoderOptions(cfg), colorize.New(cfg.NoColor)),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func Execute() {
	// Plain output goes through cobra directly so fang does not restyle it
	noTUI := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--no-tui", "-n", "--full", "-f", "--json", "-j":
			noTUI = true
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
