package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	pathpkg "path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sim8086/internal/logging"
	"sim8086/internal/sim8086/config"
)

var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Decode every listing in a directory",
	Long: `Decode every nasm output file in a directory and write a .asm listing for each.
Files without an extension and .bin files are decoded; other files are skipped.`,
	Example: `
# Write foo.asm next to every binary in ./listings
sim8086 run ./listings

# Write the listings to ./out, four files at a time
sim8086 run -o out -J 4 ./listings
  `,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		return runBatch(cmd.OutOrStdout(), args[0], cfg)
	},
}

func init() {
	runCmd.Flags().StringP("out", "o", "", "Output directory (default: next to each input)")
	runCmd.Flags().IntP("jobs", "J", 0, "Files decoded in parallel (default: number of CPUs)")
}

// isListingBinary reports whether name looks like nasm -o output
func isListingBinary(name string) bool {
	ext := strings.ToLower(pathpkg.Ext(name))
	return ext == "" || ext == ".bin"
}

// collectInputs lists the decodable files directly inside dir
func collectInputs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isListingBinary(entry.Name()) {
			continue
		}
		inputs = append(inputs, pathpkg.Join(dir, entry.Name()))
	}
	sort.Strings(inputs)
	return inputs, nil
}

// planOutputs assigns every input its own listing path. Inputs that would
// share one ("prog" and "prog.bin") keep their full file name instead.
func planOutputs(inputs []string, outDir string) ([]string, error) {
	outputs := make([]string, len(inputs))
	owners := make(map[string][]int, len(inputs))
	for i, input := range inputs {
		outputs[i] = outputPath(input, outDir)
		owners[outputs[i]] = append(owners[outputs[i]], i)
	}
	for out, idx := range owners {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			if pathpkg.Ext(inputs[i]) != "" {
				outputs[i] = pathpkg.Join(pathpkg.Dir(out), pathpkg.Base(inputs[i])+".asm")
			}
		}
	}

	seen := make(map[string]string, len(outputs))
	for i, out := range outputs {
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, inputs[i], out)
		}
		seen[out] = inputs[i]
	}
	return outputs, nil
}

// runBatch decodes the files of dir concurrently. Each file gets its own
// decoder, result slot and output path; a decode failure in one file does not
// stop the others.
func runBatch(w io.Writer, dir string, cfg config.Config) error {
	logger := logging.NewLogger(cfg.Debug)
	defer logger.Close()

	inputs, err := collectInputs(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		logger.Warn("No listings found", "dir", dir)
		return nil
	}
	outputs, err := planOutputs(inputs, cfg.OutDir)
	if err != nil {
		return err
	}

	results := make([]decodeResult, len(inputs))

	var g errgroup.Group
	if cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}
	for i, input := range inputs {
		g.Go(func() error {
			flog := logger.ForListing(input, outputs[i])
			res, err := decodeFile(input, decoderOptions(cfg))
			if err != nil {
				return err
			}
			if err := writeListingTo(res, outputs[i]); err != nil {
				return err
			}
			results[i] = res
			flog.Debug("Decoded", "instructions", len(res.Stream), "bytes", len(res.Data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failures []error
	for i, res := range results {
		if res.Err != nil {
			logger.ForListing(res.Path, outputs[i]).Error("Decode failed", "error", res.Err)
			fmt.Fprintf(w, "FAIL  %s -> %s (%d instructions): %v\n", res.Path, outputs[i], len(res.Stream), res.Err)
			failures = append(failures, fmt.Errorf("%s: %w", res.Path, res.Err))
			continue
		}
		fmt.Fprintf(w, "ok    %s -> %s (%d instructions)\n", res.Path, outputs[i], len(res.Stream))
	}
	logger.Info("Batch complete", "files", len(results), "failed", len(failures))

	return errors.Join(failures...)
}
