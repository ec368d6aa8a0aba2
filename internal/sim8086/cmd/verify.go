package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sim8086/internal/analysis"
	"sim8086/internal/sim8086/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Cross-check the decoder against x86asm",
	Long: `Decode a file, then decode every instruction again with golang.org/x/arch/x86/x86asm
in 16-bit mode and report instructions whose opcode, length or register operands disagree.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		return runVerify(cmd.OutOrStdout(), args[0], cfg)
	},
}

func runVerify(w io.Writer, filePath string, cfg config.Config) error {
	res, err := decodeFile(filePath, decoderOptions(cfg))
	if err != nil {
		return err
	}

	mismatches := analysis.Verify(res.Data, res.Stream)
	for _, m := range mismatches {
		fmt.Fprintln(w, m)
	}
	fmt.Fprintf(w, "%s: %d instructions checked, %d mismatches\n", filePath, len(res.Stream), len(mismatches))

	if res.Err != nil {
		return fmt.Errorf("%s: %w", filePath, res.Err)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%s: %d instructions disagree with x86asm", filePath, len(mismatches))
	}
	return nil
}
