package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	batchFile        string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Verify addresses read from a file, one per line",
	Long: `Reads addresses from --file (or stdin when the file is "-"), one per
line. Blank lines and lines starting with # are ignored. Results are
printed in input order.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "-", "input file, - for stdin")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 5, "addresses verified in parallel")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	var in io.Reader = cmd.InOrStdin()
	if batchFile != "-" {
		f, err := os.Open(batchFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	emails, err := readAddresses(in)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return errors.New("no addresses in input")
	}

	results, err := newVerifier().VerifyMany(cmd.Context(), emails, batchConcurrency, options())
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return printJSON(cmd, results)
}

func readAddresses(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return out, nil
}
