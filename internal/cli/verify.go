package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optimode/mailcheck"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <email>...",
	Short: "Verify one or more addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	v := newVerifier()
	ctx := cmd.Context()

	results := make([]mailcheck.Result, 0, len(args))
	for _, email := range args {
		res, err := v.Verify(ctx, email, options())
		if err != nil {
			return fmt.Errorf("verify %s: %w", email, err)
		}
		results = append(results, res)
	}

	if len(results) == 1 {
		return printJSON(cmd, results[0])
	}
	return printJSON(cmd, results)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
