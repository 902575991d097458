package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the server who this client is",
	Long: `Sends one /auth/check request with an empty cookie jar. A fresh client is
always anonymous, so this mostly proves the server is reachable.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	tr, err := newTransport(newLogger())
	if err != nil {
		return err
	}
	defer tr.CloseIdleConnections()
	username, err := tr.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if username == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "anonymous")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "authenticated as %s\n", username)
	return nil
}
