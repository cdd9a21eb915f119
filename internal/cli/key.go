package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/config"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage API keys stored in the OS keyring",
}

var keySetCmd = &cobra.Command{
	Use:   "set [provider]",
	Short: "Store the API key of a provider in the OS keyring",
	Long: `Store the API key of a provider (openai, gemini, anthropic) in the OS
keyring. The key is read from the first line of standard input.

Keys given with --api-key or in the environment take precedence over the
keyring.

Examples:
  pdf2video key set openai
  echo "$GEMINI_API_KEY" | pdf2video key set gemini`,
	Args: cobra.ExactArgs(1),
	RunE: runKeySet,
}

// replaced in tests
var storeAPIKey = config.StoreAPIKey

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keySetCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(args[0])

	fmt.Fprintf(cmd.ErrOrStderr(), "Enter the %s API key: ", provider)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	key := strings.TrimSpace(line)
	if key == "" {
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		return fmt.Errorf("empty API key")
	}

	if err := storeAPIKey(provider, key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key in the keyring\n", provider)
	return nil
}
