package cli

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"
)

//go:embed license.txt
var licenseText string

//go:embed notices.txt
var noticesText string

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Print license information",
	Long: `Print the license of pdf2video. With --notices, print the licenses of the
external programs and services it drives instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := licenseText
		if notices, _ := cmd.Flags().GetBool("notices"); notices {
			text = noticesText
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(licenseCmd)

	licenseCmd.Flags().Bool("notices", false, "Print third-party notices for ffmpeg, poppler and the speech services")
}
