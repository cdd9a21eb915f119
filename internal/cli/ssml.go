package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/ssml"
)

var ssmlCmd = &cobra.Command{
	Use:   "ssml [script_file] [page]",
	Short: "Print the SSML document of one #page",
	Long: `Compile one #page of a script and print the SSML sent to the speech engine,
together with the fingerprint naming its cached audio.

The page is selected by its number or name.

Examples:
  pdf2video ssml script.txt 3
  pdf2video ssml script.txt intro --voice Matthew --conversational
  pdf2video ssml script.txt intro --plain`,
	Args: cobra.ExactArgs(2),
	RunE: runSSML,
}

func init() {
	rootCmd.AddCommand(ssmlCmd)

	addEngineFlags(ssmlCmd.Flags())
	ssmlCmd.Flags().Bool("plain", false, "Print the plain text sent to engines without SSML support")
}

func runSSML(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	s, idx, err := scriptPage(args[0], args[1])
	if err != nil {
		return err
	}
	page := s.Pages[idx]

	doc, err := ssml.Compile(page.Lines, profileOf(cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plain, _ := cmd.Flags().GetBool("plain")
	header := fmt.Sprintf("%% #page %d", idx+1)
	if page.Name != "" {
		header += " " + page.Name
	}
	fmt.Fprintf(out, "%s\n%% fingerprint %s\n", header, doc.Fingerprint)
	if plain {
		fmt.Fprint(out, doc.Plain)
	} else {
		fmt.Fprint(out, doc.SSML)
	}
	return nil
}
