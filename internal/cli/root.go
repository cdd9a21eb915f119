package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/logging"
)

var (
	verbose    bool
	quiet      bool
	configPath string
	logFile    string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf2video",
	Short: "Make narrated videos from PDF presentations",
	Long: `pdf2video turns a PDF presentation and a narration script into a video.

Every #page of the script is read aloud by a text-to-speech engine while the
matching PDF page is shown, with subtitles timed to the speech.

Settings are read from an optional YAML file (--config) and overridden by
flags. API keys come from flags, the environment (a .env file is loaded), or
the OS keyring.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if logFile != "" {
			cfg.LogFile = logFile
		}

		logger = logging.New(logging.Options{
			Verbose: verbose,
			Quiet:   quiet,
			File:    cfg.LogFile,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// ExecuteContext runs the command tree, cancelling work when ctx is done.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Do not print progress information")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Also write JSON logs to this file, rotated at 10 MB")
}
