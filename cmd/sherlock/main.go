package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sherlock/internal/logging"
)

var (
	// Global flags
	verbose     bool
	projectFlag string
	contextFlag string
	outputFlag  string
	jsonFlag    bool

	// Logger
	logger *zap.Logger
)

// rootCmd analyzes a single piece of evidence against selected heuristics.
var rootCmd = &cobra.Command{
	Use:   "sherlock <evidence> <heuristics>",
	Short: "AI heuristic UX analysis of video and image evidence",
	Long: `sherlock evaluates UX evidence (screen recordings, screenshots) against
named heuristic criteria using Gemini, handling large-media upload,
server-side activation, and content-addressed deduplication.

Examples:
  sherlock checkout.mp4 3.16
  sherlock checkout 3.16,3.17 -p retail6 -c "first-time buyer flow"`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logging.Initialize(".sherlock")
		logging.Boot("sherlock starting: %v", os.Args[1:])
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE:          runAnalyze,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project name (retail6, finance, ...)")

	rootCmd.Flags().StringVarP(&contextFlag, "context", "c", "", "Additional context for the analysis")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save result to a JSON file")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print result as JSON")

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(heuristicsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(usageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
