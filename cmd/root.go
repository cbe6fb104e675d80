package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/datagen/internal/config"
	"github.com/abhisek/datagen/internal/logging"
)

var (
	cfgPath  string
	verbose  bool
	logFile  string
	traceDir string

	// Set in PersistentPreRunE for every subcommand.
	logger   *zap.Logger
	closeLog func() error
	appCfg   config.Config
)

var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Synthetic training data generator",
	Long: `datagen fills domain prompt templates, collects model answers and runs
them through cleaning, validation, quality scoring, entity tagging and
optional augmentation, writing the raw and processed datasets as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The boot logger only reports config problems, on stderr.
		boot, closeBoot, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appCfg = config.Load(cfgPath, boot)
		_ = closeBoot()

		file := logFile
		if file == "" {
			file = appCfg.Logging.File
		}
		logger, closeLog, err = logging.New(logging.Options{
			Level:   appCfg.Logging.Level,
			Verbose: verbose,
			File:    file,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if traceDir != "" {
			appCfg.Trace.Dir = traceDir
			appCfg.Trace.Enabled = true
		}
		return nil
	},
}

// Execute runs the root command and flushes the logger, whether or not the
// command succeeded.
func Execute() error {
	err := rootCmd.Execute()
	if closeLog != nil {
		_ = closeLog()
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Path to a JSON or YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	pf.StringVar(&traceDir, "trace-dir", "", "Directory for per-record trace files (enables tracing)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(lineageCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
