// Package cli wires the devws commands together. Commands return *utils.AppError
// for expected failures; Execute maps the error code to the process exit code.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devws-io/devws/internal/config"
	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/types"
	"github.com/devws-io/devws/internal/utils"
	"github.com/devws-io/devws/pkg/version"
)

var (
	globalFlags types.GlobalFlags
	cfg         *config.Config
	logger      logging.Logger = logging.NewNoOpLogger()

	// lastCommand names the command being run, for the JSON error envelope
	lastCommand = "devws"
)

var rootCmd = &cobra.Command{
	Use:   "devws",
	Short: "Developer workstation sync - carry untracked project files between machines",
	Long: `devws keeps the files git deliberately does not track - .env files, local
configs, scratch directories - in step across a developer's workstations.

Each repository declares its synced files in a .ws-sync manifest; devws
copies them to and from cloud storage under a key derived from the
repository's remote, so every clone of the same project shares one set.

All commands support JSON output for automation and scripting.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lastCommand = cmd.CommandPath()

		var err error
		cfg, err = config.Load(globalFlags.Config)
		if err != nil {
			return utils.NewAppError(utils.ErrCodeConfigInvalid, err.Error())
		}

		if err := resolveOutputFormat(); err != nil {
			return err
		}

		logConfig := logging.LogConfig{
			Level:           logLevelFromConfig(cfg.LogLevel),
			EnableConsole:   !globalFlags.Quiet,
			RedactSensitive: true,
			EnableColor:     cfg.ColorOutput,
			EnableTimestamp: false,
		}
		if globalFlags.Verbose {
			logConfig.Level = logging.DEBUG
		}
		if globalFlags.OutputFormat == types.OutputFormatJSON && !globalFlags.Verbose && !globalFlags.Debug {
			logConfig.EnableConsole = false
		}

		logger, err = logging.NewLogger(logConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar((*string)(&globalFlags.OutputFormat), "output", "", "Output format (json, table)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.DryRun, "dry-run", false, "Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Force, "force", "f", false, "Overwrite existing copies on the receiving side")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format (alias for --output json)")

	rootCmd.AddCommand(versionCmd)
}

// resolveOutputFormat applies flag precedence: --json, then --output, then the
// configured default.
func resolveOutputFormat() error {
	if globalFlags.JSON {
		globalFlags.OutputFormat = types.OutputFormatJSON
	}
	if globalFlags.OutputFormat == "" {
		globalFlags.OutputFormat = cfg.DefaultOutputFormat
	}
	if globalFlags.OutputFormat != types.OutputFormatJSON && globalFlags.OutputFormat != types.OutputFormatTable {
		return utils.NewAppError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid output format: %s", globalFlags.OutputFormat))
	}
	return nil
}

func logLevelFromConfig(level string) logging.LogLevel {
	switch level {
	case "quiet":
		return logging.ERROR
	case "verbose", "debug":
		return logging.DEBUG
	default:
		return logging.INFO
	}
}

// Execute runs the root command and exits with the code mapped from the
// command's error, if any.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported *errReported
		if errors.As(err, &reported) {
			os.Exit(utils.GetExitCode(reported.appErr.CLIError.Code))
		}

		cliErr := types.CLIError{Code: utils.ErrCodeUnknown, Message: err.Error()}
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			cliErr = appErr.CLIError
		}

		if globalFlags.OutputFormat == types.OutputFormatJSON {
			writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet, globalFlags.Verbose)
			_ = writer.WriteError(lastCommand, cliErr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Message)
		}
		os.Exit(utils.GetExitCode(cliErr.Code))
	}
}
