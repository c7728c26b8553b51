package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/manifest"
	"github.com/devws-io/devws/internal/sync"
	"github.com/devws-io/devws/internal/utils"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Sync configured home-directory files",
	Long: `Sync the home-directory files and directories listed under homeSync in the
configuration, independent of any repository. The same non-destructive rules
apply: existing copies on the receiving side are kept unless --force is
given.`,
}

var homePullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download home-directory items missing on this machine",
	RunE:  runHomeTransfer(sync.DirectionPull),
}

var homePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload this machine's home-directory items",
	RunE:  runHomeTransfer(sync.DirectionPush),
}

func init() {
	homeCmd.AddCommand(homePullCmd)
	homeCmd.AddCommand(homePushCmd)
	rootCmd.AddCommand(homeCmd)
}

// homeEntries converts the configured homeSync items to manifest entries
func homeEntries() []manifest.Entry {
	entries := make([]manifest.Entry, 0, len(cfg.HomeSync))
	for _, item := range cfg.HomeSync {
		entries = append(entries, manifest.Entry{
			Pattern: item.Path,
			IsDir:   item.Type == "directory",
		})
	}
	return entries
}

func runHomeTransfer(direction sync.Direction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		writer := newOutput()
		entries := homeEntries()
		if len(entries) == 0 {
			writer.AddWarning(utils.ErrCodeConfigInvalid,
				"no homeSync items configured; add some under homeSync in the config file", "info")
			writer.Log("Nothing configured under homeSync.")
			return writer.WriteSuccess(cmd.CommandPath(), newSyncOutput(nil, globalFlags.DryRun, sync.TransferResult{}))
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
		}

		store, closeStore, err := newStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		r := &sync.Reconciler{
			Store:      store,
			Ignorer:    sync.NoopIgnorer{},
			Root:       home,
			RemoteBase: homeRemoteBase(),
		}
		logger.Info("syncing home directory",
			logging.F("direction", string(direction)),
			logging.F("items", len(entries)))

		out, runErr := runSync(cmd.Context(), r, entries, direction, writer)
		if runErr != nil {
			var appErr *utils.AppError
			if errors.As(runErr, &appErr) && appErr.CLIError.Code == utils.ErrCodePartialFailure {
				return reportPartialFailure(writer, cmd.CommandPath(), out, appErr)
			}
			return runErr
		}

		if err := writer.WriteSuccess(cmd.CommandPath(), out); err != nil {
			return err
		}
		summarize(writer, out)
		return nil
	}
}
