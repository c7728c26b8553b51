package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/devws-io/devws/internal/gitrepo"
	"github.com/devws-io/devws/internal/manifest"
	"github.com/devws-io/devws/internal/storage"
	"github.com/devws-io/devws/internal/sync"
	"github.com/devws-io/devws/internal/types"
	"github.com/devws-io/devws/internal/utils"
)

// errReported wraps an AppError whose result envelope has already been
// written; Execute maps it to an exit code without printing again.
type errReported struct {
	appErr *utils.AppError
}

func (e *errReported) Error() string { return e.appErr.Error() }
func (e *errReported) Unwrap() error { return e.appErr }

// reportPartialFailure writes the combined data+error envelope for a batch
// that partly failed and returns the sentinel carrying its exit code.
func reportPartialFailure(writer *OutputWriter, command string, out syncOutput, appErr *utils.AppError) error {
	_ = writer.WriteResult(command, out, appErr.CLIError)
	summarize(writer, out)
	return &errReported{appErr: appErr}
}

func newOutput() *OutputWriter {
	return NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet, globalFlags.Verbose)
}

// newStore opens the configured storage backend. Overridable in tests.
var newStore = func(ctx context.Context) (storage.Store, func(), error) {
	if cfg.Bucket == "" {
		return nil, nil, utils.NewAppError(utils.ErrCodeConfigInvalid,
			"no storage bucket configured; set 'bucket' in the config file or DEVWS_BUCKET")
	}
	gcs, err := storage.NewGCS(ctx, cfg.Bucket)
	if err != nil {
		return nil, nil, utils.NewAppError(utils.ErrCodeStorageError, err.Error())
	}
	return gcs, func() { _ = gcs.Close() }, nil
}

// openRepo opens the repository containing the working directory and derives
// its storage key from the origin remote.
func openRepo() (*gitrepo.GitRepo, gitrepo.RepoKey, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, gitrepo.RepoKey{}, utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	repo, err := gitrepo.Open(cwd)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNotARepository) {
			return nil, gitrepo.RepoKey{}, utils.NewAppError(utils.ErrCodeNotARepository,
				"not inside a git repository; devws local commands operate on a repository")
		}
		return nil, gitrepo.RepoKey{}, utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	key, err := repo.Key()
	if err != nil {
		if errors.Is(err, gitrepo.ErrNoRemote) {
			return nil, gitrepo.RepoKey{}, utils.NewAppError(utils.ErrCodeNoRemote,
				"repository has no usable remote; add one with 'git remote add origin <url>'")
		}
		return nil, gitrepo.RepoKey{}, utils.NewAppError(utils.ErrCodeUnknown, err.Error())
	}
	return repo, key, nil
}

// loadManifest reads the repository's sync manifest
func loadManifest(root string) ([]manifest.Entry, error) {
	entries, err := manifest.Load(root)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, utils.NewAppError(utils.ErrCodeManifestMissing,
				fmt.Sprintf("no %s manifest found; run 'devws local init' first", manifest.FileName))
		}
		return nil, utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}
	return entries, nil
}

// repoRemoteBase is the storage prefix for one repository's synced files
func repoRemoteBase(key gitrepo.RepoKey) string {
	return storage.Join(cfg.StorageRoot, "repos", key.Owner, key.Name)
}

// homeRemoteBase is the storage prefix for home-directory sync
func homeRemoteBase() string {
	return storage.Join(cfg.StorageRoot, "home")
}

// syncOutput is the command result of a push, pull, or status-style dry run
type syncOutput struct {
	items []sync.Item

	Items       []sync.Record     `json:"items"`
	DryRun      bool              `json:"dryRun"`
	Transferred []string          `json:"transferred"`
	Skipped     []string          `json:"skipped"`
	Failed      []sync.FailedItem `json:"failed"`
}

func newSyncOutput(items []sync.Item, dryRun bool, result sync.TransferResult) syncOutput {
	out := syncOutput{
		items:       items,
		Items:       sync.Report{Items: items}.JSONRecords(),
		DryRun:      dryRun,
		Transferred: result.Transferred,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
	}
	if out.Transferred == nil {
		out.Transferred = []string{}
	}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	if out.Failed == nil {
		out.Failed = []sync.FailedItem{}
	}
	return out
}

func (o syncOutput) AsTableRenderer() types.TableRenderer {
	return sync.Report{Items: o.items}
}

// runSync reconciles and, unless dry-run, executes one sync direction
func runSync(ctx context.Context, r *sync.Reconciler, entries []manifest.Entry, direction sync.Direction, writer *OutputWriter) (syncOutput, error) {
	items, err := r.Reconcile(ctx, entries, direction)
	if err != nil {
		return syncOutput{}, utils.NewAppError(utils.ErrCodeStorageError, err.Error())
	}

	for _, it := range items {
		if it.Action == sync.ActionConflict {
			writer.AddWarning(utils.ErrCodeInvalidArgument,
				fmt.Sprintf("%s: local and remote disagree on file vs directory; resolve manually", it.RelPath),
				"warning")
		}
	}

	if globalFlags.DryRun {
		return newSyncOutput(items, true, sync.TransferResult{}), nil
	}

	executor := &sync.Executor{
		Store:      r.Store,
		Logger:     logger,
		Root:       r.Root,
		RemoteBase: r.RemoteBase,
	}
	result := executor.Run(ctx, direction, items, globalFlags.Force)

	out := newSyncOutput(items, false, result)
	if len(result.Failed) > 0 {
		return out, utils.NewAppError(utils.ErrCodePartialFailure,
			fmt.Sprintf("%d of %d transfers failed", len(result.Failed), len(result.Failed)+len(result.Transferred))).
			WithContext("failed", len(result.Failed)).
			WithContext("transferred", len(result.Transferred))
	}
	return out, nil
}

func summarize(writer *OutputWriter, out syncOutput) {
	if out.DryRun {
		writer.Log("Dry run: no files were transferred.")
		return
	}
	writer.Log("Transferred %d, skipped %d, failed %d.",
		len(out.Transferred), len(out.Skipped), len(out.Failed))
}
