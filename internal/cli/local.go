package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devws-io/devws/internal/gitrepo"
	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/manifest"
	"github.com/devws-io/devws/internal/sync"
	"github.com/devws-io/devws/internal/types"
	"github.com/devws-io/devws/internal/utils"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Sync this repository's untracked user files",
	Long: `Sync the files listed in this repository's .ws-sync manifest with cloud
storage. The storage location is derived from the repository's origin remote,
so all clones of the same project share one set of synced files.`,
}

var localInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .ws-sync manifest for this repository",
	Long: `Create an empty .ws-sync manifest at the repository root, seeded with any
configured candidate patterns that .gitignore already covers. An existing
manifest is left untouched.`,
	RunE: runLocalInit,
}

var localStatusAll bool

var localStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync state of every manifest pattern",
	RunE:  runLocalStatus,
}

var localPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download synced files missing from this clone",
	Long: `Download this repository's synced files from cloud storage. Existing local
files are never overwritten unless --force is given; directories transfer
only the files missing locally.`,
	RunE: runLocalTransfer(sync.DirectionPull),
}

var localPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload this clone's synced files to cloud storage",
	Long: `Upload the files listed in the manifest to cloud storage. Existing objects
are never overwritten unless --force is given; directories transfer only the
files missing remotely.`,
	RunE: runLocalTransfer(sync.DirectionPush),
}

func init() {
	localStatusCmd.Flags().BoolVar(&localStatusAll, "all", false,
		"Also list ignored files not covered by the manifest")

	localCmd.AddCommand(localInitCmd)
	localCmd.AddCommand(localStatusCmd)
	localCmd.AddCommand(localPullCmd)
	localCmd.AddCommand(localPushCmd)
	rootCmd.AddCommand(localCmd)
}

type initOutput struct {
	Created      bool     `json:"created"`
	ManifestPath string   `json:"manifestPath"`
	Seeded       []string `json:"seeded"`
}

func runLocalInit(cmd *cobra.Command, args []string) error {
	writer := newOutput()
	repo, key, err := openRepo()
	if err != nil {
		return err
	}
	logger.Debug("repository opened", logging.F("key", key.String()))

	result, seeded, err := manifest.Bootstrap(repo.Root(), cfg.CandidatePatterns, repo)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	out := initOutput{
		Created:      result == manifest.Created,
		ManifestPath: filepath.Join(repo.Root(), manifest.FileName),
		Seeded:       seeded,
	}
	if out.Seeded == nil {
		out.Seeded = []string{}
	}

	if result == manifest.AlreadyExists {
		writer.AddWarning(utils.ErrCodeManifestExists,
			manifest.FileName+" already exists; leaving it as is", "info")
		writer.Log("%s already exists.", manifest.FileName)
	} else {
		writer.Log("Created %s with %d seeded pattern(s).", manifest.FileName, len(seeded))
	}
	return writer.WriteSuccess(cmd.CommandPath(), out)
}

// repoReconciler builds the reconciler for the repository's manifest scope
func repoReconciler(repo *gitrepo.GitRepo, key gitrepo.RepoKey, cmd *cobra.Command) (*sync.Reconciler, func(), error) {
	store, closeStore, err := newStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return &sync.Reconciler{
		Store:      store,
		Ignorer:    repo,
		Root:       repo.Root(),
		RemoteBase: repoRemoteBase(key),
	}, closeStore, nil
}

func runLocalTransfer(direction sync.Direction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		writer := newOutput()
		repo, key, err := openRepo()
		if err != nil {
			return err
		}
		entries, err := loadManifest(repo.Root())
		if err != nil {
			return err
		}

		r, closeStore, err := repoReconciler(repo, key, cmd)
		if err != nil {
			return err
		}
		defer closeStore()
		logger.Info("syncing repository",
			logging.F("key", key.String()),
			logging.F("direction", string(direction)),
			logging.F("patterns", len(entries)))

		if direction == sync.DirectionPush {
			warnUnignoredPushes(writer, repo, entries)
		}

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

// warnUnignoredPushes flags manifest patterns git would commit. Pushing them
// is allowed, but a synced file that is also tracked usually means the
// manifest or .gitignore is wrong.
func warnUnignoredPushes(writer *OutputWriter, repo *gitrepo.GitRepo, entries []manifest.Entry) {
	for _, entry := range entries {
		if strings.ContainsAny(entry.Pattern, "*?[") {
			continue
		}
		if !repo.IsIgnored(entry.Pattern, entry.IsDir) {
			writer.AddWarning(utils.ErrCodeInvalidArgument,
				entry.Display()+" is not covered by .gitignore; it may be committed to version control",
				"warning")
			writer.Log("Warning: %s is not covered by .gitignore.", entry.Display())
		}
	}
}

type statusOutput struct {
	report sync.StatusReport

	Items     []sync.StatusRecord `json:"items"`
	Unmanaged []string            `json:"unmanaged,omitempty"`
}

func (o statusOutput) AsTableRenderer() types.TableRenderer {
	return o.report
}

func runLocalStatus(cmd *cobra.Command, args []string) error {
	writer := newOutput()
	repo, key, err := openRepo()
	if err != nil {
		return err
	}

	// Unlike push and pull, status is informational: a repository without a
	// manifest simply has nothing declared yet, and --all can still surface
	// ignored files worth adding.
	entries, err := manifest.Load(repo.Root())
	if err != nil {
		if !errors.Is(err, manifest.ErrNotFound) {
			return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
		}
		entries = nil
		writer.Log("No %s manifest; run 'devws local init' to create one.", manifest.FileName)
	}

	r, closeStore, err := repoReconciler(repo, key, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	pullItems, err := r.Reconcile(cmd.Context(), entries, sync.DirectionPull)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeStorageError, err.Error())
	}
	pushItems, err := r.Reconcile(cmd.Context(), entries, sync.DirectionPush)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeStorageError, err.Error())
	}

	report := sync.StatusReport{PullItems: pullItems, PushItems: pushItems}
	out := statusOutput{
		report: report,
		Items:  report.JSONRecords(),
	}

	if localStatusAll {
		unmanaged, err := unmanagedIgnoredFiles(repo, entries)
		if err != nil {
			return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
		}
		out.Unmanaged = unmanaged
	}

	if err := writer.WriteSuccess(cmd.CommandPath(), out); err != nil {
		return err
	}

	if localStatusAll && len(out.Unmanaged) > 0 {
		writer.Log("Ignored files not in the manifest:")
		for _, path := range out.Unmanaged {
			writer.Log("  %s", path)
		}
	}
	return nil
}

// unmanagedIgnoredFiles lists ignored paths the manifest does not cover,
// candidates for adding to it.
func unmanagedIgnoredFiles(repo *gitrepo.GitRepo, entries []manifest.Entry) ([]string, error) {
	ignored, err := repo.IgnoredFiles()
	if err != nil {
		return nil, err
	}

	var unmanaged []string
	for _, path := range ignored {
		if path == manifest.FileName {
			continue
		}
		if !manifestCovers(entries, path) {
			unmanaged = append(unmanaged, path)
		}
	}
	return unmanaged, nil
}

// manifestCovers reports whether any manifest entry accounts for the ignored
// path, which uses a trailing slash for directories.
func manifestCovers(entries []manifest.Entry, ignoredPath string) bool {
	isDir := strings.HasSuffix(ignoredPath, "/")
	path := strings.TrimSuffix(ignoredPath, "/")

	for _, entry := range entries {
		if entry.IsDir {
			if entry.Pattern == path || strings.HasPrefix(path, entry.Pattern+"/") {
				return true
			}
			continue
		}
		if isDir {
			continue
		}
		if entry.Pattern == path {
			return true
		}
		if ok, err := filepath.Match(entry.Pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
