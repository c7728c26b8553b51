package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devws-io/devws/internal/config"
	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/manifest"
	"github.com/devws-io/devws/internal/secrets"
	"github.com/devws-io/devws/internal/storage"
	"github.com/devws-io/devws/internal/sync"
	devwstesting "github.com/devws-io/devws/internal/testing"
	"github.com/devws-io/devws/internal/types"
	"github.com/devws-io/devws/internal/utils"
)

// setupCLI wires the package globals to test doubles for one test
func setupCLI(t *testing.T, store storage.Store) {
	t.Helper()
	cfg = config.DefaultConfig()
	cfg.Bucket = "test-bucket"
	globalFlags = types.GlobalFlags{OutputFormat: types.OutputFormatJSON, Quiet: true}
	logger = logging.NewNoOpLogger()

	origNewStore := newStore
	newStore = func(ctx context.Context) (storage.Store, func(), error) {
		return store, func() {}, nil
	}
	t.Cleanup(func() {
		newStore = origNewStore
		globalFlags = types.GlobalFlags{}
		cfg = nil
	})
}

func TestLocalInit_SeedsFromGitignore(t *testing.T) {
	store := storage.NewMem()
	setupCLI(t, store)
	cfg.CandidatePatterns = []string{".env", "settings.json"}

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	devwstesting.WriteFile(t, root, ".gitignore", ".env\n")
	t.Chdir(root)

	devwstesting.AssertNoError(t, runLocalInit(localInitCmd, nil))

	entries, err := manifest.Load(root)
	devwstesting.AssertNoError(t, err)
	devwstesting.AssertEqual(t, len(entries), 1, "seeded entries")
	devwstesting.AssertEqual(t, entries[0].Pattern, ".env")
}

func TestLocalInit_SecondRunLeavesManifest(t *testing.T) {
	store := storage.NewMem()
	setupCLI(t, store)

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	t.Chdir(root)

	devwstesting.AssertNoError(t, runLocalInit(localInitCmd, nil))
	before := devwstesting.ReadFile(t, root, manifest.FileName)

	devwstesting.AssertNoError(t, runLocalInit(localInitCmd, nil))
	after := devwstesting.ReadFile(t, root, manifest.FileName)
	devwstesting.AssertEqual(t, after, before, "manifest rewritten on re-init")
}

func TestLocalInit_NoRemote(t *testing.T) {
	setupCLI(t, storage.NewMem())

	root := devwstesting.TempRepo(t, "")
	t.Chdir(root)

	err := runLocalInit(localInitCmd, nil)
	devwstesting.AssertError(t, err)
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.CLIError.Code != utils.ErrCodeNoRemote {
		t.Fatalf("error = %v, want code %s", err, utils.ErrCodeNoRemote)
	}
}

func TestLocalPull_FetchesIntoFreshClone(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMem()
	setupCLI(t, store)

	devwstesting.AssertNoError(t,
		store.Write(ctx, "repos/octocat/hello-world/.env", []byte("KEY=value\n")))

	root := devwstesting.TempRepo(t, "https://github.com/octocat/hello-world.git")
	devwstesting.WriteFile(t, root, ".gitignore", ".env\n")
	devwstesting.WriteFile(t, root, manifest.FileName, ".env\n")
	t.Chdir(root)

	localPullCmd.SetContext(ctx)
	devwstesting.AssertNoError(t, runLocalTransfer(sync.DirectionPull)(localPullCmd, nil))

	devwstesting.AssertEqual(t,
		devwstesting.ReadFile(t, root, ".env"), "KEY=value\n", "pulled content")
}

func TestLocalPush_UploadsUnderRepoKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMem()
	setupCLI(t, store)

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	devwstesting.WriteFile(t, root, ".gitignore", ".env\n")
	devwstesting.WriteFile(t, root, manifest.FileName, ".env\n")
	devwstesting.WriteFile(t, root, ".env", "KEY=value\n")
	t.Chdir(root)

	localPushCmd.SetContext(ctx)
	devwstesting.AssertNoError(t, runLocalTransfer(sync.DirectionPush)(localPushCmd, nil))

	data, err := store.Read(ctx, "repos/octocat/hello-world/.env")
	devwstesting.AssertNoError(t, err)
	devwstesting.AssertEqual(t, string(data), "KEY=value\n")
}

func TestLocalPull_ManifestMissing(t *testing.T) {
	setupCLI(t, storage.NewMem())

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	t.Chdir(root)

	localPullCmd.SetContext(context.Background())
	err := runLocalTransfer(sync.DirectionPull)(localPullCmd, nil)
	devwstesting.AssertError(t, err)
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.CLIError.Code != utils.ErrCodeManifestMissing {
		t.Fatalf("error = %v, want code %s", err, utils.ErrCodeManifestMissing)
	}
}

func TestLocalStatus_NoManifest(t *testing.T) {
	setupCLI(t, storage.NewMem())

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	devwstesting.WriteFile(t, root, ".gitignore", ".env\n")
	devwstesting.WriteFile(t, root, ".env", "KEY=value\n")
	t.Chdir(root)

	localStatusCmd.SetContext(context.Background())
	devwstesting.AssertNoError(t, runLocalStatus(localStatusCmd, nil),
		"status without a manifest")

	// --all still surfaces ignored files worth adding to a manifest.
	localStatusAll = true
	t.Cleanup(func() { localStatusAll = false })
	devwstesting.AssertNoError(t, runLocalStatus(localStatusCmd, nil),
		"status --all without a manifest")
}

// failWriteStore rejects writes to one path, for partial-failure tests
type failWriteStore struct {
	storage.Store
	failPath string
}

func (s *failWriteStore) Write(ctx context.Context, path string, data []byte) error {
	if strings.HasSuffix(path, s.failPath) {
		return errors.New("write denied")
	}
	return s.Store.Write(ctx, path, data)
}

func TestLocalPush_PartialFailureClosesStore(t *testing.T) {
	ctx := context.Background()
	store := &failWriteStore{Store: storage.NewMem(), failPath: "bad.txt"}
	setupCLI(t, store)

	closed := false
	newStore = func(ctx context.Context) (storage.Store, func(), error) {
		return store, func() { closed = true }, nil
	}

	root := devwstesting.TempRepo(t, "git@github.com:octocat/hello-world.git")
	devwstesting.WriteFile(t, root, ".gitignore", "*.txt\n")
	devwstesting.WriteFile(t, root, manifest.FileName, "good.txt\nbad.txt\n")
	devwstesting.WriteFile(t, root, "good.txt", "ok\n")
	devwstesting.WriteFile(t, root, "bad.txt", "nope\n")
	t.Chdir(root)

	localPushCmd.SetContext(ctx)
	err := runLocalTransfer(sync.DirectionPush)(localPushCmd, nil)
	devwstesting.AssertError(t, err, "partly failed push")

	var reported *errReported
	if !errors.As(err, &reported) {
		t.Fatalf("error = %v, want already-reported sentinel", err)
	}
	devwstesting.AssertEqual(t,
		utils.GetExitCode(reported.appErr.CLIError.Code), utils.ExitPartialFailure, "exit code")
	if !closed {
		t.Error("store was not closed after partial failure")
	}

	// The successful item still transferred.
	data, readErr := store.Read(ctx, "repos/octocat/hello-world/good.txt")
	devwstesting.AssertNoError(t, readErr)
	devwstesting.AssertEqual(t, string(data), "ok\n")
}

type fakeSecrets map[string][]byte

func (f fakeSecrets) Put(name string, data []byte) error {
	f[name] = append([]byte(nil), data...)
	return nil
}

func (f fakeSecrets) Get(name string) ([]byte, error) {
	data, ok := f[name]
	if !ok {
		return nil, secrets.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func setupSecrets(t *testing.T) fakeSecrets {
	t.Helper()
	fake := fakeSecrets{}
	origNewSecrets := newSecrets
	newSecrets = func() secrets.Store { return fake }
	t.Cleanup(func() { newSecrets = origNewSecrets })
	return fake
}

func TestEnvBackupRestore_RoundTrip(t *testing.T) {
	setupCLI(t, storage.NewMem())
	fake := setupSecrets(t)

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	cfg.EnvFile = envPath
	devwstesting.WriteFile(t, dir, ".env", "API_TOKEN=abc\n")

	devwstesting.AssertNoError(t, runEnvBackup(envBackupCmd, nil))
	devwstesting.AssertEqual(t, string(fake[cfg.EnvSecretName]), "API_TOKEN=abc\n")

	devwstesting.AssertNoError(t, os.Remove(envPath))
	devwstesting.AssertNoError(t, runEnvRestore(envRestoreCmd, nil))
	devwstesting.AssertEqual(t, devwstesting.ReadFile(t, dir, ".env"), "API_TOKEN=abc\n")
}

func TestEnvRestore_RefusesDifferentContentWithoutForce(t *testing.T) {
	setupCLI(t, storage.NewMem())
	fake := setupSecrets(t)
	fake["dotenv-backup"] = []byte("API_TOKEN=stored\n")

	dir := t.TempDir()
	cfg.EnvFile = filepath.Join(dir, ".env")
	devwstesting.WriteFile(t, dir, ".env", "API_TOKEN=local\n")

	err := runEnvRestore(envRestoreCmd, nil)
	devwstesting.AssertError(t, err, "restore over differing file")
	devwstesting.AssertEqual(t,
		devwstesting.ReadFile(t, dir, ".env"), "API_TOKEN=local\n", "local file modified")

	globalFlags.Force = true
	devwstesting.AssertNoError(t, runEnvRestore(envRestoreCmd, nil))
	devwstesting.AssertEqual(t,
		devwstesting.ReadFile(t, dir, ".env"), "API_TOKEN=stored\n", "forced restore")
}

func TestHomePull_UsesHomePrefix(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMem()
	setupCLI(t, store)

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg.HomeSync = []config.HomeSyncItem{{Path: ".gitconfig", Type: "file"}}

	devwstesting.AssertNoError(t,
		store.Write(ctx, "home/.gitconfig", []byte("[user]\n\tname = Octo Cat\n")))

	homePullCmd.SetContext(ctx)
	devwstesting.AssertNoError(t, runHomeTransfer(sync.DirectionPull)(homePullCmd, nil))

	devwstesting.AssertEqual(t,
		devwstesting.ReadFile(t, home, ".gitconfig"), "[user]\n\tname = Octo Cat\n")
}
