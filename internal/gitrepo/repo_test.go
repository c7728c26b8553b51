package gitrepo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

func initTestRepo(t *testing.T, remoteURL string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if remoteURL != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: DefaultRemoteName,
			URLs: []string{remoteURL},
		})
		if err != nil {
			t.Fatalf("CreateRemote: %v", err)
		}
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotARepository) {
		t.Errorf("Open() error = %v, want ErrNotARepository", err)
	}
}

func TestKey_FromRemote(t *testing.T) {
	dir := initTestRepo(t, "git@github.com:octocat/hello-world.git")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	key, err := repo.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	want := RepoKey{Owner: "octocat", Name: "hello-world"}
	if key != want {
		t.Errorf("Key() = %+v, want %+v", key, want)
	}
}

func TestKey_NoRemote(t *testing.T) {
	dir := initTestRepo(t, "")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = repo.Key()
	if !errors.Is(err, ErrNoRemote) {
		t.Errorf("Key() error = %v, want ErrNoRemote", err)
	}
}

func TestOpen_FromSubdirectory(t *testing.T) {
	dir := initTestRepo(t, "https://github.com/octocat/hello-world.git")
	sub := filepath.Join(dir, "cmd", "tool")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	repo, err := Open(sub)
	if err != nil {
		t.Fatalf("Open from subdirectory: %v", err)
	}
	if repo.Root() != dir {
		t.Errorf("Root() = %q, want %q", repo.Root(), dir)
	}
}

func TestIsIgnored(t *testing.T) {
	dir := initTestRepo(t, "git@github.com:octocat/hello-world.git")
	writeFile(t, dir, ".gitignore", ".env\n*.local.json\nsecrets/\n")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{".env", false, true},
		{"app.local.json", false, true},
		{"secrets", true, true},
		{"secrets/api.pem", false, true},
		{"README.md", false, false},
		{"config.yaml", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := repo.IsIgnored(tt.rel, tt.isDir); got != tt.want {
			t.Errorf("IsIgnored(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
		}
	}
}

func TestIgnoredFiles(t *testing.T) {
	dir := initTestRepo(t, "git@github.com:octocat/hello-world.git")
	writeFile(t, dir, ".gitignore", ".env\nbuild/\n")
	writeFile(t, dir, ".env", "KEY=value\n")
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "build/out.bin", "binary\n")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ignored, err := repo.IgnoredFiles()
	if err != nil {
		t.Fatalf("IgnoredFiles: %v", err)
	}

	want := []string{".env", "build/"}
	if len(ignored) != len(want) {
		t.Fatalf("IgnoredFiles() = %v, want %v", ignored, want)
	}
	for i := range want {
		if ignored[i] != want[i] {
			t.Errorf("IgnoredFiles()[%d] = %q, want %q", i, ignored[i], want[i])
		}
	}
}
