// Package gitrepo wraps go-git behind the two narrow capabilities the sync
// core needs: resolving the repository's remote identity and answering
// ignore-rule queries for paths in the working tree.
package gitrepo

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultRemoteName is the remote consulted for repository identity
const DefaultRemoteName = "origin"

// ErrNotARepository is returned when the working directory is not inside a
// git repository.
var ErrNotARepository = errors.New("not inside a git repository")

// GitRepo exposes the git capabilities of a local working tree
type GitRepo struct {
	root    string
	repo    *git.Repository
	matcher gitignore.Matcher
}

// Open locates the repository containing path (searching parent directories
// for .git the way git itself does) and loads its ignore rules.
func Open(path string) (*GitRepo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolving worktree: %w", err)
	}
	root := wt.Filesystem.Root()

	patterns, err := loadIgnorePatterns(root)
	if err != nil {
		return nil, err
	}

	return &GitRepo{
		root:    root,
		repo:    repo,
		matcher: gitignore.NewMatcher(patterns),
	}, nil
}

// Root returns the working tree root
func (r *GitRepo) Root() string {
	return r.root
}

// Key resolves the repository's identity from its origin remote URL
func (r *GitRepo) Key() (RepoKey, error) {
	remote, err := r.repo.Remote(DefaultRemoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return RepoKey{}, ErrNoRemote
		}
		return RepoKey{}, fmt.Errorf("reading remote %s: %w", DefaultRemoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return RepoKey{}, ErrNoRemote
	}
	return ParseRemoteURL(urls[0])
}

// IsIgnored reports whether the repository's ignore rules cover the given
// slash-separated path relative to the working tree root.
func (r *GitRepo) IsIgnored(rel string, isDir bool) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" {
		return false
	}
	return r.matcher.Match(strings.Split(rel, "/"), isDir)
}

// IgnoredFiles walks the working tree and returns the sorted relative paths
// of files covered by the ignore rules. Used by `local status --all`.
func (r *GitRepo) IgnoredFiles() ([]string, error) {
	var ignored []string
	err := filepath.WalkDir(r.root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(r.root, current)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == git.GitDirName {
				return filepath.SkipDir
			}
			if r.IsIgnored(rel, true) {
				// Report the directory itself, not each member
				ignored = append(ignored, rel+"/")
				return filepath.SkipDir
			}
			return nil
		}
		if r.IsIgnored(rel, false) {
			ignored = append(ignored, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking working tree: %w", err)
	}
	sort.Strings(ignored)
	return ignored, nil
}

// loadIgnorePatterns reads ignore rules from the root .gitignore and
// .git/info/exclude. Nested .gitignore files are rare for the user files this
// tool manages and are not consulted.
func loadIgnorePatterns(root string) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern
	for _, name := range []string{
		filepath.Join(root, ".gitignore"),
		filepath.Join(root, git.GitDirName, "info", "exclude"),
	} {
		ps, err := readPatternFile(name)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, ps...)
	}
	return patterns, nil
}

func readPatternFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", path, err)
	}
	return patterns, nil
}
