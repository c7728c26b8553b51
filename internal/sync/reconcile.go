package sync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devws-io/devws/internal/manifest"
	"github.com/devws-io/devws/internal/storage"
)

// Ignorer answers whether the repository's ignore rules cover a path
type Ignorer interface {
	IsIgnored(rel string, isDir bool) bool
}

// NoopIgnorer is used where no version control ignore rules apply, such as
// home-directory sync. Nothing is considered ignored.
type NoopIgnorer struct{}

func (NoopIgnorer) IsIgnored(string, bool) bool { return false }

// Reconciler classifies manifest entries against local disk and cloud storage
type Reconciler struct {
	Store   storage.Store
	Ignorer Ignorer
	// Root is the absolute local directory the manifest is relative to
	Root string
	// RemoteBase is the storage prefix all object paths are joined under
	RemoteBase string
}

// Reconcile expands each manifest entry, inspects both sides, and decides the
// action a run in the given direction would take. Items come back in stable
// order: entries in manifest order, glob matches sorted within an entry.
func (r *Reconciler) Reconcile(ctx context.Context, entries []manifest.Entry, direction Direction) ([]Item, error) {
	var items []Item
	for _, entry := range entries {
		expanded, err := r.expand(ctx, entry)
		if err != nil {
			return nil, err
		}
		for _, it := range expanded {
			classified, err := r.classify(ctx, it)
			if err != nil {
				return nil, err
			}
			classified.Action = decideAction(direction, classified)
			items = append(items, classified)
		}
	}
	return items, nil
}

// expand turns one manifest entry into concrete items. Directories and plain
// file names map one-to-one; glob patterns expand to the union of local and
// remote matches so a pull can fetch matches that exist only in storage.
func (r *Reconciler) expand(ctx context.Context, entry manifest.Entry) ([]Item, error) {
	if entry.IsDir || !isGlob(entry.Pattern) {
		return []Item{{
			Pattern: entry.Display(),
			RelPath: entry.Pattern,
			IsDir:   entry.IsDir,
		}}, nil
	}

	matches := make(map[string]struct{})

	localMatches, err := filepath.Glob(filepath.Join(r.Root, filepath.FromSlash(entry.Pattern)))
	if err != nil {
		return nil, fmt.Errorf("expanding pattern %q: %w", entry.Pattern, err)
	}
	for _, m := range localMatches {
		rel, err := filepath.Rel(r.Root, m)
		if err != nil {
			return nil, err
		}
		matches[filepath.ToSlash(rel)] = struct{}{}
	}

	objects, err := r.Store.List(ctx, r.RemoteBase+"/")
	if err != nil {
		return nil, fmt.Errorf("listing storage for pattern %q: %w", entry.Pattern, err)
	}
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj, r.RemoteBase+"/")
		ok, err := path.Match(entry.Pattern, rel)
		if err != nil {
			return nil, fmt.Errorf("matching pattern %q: %w", entry.Pattern, err)
		}
		if ok {
			matches[rel] = struct{}{}
		}
	}

	rels := make([]string, 0, len(matches))
	for rel := range matches {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	items := make([]Item, 0, len(rels))
	for _, rel := range rels {
		items = append(items, Item{Pattern: entry.Pattern, RelPath: rel})
	}
	return items, nil
}

// classify fills in local status, remote status, and ignore coverage
func (r *Reconciler) classify(ctx context.Context, it Item) (Item, error) {
	it.IgnoredByVCS = r.Ignorer != nil && r.Ignorer.IsIgnored(it.RelPath, it.IsDir)

	localPath := filepath.Join(r.Root, filepath.FromSlash(it.RelPath))
	info, err := os.Stat(localPath)
	switch {
	case err == nil && info.IsDir():
		it.Local = LocalPresentDirectory
	case err == nil:
		it.Local = LocalPresent
	case os.IsNotExist(err):
		it.Local = LocalAbsent
	default:
		return it, fmt.Errorf("inspecting %s: %w", localPath, err)
	}

	if it.IsDir {
		// A directory is remotely present when anything lives under its prefix.
		objects, err := r.Store.List(ctx, storage.Join(r.RemoteBase, it.RelPath)+"/")
		if err != nil {
			return it, err
		}
		if len(objects) > 0 {
			it.Remote = RemotePresent
		} else {
			it.Remote = RemoteAbsent
		}
		return it, nil
	}

	remotePath := storage.Join(r.RemoteBase, it.RelPath)
	exists, err := r.Store.Exists(ctx, remotePath)
	if err != nil {
		return it, err
	}
	if !exists {
		it.Remote = RemoteAbsent
		return it, nil
	}
	it.Remote = RemotePresent

	if it.Local == LocalPresent {
		localSum, err := hashFile(localPath)
		if err != nil {
			return it, err
		}
		remoteSum, err := r.Store.MD5(ctx, remotePath)
		if err != nil {
			return it, err
		}
		if localSum != remoteSum {
			it.Local = LocalPresentDiffers
		}
	}
	return it, nil
}

// decideAction applies the non-destructive decision table. The receiving side
// always wins: pull never touches an existing local file, push never touches
// an existing object. Ignore coverage only disambiguates the nothing-anywhere
// row, so a fresh clone still pulls files git would ignore.
func decideAction(direction Direction, it Item) Action {
	// A file pattern naming a local directory, or a directory pattern naming
	// a local file, is a conflict only when something also exists remotely;
	// with nothing on the other side there is simply no counterpart to act on.
	if it.IsDir && it.Local == LocalPresent || !it.IsDir && it.Local == LocalPresentDirectory {
		if it.Remote == RemotePresent {
			return ActionConflict
		}
		if direction == DirectionPull {
			return ActionNoRemoteCounterpart
		}
		return ActionNoLocalCounterpart
	}

	if it.IsDir {
		switch {
		case it.Local == LocalPresentDirectory && it.Remote == RemotePresent:
			return ActionSyncDirectory
		case it.Local == LocalPresentDirectory:
			if direction == DirectionPush {
				return ActionPush
			}
			return ActionNoRemoteCounterpart
		case it.Remote == RemotePresent:
			if direction == DirectionPull {
				return ActionPull
			}
			return ActionNoLocalCounterpart
		default:
			return absentBothAction(direction, it)
		}
	}

	if direction == DirectionPull {
		switch {
		case it.Local == LocalPresent || it.Local == LocalPresentDiffers:
			return ActionSkipLocalExists
		case it.Remote == RemotePresent:
			return ActionPull
		default:
			return absentBothAction(direction, it)
		}
	}

	// push
	switch {
	case it.Local == LocalPresent || it.Local == LocalPresentDiffers:
		if it.Remote == RemotePresent {
			return ActionSkipRemoteExists
		}
		return ActionPush
	case it.Remote == RemotePresent:
		return ActionNoLocalCounterpart
	default:
		return absentBothAction(direction, it)
	}
}

func absentBothAction(direction Direction, it Item) Action {
	if it.IgnoredByVCS {
		return ActionSkipIgnored
	}
	if direction == DirectionPull {
		return ActionNoRemoteCounterpart
	}
	return ActionNoLocalCounterpart
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

func hashFile(path string) (hash string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
