package sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/storage"
	"github.com/devws-io/devws/internal/utils"
)

// FailedItem records one transfer that could not complete
type FailedItem struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
	// Message carries the error text into JSON output
	Message string `json:"message"`
}

// TransferResult summarizes one executed sync run
type TransferResult struct {
	Transferred []string     `json:"transferred"`
	Skipped     []string     `json:"skipped"`
	Failed      []FailedItem `json:"failed"`
}

// Executor carries out the transferable actions of a reconciled item list.
// Failures are per-item: one unreadable file does not stop the batch.
type Executor struct {
	Store  storage.Store
	Logger logging.Logger
	// Root is the absolute local directory paths are joined under
	Root string
	// RemoteBase is the storage prefix object paths are joined under
	RemoteBase string
}

// Run executes items in the given direction. Without force only the decided
// transfer actions run, and directory sync copies only files absent at the
// destination; with force, skip-because-exists items transfer too and
// directory sync overwrites everything.
func (e *Executor) Run(ctx context.Context, direction Direction, items []Item, force bool) TransferResult {
	var result TransferResult
	for _, it := range items {
		action := it.Action
		if force {
			if direction == DirectionPull && action == ActionSkipLocalExists {
				action = ActionPull
			}
			if direction == DirectionPush && action == ActionSkipRemoteExists {
				action = ActionPush
			}
		}

		if !action.IsTransfer() {
			result.Skipped = append(result.Skipped, it.RelPath)
			continue
		}

		var err error
		switch {
		case it.IsDir:
			err = e.runDirectory(ctx, direction, it, force, &result)
		case direction == DirectionPull:
			err = e.pullFile(ctx, it.RelPath)
		default:
			err = e.pushFile(ctx, it.RelPath)
		}
		if err != nil {
			e.Logger.Error("transfer failed", logging.F("path", it.RelPath), logging.F("error", err.Error()))
			result.Failed = append(result.Failed, FailedItem{Path: it.RelPath, Err: err, Message: err.Error()})
			continue
		}
		if !it.IsDir {
			e.Logger.Info("transferred", logging.F("path", it.RelPath), logging.F("direction", string(direction)))
			result.Transferred = append(result.Transferred, it.RelPath)
		}
	}
	return result
}

// runDirectory syncs one directory item file by file, recording each file in
// the result so partial failures stay visible.
func (e *Executor) runDirectory(ctx context.Context, direction Direction, it Item, force bool, result *TransferResult) error {
	if direction == DirectionPull {
		return e.pullDirectory(ctx, it.RelPath, force, result)
	}
	return e.pushDirectory(ctx, it.RelPath, force, result)
}

func (e *Executor) pullFile(ctx context.Context, rel string) error {
	data, err := e.Store.Read(ctx, storage.Join(e.RemoteBase, rel))
	if err != nil {
		return err
	}
	localPath := filepath.Join(e.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(localPath), utils.DefaultDirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	// Synced files frequently hold secrets, so they land owner-only.
	if err := os.WriteFile(localPath, data, utils.DefaultFilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

func (e *Executor) pushFile(ctx context.Context, rel string) error {
	localPath := filepath.Join(e.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}
	return e.Store.Write(ctx, storage.Join(e.RemoteBase, rel), data)
}

func (e *Executor) pullDirectory(ctx context.Context, dir string, force bool, result *TransferResult) error {
	prefix := storage.Join(e.RemoteBase, dir) + "/"
	objects, err := e.Store.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		rel := storage.Join(dir, strings.TrimPrefix(obj, prefix))
		localPath := filepath.Join(e.Root, filepath.FromSlash(rel))
		if !force {
			if _, err := os.Stat(localPath); err == nil {
				result.Skipped = append(result.Skipped, rel)
				continue
			}
		}
		if err := e.pullFile(ctx, rel); err != nil {
			result.Failed = append(result.Failed, FailedItem{Path: rel, Err: err, Message: err.Error()})
			continue
		}
		result.Transferred = append(result.Transferred, rel)
	}
	return nil
}

func (e *Executor) pushDirectory(ctx context.Context, dir string, force bool, result *TransferResult) error {
	localDir := filepath.Join(e.Root, filepath.FromSlash(dir))
	return filepath.WalkDir(localDir, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		relToRoot, err := filepath.Rel(e.Root, current)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(relToRoot)
		remotePath := storage.Join(e.RemoteBase, rel)

		if !force {
			exists, err := e.Store.Exists(ctx, remotePath)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped = append(result.Skipped, rel)
				return nil
			}
		}
		if err := e.pushFile(ctx, rel); err != nil {
			result.Failed = append(result.Failed, FailedItem{Path: rel, Err: err, Message: err.Error()})
			return nil
		}
		result.Transferred = append(result.Transferred, rel)
		return nil
	})
}
