package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitResult reports the outcome of Bootstrap
type InitResult int

const (
	// Created means a new manifest file was written
	Created InitResult = iota
	// AlreadyExists means a manifest was already present and left untouched
	AlreadyExists
)

// IgnoreChecker answers whether the repository's ignore rules cover a path
type IgnoreChecker interface {
	IsIgnored(rel string, isDir bool) bool
}

const header = `# This file lists project-specific files that devws synchronizes across
# workstations for the same developer, keyed by this repository's remote.
#
# Everything listed here should also be covered by .gitignore: these files
# hold local-only or sensitive data that must stay out of version control.
#
# One pattern per line. Globs are allowed; a trailing / marks a directory
# whose whole subtree is synced.
#
# Example:
# .env
# my-local-config.json
`

// Bootstrap creates the manifest at root unless one already exists. The new
// manifest is seeded with every candidate pattern the repository's ignore
// rules already cover; candidates git would not ignore are omitted, since
// suggesting them would invite committing synced secrets.
func Bootstrap(root string, candidates []string, ignores IgnoreChecker) (InitResult, []string, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return AlreadyExists, nil, nil
	} else if !os.IsNotExist(err) {
		return AlreadyExists, nil, fmt.Errorf("checking %s: %w", path, err)
	}

	var seeded []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		isDir := strings.HasSuffix(candidate, "/")
		if ignores != nil && ignores.IsIgnored(strings.TrimSuffix(candidate, "/"), isDir) {
			seeded = append(seeded, candidate)
		}
	}

	var sb strings.Builder
	sb.WriteString(header)
	if len(seeded) > 0 {
		sb.WriteString("\n# Seeded from candidate patterns found in .gitignore:\n")
		for _, pattern := range seeded {
			sb.WriteString(pattern)
			sb.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return AlreadyExists, nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return Created, seeded, nil
}
