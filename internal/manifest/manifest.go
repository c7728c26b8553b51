// Package manifest reads and bootstraps the per-repository list of user
// files to synchronize. The primary source is a .ws-sync file at the
// repository root; repositories that predate it may instead carry a
// "# user-files" section in .gitignore.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FileName is the dedicated manifest file at the repository root
	FileName = ".ws-sync"
	// GitignoreFileName is the fallback manifest source
	GitignoreFileName = ".gitignore"
	// GitignoreSectionMarker begins the manifest section inside .gitignore.
	// The section ends at the next blank line or end of file.
	GitignoreSectionMarker = "# user-files"
)

// ErrNotFound is returned when neither manifest source exists. Distinct from
// an empty manifest, which is valid and yields zero entries.
var ErrNotFound = errors.New("sync manifest not found")

// Entry is one pattern from the manifest, in file order
type Entry struct {
	// Pattern is the file name, glob, or directory name (without the
	// trailing separator that marked it as a directory)
	Pattern string
	// IsDir marks a directory pattern: the entire subtree syncs as one unit
	IsDir bool
}

// Display returns the pattern as written in the manifest
func (e Entry) Display() string {
	if e.IsDir {
		return e.Pattern + "/"
	}
	return e.Pattern
}

// Load reads the manifest for the repository rooted at root. A .ws-sync file
// wins; otherwise the "# user-files" section of .gitignore is consulted.
func Load(root string) ([]Entry, error) {
	wsPath := filepath.Join(root, FileName)
	if data, err := os.ReadFile(wsPath); err == nil {
		return parseEntries(string(data)), nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", wsPath, err)
	}

	section, ok, err := gitignoreSection(filepath.Join(root, GitignoreFileName))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return parseEntries(section), nil
}

// parseEntries turns manifest text into ordered entries. Blank lines and
// comment lines are skipped; a trailing path separator marks a directory.
func parseEntries(text string) []Entry {
	entries := []Entry{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		isDir := strings.HasSuffix(line, "/")
		entries = append(entries, Entry{
			Pattern: strings.TrimSuffix(line, "/"),
			IsDir:   isDir,
		})
	}
	return entries
}

// gitignoreSection extracts the "# user-files" section body from the ignore
// file. The second return reports whether the marker was found at all.
func gitignoreSection(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var (
		sb        strings.Builder
		inSection bool
		found     bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == GitignoreSectionMarker {
			inSection = true
			found = true
			continue
		}
		if inSection {
			if line == "" {
				break
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return sb.String(), found, nil
}
