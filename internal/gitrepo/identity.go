package gitrepo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoRemote is returned when the repository has no usable origin remote.
// Every sync operation is keyed by remote identity, so this is fatal.
var ErrNoRemote = errors.New("no remote configured")

// RepoKey identifies a repository by its remote owner and name. It is the
// stable storage key for everything synced on the repository's behalf.
type RepoKey struct {
	Owner string
	Name  string
}

// String returns the owner/name form used in storage paths
func (k RepoKey) String() string {
	return k.Owner + "/" + k.Name
}

// ParseRemoteURL derives a RepoKey from a git remote URL. It accepts
// scp-style SSH URLs (git@host:owner/name.git), ssh:// and http(s):// URLs,
// each with an optional .git suffix.
func ParseRemoteURL(raw string) (RepoKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoKey{}, fmt.Errorf("%w: empty remote URL", ErrNoRemote)
	}

	var repoPath string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return RepoKey{}, fmt.Errorf("%w: unparsable remote URL %q", ErrNoRemote, raw)
		}
		repoPath = u.Path
	case strings.Contains(raw, "@") && strings.Contains(raw, ":"):
		// scp-like syntax: user@host:owner/name.git
		repoPath = raw[strings.Index(raw, ":")+1:]
	default:
		return RepoKey{}, fmt.Errorf("%w: unrecognized remote URL %q", ErrNoRemote, raw)
	}

	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	segments := strings.Split(repoPath, "/")
	if len(segments) < 2 {
		return RepoKey{}, fmt.Errorf("%w: remote URL %q has no owner/name path", ErrNoRemote, raw)
	}

	key := RepoKey{
		Owner: segments[len(segments)-2],
		Name:  segments[len(segments)-1],
	}
	if key.Owner == "" || key.Name == "" {
		return RepoKey{}, fmt.Errorf("%w: remote URL %q has no owner/name path", ErrNoRemote, raw)
	}
	return key, nil
}
