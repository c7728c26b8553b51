// Package sync reconciles a repository's manifest against cloud storage and
// transfers the differences. Reconciliation classifies every manifest pattern
// into an action; execution carries the transferable actions out without ever
// overwriting an existing copy unless forced.
package sync

// Direction is the transfer direction of a sync operation
type Direction string

const (
	// DirectionPush uploads local files to storage
	DirectionPush Direction = "push"
	// DirectionPull downloads storage objects to the working tree
	DirectionPull Direction = "pull"
)

// LocalStatus describes what exists at a pattern's local path
type LocalStatus string

const (
	LocalAbsent           LocalStatus = "absent"
	LocalPresent          LocalStatus = "present"
	LocalPresentDiffers   LocalStatus = "present-differs"
	LocalPresentDirectory LocalStatus = "present-directory"
)

// Display returns the human-readable form used in table output
func (s LocalStatus) Display() string {
	switch s {
	case LocalAbsent:
		return "Absent"
	case LocalPresent:
		return "Present"
	case LocalPresentDiffers:
		return "Present (Differs)"
	case LocalPresentDirectory:
		return "Present (Directory)"
	default:
		return string(s)
	}
}

// RemoteStatus describes what exists at a pattern's storage path
type RemoteStatus string

const (
	RemoteAbsent  RemoteStatus = "absent"
	RemotePresent RemoteStatus = "present"
)

// Display returns the human-readable form used in table output
func (s RemoteStatus) Display() string {
	switch s {
	case RemoteAbsent:
		return "Absent"
	case RemotePresent:
		return "Present"
	default:
		return string(s)
	}
}

// Action is what a sync run will do for one reconciled item
type Action string

const (
	// ActionPull downloads the object to the local path
	ActionPull Action = "pull"
	// ActionPush uploads the local file (or whole directory) to storage
	ActionPush Action = "push"
	// ActionSyncDirectory transfers the files missing on the receiving side
	// of a directory that exists on both sides
	ActionSyncDirectory Action = "sync-directory"
	// ActionSkipLocalExists leaves an existing local file untouched on pull
	ActionSkipLocalExists Action = "skip-local-exists"
	// ActionSkipRemoteExists leaves an existing object untouched on push
	ActionSkipRemoteExists Action = "skip-remote-exists"
	// ActionSkipIgnored marks a pattern absent on both sides but covered by
	// the repository's ignore rules
	ActionSkipIgnored Action = "skip-ignored"
	// ActionNoRemoteCounterpart marks a pattern with nothing in storage to act on
	ActionNoRemoteCounterpart Action = "no-remote-counterpart"
	// ActionNoLocalCounterpart marks a pattern with nothing locally to act on
	ActionNoLocalCounterpart Action = "no-local-counterpart"
	// ActionConflict marks a file/directory type mismatch needing manual fixing
	ActionConflict Action = "conflict"
)

// Display returns the human-readable form used in table output
func (a Action) Display() string {
	switch a {
	case ActionPull:
		return "Pull"
	case ActionPush:
		return "Push"
	case ActionSyncDirectory:
		return "Sync Directory"
	case ActionSkipLocalExists:
		return "Skip (Local Exists)"
	case ActionSkipRemoteExists:
		return "Skip (Remote Exists)"
	case ActionSkipIgnored:
		return "Skip (Ignored)"
	case ActionNoRemoteCounterpart:
		return "No GCS counterpart"
	case ActionNoLocalCounterpart:
		return "No local counterpart"
	case ActionConflict:
		return "Conflict"
	default:
		return string(a)
	}
}

// IsTransfer reports whether the executor acts on this action
func (a Action) IsTransfer() bool {
	switch a {
	case ActionPull, ActionPush, ActionSyncDirectory:
		return true
	default:
		return false
	}
}

// Item is one reconciled manifest pattern with its decided action
type Item struct {
	// Pattern is the manifest pattern that produced this item
	Pattern string
	// RelPath is the concrete repository-relative path. For glob patterns
	// each match yields its own item; for directories it is the directory.
	RelPath string
	// IsDir marks a directory item, synced as one unit
	IsDir bool

	Local        LocalStatus
	Remote       RemoteStatus
	IgnoredByVCS bool
	Action       Action
}
