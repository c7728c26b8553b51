package sync

import "github.com/devws-io/devws/internal/types"

// Report renders the dry-run preview of one sync direction
type Report struct {
	Items []Item
}

// Record is the JSON shape of one reconciled item
type Record struct {
	FilePattern  string `json:"filePattern"`
	Path         string `json:"path"`
	IsDirectory  bool   `json:"isDirectory"`
	LocalStatus  string `json:"localStatus"`
	RemoteStatus string `json:"remoteStatus"`
	IgnoredByVCS bool   `json:"ignoredByVcs"`
	Action       string `json:"action"`
}

// JSONRecords returns the items in their JSON output shape
func (r Report) JSONRecords() []Record {
	records := make([]Record, 0, len(r.Items))
	for _, it := range r.Items {
		records = append(records, Record{
			FilePattern:  it.Pattern,
			Path:         it.RelPath,
			IsDirectory:  it.IsDir,
			LocalStatus:  string(it.Local),
			RemoteStatus: string(it.Remote),
			IgnoredByVCS: it.IgnoredByVCS,
			Action:       string(it.Action),
		})
	}
	return records
}

func (r Report) Headers() []string {
	return []string{"PATTERN", "PATH", "LOCAL", "REMOTE", "IGNORED", "ACTION"}
}

func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, []string{
			it.Pattern,
			it.RelPath,
			it.Local.Display(),
			it.Remote.Display(),
			yesNo(it.IgnoredByVCS),
			it.Action.Display(),
		})
	}
	return rows
}

func (r Report) EmptyMessage() string {
	return "Manifest is empty: nothing to sync."
}

// StatusReport renders the direction-neutral view of a repository's sync
// state, with the action each direction would take.
type StatusReport struct {
	// PullItems and PushItems must come from the same reconciliation inputs;
	// they are matched positionally.
	PullItems []Item
	PushItems []Item
}

// StatusRecord is the JSON shape of one status row
type StatusRecord struct {
	FilePattern  string `json:"filePattern"`
	Path         string `json:"path"`
	State        string `json:"state"`
	IgnoredByVCS bool   `json:"ignoredByVcs"`
	PullAction   string `json:"pullAction"`
	PushAction   string `json:"pushAction"`
}

// state derives the combined description from one side's statuses
func state(it Item) string {
	switch {
	case it.Action == ActionConflict:
		return "Conflict"
	case it.Local == LocalPresentDiffers:
		return "Content Differs"
	case it.Local != LocalAbsent && it.Remote == RemotePresent:
		return "In Sync"
	case it.Local != LocalAbsent:
		return "Local Only"
	case it.Remote == RemotePresent:
		return "Remote Only"
	default:
		return "Neither"
	}
}

// JSONRecords returns the status rows in their JSON output shape
func (r StatusReport) JSONRecords() []StatusRecord {
	records := make([]StatusRecord, 0, len(r.PullItems))
	for i, it := range r.PullItems {
		rec := StatusRecord{
			FilePattern:  it.Pattern,
			Path:         it.RelPath,
			State:        state(it),
			IgnoredByVCS: it.IgnoredByVCS,
			PullAction:   string(it.Action),
		}
		if i < len(r.PushItems) {
			rec.PushAction = string(r.PushItems[i].Action)
		}
		records = append(records, rec)
	}
	return records
}

func (r StatusReport) Headers() []string {
	return []string{"PATTERN", "PATH", "STATE", "IGNORED", "ON PULL", "ON PUSH"}
}

func (r StatusReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.PullItems))
	for i, it := range r.PullItems {
		pushAction := ""
		if i < len(r.PushItems) {
			pushAction = r.PushItems[i].Action.Display()
		}
		rows = append(rows, []string{
			it.Pattern,
			it.RelPath,
			state(it),
			yesNo(it.IgnoredByVCS),
			it.Action.Display(),
			pushAction,
		})
	}
	return rows
}

func (r StatusReport) EmptyMessage() string {
	return "Manifest is empty: nothing to report."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var (
	_ types.TableRenderer = Report{}
	_ types.TableRenderer = StatusReport{}
)
