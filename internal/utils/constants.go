package utils

const (
	// SchemaVersion is the version of the JSON output envelope
	SchemaVersion = "1.0"

	// DefaultDirPerm is the permission used when creating directories
	DefaultDirPerm = 0o755

	// DefaultFilePerm is the permission used when writing synced files.
	// Synced user files regularly hold credentials, so keep them private.
	DefaultFilePerm = 0o600
)
