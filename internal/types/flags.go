package types

// GlobalFlags holds flags shared by every command
type GlobalFlags struct {
	OutputFormat OutputFormat
	Quiet        bool
	Verbose      bool
	Debug        bool
	Config       string
	Force        bool
	DryRun       bool
	JSON         bool
}
