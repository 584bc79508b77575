package domain

// VerdictSource tells which moderation layer produced a verdict.
type VerdictSource int

const (
	SourceNone VerdictSource = iota
	SourceLocal
	SourceRemote
)

func (s VerdictSource) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "none"
	}
}

// Verdict is the transient outcome of a moderation check. Never persisted.
type Verdict struct {
	Blocked bool
	Source  VerdictSource
}
