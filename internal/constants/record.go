package constants

// RecordMode selects how much network history a model keeps.
type RecordMode string

const (
	// RecordFull keeps every snapshot.
	RecordFull RecordMode = "full"

	// RecordSummary keeps per-timestep statistics and only the latest snapshot.
	RecordSummary RecordMode = "summary"
)

// Valid returns true if the mode is a recognized value.
func (m RecordMode) Valid() bool {
	switch m {
	case RecordFull, RecordSummary:
		return true
	}
	return false
}

// String returns the string representation of the mode.
func (m RecordMode) String() string {
	return string(m)
}
