package update

import "fmt"

// Status classifies the running version against the latest release.
type Status int

const (
	// StatusUpToDate means the running version is the latest release.
	StatusUpToDate Status = iota
	// StatusUpdateAvailable means a newer release exists.
	StatusUpdateAvailable
	// StatusAheadOfRelease means the running build is newer than any release.
	StatusAheadOfRelease
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusUpdateAvailable:
		return "update-available"
	case StatusAheadOfRelease:
		return "ahead-of-release"
	default:
		return "unknown"
	}
}

// Message is the user-facing sentence for a status.
func (s Status) Message(available Version) string {
	switch s {
	case StatusUpdateAvailable:
		return fmt.Sprintf("Version %s is available.", available)
	case StatusAheadOfRelease:
		return "You are using a nightly build newer than the latest release."
	default:
		return "You are using the latest release."
	}
}

// Classify compares the running version with the available one.
func Classify(current, available Version) Status {
	switch c := current.Compare(available); {
	case c < 0:
		return StatusUpdateAvailable
	case c > 0:
		return StatusAheadOfRelease
	default:
		return StatusUpToDate
	}
}
