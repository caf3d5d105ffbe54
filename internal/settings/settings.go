// Package settings persists the two user settings that gate the automatic
// update check: whether it is enabled and when it last succeeded.
//
// A Store reads and writes the "UpdateSettings" node of a settings document.
// A Manager owns one Store, holds the current value in memory, serializes
// mutations and notifies observers after each change has been saved.
package settings

import (
	"context"
	"time"
)

const (
	// NodeName is the settings node owned by the update checker.
	NodeName = "UpdateSettings"

	FieldAutomaticCheckEnabled = "AutomaticUpdateCheckEnabled"
	FieldLastSuccessfulCheck   = "LastSuccessfulUpdateCheck"
)

// TimestampLayout is the persisted form of LastSuccessfulCheck.
const TimestampLayout = time.RFC3339

// Settings is a snapshot of the update settings.
type Settings struct {
	AutomaticCheckEnabled bool
	// LastSuccessfulCheck is the zero time when no check has succeeded yet.
	LastSuccessfulCheck time.Time
}

// Defaults returns the settings used when nothing has been persisted.
func Defaults() Settings {
	return Settings{AutomaticCheckEnabled: true}
}

// HasLastCheck reports whether a successful check has been recorded.
func (s Settings) HasLastCheck() bool {
	return !s.LastSuccessfulCheck.IsZero()
}

// Equal compares two snapshots. Timestamps are compared at persisted
// precision so a value that survived a save/load round trip is unchanged.
func (s Settings) Equal(other Settings) bool {
	return s.AutomaticCheckEnabled == other.AutomaticCheckEnabled &&
		normalizeTime(s.LastSuccessfulCheck).Equal(normalizeTime(other.LastSuccessfulCheck))
}

// Store loads and saves the UpdateSettings node.
type Store interface {
	// Load returns the persisted settings. A missing document or node yields
	// Defaults. Unreadable fields fall back to their default without error.
	Load(ctx context.Context) (Settings, error)
	// Save replaces the persisted node with s.
	Save(ctx context.Context, s Settings) error
	Close() error
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Second)
}

func formatTimestamp(t time.Time) string {
	return normalizeTime(t).Format(TimestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return normalizeTime(t), nil
}
