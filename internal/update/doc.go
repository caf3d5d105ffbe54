// Package update checks whether a newer release of the application exists.
//
// This package handles:
//   - Fetching the XML release manifest and parsing its bands
//   - Selecting the "stable" band and sanitizing its download link
//   - Comparing four-component versions and classifying the result
//   - Caching the last successfully fetched release
//   - Deciding when the automatic check is due
//
// The package is isolated from presentation. It returns values (Status,
// AvailableVersionInfo, Notice) that a caller can display however it wants,
// and it never opens the download link itself.
//
// Example usage:
//
//	checker := update.NewChecker(manifestURL)
//	sched := update.NewScheduler(checker, running, manager, update.WithLogger(log))
//	if notice, ok := sched.MaybeCheck(ctx, manager.Snapshot(), time.Now()); ok {
//	    // tell the user about notice.Available
//	}
package update
