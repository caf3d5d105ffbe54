package update

import (
	"context"
	"errors"
	"time"

	appErrors "vercheck/internal/errors"
	"vercheck/internal/settings"

	"go.uber.org/zap"
)

// CheckInterval is how old the last successful check must be before the
// automatic check runs again.
const CheckInterval = 7 * 24 * time.Hour

// ShouldCheck reports whether an automatic check is due. A last check that
// lies in the future is treated as invalid and forces a check.
func ShouldCheck(s settings.Settings, now time.Time) bool {
	if !s.AutomaticCheckEnabled {
		return false
	}
	if !s.HasLastCheck() {
		return true
	}
	last := s.LastSuccessfulCheck
	if last.After(now) {
		return true
	}
	return now.Sub(last) > CheckInterval
}

// CheckRecorder persists the time of the last successful check.
// *settings.Manager implements it.
type CheckRecorder interface {
	SetLastSuccessfulCheck(ctx context.Context, at time.Time) error
}

// Notice describes a release newer than the running version.
type Notice struct {
	Current   Version
	Available AvailableVersionInfo
}

// DownloadURL returns the validated link for the newer release, if any.
func (n Notice) DownloadURL() (string, bool) {
	return n.Available.DownloadURL()
}

// Scheduler decides when the automatic check runs and records successful
// checks. It holds no state of its own between calls.
type Scheduler struct {
	checker  *Checker
	current  Version
	recorder CheckRecorder
	logger   *zap.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger that receives swallowed check failures.
func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler for the running version current.
func NewScheduler(checker *Checker, current Version, recorder CheckRecorder, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		checker:  checker,
		current:  current,
		recorder: recorder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaybeCheck runs the automatic check if it is due for snapshot at now.
// It returns a Notice and true only when a newer release was found.
// Failures are logged and reported as no result.
func (s *Scheduler) MaybeCheck(ctx context.Context, snapshot settings.Settings, now time.Time) (Notice, bool) {
	if !ShouldCheck(snapshot, now) {
		s.logger.Debug("automatic update check skipped",
			zap.Bool("enabled", snapshot.AutomaticCheckEnabled),
			zap.Time("last_check", snapshot.LastSuccessfulCheck))
		return Notice{}, false
	}

	info, err := s.run(ctx, now)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("automatic update check cancelled", zap.Error(err))
		} else {
			s.logger.Warn("automatic update check failed",
				zap.String("code", string(appErrors.CodeOf(err))),
				zap.String("url", s.checker.ManifestURL()),
				zap.Error(err))
		}
		return Notice{}, false
	}

	if !info.Version.GreaterThan(s.current) {
		return Notice{}, false
	}
	return Notice{Current: s.current, Available: info}, true
}

// Outcome is what MaybeCheckAsync delivers.
type Outcome struct {
	Notice Notice
	Found  bool
}

// MaybeCheckAsync runs MaybeCheck on its own goroutine. The returned channel
// receives exactly one Outcome and is then closed.
func (s *Scheduler) MaybeCheckAsync(ctx context.Context, snapshot settings.Settings, now time.Time) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		n, found := s.MaybeCheck(ctx, snapshot, now)
		ch <- Outcome{Notice: n, Found: found}
	}()
	return ch
}

// CheckNow runs a check regardless of the policy, as requested by the user.
// Errors are returned rather than swallowed. A successful check is recorded
// like an automatic one.
func (s *Scheduler) CheckNow(ctx context.Context, now time.Time) (AvailableVersionInfo, Status, error) {
	info, err := s.run(ctx, now)
	if err != nil {
		return AvailableVersionInfo{}, StatusUpToDate, err
	}
	return info, Classify(s.current, info.Version), nil
}

// run fetches and, once the result is committed to the cache, records now.
// The record uses a context detached from cancellation so a successful
// check is never half applied.
func (s *Scheduler) run(ctx context.Context, now time.Time) (AvailableVersionInfo, error) {
	info, err := s.checker.Check(ctx)
	if err != nil {
		return AvailableVersionInfo{}, err
	}
	s.logger.Debug("update check succeeded",
		zap.Stringer("available", info.Version),
		zap.Stringer("current", s.current))

	if s.recorder != nil {
		if err := s.recorder.SetLastSuccessfulCheck(context.WithoutCancel(ctx), now); err != nil {
			s.logger.Warn("failed to record successful update check", zap.Error(err))
		}
	}
	return info, nil
}

// IsNetworkFailure reports whether err came from the transport.
func IsNetworkFailure(err error) bool {
	return appErrors.IsCode(err, appErrors.CodeNetworkFailure)
}

// IsParseFailure reports whether err came from a malformed manifest.
func IsParseFailure(err error) bool {
	return appErrors.IsCode(err, appErrors.CodeParseFailed)
}

// IsCancelled reports whether err is a context cancellation or deadline.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
