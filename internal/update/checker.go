package update

import (
	"context"

	appErrors "vercheck/internal/errors"
)

// Checker runs the fetch pipeline: fetch the manifest, select a band, build
// the available version info and store it in the cache.
type Checker struct {
	manifestURL string
	fetcher     Fetcher
	cache       *Cache
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithFetcher replaces the default ManifestClient.
func WithFetcher(f Fetcher) CheckerOption {
	return func(c *Checker) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// WithCache shares a cache between checkers. By default each Checker owns
// a fresh one.
func WithCache(cache *Cache) CheckerOption {
	return func(c *Checker) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// NewChecker creates a checker for the manifest at manifestURL.
func NewChecker(manifestURL string, opts ...CheckerOption) *Checker {
	c := &Checker{
		manifestURL: manifestURL,
		fetcher:     NewManifestClient(),
		cache:       NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the cache written by this checker.
func (c *Checker) Cache() *Cache {
	return c.cache
}

// ManifestURL returns the URL this checker fetches.
func (c *Checker) ManifestURL() string {
	return c.manifestURL
}

// Check runs one fetch and, on success, replaces the cached value.
// If ctx is cancelled the cache is left as it was and ctx.Err() is returned.
func (c *Checker) Check(ctx context.Context) (AvailableVersionInfo, error) {
	bands, err := c.fetcher.Fetch(ctx, c.manifestURL)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return AvailableVersionInfo{}, ctxErr
	}
	if err != nil {
		return AvailableVersionInfo{}, err
	}
	if len(bands) == 0 {
		return AvailableVersionInfo{}, appErrors.New(appErrors.CodeParseFailed, "manifest has no bands", nil)
	}

	info := NewAvailableVersionInfo(SelectBand(bands))
	c.cache.Set(info)
	return info, nil
}

// CheckResult is the outcome of CheckAsync.
type CheckResult struct {
	Info AvailableVersionInfo
	Err  error
}

// CheckAsync runs Check on its own goroutine. The returned channel receives
// exactly one result and is then closed.
func (c *Checker) CheckAsync(ctx context.Context) <-chan CheckResult {
	ch := make(chan CheckResult, 1)
	go func() {
		defer close(ch)
		info, err := c.Check(ctx)
		ch <- CheckResult{Info: info, Err: err}
	}()
	return ch
}
