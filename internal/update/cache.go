package update

import "sync/atomic"

// Cache holds the most recent successfully fetched release. The zero value
// is an empty cache. Concurrent writers race and the last Set wins.
type Cache struct {
	latest atomic.Pointer[AvailableVersionInfo]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Set replaces the cached value.
func (c *Cache) Set(info AvailableVersionInfo) {
	c.latest.Store(&info)
}

// Get returns a copy of the cached value, if any. It never blocks.
func (c *Cache) Get() (AvailableVersionInfo, bool) {
	p := c.latest.Load()
	if p == nil {
		return AvailableVersionInfo{}, false
	}
	return *p, true
}

// Classify compares current with the cached release. ok is false while the
// cache is empty.
func (c *Cache) Classify(current Version) (status Status, info AvailableVersionInfo, ok bool) {
	info, ok = c.Get()
	if !ok {
		return StatusUpToDate, AvailableVersionInfo{}, false
	}
	return Classify(current, info.Version), info, true
}
