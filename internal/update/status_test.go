package update

import (
	"sync"
	"testing"
)

func TestClassify(t *testing.T) {
	versions := sampleVersions()
	for _, a := range versions {
		if got := Classify(a, a); got != StatusUpToDate {
			t.Errorf("Classify(%s, %s) = %s, want %s", a, a, got, StatusUpToDate)
		}
		for _, b := range versions {
			got := Classify(a, b)
			switch {
			case a.LessThan(b) && got != StatusUpdateAvailable:
				t.Errorf("Classify(%s, %s) = %s, want %s", a, b, got, StatusUpdateAvailable)
			case a.GreaterThan(b) && got != StatusAheadOfRelease:
				t.Errorf("Classify(%s, %s) = %s, want %s", a, b, got, StatusAheadOfRelease)
			}
		}
	}
}

func TestStatusMessage(t *testing.T) {
	available := Version{Major: 9, Minor: 0, Build: 0, Revision: 1}
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUpToDate, "You are using the latest release."},
		{StatusUpdateAvailable, "Version 9.0.0.1 is available."},
		{StatusAheadOfRelease, "You are using a nightly build newer than the latest release."},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Message(available); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := Status(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get(); ok {
		t.Fatal("new cache should be empty")
	}
	if _, _, ok := c.Classify(Version{Major: 1}); ok {
		t.Fatal("Classify on an empty cache should report no result")
	}

	first := NewAvailableVersionInfo(Band{LatestVersion: Version{Major: 1}, DownloadURL: "https://a"})
	second := NewAvailableVersionInfo(Band{LatestVersion: Version{Major: 2}})
	c.Set(first)
	c.Set(second)

	got, ok := c.Get()
	if !ok || got != second {
		t.Errorf("Get() = %+v, %v; want the last value set", got, ok)
	}
	if _, hasURL := got.DownloadURL(); hasURL {
		t.Error("value should be replaced wholesale, not merged")
	}

	status, info, ok := c.Classify(Version{Major: 1})
	if !ok || status != StatusUpdateAvailable || info.Version.Major != 2 {
		t.Errorf("Classify() = %s, %+v, %v", status, info, ok)
	}
}

func TestCacheInstancesAreIndependent(t *testing.T) {
	a, b := NewCache(), NewCache()
	a.Set(NewAvailableVersionInfo(Band{LatestVersion: Version{Major: 3}}))
	if _, ok := b.Get(); ok {
		t.Error("writing one cache should not affect another")
	}
}

func TestCacheConcurrentSetIsLastWriteWins(t *testing.T) {
	var c Cache
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Set(NewAvailableVersionInfo(Band{LatestVersion: Version{Major: i}}))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = c.Get()
		}()
	}
	wg.Wait()

	got, ok := c.Get()
	if !ok {
		t.Fatal("cache should hold a value after concurrent writes")
	}
	if got.Version.Major < 0 || got.Version.Major >= 50 {
		t.Errorf("cache holds a value no writer stored: %+v", got)
	}
}
