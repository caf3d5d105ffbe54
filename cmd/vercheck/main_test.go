package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vercheck/internal/config"
	"vercheck/internal/settings"
)

var cliNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

const cliManifest = `<versions>
  <band id="beta"><latestVersion>3.0.0.0</latestVersion></band>
  <band id="stable">
    <latestVersion>2.1.0.500</latestVersion>
    <downloadUrl>https://downloads.example/vercheck-2.1.zip</downloadUrl>
  </band>
</versions>`

type cliHarness struct {
	t            *testing.T
	out          *bytes.Buffer
	errOut       *bytes.Buffer
	settingsPath string
	server       *httptest.Server
	hits         *atomic.Int32
	copied       []string
	clipboardErr error
}

func newCLIHarness(t *testing.T, body string, status int) *cliHarness {
	t.Helper()
	cleanup := config.ResetForTesting(t)
	t.Cleanup(cleanup)

	h := &cliHarness{
		t:            t,
		out:          &bytes.Buffer{},
		errOut:       &bytes.Buffer{},
		settingsPath: filepath.Join(t.TempDir(), "settings.yaml"),
		hits:         &atomic.Int32{},
	}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(h.server.Close)
	return h
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func (h *cliHarness) run(args ...string) error {
	h.t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	e := &env{
		out:    h.out,
		errOut: h.errOut,
		now:    func() time.Time { return cliNow },
		copyToClipboard: func(s string) error {
			if h.clipboardErr != nil {
				return h.clipboardErr
			}
			h.copied = append(h.copied, s)
			return nil
		},
		spinnerDelay: -1,
	}
	cmd := newRootCmd(e)
	base := []string{"--no-color", "--manifest-url", h.server.URL + "/versions.xml", "--settings-path", h.settingsPath}
	cmd.SetArgs(append(args, base...))
	return cmd.Execute()
}

func (h *cliHarness) loadSettings() settings.Settings {
	h.t.Helper()
	s, err := settings.NewYAMLStore(h.settingsPath).Load(context.Background())
	if err != nil {
		h.t.Fatalf("load settings: %v", err)
	}
	return s
}

func (h *cliHarness) saveSettings(s settings.Settings) {
	h.t.Helper()
	if err := settings.NewYAMLStore(h.settingsPath).Save(context.Background(), s); err != nil {
		h.t.Fatalf("save settings: %v", err)
	}
}

func TestCheckCommand_UpdateAvailable(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, cliManifest, http.StatusOK)

	if err := h.run("check"); err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	got := h.out.String()
	for _, want := range []string{"Version 2.1.0.500 is available.", "https://downloads.example/vercheck-2.1.zip"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if last := h.loadSettings().LastSuccessfulCheck; !last.Equal(cliNow) {
		t.Errorf("LastSuccessfulCheck = %v, want %v", last, cliNow)
	}
}

func TestCheckCommand_StatusMessages(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"up to date", "2.1.0.500", "You are using the latest release."},
		{"ahead", "2.2.0.0", "You are using a nightly build newer than the latest release."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version)
			h := newCLIHarness(t, cliManifest, http.StatusOK)
			if err := h.run("check"); err != nil {
				t.Fatalf("check returned error: %v", err)
			}
			if !strings.Contains(h.out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, h.out.String())
			}
			if strings.Contains(h.out.String(), "Download:") {
				t.Errorf("download link should only be shown when an update is available:\n%s", h.out.String())
			}
		})
	}
}

func TestCheckCommand_FailureIsSurfaced(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, "", http.StatusServiceUnavailable)
	before := settings.Settings{AutomaticCheckEnabled: true, LastSuccessfulCheck: cliNow.AddDate(0, 0, -30)}
	h.saveSettings(before)

	err := h.run("check")
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.Contains(h.errOut.String(), "Update check failed") {
		t.Errorf("stderr missing failure title:\n%s", h.errOut.String())
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("error = %v, want the HTTP status", err)
	}
	if got := h.loadSettings(); !got.Equal(before) {
		t.Errorf("failed check changed settings: %+v", got)
	}
}

func TestCheckCommand_Copy(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, cliManifest, http.StatusOK)

	if err := h.run("check", "--copy"); err != nil {
		t.Fatalf("check --copy returned error: %v", err)
	}
	if len(h.copied) != 1 || h.copied[0] != "https://downloads.example/vercheck-2.1.zip" {
		t.Errorf("copied = %v", h.copied)
	}
	if !strings.Contains(h.out.String(), "copied to clipboard") {
		t.Errorf("output missing confirmation:\n%s", h.out.String())
	}

	h.clipboardErr = errors.New("no clipboard utility")
	if err := h.run("check", "--copy"); err == nil {
		t.Error("clipboard failure should be reported")
	}
}

func TestCheckCommand_CopyWithoutSafeLink(t *testing.T) {
	withVersion(t, "2.0.0.0")
	manifest := `<versions><band id="stable"><latestVersion>2.1.0.0</latestVersion><downloadUrl>file:///etc/passwd</downloadUrl></band></versions>`
	h := newCLIHarness(t, manifest, http.StatusOK)

	if err := h.run("check", "--copy"); err != nil {
		t.Fatalf("check --copy returned error: %v", err)
	}
	if len(h.copied) != 0 {
		t.Errorf("unsafe link copied: %v", h.copied)
	}
	if strings.Contains(h.out.String(), "file://") {
		t.Errorf("unsafe link printed:\n%s", h.out.String())
	}
	if !strings.Contains(h.out.String(), "No download link is available.") {
		t.Errorf("output missing fallback message:\n%s", h.out.String())
	}
}

func TestCheckCommand_DevelopmentBuild(t *testing.T) {
	withVersion(t, "dev")
	h := newCLIHarness(t, cliManifest, http.StatusOK)

	if err := h.run("check"); err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if h.hits.Load() != 0 {
		t.Error("development builds should not fetch the manifest")
	}
	if !strings.Contains(h.out.String(), "development builds") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestAutoCommand(t *testing.T) {
	tests := []struct {
		name      string
		settings  *settings.Settings
		wantFetch bool
	}{
		{"first run", nil, true},
		{"disabled", &settings.Settings{AutomaticCheckEnabled: false}, false},
		{"checked yesterday", &settings.Settings{AutomaticCheckEnabled: true, LastSuccessfulCheck: cliNow.AddDate(0, 0, -1)}, false},
		{"checked eight days ago", &settings.Settings{AutomaticCheckEnabled: true, LastSuccessfulCheck: cliNow.AddDate(0, 0, -8)}, true},
		{"future timestamp", &settings.Settings{AutomaticCheckEnabled: true, LastSuccessfulCheck: cliNow.AddDate(0, 0, 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, "2.0.0.0")
			h := newCLIHarness(t, cliManifest, http.StatusOK)
			if tt.settings != nil {
				h.saveSettings(*tt.settings)
			}

			if err := h.run("auto"); err != nil {
				t.Fatalf("auto returned error: %v", err)
			}
			if fetched := h.hits.Load() > 0; fetched != tt.wantFetch {
				t.Fatalf("fetched = %v, want %v", fetched, tt.wantFetch)
			}
			out := h.out.String()
			if !tt.wantFetch {
				if out != "" {
					t.Errorf("skipped auto check should print nothing, got:\n%s", out)
				}
				return
			}
			if !strings.Contains(out, "Update available:") || !strings.Contains(out, "2.1.0.500") {
				t.Errorf("notice missing:\n%s", out)
			}
			if last := h.loadSettings().LastSuccessfulCheck; !last.Equal(cliNow) {
				t.Errorf("LastSuccessfulCheck = %v, want %v", last, cliNow)
			}
		})
	}
}

func TestAutoCommand_FailureIsSilent(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, "<broken", http.StatusOK)

	if err := h.run("auto"); err != nil {
		t.Fatalf("auto should swallow fetch errors, got %v", err)
	}
	if h.out.Len() != 0 {
		t.Errorf("auto printed output on failure:\n%s", h.out.String())
	}
	if h.loadSettings().HasLastCheck() {
		t.Error("failed auto check should not record a timestamp")
	}
}

func TestSettingsCommands(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, cliManifest, http.StatusOK)

	if err := h.run("settings"); err != nil {
		t.Fatalf("settings returned error: %v", err)
	}
	if !strings.Contains(h.out.String(), "enabled") || !strings.Contains(h.out.String(), "never") {
		t.Errorf("settings output = %q", h.out.String())
	}

	if err := h.run("settings", "disable"); err != nil {
		t.Fatalf("settings disable returned error: %v", err)
	}
	if h.loadSettings().AutomaticCheckEnabled {
		t.Error("settings disable did not persist")
	}

	if err := h.run("settings", "enable"); err != nil {
		t.Fatalf("settings enable returned error: %v", err)
	}
	if !h.loadSettings().AutomaticCheckEnabled {
		t.Error("settings enable did not persist")
	}
}

func TestSettingsCommand_SQLiteBackend(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, cliManifest, http.StatusOK)
	h.settingsPath = filepath.Join(t.TempDir(), "settings.db")

	if err := h.run("settings", "disable", "--settings-backend", "sqlite"); err != nil {
		t.Fatalf("settings disable returned error: %v", err)
	}
	if _, err := os.Stat(h.settingsPath); err != nil {
		t.Fatalf("sqlite database not created: %v", err)
	}
	store, err := settings.OpenSQLiteStore(context.Background(), h.settingsPath)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer func() { _ = store.Close() }()
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AutomaticCheckEnabled {
		t.Error("disable was not written to the sqlite backend")
	}
}

func TestUnknownSettingsBackend(t *testing.T) {
	withVersion(t, "2.0.0.0")
	h := newCLIHarness(t, cliManifest, http.StatusOK)
	if err := h.run("settings", "--settings-backend", "registry"); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestRuntimeOverrides_OnlyChangedFlags(t *testing.T) {
	flags := &rootFlags{debug: true, manifestURL: " https://x.example/v.xml ", timeout: 3 * time.Second}
	changed := func(name string) bool { return name == "manifest-url" || name == "timeout" }

	got := runtimeOverrides(changed, flags)
	if len(got) != 2 {
		t.Fatalf("overrides = %v, want two entries", got)
	}
	if got[config.KeyManifestURL] != "https://x.example/v.xml" {
		t.Errorf("manifest-url override = %v", got[config.KeyManifestURL])
	}
	if got[config.KeyRequestTimeout] != 3*time.Second {
		t.Errorf("timeout override = %v", got[config.KeyRequestTimeout])
	}
	if _, ok := got[config.KeyDebug]; ok {
		t.Error("unchanged --debug should not override config")
	}
}

func TestCapitalize(t *testing.T) {
	if got := capitalize("enable"); got != "Enable" {
		t.Errorf("capitalize() = %q", got)
	}
	if got := capitalize(""); got != "" {
		t.Errorf("capitalize(\"\") = %q", got)
	}
}
