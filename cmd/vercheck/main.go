package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"vercheck/internal/config"
	"vercheck/internal/debug"
	appErrors "vercheck/internal/errors"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultSpinnerDelay = 250 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(defaultEnv()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the process collaborators so tests can replace them.
type env struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	copyToClipboard func(string) error
	// httpClient replaces the manifest client's HTTP client when set.
	httpClient *http.Client
	// spinnerDelay < 0 disables the progress spinner.
	spinnerDelay time.Duration
}

func defaultEnv() *env {
	delay := defaultSpinnerDelay
	if !isTerminal(os.Stderr) {
		delay = -1
	}
	return &env{
		out:             os.Stdout,
		errOut:          os.Stderr,
		now:             time.Now,
		copyToClipboard: clipboard.WriteAll,
		spinnerDelay:    delay,
	}
}

type rootFlags struct {
	debug           bool
	noColor         bool
	manifestURL     string
	timeout         time.Duration
	settingsBackend string
	settingsPath    string
}

func newRootCmd(e *env) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "vercheck",
		Short:         "Check whether a newer release is available",
		Long:          "vercheck fetches the release manifest, compares the latest stable band with the running version and manages the automatic update check.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(e, cmd.Flags().Changed, flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			debug.Close()
		},
	}
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.debug, "debug", false, "Write diagnostics to ~/.vercheck/debug.log (or set VC_DEBUG=true)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&flags.manifestURL, "manifest-url", config.DefaultManifestURL, "URL of the release manifest")
	pf.DurationVar(&flags.timeout, "timeout", config.DefaultRequestTimeout, "Timeout for the manifest request")
	pf.StringVar(&flags.settingsBackend, "settings-backend", config.BackendYAML, "Where settings are stored (yaml, sqlite)")
	pf.StringVar(&flags.settingsPath, "settings-path", "", "Path of the settings file or database")

	cmd.AddCommand(newCheckCmd(e))
	cmd.AddCommand(newAutoCmd(e))
	cmd.AddCommand(newSettingsCmd(e))
	cmd.AddCommand(newVersionCmd(e))
	return cmd
}

// setup loads configuration, applies explicitly set flags on top of it and
// starts diagnostics logging.
func setup(e *env, changed func(string) bool, flags *rootFlags) error {
	if err := config.Initialize(); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "initialize config", err)
	}
	if err := config.ApplyOverrides(runtimeOverrides(changed, flags)); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "apply flags", err)
	}

	if err := debug.Init(debug.Options{
		Enabled:    config.GetBool(config.KeyDebug),
		Path:       config.GetString(config.KeyLogPath),
		MaxSizeMB:  config.GetInt(config.KeyLogMaxSizeMB),
		MaxBackups: config.GetInt(config.KeyLogMaxBackups),
	}); err != nil {
		_, _ = fmt.Fprintf(e.errOut, "Warning: debug logging unavailable: %v\n", err)
	}
	debug.Logf("vercheck %s starting", Version)
	return nil
}

// runtimeOverrides returns config overrides for the flags set on the
// command line. Flags left at their defaults do not mask config files or
// environment variables.
func runtimeOverrides(changed func(string) bool, flags *rootFlags) map[string]any {
	overrides := map[string]any{}
	if changed("debug") {
		overrides[config.KeyDebug] = flags.debug
	}
	if changed("no-color") {
		overrides[config.KeyNoColor] = flags.noColor
	}
	if changed("manifest-url") {
		overrides[config.KeyManifestURL] = strings.TrimSpace(flags.manifestURL)
	}
	if changed("timeout") {
		overrides[config.KeyRequestTimeout] = flags.timeout
	}
	if changed("settings-backend") {
		overrides[config.KeySettingsBackend] = strings.TrimSpace(flags.settingsBackend)
	}
	if changed("settings-path") {
		overrides[config.KeySettingsPath] = strings.TrimSpace(flags.settingsPath)
	}
	return overrides
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
