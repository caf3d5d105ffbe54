package main

import (
	"fmt"
	"net/url"

	"vercheck/internal/config"
	"vercheck/internal/debug"

	"github.com/spf13/cobra"
)

func newCheckCmd(e *env) *cobra.Command {
	var copyLink bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for a newer release now",
		Long:  "Fetch the release manifest, report how the running version compares with the latest release and record the check.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p := newPrinter(e.out, config.GetBool(config.KeyNoColor))

			svc, err := e.openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if !svc.checkable {
				p.Line("Update checks are disabled for development builds (version %s).", Version)
				return nil
			}

			spin := newCheckSpinner(e.errOut, e.spinnerDelay, "Checking for updates...")
			if u, err := url.Parse(svc.checker.ManifestURL()); err == nil && u.Host != "" {
				spin.Message(fmt.Sprintf("Checking %s for updates...", u.Host))
			}
			info, status, err := svc.scheduler.CheckNow(ctx, e.now())
			spin.Stop()
			if err != nil {
				errPrinter := newPrinter(e.errOut, config.GetBool(config.KeyNoColor))
				errPrinter.Failure(err)
				return fmt.Errorf("update check failed: %w", err)
			}

			p.Status(status, svc.running, info)

			if !copyLink {
				return nil
			}
			link, ok := info.DownloadURL()
			if !ok {
				p.Line("No download link is available.")
				return nil
			}
			if err := e.copyToClipboard(link); err != nil {
				debug.Logf("copy to clipboard: %v", err)
				return fmt.Errorf("copy download link: %w", err)
			}
			p.Line("Download link copied to clipboard.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyLink, "copy", false, "Copy the download link to the clipboard")
	return cmd
}

func newAutoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Run the automatic check if it is due",
		Long:  "Run the update check only when it is enabled and the last successful check is more than seven days old. Prints nothing unless a newer release is found.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := e.openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			if !svc.checkable {
				debug.Logf("skipping automatic check for development build %q", Version)
				return nil
			}

			outcome := <-svc.scheduler.MaybeCheckAsync(ctx, svc.manager.Snapshot(), e.now())
			if outcome.Found {
				newPrinter(e.out, config.GetBool(config.KeyNoColor)).Notice(outcome.Notice)
			}
			return nil
		},
	}
}

func newSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the automatic update check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = manager.Close() }()
			newPrinter(e.out, config.GetBool(config.KeyNoColor)).Settings(manager.Snapshot())
			return nil
		},
	}
	cmd.AddCommand(newToggleCmd(e, "enable", true))
	cmd.AddCommand(newToggleCmd(e, "disable", false))
	return cmd
}

func newToggleCmd(e *env, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s the automatic update check", capitalize(use)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = manager.Close() }()

			if err := manager.SetAutomaticCheckEnabled(cmd.Context(), enabled); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			newPrinter(e.out, config.GetBool(config.KeyNoColor)).Settings(manager.Snapshot())
			return nil
		},
	}
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			printVersion(e.out)
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
