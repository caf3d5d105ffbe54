package main

import (
	"fmt"
	"io"
	"strings"

	"vercheck/internal/settings"
	"vercheck/internal/update"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const noticeWidth = 64

var (
	cPurple = lipgloss.Color("#A78BFA")
	cGreen  = lipgloss.Color("#34D399")
	cYellow = lipgloss.Color("#FBBF24")
	cRed    = lipgloss.Color("#F87171")
	cGray   = lipgloss.Color("#9CA3AF")
)

// printer renders status lines and notices for one output stream.
type printer struct {
	w io.Writer
	r *lipgloss.Renderer
}

func newPrinter(w io.Writer, noColor bool) *printer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{w: w, r: r}
}

func (p *printer) dim() lipgloss.Style { return p.r.NewStyle().Foreground(cGray) }

func (p *printer) statusStyle(status update.Status) lipgloss.Style {
	switch status {
	case update.StatusUpdateAvailable:
		return p.r.NewStyle().Foreground(cYellow).Bold(true)
	case update.StatusAheadOfRelease:
		return p.r.NewStyle().Foreground(cPurple)
	default:
		return p.r.NewStyle().Foreground(cGreen)
	}
}

// Status prints the result of a manual check.
func (p *printer) Status(status update.Status, current update.Version, info update.AvailableVersionInfo) {
	msg := wordwrap.String(status.Message(info.Version), noticeWidth)
	_, _ = fmt.Fprintln(p.w, p.statusStyle(status).Render(msg))
	_, _ = fmt.Fprintln(p.w, p.dim().Render(fmt.Sprintf("Running %s, latest release %s", current, info.Version)))
	if status != update.StatusUpdateAvailable {
		return
	}
	if url, ok := info.DownloadURL(); ok {
		_, _ = fmt.Fprintln(p.w, p.dim().Render("Download:")+" "+url)
	}
}

// Notice prints the boxed message shown when the automatic check finds a
// newer release.
func (p *printer) Notice(n update.Notice) {
	icon := p.r.NewStyle().Foreground(cYellow).Render("⬆")
	label := p.dim().Render("Update available:")
	version := p.r.NewStyle().Foreground(cPurple).Bold(true).Render(n.Available.Version.String())
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Left, icon, " ", label, " ", version)}

	detail := fmt.Sprintf("You are running %s.", n.Current)
	if url, ok := n.DownloadURL(); ok {
		detail += " Download it from " + url
	}
	lines = append(lines, wordwrap.String(detail, noticeWidth))

	box := p.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cPurple).
		Padding(0, 1)
	_, _ = fmt.Fprintln(p.w, box.Render(strings.Join(lines, "\n")))
}

// Failure prints an error from a manual check. Escape sequences in the
// message are stripped since it can carry text from the remote server.
func (p *printer) Failure(err error) {
	title := p.r.NewStyle().Foreground(cRed).Bold(true).Render("Update check failed")
	_, _ = fmt.Fprintln(p.w, title)
	_, _ = fmt.Fprintln(p.w, wordwrap.String(ansi.Strip(err.Error()), noticeWidth))
}

// Settings prints the current settings snapshot.
func (p *printer) Settings(s settings.Settings) {
	state := p.r.NewStyle().Foreground(cGreen).Render("enabled")
	if !s.AutomaticCheckEnabled {
		state = p.r.NewStyle().Foreground(cGray).Render("disabled")
	}
	last := "never"
	if s.HasLastCheck() {
		last = s.LastSuccessfulCheck.UTC().Format(settings.TimestampLayout)
	}
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.dim().Render("Automatic update check:"), state)
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.dim().Render("Last successful check: "), last)
}

// Line prints a plain message.
func (p *printer) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}
