// Package ui provides colored terminal output helpers for the pf CLI.
// Color is applied only when stdout is a terminal and NO_COLOR is
// unset, so piped output stays clean for agents and scripts.
package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// ColorEnabled reports whether styled output should be emitted.
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			return
		}
		fd := os.Stdout.Fd()
		colorEnabled = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	})
	return colorEnabled
}

// SetColorEnabled overrides detection, for tests and --json output.
func SetColorEnabled(on bool) {
	colorOnce.Do(func() {})
	colorEnabled = on
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
)

func render(s lipgloss.Style, text string) string {
	if !ColorEnabled() {
		return text
	}
	return s.Render(text)
}

// RenderPass styles success text green.
func RenderPass(text string) string { return render(passStyle, text) }

// RenderWarn styles warning text yellow.
func RenderWarn(text string) string { return render(warnStyle, text) }

// RenderFail styles failure text red.
func RenderFail(text string) string { return render(failStyle, text) }

// RenderAccent styles emphasized text.
func RenderAccent(text string) string { return render(accentStyle, text) }

// RenderMuted styles secondary text.
func RenderMuted(text string) string { return render(mutedStyle, text) }

// RenderID styles a record ID such as PLAN-001.
func RenderID(id string) string { return render(idStyle, id) }

// RenderPassIcon returns a green check mark.
func RenderPassIcon() string { return RenderPass("✓") }

// RenderWarnIcon returns a yellow warning sign.
func RenderWarnIcon() string { return RenderWarn("⚠") }

// RenderFailIcon returns a red cross.
func RenderFailIcon() string { return RenderFail("✗") }

// StatusStyle maps a plan status to its rendered form.
func StatusStyle(status string) string {
	if !ColorEnabled() {
		return status
	}
	switch status {
	case "approved", "completed":
		return passStyle.Render(status)
	case "pending_review", "in_progress":
		return warnStyle.Render(status)
	case "rejected":
		return failStyle.Render(status)
	case "archived":
		return mutedStyle.Render(status)
	default:
		return status
	}
}
