// Package ui provides terminal styling for bn CLI output, with adaptive
// light/dark colors and agent-mode plain text.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/steveyegge/beans/internal/types"
)

// Semantic colors (adaptive light/dark).
var (
	ColorOpen = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
	ColorProgress = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorClosed = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorBlocked = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
)

var (
	OpenStyle     = lipgloss.NewStyle().Foreground(ColorOpen)
	ProgressStyle = lipgloss.NewStyle().Foreground(ColorProgress)
	ClosedStyle   = lipgloss.NewStyle().Foreground(ColorClosed)
	BlockedStyle  = lipgloss.NewStyle().Foreground(ColorBlocked)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	HeaderStyle   = lipgloss.NewStyle().Bold(true)
)

// Status icons.
const (
	IconOpen     = "○"
	IconProgress = "◐"
	IconClosed   = "●"
	IconBlocked  = "✗"
	IconReady    = "✓"
)

var colorDisabled bool

// DisableColor forces plain output (--no-color, --json).
func DisableColor() { colorDisabled = true }

// ShouldUseColor reports whether styled output is appropriate: colors are
// enabled, NO_COLOR is unset, and stdout is a terminal.
func ShouldUseColor() bool {
	if colorDisabled || IsAgentMode() {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.NewOutput(os.Stdout).ColorProfile() != termenv.Ascii
}

// IsAgentMode reports whether output should stay machine-friendly
// (BEANS_AGENT=1 in delegated sessions).
func IsAgentMode() bool {
	return os.Getenv("BEANS_AGENT") != ""
}

// StatusLabel renders a status with its icon, styled when appropriate.
func StatusLabel(status types.Status) string {
	var icon string
	var style lipgloss.Style
	switch status {
	case types.StatusOpen:
		icon, style = IconOpen, OpenStyle
	case types.StatusInProgress:
		icon, style = IconProgress, ProgressStyle
	case types.StatusClosed:
		icon, style = IconClosed, ClosedStyle
	default:
		return string(status)
	}
	label := icon + " " + string(status)
	if !ShouldUseColor() {
		return label
	}
	return style.Render(label)
}

// Muted renders dimmed detail text.
func Muted(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return MutedStyle.Render(s)
}

// Header renders a bold section heading.
func Header(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return HeaderStyle.Render(s)
}
