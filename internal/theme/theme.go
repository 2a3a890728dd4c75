package theme

import (
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// SubheaderStyle labels a list section ("Recent notifications").
var SubheaderStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Bold(true).
	PaddingLeft(2)

// PanelStyle wraps detail content and overlays.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorPanelStyle frames the load-failure panel.
var ErrorPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorRed)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// SecondaryTextStyle renders the excerpt line under a row.
var SecondaryTextStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ToastStyle renders informational toasts in the status bar.
var ToastStyle = lipgloss.NewStyle().
	Foreground(ColorGreen).
	Background(ColorSubtle).
	Padding(0, 1)

// ToastErrorStyle renders error toasts in the status bar.
var ToastErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed).
	Background(ColorSubtle).
	Padding(0, 1)

// AvatarStyle returns the badge style used as an avatar placeholder.
// The color is picked from the initial so an account keeps its color.
func AvatarStyle(initial string) lipgloss.Style {
	palette := []lipgloss.AdaptiveColor{
		ColorBlue, ColorGreen, ColorYellow, ColorOrange, ColorMagenta,
	}
	r, _ := utf8.DecodeRuneInString(initial)
	idx := int(r) % len(palette)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Dark: "#1A202C", Light: "#F8F9FA"}).
		Background(palette[idx]).
		Padding(0, 1)
}

// ActionStyle returns a color-coded style for a row's action badge.
func ActionStyle(action string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch action {
	case "follow":
		return base.Foreground(ColorGreen)
	case "conversation":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
