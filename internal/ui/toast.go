package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fedinotify/internal/theme"
)

// ToastLevel selects the styling of a toast.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastError
)

// ToastMsg asks the root model to show a transient message.
type ToastMsg struct {
	Text  string
	Level ToastLevel
}

// ToastExpiredMsg hides the toast it was scheduled for. Seq guards
// against an old timer hiding a newer toast.
type ToastExpiredMsg struct {
	Seq int
}

// Notify returns a command emitting an informational toast.
func Notify(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text, Level: ToastInfo} }
}

// NotifyError returns a command emitting an error toast.
func NotifyError(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text, Level: ToastError} }
}

// Toast is the single transient message line shown in the status bar.
type Toast struct {
	text  string
	level ToastLevel
	seq   int
	ttl   time.Duration
}

// NewToast creates a toast that hides itself after ttl.
func NewToast(ttl time.Duration) Toast {
	return Toast{ttl: ttl}
}

// Show replaces the current toast and schedules its expiry.
func (t *Toast) Show(msg ToastMsg) tea.Cmd {
	t.seq++
	t.text = msg.Text
	t.level = msg.Level

	seq := t.seq
	return tea.Tick(t.ttl, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}

// Expire hides the toast if msg belongs to the one currently shown.
func (t *Toast) Expire(msg ToastExpiredMsg) {
	if msg.Seq == t.seq {
		t.text = ""
	}
}

// Visible reports whether a toast is showing.
func (t Toast) Visible() bool { return t.text != "" }

// Text returns the current toast text.
func (t Toast) Text() string { return t.text }

// Level returns the current toast level.
func (t Toast) Level() ToastLevel { return t.level }

// View renders the toast with the style for its level.
func (t Toast) View() string {
	if t.level == ToastError {
		return theme.ToastErrorStyle.Render(t.text)
	}
	return theme.ToastStyle.Render(t.text)
}
