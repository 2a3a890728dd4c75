// Package detail shows the post behind a notification in a scrollable
// viewport. It only uses data that arrived with the notification.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/render"
	"github.com/nhle/fedinotify/internal/theme"
)

// BackMsg signals the parent to navigate back to the notifications list.
type BackMsg struct{}

// DismissMsg asks the parent to dismiss the notification being shown.
type DismissMsg struct {
	NotificationID string
}

// Model is the conversation view component.
type Model struct {
	notification *model.Notification
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
}

// New creates a new conversation view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the conversation view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the conversation view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Dismiss):
			if m.notification != nil {
				id := m.notification.ID
				return m, func() tea.Msg { return DismissMsg{NotificationID: id} }
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the conversation view.
func (m Model) View() string {
	if m.notification == nil || m.notification.Status == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No post selected")
	}

	return m.viewport.View()
}

// renderContent builds the full content string for the viewport.
func (m Model) renderContent() string {
	n := m.notification
	if n == nil || n.Status == nil {
		return ""
	}
	st := n.Status

	var sections []string

	row := render.BuildRow(*n)
	sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(row.Primary))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	author := n.Account.Name()
	if n.Account.Acct != "" {
		author = fmt.Sprintf("%s (@%s)", author, n.Account.Acct)
	}
	sections = append(sections, fmt.Sprintf("%s  %s", metaStyle.Render("Author:"), valStyle.Render(author)))

	if !st.CreatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Posted:"),
			valStyle.Render(st.CreatedAt.Local().Format("2006-01-02 15:04")),
		))
	}
	if st.URL != "" {
		sections = append(sections, fmt.Sprintf("%s     %s", metaStyle.Render("URL:"), valStyle.Render(st.URL)))
	}
	if st.HasPoll() {
		state := "open"
		if st.Poll.Expired {
			state = "ended"
		}
		sections = append(sections, fmt.Sprintf("%s    %s", metaStyle.Render("Poll:"), valStyle.Render(state)))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	body := render.PlainText(st.Content)
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No text")
	} else {
		body = lipgloss.NewStyle().Width(max(min(m.width-4, 80), 20)).Render(body)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification updates the notification being displayed and
// re-renders the content.
func (m *Model) SetNotification(n model.Notification) {
	m.notification = &n
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// NotificationID returns the ID of the notification on screen, if any.
func (m Model) NotificationID() string {
	if m.notification == nil {
		return ""
	}
	return m.notification.ID
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.notification != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
