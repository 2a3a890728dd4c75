// Package notifications implements the notifications screen: it loads the
// collection once, renders one row per notification and lets the user
// dismiss one, clear all (behind a confirmation dialog) or follow back.
package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/render"
	"github.com/nhle/fedinotify/internal/theme"
	"github.com/nhle/fedinotify/internal/ui"
)

// Phase is the load state of the screen.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Model is the notifications screen.
type Model struct {
	service Service
	keys    *keys.KeyMap
	timeout time.Duration
	// session is stamped on every result message so late results from
	// an earlier sign-in can be told apart.
	session uint64

	list    list.Model
	spinner spinner.Model

	phase         Phase
	errorCode     string
	notifications []model.Notification

	deleteDialogOpen bool
	confirmForm      *huh.Form
	// confirmClear lives on the heap so the form keeps writing to the
	// same place after the model is copied.
	confirmClear *bool

	width, height int
}

// New creates the screen. A zero timeout uses defaultTimeout.
func New(svc Service, k *keys.KeyMap, timeout time.Duration, width, height int) Model {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	l := list.New([]list.Item{}, ItemDelegate{}, width, listHeight(height))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	// The default paging keys include f and d, which this screen binds.
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"))
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		service: svc,
		keys:    k,
		timeout: timeout,
		list:    l,
		spinner: sp,
		phase:   PhaseLoading,
		width:   width,
		height:  height,
	}
}

func listHeight(height int) int {
	// Subheader and blank line.
	h := height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// Init issues the initial fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetch(m.service, m.timeout, m.session))
}

// Reload re-enters the loading phase and fetches again.
func (m *Model) Reload() tea.Cmd {
	m.phase = PhaseLoading
	m.errorCode = ""
	m.closeDialog()
	return tea.Batch(m.spinner.Tick, fetch(m.service, m.timeout, m.session))
}

// SetSession sets the stamp carried by results of calls started from now on.
func (m *Model) SetSession(id uint64) { m.session = id }

// Session returns the stamp set by SetSession.
func (m Model) Session() uint64 { return m.session }

// SetSize resizes the screen body.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
	if m.confirmForm != nil {
		m.confirmForm = m.confirmForm.WithWidth(m.dialogWidth())
	}
}

// Phase returns the current load phase.
func (m Model) Phase() Phase { return m.phase }

// ErrorCode returns the message of the failed load, if any.
func (m Model) ErrorCode() string { return m.errorCode }

// Notifications returns the current local collection in display order.
func (m Model) Notifications() []model.Notification { return m.notifications }

// Rows returns the rendered rows in display order.
func (m Model) Rows() []render.Row { return render.BuildRows(m.notifications) }

// DeleteDialogOpen reports whether the clear-all confirmation is showing.
func (m Model) DeleteDialogOpen() bool { return m.deleteDialogOpen }

// Capturing reports whether the screen wants every key, so the parent
// should not interpret global shortcuts.
func (m Model) Capturing() bool { return m.deleteDialogOpen }

// Empty reports whether a successful load produced no notifications.
func (m Model) Empty() bool {
	return m.phase == PhaseLoaded && len(m.notifications) == 0
}

// Dismiss returns the command dismissing the notification with id. The
// local collection changes when the DismissedMsg arrives.
func (m Model) Dismiss(id string) tea.Cmd {
	return dismiss(m.service, m.timeout, m.session, id)
}

// ToggleDeleteDialog opens the clear-all confirmation, or closes it if it
// is already open. It only opens when there is something to clear.
func (m *Model) ToggleDeleteDialog() tea.Cmd {
	if m.deleteDialogOpen {
		m.closeDialog()
		return nil
	}
	if m.phase != PhaseLoaded || len(m.notifications) == 0 {
		return nil
	}

	m.confirmClear = new(bool)
	m.confirmForm = m.buildConfirmForm()
	m.deleteDialogOpen = true
	return m.confirmForm.Init()
}

// ResolveClearDialog closes the confirmation. When confirmed it returns
// the command that clears every notification on the server.
func (m *Model) ResolveClearDialog(confirmed bool) tea.Cmd {
	if !m.deleteDialogOpen {
		return nil
	}
	m.closeDialog()
	if !confirmed {
		return nil
	}
	return clearAll(m.service, m.timeout, m.session)
}

func (m *Model) closeDialog() {
	m.deleteDialogOpen = false
	m.confirmForm = nil
	m.confirmClear = nil
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete all notifications?").
				Description(
					"Are you sure you want to delete all notifications? " +
						"This action cannot be undone.",
				).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirmClear),
		),
	).WithShowHelp(false).WithWidth(m.dialogWidth())
}

func (m Model) dialogWidth() int {
	w := m.width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Update handles result messages, keys and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return m.handleLoaded(msg)

	case DismissedMsg:
		if msg.Err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't delete notification: %v", msg.Err))
		}
		m.remove(msg.ID)
		cmd := m.syncItems()
		return m, tea.Batch(cmd, ui.Notify("Notification deleted."))

	case ClearedMsg:
		if msg.Err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't delete notifications: %v", msg.Err))
		}
		m.notifications = nil
		cmd := m.syncItems()
		return m, tea.Batch(cmd, ui.Notify("All notifications deleted."))

	case FollowedMsg:
		if msg.Err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't follow account: %v", msg.Err))
		}
		if msg.Relationship != nil && msg.Relationship.Requested && !msg.Relationship.Following {
			return m, ui.Notify("Follow request sent.")
		}
		return m, ui.Notify("You are now following this account.")

	case spinner.TickMsg:
		if m.phase != PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.deleteDialogOpen {
			return m.updateDialog(msg)
		}
		return m.handleKeys(msg)
	}

	if m.deleteDialogOpen {
		return m.updateDialog(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.phase = PhaseErrored
		m.errorCode = msg.Err.Error()
		m.notifications = nil
		cmd := m.syncItems()
		return m, cmd
	}
	m.phase = PhaseLoaded
	m.errorCode = ""
	m.notifications = msg.Notifications
	cmd := m.syncItems()
	m.list.Select(0)
	return m, cmd
}

// remove drops the first notification with id, keeping the order of the
// rest.
func (m *Model) remove(id string) {
	for i, n := range m.notifications {
		if n.ID != id {
			continue
		}
		out := make([]model.Notification, 0, len(m.notifications)-1)
		out = append(out, m.notifications[:i]...)
		out = append(out, m.notifications[i+1:]...)
		m.notifications = out
		return
	}
}

func (m *Model) syncItems() tea.Cmd {
	rows := render.BuildRows(m.notifications)
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Row: r}
	}
	return m.list.SetItems(items)
}

func (m Model) updateDialog(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		cmd := m.ResolveClearDialog(false)
		return m, cmd
	}

	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}

	switch m.confirmForm.State {
	case huh.StateCompleted:
		cmd = m.ResolveClearDialog(*m.confirmClear)
	case huh.StateAborted:
		cmd = m.ResolveClearDialog(false)
	}
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.Reload()
		return m, cmd

	case key.Matches(msg, m.keys.ClearAll):
		cmd := m.ToggleDeleteDialog()
		return m, cmd
	}

	if m.phase != PhaseLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Dismiss):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, dismiss(m.service, m.timeout, m.session, row.ID)

	case key.Matches(msg, m.keys.Follow):
		row, ok := m.selected()
		if !ok || row.Action != render.ActionFollow {
			return m, nil
		}
		return m, follow(m.service, m.timeout, m.session, row.ActionTarget)

	case key.Matches(msg, m.keys.Action):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		switch row.Action {
		case render.ActionFollow:
			return m, follow(m.service, m.timeout, m.session, row.ActionTarget)
		case render.ActionConversation:
			n, found := m.find(row.ID)
			if !found {
				return m, nil
			}
			return m, func() tea.Msg { return OpenConversationMsg{Notification: n} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (render.Row, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return render.Row{}, false
	}
	return it.Row, true
}

func (m Model) find(id string) (model.Notification, bool) {
	for _, n := range m.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// Hints returns the key hints for the status bar.
func (m Model) Hints() string {
	if m.deleteDialogOpen {
		return "←/→ choose  enter confirm  esc cancel"
	}
	if m.phase == PhaseLoaded && len(m.notifications) > 0 {
		return "enter open/follow  f follow  d dismiss  D clear all  r refresh  ? help"
	}
	return "r refresh  A accounts  ? help  q quit"
}

// View renders the screen body for the current phase.
func (m Model) View() string {
	switch m.phase {
	case PhaseLoading:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.spinner.View() + " Loading notifications...",
		)

	case PhaseErrored:
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("Bummer."),
			"Something went wrong when loading this timeline.",
			"",
			theme.SecondaryTextStyle.Render(m.errorCode),
		)
		return theme.ErrorPanelStyle.Render(body)
	}

	if len(m.notifications) == 0 {
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("All clear!"),
			"It looks like you have no notifications. Why not get the "+
				"conversation going with a new post?",
		)
		return theme.PanelStyle.Width(m.dialogWidth()).Render(body)
	}

	var b strings.Builder
	sub := theme.SubheaderStyle.Render("Recent notifications")
	hint := theme.HelpStyle.Render("D Clear All")
	gap := m.width - lipgloss.Width(sub) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(sub + strings.Repeat(" ", gap) + hint)
	b.WriteString("\n\n")

	if m.deleteDialogOpen && m.confirmForm != nil {
		dialog := theme.PanelStyle.Render(m.confirmForm.View())
		b.WriteString(lipgloss.Place(m.width, listHeight(m.height),
			lipgloss.Center, lipgloss.Center, dialog))
		return b.String()
	}

	b.WriteString(m.list.View())
	return b.String()
}
