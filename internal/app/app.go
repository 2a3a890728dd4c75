// Package app holds the root Bubble Tea model. It routes between the
// notifications screen and the surrounding views, owns the toast line and
// builds the API service for the active account.
package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/nhle/fedinotify/internal/credential"
	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/store"
	"github.com/nhle/fedinotify/internal/theme"
	"github.com/nhle/fedinotify/internal/ui"
	"github.com/nhle/fedinotify/internal/ui/accounts"
	"github.com/nhle/fedinotify/internal/ui/command"
	"github.com/nhle/fedinotify/internal/ui/detail"
	helpview "github.com/nhle/fedinotify/internal/ui/help"
	"github.com/nhle/fedinotify/internal/ui/notifications"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewNotifications ViewState = iota
	ViewDetail
	ViewAccounts
	ViewHelp
	ViewCommand
)

// Options configures New.
type Options struct {
	Store       store.Store
	Credentials credential.Store
	Config      *model.AppConfig

	// Profile and Token select the account to start with. A nil Profile
	// opens the accounts view first.
	Profile *model.AccountProfile
	Token   string

	// NewService overrides how the API service is built.
	NewService ServiceFactory
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the active session.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	cfg          *model.AppConfig

	store       store.Store
	credentials credential.Store
	newService  ServiceFactory
	session     *session
	sessions    uint64

	notifications notifications.Model
	detail        detail.Model
	accountsView  accounts.Model
	helpView      helpview.Model
	commandView   command.Model

	toast ui.Toast
	ready bool
}

// New creates the root application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = &model.AppConfig{}
	}
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewNotifications,
		keys:        k,
		cfg:         cfg,
		store:       opts.Store,
		credentials: opts.Credentials,
		newService:  opts.NewService,
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		toast:       ui.NewToast(time.Duration(cfg.Display.ToastSeconds) * time.Second),
		layout:      ui.NewLayout(80, 24),
	}
	if m.newService == nil {
		m.newService = mastodonFactory(cfg.HTTP)
	}

	activeID := ""
	if opts.Profile != nil {
		m.session = m.startSession(*opts.Profile, opts.Token)
		activeID = opts.Profile.ID
	} else {
		m.currentView = ViewAccounts
	}
	m.accountsView = accounts.New(opts.Store, opts.Credentials, k, activeID, 80, 24)
	m.notifications = m.newNotifications()

	return m
}

func (m Model) newNotifications() notifications.Model {
	var svc notifications.Service
	var id uint64
	if m.session != nil {
		svc = m.session.service
		id = m.session.id
	}
	timeout := time.Duration(m.cfg.HTTP.TimeoutSec) * time.Second
	n := notifications.New(svc, m.keys, timeout,
		m.layout.ContentWidth(), m.layout.ContentHeight())
	n.SetSession(id)
	return n
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Notifications returns the notifications screen.
func (m Model) Notifications() notifications.Model { return m.notifications }

// Init loads notifications for the active account, or the saved
// accounts when there is none.
func (m Model) Init() tea.Cmd {
	if m.session == nil {
		return m.accountsView.Init()
	}
	return m.notifications.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Results started under an earlier sign-in belong to another account.
	if id, ok := notifications.SessionOf(msg); ok && id != m.notifications.Session() {
		log.Debug().
			Uint64("session", id).
			Uint64("active", m.notifications.Session()).
			Msgf("dropping stale %T", msg)
		return m, nil
	}

	// Store results go to the accounts view even after it has closed.
	if accounts.IsResult(msg) {
		var cmd tea.Cmd
		m.accountsView, cmd = m.accountsView.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.notifications.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.accountsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case ui.ToastMsg:
		cmd := m.toast.Show(msg)
		return m, cmd

	case ui.ToastExpiredMsg:
		m.toast.Expire(msg)
		return m, nil

	// Results of the notifications screen's calls land there whatever
	// view is showing.
	case notifications.LoadedMsg, notifications.ClearedMsg,
		notifications.FollowedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.notifications, cmd = m.notifications.Update(msg)
		return m, cmd

	case notifications.DismissedMsg:
		if msg.Err == nil && m.currentView == ViewDetail &&
			m.detail.NotificationID() == msg.ID {
			m.currentView = ViewNotifications
		}
		var cmd tea.Cmd
		m.notifications, cmd = m.notifications.Update(msg)
		return m, cmd

	case notifications.OpenConversationMsg:
		m.detail.SetNotification(msg.Notification)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewNotifications
		return m, nil

	case detail.DismissMsg:
		return m, m.notifications.Dismiss(msg.NotificationID)

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg.Name)
		return m, cmd

	case accounts.DoneMsg:
		m.currentView = ViewNotifications
		return m, nil

	case accounts.ActivatedMsg:
		m.session = m.startSession(msg.Profile, msg.Token)
		m.notifications = m.newNotifications()
		m.currentView = ViewNotifications

		var accCmd tea.Cmd
		m.accountsView, accCmd = m.accountsView.Update(msg)
		return m, tea.Batch(
			accCmd,
			m.notifications.Init(),
			ui.Notify(fmt.Sprintf("Signed in as %s.", m.session.label())),
		)

	case accounts.DeletedMsg:
		if m.session != nil && m.session.profile.ID == msg.ID {
			m.session = nil
			m.notifications = m.newNotifications()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.capturing() {
			if handled, next, cmd := m.handleGlobalKey(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturing reports whether the active view needs every key.
func (m Model) capturing() bool {
	switch m.currentView {
	case ViewNotifications:
		return m.notifications.Capturing()
	case ViewAccounts:
		return m.accountsView.Capturing()
	case ViewCommand:
		return true
	}
	return false
}

// handleGlobalKey processes keys that work across views.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewNotifications {
			return true, m, tea.Quit
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		m.commandView.Reset()
		return true, m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}

	case key.Matches(msg, m.keys.Accounts):
		if m.currentView == ViewNotifications {
			cmd := m.openAccounts()
			return true, m, cmd
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewNotifications && m.session == nil {
			return true, m, nil
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewNotifications:
		if m.session == nil {
			return m, nil
		}
		m.notifications, cmd = m.notifications.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewAccounts:
		m.accountsView, cmd = m.accountsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// openAccounts switches to the accounts view and reloads its list.
func (m *Model) openAccounts() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewAccounts
	return m.accountsView.Init()
}

// executeCommand runs a command from the palette.
func (m *Model) executeCommand(name command.Name) tea.Cmd {
	switch name {
	case command.Refresh:
		if m.session == nil {
			return ui.NotifyError("No account selected.")
		}
		m.currentView = ViewNotifications
		return m.notifications.Reload()
	case command.Clear:
		if m.session == nil {
			return ui.NotifyError("No account selected.")
		}
		m.currentView = ViewNotifications
		if m.notifications.DeleteDialogOpen() {
			return nil
		}
		return m.notifications.ToggleDeleteDialog()
	case command.Accounts:
		return m.openAccounts()
	case command.Quit:
		return tea.Quit
	default:
		return nil
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.session.label())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.toast)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) headerTitle() string {
	if m.session != nil && m.notifications.Phase() == notifications.PhaseLoaded {
		if n := len(m.notifications.Notifications()); n > 0 {
			return fmt.Sprintf("Notifications [%d]", n)
		}
	}
	return "Notifications"
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewNotifications:
		if m.session == nil {
			return lipgloss.NewStyle().
				Padding(1, 2).
				Foreground(theme.ColorGray).
				Render("No account selected. Press A to add one.")
		}
		return m.notifications.View()
	case ViewDetail:
		return m.detail.View()
	case ViewAccounts:
		return m.accountsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | d dismiss | j/k scroll"
	case ViewAccounts:
		return "a add | d delete | enter use | esc back"
	default:
		if m.session == nil {
			return "A accounts | ? help | q quit"
		}
		return m.notifications.Hints()
	}
}
