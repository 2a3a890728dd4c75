// Package accounts is the view for managing saved account profiles: each
// profile is an instance URL in the store plus an access token in the
// credential store.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nhle/fedinotify/internal/credential"
	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/store"
	"github.com/nhle/fedinotify/internal/theme"
	"github.com/nhle/fedinotify/internal/ui"
)

// Mode represents the current state of the accounts view.
type Mode int

const (
	ModeList          Mode = iota // List saved profiles
	ModeForm                      // Add a profile
	ModeConfirmDelete             // Confirm profile deletion
)

// DoneMsg signals the accounts view should close.
type DoneMsg struct{}

// ActivatedMsg carries the profile the user switched to and its token.
type ActivatedMsg struct {
	Profile model.AccountProfile
	Token   string
}

// DeletedMsg signals a profile was removed.
type DeletedMsg struct {
	ID string
}

// accountsLoadedMsg is sent when profiles have been loaded from the store.
type accountsLoadedMsg struct {
	accounts []model.AccountProfile
	err      error
}

// accountSavedMsg is sent after a profile and its token are persisted.
type accountSavedMsg struct {
	profile model.AccountProfile
	token   string
	err     error
}

// accountDeletedMsg is sent after a profile is removed.
type accountDeletedMsg struct {
	id  string
	err error
}

// activateFailedMsg is sent when a profile's token cannot be read.
type activateFailedMsg struct {
	err error
}

// IsResult reports whether msg is the outcome of a store or keyring call
// started by this view. Parents route these here whatever view is showing.
func IsResult(msg tea.Msg) bool {
	switch msg.(type) {
	case accountsLoadedMsg, accountSavedMsg, accountDeletedMsg, activateFailedMsg:
		return true
	}
	return false
}

// formValues is bound to the huh fields. It is a pointer so copies of
// Model share it with the form.
type formValues struct {
	name    string
	baseURL string
	token   string
	confirm bool
}

// Model is the Bubble Tea model for the accounts view.
type Model struct {
	mode        Mode
	store       store.Store
	credentials credential.Store
	keys        *keys.KeyMap

	accounts    []model.AccountProfile
	selectedIdx int
	activeID    string

	form          *huh.Form
	confirmDelete *huh.Form
	values        *formValues

	width, height int
}

// New creates a new accounts view. activeID marks the profile currently in
// use, if any.
func New(s store.Store, creds credential.Store, k *keys.KeyMap, activeID string, width, height int) Model {
	return Model{
		mode:        ModeList,
		store:       s,
		credentials: creds,
		keys:        k,
		activeID:    activeID,
		values:      &formValues{},
		width:       width,
		height:      height,
	}
}

// Init loads profiles from the store.
func (m Model) Init() tea.Cmd {
	return m.loadAccounts()
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Accounts returns the loaded profiles.
func (m Model) Accounts() []model.AccountProfile { return m.accounts }

// Capturing reports whether a form is taking keyboard input.
func (m Model) Capturing() bool { return m.mode != ModeList }

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't load accounts: %v", msg.err))
		}
		m.accounts = msg.accounts
		if m.selectedIdx >= len(m.accounts) {
			m.selectedIdx = max(len(m.accounts)-1, 0)
		}
		return m, nil

	case accountSavedMsg:
		m.mode = ModeList
		if msg.err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't save account: %v", msg.err))
		}
		m.activeID = msg.profile.ID
		activated := ActivatedMsg{Profile: msg.profile, Token: msg.token}
		return m, tea.Batch(
			m.loadAccounts(),
			ui.Notify(fmt.Sprintf("Account %q saved.", msg.profile.Name)),
			func() tea.Msg { return activated },
		)

	case accountDeletedMsg:
		m.mode = ModeList
		if msg.err != nil {
			return m, ui.NotifyError(fmt.Sprintf("Couldn't delete account: %v", msg.err))
		}
		id := msg.id
		return m, tea.Batch(
			m.loadAccounts(),
			ui.Notify("Account deleted."),
			func() tea.Msg { return DeletedMsg{ID: id} },
		)

	case activateFailedMsg:
		return m, ui.NotifyError(fmt.Sprintf("Couldn't switch account: %v", msg.err))

	case ActivatedMsg:
		m.activeID = msg.Profile.ID
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeList:
			return m.handleListKeys(msg)
		case ModeForm:
			return m.updateForm(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m, nil
	}

	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

// handleListKeys processes key events in list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.selectedIdx < len(m.accounts)-1 {
			m.selectedIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil

	case msg.String() == "a":
		m.values = &formValues{}
		m.form = m.buildForm()
		m.mode = ModeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Dismiss):
		if len(m.accounts) == 0 {
			return m, nil
		}
		m.values = &formValues{}
		m.confirmDelete = m.buildDeleteConfirmForm()
		m.mode = ModeConfirmDelete
		return m, m.confirmDelete.Init()

	case key.Matches(msg, m.keys.Action):
		if len(m.accounts) == 0 {
			return m, nil
		}
		return m, m.activate(m.accounts[m.selectedIdx])
	}

	return m, nil
}

// --- Add Form ---

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("A label for this account").
				Placeholder("me@mastodon.social").
				Value(&m.values.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Instance URL").
				Description("Server root (e.g., https://mastodon.social)").
				Placeholder("https://mastodon.social").
				Value(&m.values.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Access token").
				Description("Token from Preferences > Development on your instance").
				EchoMode(huh.EchoModePassword).
				Value(&m.values.token).
				Validate(validateRequired("Access token")),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		m.mode = ModeList
		m.form = nil
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		profile := model.AccountProfile{
			ID:      uuid.NewString(),
			Name:    strings.TrimSpace(m.values.name),
			BaseURL: strings.TrimSpace(m.values.baseURL),
		}
		token := strings.TrimSpace(m.values.token)
		m.form = nil
		return m, m.saveAccount(profile, token)
	case huh.StateAborted:
		m.mode = ModeList
		m.form = nil
		return m, nil
	}

	return m, cmd
}

// --- Delete Confirmation ---

func (m Model) buildDeleteConfirmForm() *huh.Form {
	name := ""
	if m.selectedIdx < len(m.accounts) {
		name = m.accounts[m.selectedIdx].Name
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete account %q?", name)).
				Description("This removes the saved instance and its access token.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.values.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmDelete == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		m.mode = ModeList
		m.confirmDelete = nil
		return m, nil
	}

	mdl, cmd := m.confirmDelete.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmDelete = f
	}

	switch m.confirmDelete.State {
	case huh.StateCompleted:
		m.confirmDelete = nil
		if m.values.confirm && m.selectedIdx < len(m.accounts) {
			return m, m.deleteAccount(m.accounts[m.selectedIdx])
		}
		m.mode = ModeList
		return m, nil
	case huh.StateAborted:
		m.mode = ModeList
		m.confirmDelete = nil
		return m, nil
	}

	return m, cmd
}

// --- Commands ---

func (m Model) loadAccounts() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		accts, err := s.GetAccounts(context.Background())
		return accountsLoadedMsg{accounts: accts, err: err}
	}
}

func (m Model) saveAccount(profile model.AccountProfile, token string) tea.Cmd {
	s, creds := m.store, m.credentials
	return func() tea.Msg {
		saved, err := s.UpsertAccount(context.Background(), profile)
		if err != nil {
			return accountSavedMsg{err: err}
		}
		if err := creds.Set(saved.CredentialKey(), token); err != nil {
			// Keep the store free of profiles without a token.
			if delErr := s.DeleteAccount(context.Background(), saved.ID); delErr != nil {
				log.Warn().Err(delErr).Str("account", saved.ID).Msg("rolling back profile failed")
			}
			return accountSavedMsg{err: fmt.Errorf("storing token: %w", err)}
		}
		log.Info().Str("account", saved.ID).Str("url", saved.BaseURL).Msg("account saved")
		return accountSavedMsg{profile: saved, token: token}
	}
}

func (m Model) deleteAccount(profile model.AccountProfile) tea.Cmd {
	s, creds := m.store, m.credentials
	return func() tea.Msg {
		if err := s.DeleteAccount(context.Background(), profile.ID); err != nil {
			return accountDeletedMsg{id: profile.ID, err: err}
		}
		if err := creds.Delete(profile.CredentialKey()); err != nil &&
			!errors.Is(err, credential.ErrNotFound) {
			log.Warn().Err(err).Str("account", profile.ID).Msg("deleting token failed")
		}
		return accountDeletedMsg{id: profile.ID}
	}
}

func (m Model) activate(profile model.AccountProfile) tea.Cmd {
	s, creds := m.store, m.credentials
	return func() tea.Msg {
		token, err := creds.Get(profile.CredentialKey())
		if err != nil {
			return activateFailedMsg{err: fmt.Errorf("reading token for %q: %w", profile.Name, err)}
		}
		if err := s.TouchAccount(context.Background(), profile.ID); err != nil {
			log.Warn().Err(err).Str("account", profile.ID).Msg("touching account failed")
		}
		return ActivatedMsg{Profile: profile, Token: token}
	}
}

// --- View ---

// View renders the accounts view based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return m.viewForm(m.form)
	case ModeConfirmDelete:
		return m.viewForm(m.confirmDelete)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Accounts"))
	b.WriteString("\n\n")

	if len(m.accounts) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		b.WriteString(emptyStyle.Render(
			"No accounts saved.\nPress 'a' to add one.",
		))
	} else {
		for i, acct := range m.accounts {
			b.WriteString(m.renderAccountItem(i, acct))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	b.WriteString(hintStyle.Render(
		"a add | d delete | enter use | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(b.String())
}

func (m Model) renderAccountItem(idx int, acct model.AccountProfile) string {
	marker := " "
	if acct.ID == m.activeID {
		marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("●")
	}

	line := fmt.Sprintf("%s  %s  %s", marker, acct.Name,
		theme.SecondaryTextStyle.Render(acct.BaseURL))

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(f.View())
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("instance URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
