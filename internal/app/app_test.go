package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fedinotify/internal/credential"
	"github.com/nhle/fedinotify/internal/mastodon"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/ui"
	"github.com/nhle/fedinotify/internal/ui/accounts"
	"github.com/nhle/fedinotify/internal/ui/command"
	"github.com/nhle/fedinotify/internal/ui/detail"
	"github.com/nhle/fedinotify/internal/ui/notifications"
	"github.com/nhle/fedinotify/tests/testutil"
)

type fakeService struct {
	baseURL, token string
	notifications  []model.Notification
	cleared        bool
}

func (f *fakeService) ListNotifications(context.Context) ([]model.Notification, error) {
	return f.notifications, nil
}

func (f *fakeService) DismissNotification(context.Context, string) error { return nil }

func (f *fakeService) ClearNotifications(context.Context) error {
	f.cleared = true
	return nil
}

func (f *fakeService) FollowAccount(_ context.Context, id string) (*mastodon.Relationship, error) {
	return &mastodon.Relationship{ID: id, Following: true}, nil
}

type harness struct {
	services []*fakeService
	seed     []model.Notification
}

func (h *harness) factory(baseURL, token string) notifications.Service {
	svc := &fakeService{baseURL: baseURL, token: token, notifications: h.seed}
	h.services = append(h.services, svc)
	return svc
}

func testConfig() *model.AppConfig {
	return &model.AppConfig{
		Display: model.DisplayConfig{ToastSeconds: 4},
		HTTP:    model.HTTPConfig{TimeoutSec: 5},
	}
}

func seedNotifications() []model.Notification {
	return []model.Notification{
		{ID: "1", Type: model.NotificationFollow, Account: model.Account{ID: "a1", Username: "alice"}},
		{
			ID:      "2",
			Type:    model.NotificationMention,
			Account: model.Account{ID: "a2", Username: "bob"},
			Status:  &model.Status{ID: "s2", Content: "<p>hi</p>"},
		},
	}
}

// run executes cmd and any batched commands. Spinner ticks are skipped
// because their follow-up commands sleep.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// feed applies msgs to m, following up on commands until none remain
// except toast expiries.
func feed(t *testing.T, m tea.Model, msgs ...tea.Msg) tea.Model {
	t.Helper()
	for i := 0; i < len(msgs); i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(msgs[i])
		if _, isToast := msgs[i].(ui.ToastMsg); isToast {
			continue
		}
		msgs = append(msgs, run(cmd)...)
	}
	return m
}

func newSignedIn(t *testing.T) (Model, *harness) {
	t.Helper()
	h := &harness{seed: seedNotifications()}
	profile := model.AccountProfile{ID: "p1", Name: "home", BaseURL: "https://mastodon.example"}

	m := New(Options{
		Store:       testutil.NewTestStore(t),
		Credentials: credential.NewMemory(),
		Config:      testConfig(),
		Profile:     &profile,
		Token:       "tok",
		NewService:  h.factory,
	})
	var tm tea.Model = m
	tm = feed(t, tm, tea.WindowSizeMsg{Width: 100, Height: 30})
	tm = feed(t, tm, run(m.Init())...)
	return tm.(Model), h
}

func TestStartsOnNotificationsWithProfile(t *testing.T) {
	m, h := newSignedIn(t)

	if len(h.services) != 1 || h.services[0].token != "tok" ||
		h.services[0].baseURL != "https://mastodon.example" {
		t.Fatalf("services = %+v", h.services)
	}
	if m.CurrentView() != ViewNotifications {
		t.Errorf("CurrentView() = %v", m.CurrentView())
	}
	if m.Notifications().Phase() != notifications.PhaseLoaded {
		t.Fatalf("Phase() = %v", m.Notifications().Phase())
	}

	view := m.View()
	for _, want := range []string{"Notifications [2]", "home · mastodon.example", "alice is now following you!"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestStartsOnAccountsWithoutProfile(t *testing.T) {
	m := New(Options{
		Store:       testutil.NewTestStore(t),
		Credentials: credential.NewMemory(),
		Config:      testConfig(),
	})
	if m.CurrentView() != ViewAccounts {
		t.Errorf("CurrentView() = %v, want accounts", m.CurrentView())
	}
}

func TestActivatingAccountReloads(t *testing.T) {
	h := &harness{seed: seedNotifications()}
	m := New(Options{
		Store:       testutil.NewTestStore(t),
		Credentials: credential.NewMemory(),
		Config:      testConfig(),
		NewService:  h.factory,
	})

	var tm tea.Model = m
	tm = feed(t, tm, tea.WindowSizeMsg{Width: 100, Height: 30})
	tm = feed(t, tm, accounts.ActivatedMsg{
		Profile: model.AccountProfile{ID: "p2", Name: "work", BaseURL: "https://work.example"},
		Token:   "work-token",
	})

	got := tm.(Model)
	if got.CurrentView() != ViewNotifications {
		t.Errorf("CurrentView() = %v", got.CurrentView())
	}
	if len(h.services) != 1 || h.services[0].token != "work-token" {
		t.Fatalf("services = %+v", h.services)
	}
	if len(got.Notifications().Notifications()) != 2 {
		t.Errorf("notifications not loaded after activation")
	}
}

func TestLateResultsFromPreviousAccountAreDropped(t *testing.T) {
	m, h := newSignedIn(t)

	// Refresh under the first account and hold the result back.
	tm, pending := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if pending == nil {
		t.Fatal("refresh returned no command")
	}

	h.seed = []model.Notification{
		{ID: "work-1", Type: model.NotificationFollow, Account: model.Account{ID: "w1", Username: "carol"}},
	}
	tm = feed(t, tm, accounts.ActivatedMsg{
		Profile: model.AccountProfile{ID: "p2", Name: "work", BaseURL: "https://work.example"},
		Token:   "work-token",
	})
	tm = feed(t, tm, run(pending)...)

	got := tm.(Model)
	ns := got.Notifications().Notifications()
	if len(ns) != 1 || ns[0].ID != "work-1" {
		t.Fatalf("notifications = %+v, want only work-1", ns)
	}
	if !strings.Contains(got.View(), "work · work.example") {
		t.Error("header should show the new account")
	}
	if strings.Contains(got.View(), "alice is now following you!") {
		t.Error("previous account's notifications leaked into the new session")
	}
}

func TestResultsCarryActiveSession(t *testing.T) {
	m, _ := newSignedIn(t)
	active := m.Notifications().Session()
	if active == 0 {
		t.Fatal("signed-in screen has no session stamp")
	}

	tm, _ := m.Update(notifications.ClearedMsg{Session: active + 1})
	if n := len(tm.(Model).Notifications().Notifications()); n != 2 {
		t.Errorf("clear from another session applied, %d left", n)
	}

	tm, _ = tm.Update(notifications.ClearedMsg{Session: active})
	if n := len(tm.(Model).Notifications().Notifications()); n != 0 {
		t.Errorf("clear from the active session ignored, %d left", n)
	}
}

func TestAccountResultsReachClosedAccountsView(t *testing.T) {
	m, _ := newSignedIn(t)

	if _, err := m.store.UpsertAccount(context.Background(), model.AccountProfile{
		Name:    "work",
		BaseURL: "https://work.example",
	}); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}

	reload := run(m.accountsView.Init())
	if len(reload) != 1 || !accounts.IsResult(reload[0]) {
		t.Fatalf("reload = %#v", reload)
	}

	tm := feed(t, m, reload...)

	got := tm.(Model)
	if got.CurrentView() != ViewNotifications {
		t.Errorf("CurrentView() = %v", got.CurrentView())
	}
	if n := len(got.accountsView.Accounts()); n != 1 {
		t.Errorf("accounts view holds %d profiles, want 1", n)
	}
	if n := len(got.Notifications().Notifications()); n != 2 {
		t.Errorf("notifications changed to %d", n)
	}
}

func TestToastShowsInStatusBar(t *testing.T) {
	m, _ := newSignedIn(t)

	tm, _ := m.Update(ui.ToastMsg{Text: "Notification deleted."})
	if !strings.Contains(tm.View(), "Notification deleted.") {
		t.Error("toast missing from view")
	}
}

func TestCommandPaletteClearOpensDialog(t *testing.T) {
	m, h := newSignedIn(t)

	tm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	if tm.(Model).CurrentView() != ViewCommand {
		t.Fatalf("':' should open the palette")
	}

	tm, _ = tm.Update(command.CommandMsg{Name: command.Clear})
	got := tm.(Model)
	if got.CurrentView() != ViewNotifications || !got.Notifications().DeleteDialogOpen() {
		t.Errorf("clear should open the confirmation dialog")
	}
	if h.services[0].cleared {
		t.Error("clear ran without confirmation")
	}
}

func TestConversationRoundTrip(t *testing.T) {
	m, _ := newSignedIn(t)
	n := m.Notifications().Notifications()[1]

	tm, _ := m.Update(notifications.OpenConversationMsg{Notification: n})
	if tm.(Model).CurrentView() != ViewDetail {
		t.Fatalf("CurrentView() = %v, want detail", tm.(Model).CurrentView())
	}

	tm, _ = tm.Update(detail.BackMsg{})
	if tm.(Model).CurrentView() != ViewNotifications {
		t.Errorf("CurrentView() = %v, want notifications", tm.(Model).CurrentView())
	}
}

func TestDismissFromConversationReturnsToList(t *testing.T) {
	m, _ := newSignedIn(t)
	n := m.Notifications().Notifications()[1]

	var tm tea.Model = m
	tm, _ = tm.Update(notifications.OpenConversationMsg{Notification: n})
	tm = feed(t, tm, detail.DismissMsg{NotificationID: n.ID})

	got := tm.(Model)
	if got.CurrentView() != ViewNotifications {
		t.Errorf("CurrentView() = %v, want notifications", got.CurrentView())
	}
	if len(got.Notifications().Notifications()) != 1 {
		t.Errorf("dismissed notification still listed")
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newSignedIn(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newSignedIn(t)

	tm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if tm.(Model).CurrentView() != ViewHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(tm.View(), "Keyboard Shortcuts") {
		t.Error("help view missing title")
	}
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if tm.(Model).CurrentView() != ViewNotifications {
		t.Error("esc should close help")
	}
}
