package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/mastodon"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/ui"
)

type fakeService struct {
	mu sync.Mutex

	notifications []model.Notification
	listErr       error
	dismissErr    error
	clearErr      error
	followErr     error
	relationship  *mastodon.Relationship

	dismissed  []string
	clearCalls int
	followed   []string
}

func (f *fakeService) ListNotifications(context.Context) ([]model.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.notifications, nil
}

func (f *fakeService) DismissNotification(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
	return f.dismissErr
}

func (f *fakeService) ClearNotifications(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return f.clearErr
}

func (f *fakeService) FollowAccount(_ context.Context, id string) (*mastodon.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followed = append(f.followed, id)
	if f.followErr != nil {
		return nil, f.followErr
	}
	return f.relationship, nil
}

func sampleNotifications() []model.Notification {
	return []model.Notification{
		{
			ID:      "1",
			Type:    model.NotificationFollow,
			Account: model.Account{ID: "acc-1", Username: "alice", DisplayName: "Alice"},
		},
		{
			ID:      "2",
			Type:    model.NotificationMention,
			Account: model.Account{ID: "acc-2", Username: "bob"},
			Status:  &model.Status{ID: "st-2", Content: "<p>hello there</p>"},
		},
		{
			ID:      "3",
			Type:    model.NotificationFavourite,
			Account: model.Account{ID: "acc-3", Username: "carol"},
			Status:  &model.Status{ID: "st-3", Content: "<p>my post</p>"},
		},
	}
}

func newTestModel(svc Service) Model {
	return New(svc, keys.DefaultKeyMap(), time.Second, 100, 40)
}

// run executes cmd and any batched commands, returning the messages.
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

func toasts(msgs []tea.Msg) []ui.ToastMsg {
	var out []ui.ToastMsg
	for _, m := range msgs {
		if t, ok := m.(ui.ToastMsg); ok {
			out = append(out, t)
		}
	}
	return out
}

func loaded(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := newTestModel(svc)
	m, _ = m.Update(fetch(svc, time.Second, m.Session())())
	if m.Phase() != PhaseLoaded {
		t.Fatalf("Phase() = %v, want loaded", m.Phase())
	}
	return m
}

func ids(ns []model.Notification) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.ID
	}
	return strings.Join(parts, ",")
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitStartsLoading(t *testing.T) {
	m := newTestModel(&fakeService{})
	if m.Phase() != PhaseLoading {
		t.Errorf("Phase() = %v, want loading", m.Phase())
	}
	if m.Init() == nil {
		t.Fatal("Init() should issue the fetch")
	}
	if !strings.Contains(m.View(), "Loading notifications") {
		t.Errorf("View() = %q, want spinner text", m.View())
	}
}

func TestEmptyResponseShowsEmptyState(t *testing.T) {
	m := loaded(t, &fakeService{})

	if !m.Empty() {
		t.Error("Empty() = false, want true")
	}
	view := m.View()
	if !strings.Contains(view, "All clear!") {
		t.Errorf("View() missing empty state: %q", view)
	}
	if strings.Contains(view, "Bummer.") {
		t.Errorf("View() shows the error panel for an empty list: %q", view)
	}
}

func TestRejectedFetchShowsErrorPanel(t *testing.T) {
	svc := &fakeService{listErr: errors.New("HTTP 503 Service Unavailable")}
	m := newTestModel(svc)
	m, _ = m.Update(fetch(svc, time.Second, m.Session())())

	if m.Phase() != PhaseErrored {
		t.Fatalf("Phase() = %v, want errored", m.Phase())
	}
	if m.ErrorCode() != "HTTP 503 Service Unavailable" {
		t.Errorf("ErrorCode() = %q", m.ErrorCode())
	}
	view := m.View()
	for _, want := range []string{"Bummer.", "Something went wrong", "HTTP 503"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q: %q", want, view)
		}
	}
}

func TestLoadedListShowsRows(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	view := m.View()
	for _, want := range []string{
		"Recent notifications",
		"Clear All",
		"Alice is now following you!",
		"bob mentioned you in a post.",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if got := len(m.Rows()); got != 3 {
		t.Errorf("len(Rows()) = %d, want 3", got)
	}
}

func TestDismissRemovesOnlyMatching(t *testing.T) {
	svc := &fakeService{notifications: sampleNotifications()}
	m := loaded(t, svc)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(keyRunes("d"))
	msgs := run(cmd)
	if len(svc.dismissed) != 1 || svc.dismissed[0] != "2" {
		t.Fatalf("dismissed = %v, want [2]", svc.dismissed)
	}
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("state changed before acknowledgment: %s", got)
	}

	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	if got := ids(m.Notifications()); got != "1,3" {
		t.Errorf("Notifications() = %s, want 1,3", got)
	}
	ts := toasts(run(cmd))
	if len(ts) != 1 || ts[0].Text != "Notification deleted." || ts[0].Level != ui.ToastInfo {
		t.Errorf("toasts = %#v", ts)
	}
}

func TestDismissUnknownIDKeepsState(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	m, _ = m.Update(DismissedMsg{ID: "404"})
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("Notifications() = %s, want 1,2,3", got)
	}
}

func TestDismissFailureKeepsState(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	m, cmd := m.Update(DismissedMsg{ID: "2", Err: errors.New("boom")})
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("Notifications() = %s, want 1,2,3", got)
	}
	ts := toasts(run(cmd))
	if len(ts) != 1 || ts[0].Level != ui.ToastError ||
		ts[0].Text != "Couldn't delete notification: boom" {
		t.Errorf("toasts = %#v", ts)
	}
}

func TestClearAllCancelHasNoEffect(t *testing.T) {
	svc := &fakeService{notifications: sampleNotifications()}
	m := loaded(t, svc)

	m, _ = m.Update(keyRunes("D"))
	if !m.DeleteDialogOpen() {
		t.Fatal("D should open the confirmation dialog")
	}
	if !strings.Contains(m.View(), "Delete all notifications?") {
		t.Errorf("View() missing dialog title")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.DeleteDialogOpen() {
		t.Error("esc should close the dialog")
	}
	run(cmd)
	if svc.clearCalls != 0 {
		t.Errorf("clearCalls = %d, want 0", svc.clearCalls)
	}

	m.ToggleDeleteDialog()
	if cmd := m.ResolveClearDialog(false); cmd != nil {
		t.Error("cancel should not return a command")
	}
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("Notifications() = %s after cancel", got)
	}
}

func TestClearAllAfterConfirmation(t *testing.T) {
	svc := &fakeService{notifications: sampleNotifications()}
	m := loaded(t, svc)

	m.ToggleDeleteDialog()
	cmd := m.ResolveClearDialog(true)
	if m.DeleteDialogOpen() {
		t.Error("confirming should close the dialog")
	}
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("list emptied before acknowledgment: %s", got)
	}

	var msgs []tea.Msg
	for _, msg := range run(cmd) {
		m, cmd = m.Update(msg)
		msgs = append(msgs, run(cmd)...)
	}
	if svc.clearCalls != 1 {
		t.Errorf("clearCalls = %d, want 1", svc.clearCalls)
	}
	if len(m.Notifications()) != 0 || !m.Empty() {
		t.Errorf("Notifications() = %s, want empty", ids(m.Notifications()))
	}
	ts := toasts(msgs)
	if len(ts) != 1 || ts[0].Text != "All notifications deleted." {
		t.Errorf("toasts = %#v", ts)
	}
}

func TestClearAllFailureKeepsState(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	m, cmd := m.Update(ClearedMsg{Err: errors.New("nope")})
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("Notifications() = %s", got)
	}
	ts := toasts(run(cmd))
	if len(ts) != 1 || ts[0].Text != "Couldn't delete notifications: nope" {
		t.Errorf("toasts = %#v", ts)
	}
}

func TestClearAllDialogNeedsNotifications(t *testing.T) {
	m := loaded(t, &fakeService{})

	m, _ = m.Update(keyRunes("D"))
	if m.DeleteDialogOpen() {
		t.Error("dialog opened with an empty list")
	}
	if cmd := m.ResolveClearDialog(true); cmd != nil {
		t.Error("resolving a closed dialog should do nothing")
	}
}

func TestFollowFromFollowRow(t *testing.T) {
	svc := &fakeService{
		notifications: sampleNotifications(),
		relationship:  &mastodon.Relationship{ID: "acc-1", Following: true},
	}
	m := loaded(t, svc)

	m, cmd := m.Update(keyRunes("f"))
	msgs := run(cmd)
	if len(svc.followed) != 1 || svc.followed[0] != "acc-1" {
		t.Fatalf("followed = %v, want [acc-1]", svc.followed)
	}

	var ts []ui.ToastMsg
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
		ts = append(ts, toasts(run(cmd))...)
	}
	if len(ts) != 1 || ts[0].Text != "You are now following this account." {
		t.Errorf("toasts = %#v", ts)
	}
	if got := ids(m.Notifications()); got != "1,2,3" {
		t.Errorf("follow changed the list: %s", got)
	}
}

func TestFollowMessages(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	tests := []struct {
		name string
		msg  FollowedMsg
		want string
	}{
		{"following", FollowedMsg{Relationship: &mastodon.Relationship{Following: true}}, "You are now following this account."},
		{"requested", FollowedMsg{Relationship: &mastodon.Relationship{Requested: true}}, "Follow request sent."},
		{"failed", FollowedMsg{Err: errors.New("forbidden")}, "Couldn't follow account: forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := m.Update(tt.msg)
			ts := toasts(run(cmd))
			if len(ts) != 1 || ts[0].Text != tt.want {
				t.Errorf("toasts = %#v, want %q", ts, tt.want)
			}
		})
	}
}

func TestFollowKeyIgnoredOnOtherRows(t *testing.T) {
	svc := &fakeService{notifications: sampleNotifications()}
	m := loaded(t, svc)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(keyRunes("f"))
	run(cmd)
	if len(svc.followed) != 0 {
		t.Errorf("followed = %v, want none", svc.followed)
	}
}

func TestEnterOpensConversation(t *testing.T) {
	m := loaded(t, &fakeService{notifications: sampleNotifications()})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	open, ok := msgs[0].(OpenConversationMsg)
	if !ok || open.Notification.ID != "2" {
		t.Errorf("msg = %#v, want OpenConversationMsg for 2", msgs[0])
	}
}

func TestReloadReentersLoading(t *testing.T) {
	svc := &fakeService{listErr: errors.New("down")}
	m := newTestModel(svc)
	m, _ = m.Update(fetch(svc, time.Second, m.Session())())

	svc.listErr = nil
	svc.notifications = sampleNotifications()
	m, cmd := m.Update(keyRunes("r"))
	if m.Phase() != PhaseLoading {
		t.Fatalf("Phase() = %v, want loading", m.Phase())
	}
	for _, msg := range run(cmd) {
		m, _ = m.Update(msg)
	}
	if m.Phase() != PhaseLoaded || len(m.Notifications()) != 3 {
		t.Errorf("after reload: phase %v, %d notifications", m.Phase(), len(m.Notifications()))
	}
}
