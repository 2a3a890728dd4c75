package detail

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fedinotify/internal/keys"
	"github.com/nhle/fedinotify/internal/model"
)

func mention() model.Notification {
	return model.Notification{
		ID:      "n-1",
		Type:    model.NotificationMention,
		Account: model.Account{ID: "a-1", Username: "bob", Acct: "bob@example.social"},
		Status: &model.Status{
			ID:        "s-1",
			Content:   "<p>Hello &amp; welcome</p><p>second paragraph</p>",
			URL:       "https://example.social/@bob/1",
			CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestViewShowsPost(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetNotification(mention())

	view := m.View()
	for _, want := range []string{
		"bob mentioned you in a post.",
		"bob@example.social",
		"https://example.social/@bob/1",
		"Hello & welcome second paragraph",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if m.NotificationID() != "n-1" {
		t.Errorf("NotificationID() = %q", m.NotificationID())
	}
}

func TestViewWithoutNotification(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 60, 10)
	if !strings.Contains(m.View(), "No post selected") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestBackAndDismissKeys(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetNotification(mention())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(BackMsg); !ok {
		t.Error("esc should produce BackMsg")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if cmd == nil {
		t.Fatal("d should return a command")
	}
	msg, ok := cmd().(DismissMsg)
	if !ok || msg.NotificationID != "n-1" {
		t.Errorf("d produced %#v", msg)
	}
}
