package ui

import (
	"testing"
	"time"
)

func TestToastShowAndExpire(t *testing.T) {
	toast := NewToast(time.Second)

	cmd := toast.Show(ToastMsg{Text: "Notification deleted."})
	if cmd == nil {
		t.Fatal("Show() should schedule an expiry")
	}
	if !toast.Visible() || toast.Text() != "Notification deleted." {
		t.Fatalf("toast = %q, want visible", toast.Text())
	}

	toast.Expire(ToastExpiredMsg{Seq: toast.seq})
	if toast.Visible() {
		t.Error("toast should be hidden after its expiry")
	}
}

func TestToastStaleExpiryKeepsNewerToast(t *testing.T) {
	toast := NewToast(time.Second)

	toast.Show(ToastMsg{Text: "first"})
	firstSeq := toast.seq
	toast.Show(ToastMsg{Text: "second", Level: ToastError})

	toast.Expire(ToastExpiredMsg{Seq: firstSeq})
	if !toast.Visible() || toast.Text() != "second" {
		t.Errorf("stale expiry hid the newer toast: %q", toast.Text())
	}
	if toast.Level() != ToastError {
		t.Errorf("Level() = %v, want ToastError", toast.Level())
	}
}

func TestNotifyCommands(t *testing.T) {
	msg, ok := Notify("ok")().(ToastMsg)
	if !ok || msg.Level != ToastInfo || msg.Text != "ok" {
		t.Errorf("Notify() produced %#v", msg)
	}
	msg, ok = NotifyError("bad")().(ToastMsg)
	if !ok || msg.Level != ToastError || msg.Text != "bad" {
		t.Errorf("NotifyError() produced %#v", msg)
	}
}
