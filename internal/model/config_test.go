package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Display.ToastSeconds != 4 {
		t.Errorf("ToastSeconds = %d, want 4", cfg.Display.ToastSeconds)
	}
	if cfg.HTTP.TimeoutSec != 30 {
		t.Errorf("TimeoutSec = %d, want 30", cfg.HTTP.TimeoutSec)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`display:
  toast_seconds: 9
http:
  timeout_sec: 5
log:
  level: debug
account: work
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Display.ToastSeconds != 9 {
		t.Errorf("ToastSeconds = %d, want 9", cfg.Display.ToastSeconds)
	}
	if cfg.HTTP.TimeoutSec != 5 {
		t.Errorf("TimeoutSec = %d, want 5", cfg.HTTP.TimeoutSec)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Account != "work" {
		t.Errorf("Account = %q, want work", cfg.Account)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should fall back to the default")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Display.ToastSeconds = 7
	cfg.Account = "home"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got.Display.ToastSeconds != 7 {
		t.Errorf("ToastSeconds = %d, want 7", got.Display.ToastSeconds)
	}
	if got.Account != "home" {
		t.Errorf("Account = %q, want home", got.Account)
	}
}

func TestNotificationTypeKind(t *testing.T) {
	cases := map[NotificationType]NotificationType{
		"follow":    NotificationFollow,
		"mention":   NotificationMention,
		"reblog":    NotificationReblog,
		"favourite": NotificationFavourite,
		"poll":      NotificationOther,
		"update":    NotificationOther,
		"":          NotificationOther,
	}
	for in, want := range cases {
		if got := in.Kind(); got != want {
			t.Errorf("NotificationType(%q).Kind() = %q, want %q", in, got, want)
		}
	}
}

func TestAccountName(t *testing.T) {
	a := Account{Username: "alice"}
	if a.Name() != "alice" {
		t.Errorf("Name() = %q, want alice", a.Name())
	}
	a.DisplayName = "Alice A."
	if a.Name() != "Alice A." {
		t.Errorf("Name() = %q, want display name", a.Name())
	}
}
