package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.WSPath != "/socketio" {
		t.Errorf("WSPath = %q, want %q", cfg.WSPath, "/socketio")
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("ReadLimit = %d, want 32768", cfg.ReadLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.Discord.TokenURL != "https://discord.com/api/oauth2/token" {
		t.Errorf("Discord.TokenURL = %q", cfg.Discord.TokenURL)
	}
	if cfg.HasDiscordCredentials() {
		t.Error("HasDiscordCredentials = true with no credentials")
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeTempFile(t, `
mode: debug
port: 3000
ws_path: /ws
ping_period: 20s
send_buffer: 8
cors_origins:
  - https://example.discordsays.com
discord:
  client_id: abc
  client_secret: shh
  redirect_uri: https://example.com/callback
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Mode != "debug" {
		t.Errorf("Mode = %q, want debug", cfg.Mode)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.WSPath != "/ws" {
		t.Errorf("WSPath = %q, want /ws", cfg.WSPath)
	}
	if cfg.PingPeriod != 20*time.Second {
		t.Errorf("PingPeriod = %v, want 20s", cfg.PingPeriod)
	}
	if cfg.SendBuffer != 8 {
		t.Errorf("SendBuffer = %d, want 8", cfg.SendBuffer)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://example.discordsays.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.HasDiscordCredentials() {
		t.Error("HasDiscordCredentials = false, want true")
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("DISCORD_CLIENT_ID", "env-id")
	t.Setenv("DISCORD_CLIENT_SECRET", "env-secret")

	path := writeTempFile(t, "port: 3000\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.Discord.ClientID != "env-id" {
		t.Errorf("Discord.ClientID = %q, want env-id", cfg.Discord.ClientID)
	}
	if cfg.Discord.ClientSecret != "env-secret" {
		t.Errorf("Discord.ClientSecret = %q, want env-secret", cfg.Discord.ClientSecret)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeTempFile(t, "port: 70000\nsend_buffer: 0\nws_path: socket\n")

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile succeeded with invalid values")
	}
	for _, want := range []string{"port 70000", "send_buffer", "ws_path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestHasDiscordCredentials(t *testing.T) {
	tests := []struct {
		name string
		d    Discord
		want bool
	}{
		{"complete", Discord{ClientID: "id", ClientSecret: "s", RedirectURI: "https://x/cb"}, true},
		{"no redirect", Discord{ClientID: "id", ClientSecret: "s"}, false},
		{"no secret", Discord{ClientID: "id", RedirectURI: "https://x/cb"}, false},
		{"no id", Discord{ClientSecret: "s", RedirectURI: "https://x/cb"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Discord: tt.d}
			if got := cfg.HasDiscordCredentials(); got != tt.want {
				t.Errorf("HasDiscordCredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}
