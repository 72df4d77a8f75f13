package config

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSettingsDefaults(t *testing.T) {
	s := NewSettingType(nil)
	if got := s.Get(LISTEN_ADDR); got != ":8080" {
		t.Fatalf("expected default listen addr, got %q", got)
	}
	if got := s.Get(TOKEN_KEY); got != "auth_token" {
		t.Fatalf("expected default token key, got %q", got)
	}
	if s.Has(PROBE_ORIGIN) {
		t.Fatalf("expected PROBE_ORIGIN unset by default")
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(ATTEMPT_POLICY, "drop")
	t.Setenv(SESSION_SECURE_COOKIE, "yes")
	t.Setenv(REDIS_DB, "3")

	s := NewSettingType(nil)
	if got := s.Get(ATTEMPT_POLICY); got != "drop" {
		t.Fatalf("expected drop, got %q", got)
	}
	if !s.IsTrue(SESSION_SECURE_COOKIE) {
		t.Fatalf("expected secure cookie enabled")
	}
	if n, err := s.Int(REDIS_DB); err != nil || n != 3 {
		t.Fatalf("expected redis db 3, got %d err=%v", n, err)
	}
}

func TestSettingsDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"0":     0,
		"15":    15 * time.Second,
		"1m":    time.Minute,
		"250ms": 250 * time.Millisecond,
	}
	for in, want := range tests {
		t.Setenv(HTTP_TIMEOUT, in)
		got, err := NewSettingType(nil).Duration(HTTP_TIMEOUT)
		if err != nil || got != want {
			t.Fatalf("Duration(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	t.Setenv(HTTP_TIMEOUT, "soon")
	if _, err := NewSettingType(nil).Duration(HTTP_TIMEOUT); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestSettingsRenderMasksPassword(t *testing.T) {
	t.Setenv(REDIS_PASSWORD, "hunter2")
	var buf bytes.Buffer
	NewSettingType(&buf)

	out := buf.String()
	if !strings.Contains(out, "TOKEN_STORE") {
		t.Fatalf("expected settings table, got:\n%s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Fatalf("expected redis password to be masked")
	}
}
