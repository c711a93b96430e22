package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsContact(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"email", "ana@example.com",
		"name", "Ana",
		"session_id", "abc-123",
		"milestone", "lead_captured",
	})
	if len(out) != 8 {
		t.Fatalf("expected 8 values, got %d", len(out))
	}
	if out[1] != "[REDACTED]" || out[3] != "[REDACTED]" {
		t.Fatalf("contact not redacted: %v", out)
	}
	hashed, ok := out[5].(string)
	if !ok || !strings.HasPrefix(hashed, "hash:") || len(hashed) != len("hash:")+12 {
		t.Fatalf("session id not hashed: %v", out[5])
	}
	if out[7] != "lead_captured" {
		t.Fatalf("plain value changed: %v", out[7])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"variant", "en", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestSanitizeNestedMap(t *testing.T) {
	out := sanitizeKVs([]interface{}{"fields", map[string]interface{}{"Email": "a@b.c", "value": "money"}})
	m, ok := out[1].(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", out[1])
	}
	if m["Email"] != "[REDACTED]" || m["value"] != "money" {
		t.Fatalf("unexpected nested sanitize: %v", m)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnelquiz.log")
	log, err := New(Options{Mode: "prod", File: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info("lead captured", "email", "ana@example.com", "variant", "en")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "lead captured") || !strings.Contains(text, `"variant":"en"`) {
		t.Fatalf("log line missing: %s", text)
	}
	if strings.Contains(text, "ana@example.com") {
		t.Fatalf("email leaked into log: %s", text)
	}
}
