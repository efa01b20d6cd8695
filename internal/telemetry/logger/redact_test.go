package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		key   string
		value string
	}{
		{"password", "hunter2"},
		{"tls_key_password", "abc"},
		{"auth", "bearer xyz"},
		{"value", "user data"},
		{"Secret", "s3cr3t"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			buf.Reset()
			l.Info("test", tt.key, tt.value)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			if entry[tt.key] != redactedValue {
				t.Errorf("%s = %v, want redacted", tt.key, entry[tt.key])
			}
		})
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("test", "addr", "127.0.0.1:6379", "command", "SET", "keys", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["addr"] != "127.0.0.1:6379" {
		t.Errorf("addr = %v", entry["addr"])
	}
	if entry["command"] != "SET" {
		t.Errorf("command = %v", entry["command"])
	}
	if entry["keys"] != float64(3) {
		t.Errorf("keys = %v", entry["keys"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Slog().WithGroup("tls").Info("test", "key_password", "pw")

	if bytes.Contains(buf.Bytes(), []byte(`"pw"`)) {
		t.Errorf("grouped sensitive attribute leaked: %s", buf.String())
	}
}

func TestRedactSensitive_EmptyStringKept(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("test", "password", "")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["password"] != "" {
		t.Errorf("password = %v, want empty", entry["password"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"client_secret", true},
		{"auth_header", true},
		{"value", true},
		{"addr", false},
		{"conn_id", false},
		{"command", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactSensitive_ByteValues(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("set", "value", []byte("payload"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["value"] != redactedValue {
		t.Errorf("value = %v, want redacted", entry["value"])
	}
}
