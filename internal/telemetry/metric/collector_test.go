package metric

import (
	"strings"
	"testing"
)

type fixedKeys int

func (f fixedKeys) Len() int { return int(f) }

func TestCollector(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCollector(fixedKeys(42))); err != nil {
		t.Fatalf("Register: %v", err)
	}

	body := scrape(t, r.Handler())
	if !strings.Contains(body, "respkv_keys 42") {
		t.Error("expected respkv_keys 42")
	}
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCollector(fixedKeys(1))); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(NewCollector(fixedKeys(1))); err == nil {
		t.Error("second Register should fail")
	}
}
