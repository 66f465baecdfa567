package requestid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()

	// Check format
	if !strings.HasPrefix(id, "dia-") {
		t.Errorf("expected ID to start with 'dia-', got %s", id)
	}
	if parts := strings.Split(id, "-"); len(parts) != 3 || len(parts[2]) != 12 {
		t.Errorf("unexpected ID layout: %s", id)
	}

	// Check uniqueness
	id2 := New()
	if id == id2 {
		t.Error("expected different IDs for consecutive calls")
	}
}

func TestNew_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
