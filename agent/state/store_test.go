package state

import (
	"testing"

	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

func TestStoreGetDefault(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if got := s.Get("missing", "fallback"); got != "fallback" {
		t.Fatalf("Get() = %v, want fallback", got)
	}

	s.Set("path", "REQUEST_INFO")
	s.Set("path", "READY_FOR_HUMAN_APPROVAL")
	if got := s.Get("path", nil); got != "READY_FOR_HUMAN_APPROVAL" {
		t.Fatalf("Get() = %v, want overwritten value", got)
	}
}

func TestStoreSnapshotIsIndependentMap(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Set("path", "REQUEST_INFO")

	snap := s.Snapshot()
	snap["path"] = "tampered"
	snap["human_gate"] = "injected"

	if got := s.Get("path", nil); got != "REQUEST_INFO" {
		t.Fatalf("store changed through snapshot: %v", got)
	}
	if s.Has("human_gate") {
		t.Fatal("snapshot insert leaked into store")
	}
}

func TestStoreSnapshotDeepCopiesValues(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Set("validation", contractx.ValidationResult{
		Status:   contractx.VerdictWarn,
		Warnings: []string{"Signature presence unclear."},
	})
	s.Set("meta", map[string]any{"tags": []string{"a"}})

	snap := s.Snapshot()
	v := snap["validation"].(contractx.ValidationResult)
	v.Warnings[0] = "tampered"
	snap["meta"].(map[string]any)["tags"].([]string)[0] = "tampered"

	stored, ok := Typed[contractx.ValidationResult](s, "validation")
	if !ok {
		t.Fatal("validation missing from store")
	}
	if stored.Warnings[0] != "Signature presence unclear." {
		t.Fatalf("store warning mutated: %q", stored.Warnings[0])
	}
	meta := s.Get("meta", nil).(map[string]any)
	if meta["tags"].([]string)[0] != "a" {
		t.Fatal("nested slice mutated through snapshot")
	}
}

func TestStoreKeysSorted(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Set("review", 1)
	s.Set("fields", 2)
	s.Set("path", 3)

	keys := s.Keys()
	want := []string{"fields", "path", "review"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

func TestValueTypeMismatch(t *testing.T) {
	t.Parallel()

	src := map[string]any{"path": 42}
	if _, ok := Value[string](src, "path"); ok {
		t.Fatal("expected type mismatch to report false")
	}
	if _, ok := Value[string](src, "missing"); ok {
		t.Fatal("expected missing key to report false")
	}
}
