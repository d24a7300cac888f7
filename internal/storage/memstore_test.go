package storage

import (
	"errors"
	"testing"
)

func TestMemoryStore_SetGet(t *testing.T) {
	m := NewMemoryStore()
	if err := m.Set("b", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = m.Set("a", "1")

	if v, ok := m.Get("b"); !ok || v != "2" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
	if keys := m.Keys(); len(keys) != 2 || keys[0] != "a" {
		t.Errorf("Keys = %v", keys)
	}
	if m.Writes() != 2 {
		t.Errorf("Writes = %d, want 2", m.Writes())
	}
	if m.Path() != ":memory:" || m.Load() != nil {
		t.Error("memory store should report :memory: and load trivially")
	}
}

func TestMemoryStore_FailWrites(t *testing.T) {
	m := NewMemoryStore()
	_ = m.Set("k", "before")
	m.FailWrites(true)

	if err := m.Set("k", "after"); !errors.Is(err, ErrWriteRefused) {
		t.Fatalf("Set error = %v, want ErrWriteRefused", err)
	}
	if v, _ := m.Get("k"); v != "before" {
		t.Errorf("value = %q, want before", v)
	}

	m.FailWrites(false)
	if err := m.Set("k", "after"); err != nil {
		t.Errorf("Set after re-enable: %v", err)
	}
}

var _ StateStore = (*MemoryStore)(nil)
