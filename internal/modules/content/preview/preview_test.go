package preview

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryCreateAndClose(t *testing.T) {
	r := NewRegistry()

	id, err := r.Create(3, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m.Next()
	if m.Current() != 1 {
		t.Errorf("Current() = %d, want 1", m.Current())
	}

	if err := r.Close(id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Close = %v, want ErrNotFound", err)
	}
	if err := r.Close(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("double Close = %v, want ErrNotFound", err)
	}

	// A stopped machine ignores transitions.
	m.Next()
	if m.Current() != 1 {
		t.Errorf("stopped machine advanced to %d", m.Current())
	}
}

func TestRegistryCap(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < maxMachines; i++ {
		if _, err := r.Create(2, 0); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	if _, err := r.Create(2, 0); !errors.Is(err, ErrTooManyPreviews) {
		t.Fatalf("over-cap Create = %v, want ErrTooManyPreviews", err)
	}
	r.Shutdown()
	if _, err := r.Create(2, time.Second); err != nil {
		t.Fatalf("Create after Shutdown: %v", err)
	}
	r.Shutdown()
}
