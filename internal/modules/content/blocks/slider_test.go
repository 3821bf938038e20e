package blocks

import (
	"testing"
	"time"
)

func TestSliderNextWrapsAround(t *testing.T) {
	m := NewMachine(3, 0)
	defer m.Stop()

	want := []int{1, 2, 0}
	for _, w := range want {
		m.Next()
		if got := m.Current(); got != w {
			t.Fatalf("Current = %d, want %d", got, w)
		}
	}
}

func TestSliderPrevWrapsAround(t *testing.T) {
	m := NewMachine(3, 0)
	defer m.Stop()

	m.Prev()
	if got := m.Current(); got != 2 {
		t.Fatalf("Prev from 0 = %d, want 2", got)
	}
}

func TestSliderJumpTo(t *testing.T) {
	m := NewMachine(4, 0)
	defer m.Stop()

	m.JumpTo(2)
	if got := m.Current(); got != 2 {
		t.Fatalf("Current = %d, want 2", got)
	}

	m.JumpTo(9)
	if got := m.Current(); got != 2 {
		t.Fatalf("out-of-range jump moved frame to %d", got)
	}
}

func TestSliderDegenerateIgnoresTransitions(t *testing.T) {
	for _, n := range []int{0, 1} {
		m := NewMachine(n, 10*time.Millisecond)
		m.Next()
		m.Prev()
		m.JumpTo(0)
		if got := m.Current(); got != 0 {
			t.Errorf("n=%d: Current = %d, want 0", n, got)
		}
		m.Stop()
	}
}

func TestSliderAutoAdvance(t *testing.T) {
	m := NewMachine(3, 5*time.Millisecond)
	defer m.Stop()

	select {
	case i := <-m.Frames():
		if i != 1 {
			t.Fatalf("first auto frame = %d, want 1", i)
		}
	case <-time.After(time.Second):
		t.Fatal("auto-advance never fired")
	}
}

func TestSliderPauseIsIdempotent(t *testing.T) {
	m := NewMachine(3, time.Hour)
	defer m.Stop()

	m.Pause()
	m.Pause()
	m.Pause()
	m.Resume()
	if m.Paused() {
		t.Fatal("one resume did not re-arm after repeated pauses")
	}
}

func TestSliderPausePreservesState(t *testing.T) {
	m := NewMachine(5, time.Hour)
	defer m.Stop()

	m.JumpTo(3)
	m.Pause()
	m.Resume()
	if got := m.Current(); got != 3 {
		t.Fatalf("frame lost across pause/resume: got %d, want 3", got)
	}
}

func TestSliderStopTearsDown(t *testing.T) {
	m := NewMachine(3, 2*time.Millisecond)
	m.Stop()
	m.Stop() // repeated stop must not panic

	cur := m.Current()
	time.Sleep(20 * time.Millisecond)
	if got := m.Current(); got != cur {
		t.Fatalf("machine advanced after Stop: %d -> %d", cur, got)
	}

	m.Next()
	if got := m.Current(); got != cur {
		t.Fatal("transition applied after Stop")
	}
}
