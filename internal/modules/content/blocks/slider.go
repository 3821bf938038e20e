package blocks

import (
	"sync"
	"time"
)

// Machine is the runtime state of one visible slider block: which frame is
// showing, plus an auto-advance timer that can be paused while the slider
// is hovered.
//
// All methods are safe for concurrent use. A machine with one frame or
// none never starts a timer and ignores transitions, matching the rendered
// markup which carries no controls in that case.
type Machine struct {
	mu      sync.Mutex
	n       int
	current int
	paused  bool
	stopped bool

	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	frames   chan int
}

// NewMachine creates a slider machine over n frames starting at Showing(0).
// If interval is positive and n > 1, auto-advance fires Next on that
// interval until Stop.
func NewMachine(n int, interval time.Duration) *Machine {
	m := &Machine{
		n:        n,
		interval: interval,
		done:     make(chan struct{}),
		frames:   make(chan int, 8),
	}
	if n > 1 && interval > 0 {
		m.ticker = time.NewTicker(interval)
		go m.run()
	}
	return m
}

func (m *Machine) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.ticker.C:
			m.mu.Lock()
			skip := m.paused || m.stopped
			m.mu.Unlock()
			if !skip {
				m.Next()
			}
		}
	}
}

// Frames exposes frame changes for streaming consumers. Sends are
// non-blocking; a slow consumer drops frames rather than stalling the
// machine.
func (m *Machine) Frames() <-chan int { return m.frames }

// Done is closed when the machine has been stopped.
func (m *Machine) Done() <-chan struct{} { return m.done }

func (m *Machine) publish(i int) {
	select {
	case m.frames <- i:
	default:
	}
}

// Current returns the index of the showing frame.
func (m *Machine) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Next advances one frame, wrapping past the end.
func (m *Machine) Next() {
	m.step(1)
}

// Prev steps back one frame, wrapping past the start.
func (m *Machine) Prev() {
	m.step(-1)
}

func (m *Machine) step(delta int) {
	m.mu.Lock()
	if m.n <= 1 || m.stopped {
		m.mu.Unlock()
		return
	}
	m.current = (m.current + delta + m.n) % m.n
	cur := m.current
	m.mu.Unlock()
	m.publish(cur)
}

// JumpTo shows frame j directly. Out-of-range indexes are ignored.
func (m *Machine) JumpTo(j int) {
	m.mu.Lock()
	if m.stopped || j < 0 || j >= m.n || m.n <= 1 {
		m.mu.Unlock()
		return
	}
	m.current = j
	m.mu.Unlock()
	m.publish(j)
}

// Pause suspends auto-advance. Idempotent: repeated pauses collapse into
// one, so a single Resume always re-arms the timer.
func (m *Machine) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume re-arms auto-advance after a Pause. The current frame survives a
// pause/resume cycle untouched.
func (m *Machine) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
}

// Paused reports whether auto-advance is suspended.
func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Stop tears the machine down: the timer goroutine exits and every later
// transition is a no-op. Safe to call more than once.
func (m *Machine) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.done)
	if m.ticker != nil {
		m.ticker.Stop()
	}
}
