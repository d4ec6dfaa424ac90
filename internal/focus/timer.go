// Package focus implements the work/break focus timer.
package focus

import (
	"fmt"
	"sync"
	"time"
)

// Session is the kind of the current timer run.
type Session int

const (
	Work Session = iota
	Break
)

func (s Session) String() string {
	if s == Break {
		return "break"
	}
	return "work"
}

// State is a snapshot of the timer.
type State struct {
	Session   Session
	Remaining time.Duration
	Running   bool
	// Expired is set on the tick that ended a session; Session is then the next one.
	Expired bool
}

// Ticker delivers ticks until stop is called.
type Ticker func(d time.Duration) (ticks <-chan time.Time, stop func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Timer counts work and break sessions down in one-second steps.
type Timer struct {
	work, brk time.Duration
	onTick    func(State)
	ticker    Ticker

	mu        sync.Mutex
	session   Session
	remaining time.Duration
	halt      chan struct{}
	wg        sync.WaitGroup
}

// Option configures a Timer.
type Option func(*Timer)

// WithTicker replaces the one-second wall clock ticker.
func WithTicker(t Ticker) Option {
	return func(tm *Timer) { tm.ticker = t }
}

// New creates a stopped timer at the start of a work session.
// onTick, if non-nil, receives the state after every tick.
func New(work, brk time.Duration, onTick func(State), opts ...Option) *Timer {
	t := &Timer{
		work:      work,
		brk:       brk,
		onTick:    onTick,
		ticker:    realTicker,
		session:   Work,
		remaining: work,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.onTick == nil {
		t.onTick = func(State) {}
	}
	return t
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Timer) stateLocked() State {
	return State{Session: t.session, Remaining: t.remaining, Running: t.halt != nil}
}

// Start starts or resumes the countdown. It is a no-op while running.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halt != nil {
		return
	}

	halt := make(chan struct{})
	t.halt = halt
	ticks, stop := t.ticker(time.Second)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer stop()
		for {
			select {
			case <-halt:
				return
			case <-ticks:
				if !t.tick(halt) {
					return
				}
			}
		}
	}()
}

// tick advances one second and reports whether the countdown continues.
func (t *Timer) tick(halt chan struct{}) bool {
	t.mu.Lock()
	if t.halt != halt {
		t.mu.Unlock()
		return false
	}

	t.remaining -= time.Second
	expired := t.remaining <= 0
	if expired {
		t.halt = nil
		t.session = t.other()
		t.remaining = t.duration(t.session)
	}
	s := t.stateLocked()
	s.Expired = expired
	t.mu.Unlock()

	t.onTick(s)
	return !expired
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause() {
	t.stop()
}

// Reset stops the countdown and restores the full duration of the current session.
func (t *Timer) Reset() {
	t.stop()
	t.mu.Lock()
	t.remaining = t.duration(t.session)
	t.mu.Unlock()
}

// Toggle stops the countdown and switches between work and break.
func (t *Timer) Toggle() {
	t.stop()
	t.mu.Lock()
	t.session = t.other()
	t.remaining = t.duration(t.session)
	t.mu.Unlock()
}

// Close stops ticking and waits for the ticking goroutine to exit.
func (t *Timer) Close() {
	t.stop()
	t.wg.Wait()
}

func (t *Timer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halt != nil {
		close(t.halt)
		t.halt = nil
	}
}

func (t *Timer) other() Session {
	if t.session == Work {
		return Break
	}
	return Work
}

func (t *Timer) duration(s Session) time.Duration {
	if s == Break {
		return t.brk
	}
	return t.work
}

// Format renders d as mm:ss.
func Format(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
