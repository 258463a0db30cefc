package failsafe

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Fail-safe timer constants.
const (
	// DefaultExpiry is the expiry used when a commissioner arms without one.
	DefaultExpiry = 60 * time.Second

	// MaxCumulativeExpiry bounds how long the fail-safe may stay armed,
	// counted from the first Arm, across all re-arms.
	MaxCumulativeExpiry = 900 * time.Second
)

// Timer errors.
var (
	ErrInvalidExpiry = errors.New("invalid fail-safe expiry")
	ErrNotArmed      = errors.New("fail-safe not armed")
)

// State represents the fail-safe state.
type State uint8

const (
	// StateDisarmed indicates no commissioning session holds the fail-safe.
	StateDisarmed State = iota

	// StateArmed indicates the fail-safe is running.
	StateArmed

	// StateExpired indicates the fail-safe expired before it was disarmed.
	StateExpired
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisarmed:
		return "DISARMED"
	case StateArmed:
		return "ARMED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Timer manages the commissioning fail-safe.
type Timer struct {
	mu sync.RWMutex

	state State

	// Cumulative bound for the current arming.
	maxCumulative time.Duration

	timer      *time.Timer
	firstArm   time.Time
	deadline   time.Time
	breadcrumb uint64

	// generation invalidates callbacks of timers replaced by re-arming.
	generation uint64

	onStateChange func(oldState, newState State)
	onExpire      []func()
}

// NewTimer creates a disarmed fail-safe.
func NewTimer() *Timer {
	return &Timer{
		state:         StateDisarmed,
		maxCumulative: MaxCumulativeExpiry,
	}
}

// NewTimerWithMax creates a disarmed fail-safe with a custom cumulative bound.
func NewTimerWithMax(maxCumulative time.Duration) (*Timer, error) {
	if maxCumulative <= 0 {
		return nil, fmt.Errorf("%w: max cumulative expiry %v", ErrInvalidExpiry, maxCumulative)
	}
	t := NewTimer()
	t.maxCumulative = maxCumulative
	return t, nil
}

// State returns the current fail-safe state.
func (t *Timer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// IsArmed returns true if the fail-safe is armed.
func (t *Timer) IsArmed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state == StateArmed
}

// Breadcrumb returns the breadcrumb recorded by the last Arm.
func (t *Timer) Breadcrumb() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.breadcrumb
}

// SetBreadcrumb records the commissioner's progress marker.
func (t *Timer) SetBreadcrumb(b uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.breadcrumb = b
}

// Arm arms the fail-safe, or extends it if already armed, so it expires after
// expiry. The deadline is capped at the cumulative bound from the first Arm.
// An expiry of zero expires an armed fail-safe immediately and is a no-op
// otherwise.
func (t *Timer) Arm(expiry time.Duration, breadcrumb uint64) error {
	if expiry < 0 || expiry > t.maxCumulative {
		return fmt.Errorf("%w: %v", ErrInvalidExpiry, expiry)
	}

	t.mu.Lock()

	if expiry == 0 {
		if t.state != StateArmed {
			t.mu.Unlock()
			return nil
		}
		t.breadcrumb = breadcrumb
		t.expireLocked() // unlocks
		return nil
	}

	now := time.Now()
	oldState := t.state
	if oldState != StateArmed {
		t.firstArm = now
	}

	deadline := now.Add(expiry)
	if limit := t.firstArm.Add(t.maxCumulative); deadline.After(limit) {
		deadline = limit
	}

	t.stopLocked()
	t.state = StateArmed
	t.deadline = deadline
	t.breadcrumb = breadcrumb
	t.generation++
	gen := t.generation
	t.timer = time.AfterFunc(time.Until(deadline), func() {
		t.expire(gen)
	})

	stateChangeFn := t.onStateChange

	t.mu.Unlock()

	if stateChangeFn != nil && oldState != StateArmed {
		stateChangeFn(oldState, StateArmed)
	}
	return nil
}

// Disarm stops the fail-safe without running the expiry callbacks.
// Returns ErrNotArmed if the fail-safe is not armed.
func (t *Timer) Disarm() error {
	t.mu.Lock()

	if t.state != StateArmed {
		t.mu.Unlock()
		return ErrNotArmed
	}

	t.stopLocked()
	t.generation++
	t.state = StateDisarmed
	t.deadline = time.Time{}
	t.firstArm = time.Time{}
	t.breadcrumb = 0

	stateChangeFn := t.onStateChange

	t.mu.Unlock()

	if stateChangeFn != nil {
		stateChangeFn(StateArmed, StateDisarmed)
	}
	return nil
}

// Remaining returns the time left until expiry.
// Returns 0 if the fail-safe is not armed.
func (t *Timer) Remaining() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state != StateArmed {
		return 0
	}
	remaining := time.Until(t.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// OnExpire adds a callback run when the fail-safe expires.
// Callbacks run in registration order, outside the timer's lock.
func (t *Timer) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = append(t.onExpire, fn)
}

// OnStateChange sets a callback for state changes.
func (t *Timer) OnStateChange(fn func(oldState, newState State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// expire is called by the timer of arming generation gen.
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()

	if t.state != StateArmed || t.generation != gen {
		t.mu.Unlock()
		return
	}
	t.expireLocked()
}

// expireLocked moves an armed timer to EXPIRED. Must be called with t.mu
// held; it releases the lock before running callbacks.
func (t *Timer) expireLocked() {
	t.stopLocked()
	t.generation++
	t.state = StateExpired
	t.deadline = time.Time{}
	t.firstArm = time.Time{}

	stateChangeFn := t.onStateChange
	expireFns := append([]func(){}, t.onExpire...)

	t.mu.Unlock()

	if stateChangeFn != nil {
		stateChangeFn(StateArmed, StateExpired)
	}
	for _, fn := range expireFns {
		fn()
	}
}

func (t *Timer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
