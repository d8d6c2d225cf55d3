package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/globalquiz/roomclient/internal/game"
)

// TimerState is the countdown lifecycle state.
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerExpired TimerState = "expired"
)

// CountdownTimer is the locally ticking "time remaining" clock, seeded from
// the server's authoritative remaining-time value. The server does not tick
// between pushes; the client decrements once per wall-clock second and
// re-seeds whenever a snapshot carries a new basis or a new seed value.
//
// A raw seed value repeating across phases is not a re-seed: two consecutive
// questions both starting at 30s must each get a full countdown, which is
// why the basis (phase, question, round) travels with the seed.
type CountdownTimer struct {
	clock    clockwork.Clock
	onExpire func(game.Basis)

	mu        sync.Mutex
	state     TimerState
	basis     game.Basis
	seed      int
	remaining int
	gen       int
	cancel    chan struct{}
}

// NewCountdownTimer creates an idle timer. onExpire fires exactly once per
// running interval, when the count reaches zero; it may be nil.
func NewCountdownTimer(clock clockwork.Clock, onExpire func(game.Basis)) *CountdownTimer {
	return &CountdownTimer{
		clock:    clock,
		onExpire: onExpire,
		state:    TimerIdle,
	}
}

// Seed applies a server-supplied remaining-time value for the given basis.
// A repeated push of the same basis and value is a no-op so network chatter
// never restarts a countdown. A value of zero or less expires immediately
// without a running interval.
func (t *CountdownTimer) Seed(basis game.Basis, seconds int) {
	t.mu.Lock()
	if t.state != TimerIdle && t.basis == basis && t.seed == seconds {
		t.mu.Unlock()
		return
	}

	t.stopLocked()
	t.basis = basis
	t.seed = seconds

	if seconds <= 0 {
		t.remaining = 0
		t.state = TimerExpired
		cb := t.onExpire
		t.mu.Unlock()
		if cb != nil {
			cb(basis)
		}
		return
	}

	t.state = TimerRunning
	t.remaining = seconds
	t.gen++
	cancel := make(chan struct{})
	t.cancel = cancel
	gen := t.gen
	t.mu.Unlock()

	log.Debug().
		Str("phase", string(basis.Phase)).
		Int64("question_id", basis.QuestionID).
		Int("round", basis.Round).
		Int("seconds", seconds).
		Msg("countdown seeded")

	go t.run(gen, cancel)
}

func (t *CountdownTimer) run(gen int, cancel chan struct{}) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
			t.mu.Lock()
			if t.gen != gen || t.state != TimerRunning {
				t.mu.Unlock()
				return
			}
			t.remaining--
			if t.remaining > 0 {
				t.mu.Unlock()
				continue
			}
			t.remaining = 0
			t.state = TimerExpired
			basis := t.basis
			cb := t.onExpire
			t.mu.Unlock()
			if cb != nil {
				cb(basis)
			}
			return
		}
	}
}

// Remaining returns the displayed value. Never negative.
func (t *CountdownTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current lifecycle state.
func (t *CountdownTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Basis returns the basis of the last seed.
func (t *CountdownTimer) Basis() game.Basis {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.basis
}

// Stop cancels any running countdown and returns the timer to idle. No
// expiry fires after Stop.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = TimerIdle
	t.remaining = 0
}

func (t *CountdownTimer) stopLocked() {
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
	t.gen++
}
