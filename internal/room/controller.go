package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/globalquiz/roomclient/internal/game"
)

// SnapshotAPI is the slice of the game server API the controller fetches
// full room state through.
type SnapshotAPI interface {
	GetRoom(ctx context.Context, roomID string) (*game.SessionSnapshot, error)
}

// ControllerConfig holds tuning for the room session controller.
type ControllerConfig struct {
	// InitialFetchAttempts bounds the initial full-state fetch retries.
	InitialFetchAttempts int
	RetryWait            time.Duration
	MaxRetryWait         time.Duration
}

// DefaultControllerConfig returns the stock controller configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		InitialFetchAttempts: 5,
		RetryWait:            time.Second,
		MaxRetryWait:         15 * time.Second,
	}
}

// Controller owns the live session snapshot for one room: it performs the
// initial full-state fetch, keeps a push-channel subscription open for the
// room's lifetime, and re-derives the active view from every inbound
// snapshot. Each snapshot replaces the previous one wholesale; the
// controller is the single writer, everything else reads.
//
// A controller is bound to one room id. Moving to a different room means
// cancelling this controller's context and starting a new one, which is
// what guarantees a stale subscription can never deliver into a newer
// room's state.
type Controller struct {
	roomID     string
	identity   Identity
	api        SnapshotAPI
	stream     PushStream
	submitter  *ActionSubmitter
	timer      *CountdownTimer
	resolver   *contentResolver
	clock      clockwork.Clock
	config     ControllerConfig
	instanceID string

	timeoutCh chan game.Basis

	mu       sync.RWMutex
	snap     *game.SessionSnapshot
	view     RoomView
	watchers []func(RoomView)
}

// NewController wires a controller for one room. The identity is the
// locally persisted player identity, injected explicitly rather than read
// from ambient storage.
func NewController(roomID string, identity Identity, api SnapshotAPI, actions GameActions, content ContentAPI, stream PushStream, clock clockwork.Clock, config ControllerConfig) *Controller {
	c := &Controller{
		roomID:     roomID,
		identity:   identity,
		api:        api,
		stream:     stream,
		submitter:  NewActionSubmitter(actions, identity.PlayerID),
		resolver:   newContentResolver(content),
		clock:      clock,
		config:     config,
		instanceID: uuid.New().String()[:8],
		timeoutCh:  make(chan game.Basis, 4),
	}
	c.timer = NewCountdownTimer(clock, c.onTimerExpired)
	return c
}

// Submitter exposes the action submitter bound to the local identity.
func (c *Controller) Submitter() *ActionSubmitter {
	return c.submitter
}

// Snapshot returns the last applied snapshot, or nil before the initial
// fetch completes.
func (c *Controller) Snapshot() *game.SessionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// View returns the last derived render state.
func (c *Controller) View() RoomView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// TimeRemaining returns the locally ticking countdown value.
func (c *Controller) TimeRemaining() int {
	return c.timer.Remaining()
}

// Watch registers a callback invoked with every derived view. Register
// before Run; callbacks run on the controller goroutine and must not block.
func (c *Controller) Watch(fn func(RoomView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// Run fetches the initial state, subscribes to the push channel, and
// processes updates until ctx is cancelled. It returns an error only when
// the initial fetch exhausts its retries or the subscription cannot be
// opened; everything after that is self-correcting.
func (c *Controller) Run(ctx context.Context) error {
	if c.roomID == "" {
		return fmt.Errorf("room id must not be empty")
	}
	defer c.timer.Stop()

	snap, err := c.fetchWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("initial room fetch: %w", err)
	}
	c.apply(ctx, snap)

	events, err := c.stream.Subscribe(ctx, c.roomID)
	if err != nil {
		return fmt.Errorf("subscribe to room %s: %w", c.roomID, err)
	}

	log.Info().
		Str("room_id", c.roomID).
		Str("player_id", c.identity.PlayerID).
		Str("instance", c.instanceID).
		Msg("room session controller running")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handleStreamEvent(ctx, ev)

		case basis := <-c.timeoutCh:
			c.handleTimeout(ctx, basis)
		}
	}
}

func (c *Controller) handleStreamEvent(ctx context.Context, ev StreamEvent) {
	if ev.Reconnected {
		// Pushes may have been dropped while disconnected. One full
		// refetch closes the gap; snapshots replace, never merge.
		log.Info().Str("room_id", c.roomID).Msg("push channel reconnected, refetching room state")
		snap, err := c.api.GetRoom(ctx, c.roomID)
		if err != nil {
			log.Warn().Err(err).Str("room_id", c.roomID).Msg("post-reconnect refetch failed")
			return
		}
		c.apply(ctx, snap)
		return
	}

	snap, err := game.DecodeSnapshot(ev.Data)
	if err != nil {
		// Discard the message, keep the subscription: the next valid
		// push self-corrects the view.
		log.Warn().Err(err).Str("room_id", c.roomID).Msg("dropping invalid snapshot push")
		return
	}
	c.apply(ctx, snap)
}

// apply replaces the in-memory snapshot, resolves content, re-seeds the
// countdown and notifies watchers with the freshly derived view.
func (c *Controller) apply(ctx context.Context, snap *game.SessionSnapshot) {
	if snap.SessionID != c.roomID {
		log.Warn().
			Str("room_id", c.roomID).
			Str("session_id", snap.SessionID).
			Msg("dropping snapshot for a different room")
		return
	}
	if snap.StatusDiverges() {
		log.Warn().
			Str("room_id", c.roomID).
			Str("status", string(snap.Status)).
			Str("phase", string(snap.Phase)).
			Msg("status and phase disagree, phase wins")
	}

	c.resolver.resolve(ctx, snap)

	basis := snap.TimerBasis()
	if phaseHasCountdown(snap.Phase) {
		c.timer.Seed(basis, snap.RemainingSeconds())
	} else {
		c.timer.Stop()
	}

	view := BuildView(snap, c.resolver.question, c.resolver.categoryName, c.identity.PlayerID)

	c.mu.Lock()
	c.snap = snap
	c.view = view
	watchers := c.watchers
	c.mu.Unlock()

	log.Debug().
		Str("room_id", c.roomID).
		Str("phase", string(snap.Phase)).
		Int("round", snap.CurrentRound).
		Int("players", len(snap.Players)).
		Msg("snapshot applied")

	for _, fn := range watchers {
		fn(view)
	}
}

// onTimerExpired runs on the timer goroutine; it hands the expiry to the
// controller loop so snapshot reads stay single-threaded.
func (c *Controller) onTimerExpired(basis game.Basis) {
	select {
	case c.timeoutCh <- basis:
	default:
		log.Warn().Str("room_id", c.roomID).Msg("timeout channel full, dropping expiry")
	}
}

func (c *Controller) handleTimeout(ctx context.Context, basis game.Basis) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap == nil {
		return
	}
	// The submitter re-checks the basis and drops stale expiries; the
	// call runs off-loop so a slow server cannot stall update handling.
	go c.submitter.HandleTimeout(ctx, snap, basis)
}

func (c *Controller) fetchWithRetry(ctx context.Context) (*game.SessionSnapshot, error) {
	wait := c.config.RetryWait
	var lastErr error

	for attempt := 1; attempt <= c.config.InitialFetchAttempts; attempt++ {
		snap, err := c.api.GetRoom(ctx, c.roomID)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("room_id", c.roomID).
			Int("attempt", attempt).
			Msg("room fetch failed")

		if attempt == c.config.InitialFetchAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(wait):
		}
		wait = nextBackoff(wait, c.config.MaxRetryWait)
	}
	return nil, lastErr
}

// phaseHasCountdown reports whether the phase runs a visible countdown.
// Reveal and score screens advance on host action, not on a timer.
func phaseHasCountdown(p game.Phase) bool {
	switch p {
	case game.PhaseCategorySelection,
		game.PhaseDifficultySelection,
		game.PhaseCollectingWrongAnswers,
		game.PhaseMCQAnswering:
		return true
	default:
		return false
	}
}
