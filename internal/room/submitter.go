package room

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/globalquiz/roomclient/internal/game"
)

var (
	// ErrNotYourTurn is returned when a player other than the chooser
	// attempts a category or difficulty pick.
	ErrNotYourTurn = errors.New("not this player's turn")
	// ErrNotHost is returned when a non-host attempts a phase advance.
	ErrNotHost = errors.New("player is not the host")
	// ErrAlreadySubmitted is returned when an action was already
	// dispatched for the current phase and question.
	ErrAlreadySubmitted = errors.New("already submitted for this phase")
	// ErrBlankAnswer is returned when a user-entered answer is empty.
	ErrBlankAnswer = errors.New("answer must not be blank")
	// ErrWrongPhase is returned when an action does not belong to the
	// snapshot's current phase.
	ErrWrongPhase = errors.New("action not valid in current phase")
)

// GameActions is the slice of the game server API the submitter dispatches
// through.
type GameActions interface {
	SelectCategory(ctx context.Context, sessionID, playerID string, categoryID int64) error
	SelectDifficulty(ctx context.Context, sessionID, playerID string, categoryID int64, difficulty int) error
	SubmitWrongAnswer(ctx context.Context, sessionID, playerID, answer string) error
	SubmitMCQAnswer(ctx context.Context, sessionID, playerID, answer string) error
	NotifyWrongAnswerTimeout(ctx context.Context, sessionID string) error
	NotifyMCQAnswerTimeout(ctx context.Context, sessionID string) error
	StartGame(ctx context.Context, sessionID string) error
	RevealToScore(ctx context.Context, sessionID string) error
	NextRound(ctx context.Context, sessionID string) error
	ResetGame(ctx context.Context, sessionID string) error
}

// latch is the shared duplicate-submission guard. It is set the moment an
// action is dispatched, before the network call resolves, so a double
// trigger can never produce two calls. It resets when the phase/question
// basis moves on, and is released explicitly when a call fails so the user
// may retry within the same phase.
type latch struct {
	mu    sync.Mutex
	basis game.Basis
	set   bool
}

// acquire latches for the basis. Returns false if already latched there.
func (l *latch) acquire(b game.Basis) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set && l.basis == b {
		return false
	}
	l.basis = b
	l.set = true
	return true
}

// release clears the latch after a confirmed failure, but only if the
// basis has not moved on in the meantime.
func (l *latch) release(b game.Basis) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.basis == b {
		l.set = false
	}
}

// ActionSubmitter converts local user intents into exactly one idempotent
// network call each. Authorization is checked locally before any network
// traffic: the UI should never offer an invalid control, but the submitter
// refuses on its own as well.
type ActionSubmitter struct {
	api           GameActions
	localPlayerID string

	category   latch
	difficulty latch
	answer     latch
	advance    latch
	timeout    latch
}

// NewActionSubmitter creates a submitter acting on behalf of the local
// player identity.
func NewActionSubmitter(api GameActions, localPlayerID string) *ActionSubmitter {
	return &ActionSubmitter{api: api, localPlayerID: localPlayerID}
}

// SelectCategory dispatches the chooser's category pick.
func (s *ActionSubmitter) SelectCategory(ctx context.Context, snap *game.SessionSnapshot, categoryID int64) error {
	if snap.Phase != game.PhaseCategorySelection {
		return ErrWrongPhase
	}
	if c := snap.Chooser(); c == nil || c.ID != s.localPlayerID {
		return ErrNotYourTurn
	}
	basis := snap.TimerBasis()
	if !s.category.acquire(basis) {
		return ErrAlreadySubmitted
	}
	if err := s.api.SelectCategory(ctx, snap.SessionID, s.localPlayerID, categoryID); err != nil {
		s.category.release(basis)
		return err
	}
	return nil
}

// SelectDifficulty dispatches the chooser's difficulty pick.
func (s *ActionSubmitter) SelectDifficulty(ctx context.Context, snap *game.SessionSnapshot, categoryID int64, difficulty int) error {
	if snap.Phase != game.PhaseDifficultySelection {
		return ErrWrongPhase
	}
	if c := snap.Chooser(); c == nil || c.ID != s.localPlayerID {
		return ErrNotYourTurn
	}
	basis := snap.TimerBasis()
	if !s.difficulty.acquire(basis) {
		return ErrAlreadySubmitted
	}
	if err := s.api.SelectDifficulty(ctx, snap.SessionID, s.localPlayerID, categoryID, difficulty); err != nil {
		s.difficulty.release(basis)
		return err
	}
	return nil
}

// SubmitAnswer dispatches the player's answer for the current
// answer-collection phase. Blank answers are rejected locally; the
// empty-answer timeout signal goes through the auto-submit path instead.
func (s *ActionSubmitter) SubmitAnswer(ctx context.Context, snap *game.SessionSnapshot, answer string) error {
	if !snap.Phase.IsAnswerCollection() {
		return ErrWrongPhase
	}
	if strings.TrimSpace(answer) == "" {
		return ErrBlankAnswer
	}
	return s.dispatchAnswer(ctx, snap, answer)
}

func (s *ActionSubmitter) dispatchAnswer(ctx context.Context, snap *game.SessionSnapshot, answer string) error {
	if p := snap.PlayerByID(s.localPlayerID); p != nil && p.HasAnswered {
		return ErrAlreadySubmitted
	}
	basis := snap.TimerBasis()
	if !s.answer.acquire(basis) {
		return ErrAlreadySubmitted
	}

	var err error
	switch snap.Phase {
	case game.PhaseCollectingWrongAnswers:
		err = s.api.SubmitWrongAnswer(ctx, snap.SessionID, s.localPlayerID, answer)
	case game.PhaseMCQAnswering:
		err = s.api.SubmitMCQAnswer(ctx, snap.SessionID, s.localPlayerID, answer)
	}
	if err != nil {
		s.answer.release(basis)
		return err
	}
	return nil
}

// AdvancePhase dispatches the host-only phase transition appropriate to the
// snapshot: start from the lobby, reveal to scoring, next round, or reset
// to the lobby after the final round.
func (s *ActionSubmitter) AdvancePhase(ctx context.Context, snap *game.SessionSnapshot) error {
	if p := snap.PlayerByID(s.localPlayerID); p == nil || !p.Host {
		return ErrNotHost
	}
	basis := snap.TimerBasis()
	if !s.advance.acquire(basis) {
		return ErrAlreadySubmitted
	}

	var err error
	switch snap.Phase {
	case game.PhaseLobby:
		err = s.api.StartGame(ctx, snap.SessionID)
	case game.PhaseAnswersReveal:
		err = s.api.RevealToScore(ctx, snap.SessionID)
	case game.PhaseScoreDisplay:
		if snap.IsLastRound() {
			err = s.api.ResetGame(ctx, snap.SessionID)
		} else {
			err = s.api.NextRound(ctx, snap.SessionID)
		}
	default:
		s.advance.release(basis)
		return ErrWrongPhase
	}
	if err != nil {
		s.advance.release(basis)
		return err
	}
	return nil
}

// HandleTimeout runs the countdown-expiry path for an answer-collection
// phase: auto-submit the empty "no answer given" answer exactly once if
// this player has not answered, and notify the server that the phase timer
// elapsed. Duplicate timeout notifications across clients are expected and
// tolerated server-side; this guard only keeps one client from repeating
// itself. A basis that no longer matches the snapshot means the expiry is
// stale and is ignored.
func (s *ActionSubmitter) HandleTimeout(ctx context.Context, snap *game.SessionSnapshot, basis game.Basis) {
	if snap == nil || snap.TimerBasis() != basis || !snap.Phase.IsAnswerCollection() {
		return
	}

	if err := s.dispatchAnswer(ctx, snap, ""); err != nil && !errors.Is(err, ErrAlreadySubmitted) {
		log.Warn().Err(err).
			Str("session_id", snap.SessionID).
			Str("phase", string(snap.Phase)).
			Msg("timeout auto-submit failed")
	}

	if !s.timeout.acquire(basis) {
		return
	}
	var err error
	switch snap.Phase {
	case game.PhaseCollectingWrongAnswers:
		err = s.api.NotifyWrongAnswerTimeout(ctx, snap.SessionID)
	case game.PhaseMCQAnswering:
		err = s.api.NotifyMCQAnswerTimeout(ctx, snap.SessionID)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", snap.SessionID).
			Str("phase", string(snap.Phase)).
			Msg("timeout notification failed")
	}
}
