package game

import (
	"encoding/json"
	"fmt"
)

// SessionSnapshot is the authoritative room state as last pushed by the
// server. A snapshot always replaces the previous one wholesale; the client
// never patches fields in and holds no authoritative state of its own.
type SessionSnapshot struct {
	SessionID          string   `json:"sessionId"`
	Status             Status   `json:"status"`
	Phase              Phase    `json:"currentPhase"`
	Players            []Player `json:"players"`
	CurrentRound       int      `json:"currentRound"`
	TotalRounds        int      `json:"totalRounds"`
	TimePerQuestion    int      `json:"timePerQuestion"`
	Timer              *int     `json:"timer,omitempty"`
	ChosenCategoryIDs  []int64  `json:"chosenCategoryIds"`
	SelectedCategory   *int64   `json:"selectedCategory,omitempty"`
	SelectedDifficulty *int     `json:"selectedDifficulty,omitempty"`
	CurrentQuestionID  *int64   `json:"currentQuestionId,omitempty"`
	FinalOptions       []string `json:"finalOptions"`
	MaxPlayers         int      `json:"maxPlayers"`
	Language           string   `json:"language"`
}

// Player is one room participant. hasAnswered, currentAnswer and
// wrongAnswerSubmitted are per-question transients: the server resets them
// at the start of each new question and the client must not carry them over.
type Player struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	AvatarURL            string `json:"avatarUrl"`
	Host                 bool   `json:"host"`
	Score                int    `json:"score"`
	Ready                bool   `json:"ready"`
	HasAnswered          bool   `json:"hasAnswered"`
	CurrentAnswer        string `json:"currentAnswer,omitempty"`
	WrongAnswerSubmitted string `json:"wrongAnswerSubmitted,omitempty"`
}

// DecodeSnapshot parses a pushed or fetched snapshot. The phase is
// normalized through ParsePhase so an unknown value degrades to the lobby
// instead of poisoning the stream.
func DecodeSnapshot(data []byte) (*SessionSnapshot, error) {
	var snap SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	snap.Phase = ParsePhase(string(snap.Phase))
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate rejects snapshots that cannot describe a real room. Only
// structural violations fail; everything recoverable is left to the screens.
func (s *SessionSnapshot) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("snapshot missing sessionId")
	}
	if s.TotalRounds > 0 && s.CurrentRound > s.TotalRounds {
		return fmt.Errorf("snapshot round %d exceeds total %d", s.CurrentRound, s.TotalRounds)
	}
	hosts := 0
	for _, p := range s.Players {
		if p.Host {
			hosts++
		}
	}
	if len(s.Players) > 0 && hosts != 1 {
		return fmt.Errorf("snapshot has %d hosts, want exactly 1", hosts)
	}
	return nil
}

// RemainingSeconds is the server's last known time remaining for the current
// phase. The timer field wins when present; older servers only send
// timePerQuestion.
func (s *SessionSnapshot) RemainingSeconds() int {
	if s.Timer != nil {
		return *s.Timer
	}
	return s.TimePerQuestion
}

// PlayerByID returns the player with the given id, or nil.
func (s *SessionSnapshot) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// HostPlayer returns the room host, or nil before anyone has joined.
func (s *SessionSnapshot) HostPlayer() *Player {
	for i := range s.Players {
		if s.Players[i].Host {
			return &s.Players[i]
		}
	}
	return nil
}

// Chooser is the player whose turn it is to pick category and difficulty:
// round number modulo player count, over join order.
func (s *SessionSnapshot) Chooser() *Player {
	if len(s.Players) == 0 || s.CurrentRound < 1 {
		return nil
	}
	return &s.Players[(s.CurrentRound-1)%len(s.Players)]
}

// IsLastRound reports whether the current round is the final one.
func (s *SessionSnapshot) IsLastRound() bool {
	return s.TotalRounds > 0 && s.CurrentRound >= s.TotalRounds
}

// StatusDiverges reports whether the coarse status contradicts the phase.
// The controller logs this; phase stays authoritative either way.
func (s *SessionSnapshot) StatusDiverges() bool {
	switch s.Status {
	case StatusWaitingForPlayers:
		return s.Phase != PhaseLobby
	case StatusInProgress:
		return s.Phase == PhaseLobby
	case StatusFinished:
		return false
	default:
		return false
	}
}

// Basis identifies the phase/question/round combination a snapshot belongs
// to. Timers re-seed and submission latches reset exactly when the basis
// changes; the raw seed value alone can coincidentally repeat across phases.
type Basis struct {
	Phase      Phase
	QuestionID int64
	Round      int
}

// TimerBasis derives the re-seed basis for the snapshot.
func (s *SessionSnapshot) TimerBasis() Basis {
	b := Basis{Phase: s.Phase, Round: s.CurrentRound}
	if s.CurrentQuestionID != nil {
		b.QuestionID = *s.CurrentQuestionID
	}
	return b
}
