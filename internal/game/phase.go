package game

// Phase is the fine-grained game-flow stage pushed by the server. It decides
// which screen is active and which player actions are valid.
type Phase string

const (
	PhaseLobby                  Phase = "LOBBY"
	PhaseCategorySelection      Phase = "CATEGORY_SELECTION"
	PhaseDifficultySelection    Phase = "DIFFICULTY_SELECTION"
	PhaseCollectingWrongAnswers Phase = "COLLECTING_WRONG_ANSWERS"
	PhaseMCQAnswering           Phase = "MCQ_ANSWERING"
	PhaseAnswersReveal          Phase = "ANSWERS_REVEAL"
	PhaseScoreDisplay           Phase = "SCORE_DISPLAY"
)

// Status is the coarse lobby-readiness indicator. It overlaps with Phase and
// is treated as a display hint only; Phase is authoritative.
type Status string

const (
	StatusWaitingForPlayers Status = "WAITING_FOR_PLAYERS"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusFinished          Status = "FINISHED"
)

// ParsePhase maps a wire phase value to a known Phase. Unknown values fall
// back to the lobby so a newer server can never crash the client.
// WAITING_FOR_PLAYERS appears in older snapshots as a phase value and means
// the same thing as LOBBY.
func ParsePhase(s string) Phase {
	switch Phase(s) {
	case PhaseCategorySelection,
		PhaseDifficultySelection,
		PhaseCollectingWrongAnswers,
		PhaseMCQAnswering,
		PhaseAnswersReveal,
		PhaseScoreDisplay:
		return Phase(s)
	case PhaseLobby, Phase(StatusWaitingForPlayers):
		return PhaseLobby
	default:
		return PhaseLobby
	}
}

// Screen identifies the view responsible for rendering a phase.
type Screen string

const (
	ScreenLobby               Screen = "lobby"
	ScreenCategorySelection   Screen = "category_selection"
	ScreenDifficultySelection Screen = "difficulty_selection"
	ScreenWrongAnswerEntry    Screen = "wrong_answer_entry"
	ScreenMCQVoting           Screen = "mcq_voting"
	ScreenAnswersReveal       Screen = "answers_reveal"
	ScreenScoreboard          Screen = "scoreboard"
)

// ScreenForPhase routes a snapshot's phase to the screen that owns it. It is
// total: every input, including garbage, yields a valid screen.
func ScreenForPhase(p Phase) Screen {
	switch p {
	case PhaseCategorySelection:
		return ScreenCategorySelection
	case PhaseDifficultySelection:
		return ScreenDifficultySelection
	case PhaseCollectingWrongAnswers:
		return ScreenWrongAnswerEntry
	case PhaseMCQAnswering:
		return ScreenMCQVoting
	case PhaseAnswersReveal:
		return ScreenAnswersReveal
	case PhaseScoreDisplay:
		return ScreenScoreboard
	default:
		return ScreenLobby
	}
}

// IsAnswerCollection reports whether the phase collects per-player answers
// and therefore drives the timeout auto-submission path.
func (p Phase) IsAnswerCollection() bool {
	return p == PhaseCollectingWrongAnswers || p == PhaseMCQAnswering
}
