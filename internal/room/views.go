package room

import (
	"sort"

	"github.com/globalquiz/roomclient/internal/game"
)

// RoomView is the fully derived render state for the active screen. It is
// rebuilt from scratch on every snapshot; nothing from the previous view
// survives into the next one.
type RoomView struct {
	Screen       game.Screen
	RoomID       string
	CurrentRound int
	TotalRounds  int
	Players      []PlayerView

	Lobby       *LobbyView
	Category    *CategoryView
	Difficulty  *DifficultyView
	AnswerEntry *AnswerEntryView
	MCQ         *MCQView
	Reveal      *RevealView
	Score       *ScoreView
}

// PlayerView is one participant as shown in the players bar.
type PlayerView struct {
	ID          string
	Username    string
	AvatarURL   string
	Score       int
	Host        bool
	Ready       bool
	HasAnswered bool
	IsLocal     bool
}

// LobbyView renders the waiting room.
type LobbyView struct {
	MaxPlayers int
	Language   string
	IsHost     bool
	IsReady    bool
	// CanStart mirrors the server's start rule: at least two players,
	// everyone ready, room still waiting. The control is disabled
	// otherwise; the host is auto-readied server-side on start.
	CanStart bool
}

// CategoryView renders the category pick turn.
type CategoryView struct {
	Chooser    PlayerView
	IsMyTurn   bool
	Candidates []CategoryChoice
	// Seconds is the server-seeded remaining time at derivation; it does
	// not tick. Renderers read the live countdown from
	// Controller.TimeRemaining.
	Seconds int
}

// CategoryChoice is one selectable category button.
type CategoryChoice struct {
	ID      int64
	Name    string
	Enabled bool
}

// DifficultyView renders the difficulty pick turn.
type DifficultyView struct {
	Chooser      PlayerView
	IsMyTurn     bool
	CategoryID   int64
	CategoryName string
	Levels       []int
	// Seconds is the derivation-time seed, not a ticking value.
	Seconds int
}

// AnswerEntryView renders the wrong-answer collection phase.
type AnswerEntryView struct {
	Question *game.Question
	// Seconds is the derivation-time seed, not a ticking value.
	Seconds     int
	HasAnswered bool
}

// MCQView renders the multiple-choice voting phase. Choices keep the
// server's order: submitted answers are matched by string equality against
// this list, so the client must never reshuffle it.
type MCQView struct {
	Question *game.Question
	Choices  []string
	// Seconds is the derivation-time seed, not a ticking value.
	Seconds     int
	HasAnswered bool
}

// RevealView renders the answers reveal. Each choice is flagged against the
// question content; the correct flag wins over the trap flag when the two
// overlap.
type RevealView struct {
	Question *game.Question
	Choices  []RevealChoice
	IsHost   bool
}

// RevealChoice is one revealed answer option.
type RevealChoice struct {
	Text    string
	Correct bool
	Trap    bool
	// PickedBy lists the usernames that voted for this choice.
	PickedBy []string
}

// ScoreView renders the scoreboard.
type ScoreView struct {
	// Standings is players ordered by score, best first.
	Standings []PlayerView
	LastRound bool
	IsHost    bool
}

// BuildView derives the render state for a snapshot. It is a pure function
// of its inputs and never fails: unknown phases land on the lobby screen.
func BuildView(snap *game.SessionSnapshot, question *game.Question, categoryName func(int64) string, localPlayerID string) RoomView {
	view := RoomView{
		Screen:       game.ScreenForPhase(snap.Phase),
		RoomID:       snap.SessionID,
		CurrentRound: snap.CurrentRound,
		TotalRounds:  snap.TotalRounds,
		Players:      playerViews(snap.Players, localPlayerID),
	}

	local := snap.PlayerByID(localPlayerID)
	isHost := local != nil && local.Host
	hasAnswered := local != nil && local.HasAnswered

	switch view.Screen {
	case game.ScreenCategorySelection:
		view.Category = buildCategoryView(snap, categoryName, localPlayerID)
	case game.ScreenDifficultySelection:
		view.Difficulty = buildDifficultyView(snap, categoryName, localPlayerID)
	case game.ScreenWrongAnswerEntry:
		view.AnswerEntry = &AnswerEntryView{
			Question:    question,
			Seconds:     snap.RemainingSeconds(),
			HasAnswered: hasAnswered,
		}
	case game.ScreenMCQVoting:
		view.MCQ = &MCQView{
			Question:    question,
			Choices:     snap.FinalOptions,
			Seconds:     snap.RemainingSeconds(),
			HasAnswered: hasAnswered,
		}
	case game.ScreenAnswersReveal:
		view.Reveal = buildRevealView(snap, question, isHost)
	case game.ScreenScoreboard:
		view.Score = &ScoreView{
			Standings: standings(snap.Players, localPlayerID),
			LastRound: snap.IsLastRound(),
			IsHost:    isHost,
		}
	default:
		view.Lobby = &LobbyView{
			MaxPlayers: snap.MaxPlayers,
			Language:   snap.Language,
			IsHost:     isHost,
			IsReady:    local != nil && local.Ready,
			CanStart:   isHost && canStart(snap),
		}
	}
	return view
}

func canStart(snap *game.SessionSnapshot) bool {
	if len(snap.Players) < 2 || snap.Status != game.StatusWaitingForPlayers {
		return false
	}
	for _, p := range snap.Players {
		// The server auto-readies the host on start.
		if !p.Ready && !p.Host {
			return false
		}
	}
	return true
}

func buildCategoryView(snap *game.SessionSnapshot, categoryName func(int64) string, localPlayerID string) *CategoryView {
	chooser := snap.Chooser()
	if chooser == nil {
		return &CategoryView{Seconds: snap.RemainingSeconds()}
	}
	myTurn := chooser.ID == localPlayerID

	choices := make([]CategoryChoice, 0, len(snap.ChosenCategoryIDs))
	for _, id := range snap.ChosenCategoryIDs {
		name := ""
		if categoryName != nil {
			name = categoryName(id)
		}
		choices = append(choices, CategoryChoice{ID: id, Name: name, Enabled: myTurn})
	}
	return &CategoryView{
		Chooser:    playerView(*chooser, localPlayerID),
		IsMyTurn:   myTurn,
		Candidates: choices,
		Seconds:    snap.RemainingSeconds(),
	}
}

func buildDifficultyView(snap *game.SessionSnapshot, categoryName func(int64) string, localPlayerID string) *DifficultyView {
	chooser := snap.Chooser()
	if chooser == nil {
		return &DifficultyView{Seconds: snap.RemainingSeconds()}
	}
	view := &DifficultyView{
		Chooser:  playerView(*chooser, localPlayerID),
		IsMyTurn: chooser.ID == localPlayerID,
		Levels:   []int{1, 2, 3},
		Seconds:  snap.RemainingSeconds(),
	}
	if snap.SelectedCategory != nil {
		view.CategoryID = *snap.SelectedCategory
		if categoryName != nil {
			view.CategoryName = categoryName(*snap.SelectedCategory)
		}
	}
	return view
}

func buildRevealView(snap *game.SessionSnapshot, question *game.Question, isHost bool) *RevealView {
	pickedBy := make(map[string][]string)
	for _, p := range snap.Players {
		if p.CurrentAnswer != "" {
			pickedBy[p.CurrentAnswer] = append(pickedBy[p.CurrentAnswer], p.Username)
		}
	}

	choices := make([]RevealChoice, 0, len(snap.FinalOptions))
	for _, opt := range snap.FinalOptions {
		choice := RevealChoice{Text: opt, PickedBy: pickedBy[opt]}
		if question != nil {
			choice.Correct = opt == question.CorrectAnswer
			choice.Trap = !choice.Correct && opt == question.TrapAnswer
		}
		choices = append(choices, choice)
	}
	return &RevealView{Question: question, Choices: choices, IsHost: isHost}
}

func playerViews(players []game.Player, localPlayerID string) []PlayerView {
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, playerView(p, localPlayerID))
	}
	return views
}

func playerView(p game.Player, localPlayerID string) PlayerView {
	return PlayerView{
		ID:          p.ID,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Score:       p.Score,
		Host:        p.Host,
		Ready:       p.Ready,
		HasAnswered: p.HasAnswered,
		IsLocal:     p.ID == localPlayerID,
	}
}

func standings(players []game.Player, localPlayerID string) []PlayerView {
	views := playerViews(players, localPlayerID)
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Score > views[j].Score
	})
	return views
}
