package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalquiz/roomclient/internal/game"
)

func lobbySnapshot(players ...game.Player) *game.SessionSnapshot {
	return &game.SessionSnapshot{
		SessionID:       "room-1",
		Status:          game.StatusWaitingForPlayers,
		Phase:           game.PhaseLobby,
		Players:         players,
		CurrentRound:    1,
		TotalRounds:     5,
		TimePerQuestion: 30,
		MaxPlayers:      8,
		Language:        "en",
	}
}

func TestLobbyStartGating(t *testing.T) {
	host := game.Player{ID: "p1", Username: "ana", Host: true}
	guest := game.Player{ID: "p2", Username: "ben"}

	cases := []struct {
		name     string
		snap     *game.SessionSnapshot
		local    string
		canStart bool
	}{
		{
			name:  "host alone cannot start",
			snap:  lobbySnapshot(host),
			local: "p1",
		},
		{
			name:  "unready guest blocks start",
			snap:  lobbySnapshot(host, guest),
			local: "p1",
		},
		{
			name: "everyone ready enables start for host",
			snap: lobbySnapshot(host, game.Player{
				ID: "p2", Username: "ben", Ready: true,
			}),
			local:    "p1",
			canStart: true,
		},
		{
			name: "ready guest never sees start",
			snap: lobbySnapshot(host, game.Player{
				ID: "p2", Username: "ben", Ready: true,
			}),
			local: "p2",
		},
		{
			name: "host readiness is not required",
			snap: lobbySnapshot(
				game.Player{ID: "p1", Username: "ana", Host: true, Ready: false},
				game.Player{ID: "p2", Username: "ben", Ready: true},
			),
			local:    "p1",
			canStart: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := BuildView(tc.snap, nil, nil, tc.local)
			require.Equal(t, game.ScreenLobby, view.Screen)
			require.NotNil(t, view.Lobby)
			assert.Equal(t, tc.canStart, view.Lobby.CanStart)
		})
	}
}

func TestLobbyStartDisabledOnceInProgress(t *testing.T) {
	snap := lobbySnapshot(
		game.Player{ID: "p1", Host: true},
		game.Player{ID: "p2", Ready: true},
	)
	snap.Status = game.StatusInProgress

	view := BuildView(snap, nil, nil, "p1")
	require.NotNil(t, view.Lobby)
	assert.False(t, view.Lobby.CanStart)
}

func TestCategoryChoicesEnabledOnlyForChooser(t *testing.T) {
	snap := lobbySnapshot(
		game.Player{ID: "p1", Username: "ana", Host: true},
		game.Player{ID: "p2", Username: "ben"},
	)
	snap.Phase = game.PhaseCategorySelection
	snap.Status = game.StatusInProgress
	snap.CurrentRound = 2 // chooser rotates to p2
	snap.ChosenCategoryIDs = []int64{10, 20, 30}

	names := func(id int64) string {
		return map[int64]string{10: "History", 20: "Sports", 30: "Music"}[id]
	}

	chooserView := BuildView(snap, nil, names, "p2")
	require.NotNil(t, chooserView.Category)
	assert.True(t, chooserView.Category.IsMyTurn)
	require.Len(t, chooserView.Category.Candidates, 3)
	for _, c := range chooserView.Category.Candidates {
		assert.True(t, c.Enabled)
	}
	assert.Equal(t, "History", chooserView.Category.Candidates[0].Name)

	spectatorView := BuildView(snap, nil, names, "p1")
	require.NotNil(t, spectatorView.Category)
	assert.False(t, spectatorView.Category.IsMyTurn)
	assert.Equal(t, "ben", spectatorView.Category.Chooser.Username)
	for _, c := range spectatorView.Category.Candidates {
		assert.False(t, c.Enabled)
	}
}

func TestDifficultyViewCarriesSelectedCategory(t *testing.T) {
	snap := lobbySnapshot(
		game.Player{ID: "p1", Host: true},
		game.Player{ID: "p2"},
	)
	snap.Phase = game.PhaseDifficultySelection
	snap.Status = game.StatusInProgress
	selected := int64(20)
	snap.SelectedCategory = &selected

	view := BuildView(snap, nil, func(int64) string { return "Sports" }, "p1")
	require.NotNil(t, view.Difficulty)
	assert.True(t, view.Difficulty.IsMyTurn)
	assert.Equal(t, int64(20), view.Difficulty.CategoryID)
	assert.Equal(t, "Sports", view.Difficulty.CategoryName)
	assert.Equal(t, []int{1, 2, 3}, view.Difficulty.Levels)
}

func TestMCQViewPreservesServerOptionOrder(t *testing.T) {
	qid := int64(42)
	snap := lobbySnapshot(
		game.Player{ID: "p1", Host: true},
		game.Player{ID: "p2", HasAnswered: true},
	)
	snap.Phase = game.PhaseMCQAnswering
	snap.Status = game.StatusInProgress
	snap.CurrentQuestionID = &qid
	snap.FinalOptions = []string{"Zinc", "Argon", "Neon", "Iron"}
	seconds := 17
	snap.Timer = &seconds

	question := &game.Question{QuestionID: 42, QuestionText: "Which is a metal?"}
	view := BuildView(snap, question, nil, "p2")
	require.NotNil(t, view.MCQ)
	assert.Equal(t, []string{"Zinc", "Argon", "Neon", "Iron"}, view.MCQ.Choices)
	assert.Equal(t, 17, view.MCQ.Seconds)
	assert.True(t, view.MCQ.HasAnswered)
	assert.Same(t, question, view.MCQ.Question)
}

func TestRevealFlagsCorrectOverTrap(t *testing.T) {
	snap := lobbySnapshot(
		game.Player{ID: "p1", Username: "ana", Host: true, CurrentAnswer: "Iron"},
		game.Player{ID: "p2", Username: "ben", CurrentAnswer: "Zinc"},
		game.Player{ID: "p3", Username: "cat", CurrentAnswer: "Iron"},
	)
	snap.Phase = game.PhaseAnswersReveal
	snap.Status = game.StatusInProgress
	snap.FinalOptions = []string{"Zinc", "Iron", "Neon"}

	question := &game.Question{
		QuestionID:    42,
		CorrectAnswer: "Iron",
		TrapAnswer:    "Iron", // correct must win when they collide
	}
	view := BuildView(snap, question, nil, "p2")
	require.NotNil(t, view.Reveal)
	require.Len(t, view.Reveal.Choices, 3)

	zinc, iron, neon := view.Reveal.Choices[0], view.Reveal.Choices[1], view.Reveal.Choices[2]
	assert.False(t, zinc.Correct)
	assert.Equal(t, []string{"ben"}, zinc.PickedBy)
	assert.True(t, iron.Correct)
	assert.False(t, iron.Trap)
	assert.Equal(t, []string{"ana", "cat"}, iron.PickedBy)
	assert.False(t, neon.Correct)
	assert.Empty(t, neon.PickedBy)
}

func TestRevealFlagsTrapWhenDistinct(t *testing.T) {
	snap := lobbySnapshot(game.Player{ID: "p1", Host: true})
	snap.Phase = game.PhaseAnswersReveal
	snap.FinalOptions = []string{"Zinc", "Iron"}

	question := &game.Question{CorrectAnswer: "Iron", TrapAnswer: "Zinc"}
	view := BuildView(snap, question, nil, "p1")
	require.NotNil(t, view.Reveal)
	assert.True(t, view.Reveal.Choices[0].Trap)
	assert.False(t, view.Reveal.Choices[0].Correct)
}

func TestScoreboardOrdersByScoreDescending(t *testing.T) {
	snap := lobbySnapshot(
		game.Player{ID: "p1", Username: "ana", Host: true, Score: 300},
		game.Player{ID: "p2", Username: "ben", Score: 700},
		game.Player{ID: "p3", Username: "cat", Score: 300},
	)
	snap.Phase = game.PhaseScoreDisplay
	snap.Status = game.StatusInProgress
	snap.CurrentRound = 5

	view := BuildView(snap, nil, nil, "p3")
	require.NotNil(t, view.Score)
	require.Len(t, view.Score.Standings, 3)
	assert.Equal(t, "ben", view.Score.Standings[0].Username)
	// Ties keep snapshot order.
	assert.Equal(t, "ana", view.Score.Standings[1].Username)
	assert.Equal(t, "cat", view.Score.Standings[2].Username)
	assert.True(t, view.Score.LastRound)
	assert.False(t, view.Score.IsHost)
}

func TestViewReplacedWholesaleBetweenSnapshots(t *testing.T) {
	first := lobbySnapshot(
		game.Player{ID: "p1", Username: "ana", Host: true},
		game.Player{ID: "p2", Username: "ben", Ready: true},
	)
	firstView := BuildView(first, nil, nil, "p1")
	require.NotNil(t, firstView.Lobby)

	second := lobbySnapshot(game.Player{ID: "p2", Username: "ben", Host: true})
	second.Phase = game.PhaseScoreDisplay
	second.Status = game.StatusInProgress
	second.CurrentRound = 3
	secondView := BuildView(second, nil, nil, "p1")

	// Nothing from the previous view leaks through: the departed player
	// is gone and the lobby section is no longer populated.
	assert.Nil(t, secondView.Lobby)
	require.NotNil(t, secondView.Score)
	require.Len(t, secondView.Players, 1)
	assert.Equal(t, "p2", secondView.Players[0].ID)
	assert.Equal(t, 3, secondView.CurrentRound)
}

func TestUnknownChooserFallsBackToEmptyTurnViews(t *testing.T) {
	snap := lobbySnapshot() // no players at all
	snap.Phase = game.PhaseCategorySelection

	view := BuildView(snap, nil, nil, "p1")
	require.NotNil(t, view.Category)
	assert.False(t, view.Category.IsMyTurn)
	assert.Empty(t, view.Category.Candidates)
}
