package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalquiz/roomclient/internal/game"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// newTestServer records every request and answers with the given status and
// body.
func newTestServer(t *testing.T, status int, body string) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			Header: r.Header.Clone(),
			Body:   data,
		})
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), &requests
}

func TestGetRoomDecodesSnapshot(t *testing.T) {
	body := `{
		"sessionId": "room-1",
		"status": "IN_PROGRESS",
		"currentPhase": "MCQ_ANSWERING",
		"players": [
			{"id": "p1", "username": "ana", "host": true},
			{"id": "p2", "username": "ben"}
		],
		"currentRound": 2,
		"totalRounds": 5,
		"timePerQuestion": 30,
		"timer": 12,
		"currentQuestionId": 42,
		"finalOptions": ["Zinc", "Iron"]
	}`
	client, requests := newTestServer(t, http.StatusOK, body)

	snap, err := client.GetRoom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, game.PhaseMCQAnswering, snap.Phase)
	assert.Equal(t, 2, snap.CurrentRound)
	require.NotNil(t, snap.Timer)
	assert.Equal(t, 12, *snap.Timer)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/rooms/room-1", req.Path)
}

func TestErrorBodyBecomesAPIError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusConflict, `{"error": "Game already started"}`)

	err := client.StartGame(context.Background(), "room-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Game already started", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "409")
}

func TestIsNotFound(t *testing.T) {
	client, _ := newTestServer(t, http.StatusNotFound, `{"error": "Room not found"}`)

	_, err := client.GetRoom(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("something else")))
}

func TestNonJSONErrorBodyKeptVerbatim(t *testing.T) {
	client, _ := newTestServer(t, http.StatusInternalServerError, "proxy timeout")

	err := client.ResetGame(context.Background(), "room-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "proxy timeout", apiErr.Message)
}

func TestSelectCategorySendsJSONBody(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, "{}")

	require.NoError(t, client.SelectCategory(context.Background(), "room-1", "p2", 20))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/game/room-1/select-category", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, float64(20), payload["category"])
	assert.Equal(t, "p2", payload["playerId"])
}

func TestSelectDifficultySendsJSONBody(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, "{}")

	require.NoError(t, client.SelectDifficulty(context.Background(), "room-1", "p2", 20, 3))

	req := (*requests)[0]
	assert.Equal(t, "/api/game/room-1/select-difficulty", req.Path)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, float64(3), payload["difficulty"])
	assert.Equal(t, float64(20), payload["category"])
	assert.Equal(t, "p2", payload["playerId"])
}

func TestAnswersTravelAsQueryParams(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, "{}")

	require.NoError(t, client.SubmitWrongAnswer(context.Background(), "room-1", "p2", "Lisbon"))
	require.NoError(t, client.SubmitMCQAnswer(context.Background(), "room-1", "p2", "")) // timeout auto-submit

	require.Len(t, *requests, 2)
	wrong := (*requests)[0]
	assert.Equal(t, "/api/game/session/room-1/answer/wrong", wrong.Path)
	assert.Equal(t, "p2", wrong.Query["playerId"])
	assert.Equal(t, "Lisbon", wrong.Query["answer"])

	mcq := (*requests)[1]
	assert.Equal(t, "/api/game/session/room-1/answer/mcq", mcq.Path)
	assert.Equal(t, "", mcq.Query["answer"])
}

func TestTimeoutAndAdvanceEndpoints(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, "{}")
	ctx := context.Background()

	require.NoError(t, client.NotifyWrongAnswerTimeout(ctx, "room-1"))
	require.NoError(t, client.NotifyMCQAnswerTimeout(ctx, "room-1"))
	require.NoError(t, client.RevealToScore(ctx, "room-1"))
	require.NoError(t, client.NextRound(ctx, "room-1"))
	require.NoError(t, client.ResetGame(ctx, "room-1"))

	paths := make([]string, 0, len(*requests))
	for _, req := range *requests {
		assert.Equal(t, http.MethodPost, req.Method)
		paths = append(paths, req.Path)
	}
	assert.Equal(t, []string{
		"/api/game/session/room-1/wrong-answer-timeout",
		"/api/game/session/room-1/mcq-answer-timeout",
		"/api/game/session/room-1/reveal-to-score",
		"/api/game/session/room-1/next",
		"/api/game/session/room-1/reset",
	}, paths)
}

func TestCreateRoomWrapsHostAndSettings(t *testing.T) {
	body := `{
		"playerId": "p1",
		"session": {"sessionId": "room-1", "currentPhase": "LOBBY",
			"players": [{"id": "p1", "username": "ana", "host": true}]}
	}`
	client, requests := newTestServer(t, http.StatusOK, body)

	resp, err := client.CreateRoom(context.Background(),
		PlayerDetails{Username: "ana"},
		RoomSettings{MaxPlayers: 8, TotalRounds: 5, TimePerQuestion: 30, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.PlayerID)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "room-1", resp.Session.SessionID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal((*requests)[0].Body, &payload))
	assert.Contains(t, payload, "hostPlayer")
	assert.Contains(t, payload, "roomSettings")
}

func TestJoinRoomRequiresPlayerID(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, `{"session": {"sessionId": "room-1"}}`)

	_, err := client.JoinRoom(context.Background(), "room-1", PlayerDetails{Username: "ben"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playerId")
}

func TestAcceptLanguageHeaderSentEverywhere(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{
		"questionId": 42, "questionText": "Which is a metal?", "correctAnswer": "Iron"
	}`)
	client.SetLanguage("ru")

	_, err := client.GetQuestion(context.Background(), 42)
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "/api/questions/42", req.Path)
	assert.Equal(t, "ru", req.Header.Get(AcceptLanguageHeader))
}

func TestGetCategories(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK,
		`[{"id": 10, "name": "History"}, {"id": 20, "name": "Sports"}]`)

	categories, err := client.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, int64(20), categories[1].ID)
	assert.Equal(t, "Sports", categories[1].Name)
	assert.Equal(t, "/api/questions/categories", (*requests)[0].Path)
}

func TestTogglePlayerReadyAndLeave(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, "{}")

	require.NoError(t, client.TogglePlayerReady(context.Background(), "room-1", "p2"))
	require.NoError(t, client.LeaveGame(context.Background(), "room-1", "p2"))

	ready := (*requests)[0]
	assert.Equal(t, http.MethodPut, ready.Method)
	assert.Equal(t, "/api/rooms/room-1/players/p2/ready", ready.Path)

	leave := (*requests)[1]
	assert.Equal(t, http.MethodDelete, leave.Method)
	assert.Equal(t, "/api/game/session/room-1/player/p2", leave.Path)
}
