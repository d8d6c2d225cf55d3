package gameapi

import "fmt"

const (
	roomsEndpoint      = "/api/rooms"
	questionsEndpoint  = "/api/questions"
	categoriesEndpoint = "/api/questions/categories"

	// AcceptLanguageHeader selects the language question content and
	// category names are resolved to.
	AcceptLanguageHeader = "Accept-Language"
)

func roomEndpoint(roomID string) string {
	return fmt.Sprintf("%s/%s", roomsEndpoint, roomID)
}

func joinRoomEndpoint(roomID string) string {
	return fmt.Sprintf("%s/%s/join", roomsEndpoint, roomID)
}

func roomSettingsEndpoint(roomID string) string {
	return fmt.Sprintf("%s/%s/settings", roomsEndpoint, roomID)
}

func playerReadyEndpoint(roomID, playerID string) string {
	return fmt.Sprintf("%s/%s/players/%s/ready", roomsEndpoint, roomID, playerID)
}

func startGameEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/%s/start", sessionID)
}

func selectCategoryEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/%s/select-category", sessionID)
}

func selectDifficultyEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/%s/select-difficulty", sessionID)
}

func wrongAnswerEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/answer/wrong", sessionID)
}

func wrongAnswerTimeoutEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/wrong-answer-timeout", sessionID)
}

func mcqAnswerEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/answer/mcq", sessionID)
}

func mcqAnswerTimeoutEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/mcq-answer-timeout", sessionID)
}

func revealToScoreEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/reveal-to-score", sessionID)
}

func nextRoundEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/next", sessionID)
}

func resetGameEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/reset", sessionID)
}

func leaveGameEndpoint(sessionID, playerID string) string {
	return fmt.Sprintf("/api/game/session/%s/player/%s", sessionID, playerID)
}

func leaderboardEndpoint(sessionID string) string {
	return fmt.Sprintf("/api/game/session/%s/leaderboard", sessionID)
}

func questionEndpoint(questionID int64) string {
	return fmt.Sprintf("%s/%d", questionsEndpoint, questionID)
}
