package gameapi

import "context"

// SelectCategory commits the chooser's category pick for the round.
func (c *Client) SelectCategory(ctx context.Context, sessionID, playerID string, categoryID int64) error {
	payload := struct {
		Category int64  `json:"category"`
		PlayerID string `json:"playerId"`
	}{Category: categoryID, PlayerID: playerID}

	_, err := c.postJSON(ctx, selectCategoryEndpoint(sessionID), payload)
	return err
}

// SelectDifficulty commits the chooser's difficulty pick for the round.
func (c *Client) SelectDifficulty(ctx context.Context, sessionID, playerID string, categoryID int64, difficulty int) error {
	payload := struct {
		Difficulty int    `json:"difficulty"`
		Category   int64  `json:"category"`
		PlayerID   string `json:"playerId"`
	}{Difficulty: difficulty, Category: categoryID, PlayerID: playerID}

	_, err := c.postJSON(ctx, selectDifficultyEndpoint(sessionID), payload)
	return err
}

// SubmitWrongAnswer sends a player's decoy answer during the
// wrong-answer collection phase. An empty answer is the explicit
// "no answer given" signal on timeout.
func (c *Client) SubmitWrongAnswer(ctx context.Context, sessionID, playerID, answer string) error {
	q := queryString(map[string]string{"playerId": playerID, "answer": answer})
	_, err := c.post(ctx, wrongAnswerEndpoint(sessionID)+q, nil)
	return err
}

// SubmitMCQAnswer sends a player's vote during the MCQ phase.
func (c *Client) SubmitMCQAnswer(ctx context.Context, sessionID, playerID, answer string) error {
	q := queryString(map[string]string{"playerId": playerID, "answer": answer})
	_, err := c.post(ctx, mcqAnswerEndpoint(sessionID)+q, nil)
	return err
}

// NotifyWrongAnswerTimeout tells the server the wrong-answer phase timer
// elapsed. Any client may send it; the server tolerates duplicates.
func (c *Client) NotifyWrongAnswerTimeout(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, wrongAnswerTimeoutEndpoint(sessionID), nil)
	return err
}

// NotifyMCQAnswerTimeout tells the server the MCQ phase timer elapsed.
func (c *Client) NotifyMCQAnswerTimeout(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, mcqAnswerTimeoutEndpoint(sessionID), nil)
	return err
}

// RevealToScore advances the room from the answers reveal to the score
// display. Host only.
func (c *Client) RevealToScore(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, revealToScoreEndpoint(sessionID), nil)
	return err
}

// NextRound advances to the next round, or finishes the game after the
// final one. Host only.
func (c *Client) NextRound(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, nextRoundEndpoint(sessionID), nil)
	return err
}

// ResetGame returns a finished room to the lobby, zeroing all scores.
// Host only.
func (c *Client) ResetGame(ctx context.Context, sessionID string) error {
	_, err := c.post(ctx, resetGameEndpoint(sessionID), nil)
	return err
}
