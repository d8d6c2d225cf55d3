package gameapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/globalquiz/roomclient/internal/game"
)

// GetQuestion fetches the content for one question, resolved to the
// language set via SetLanguage.
func (c *Client) GetQuestion(ctx context.Context, questionID int64) (*game.Question, error) {
	body, err := c.get(ctx, questionEndpoint(questionID))
	if err != nil {
		return nil, err
	}
	var q game.Question
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("decode question %d: %w", questionID, err)
	}
	return &q, nil
}

// GetCategories fetches the category id to name list in the language set
// via SetLanguage.
func (c *Client) GetCategories(ctx context.Context) ([]game.Category, error) {
	body, err := c.get(ctx, categoriesEndpoint)
	if err != nil {
		return nil, err
	}
	var categories []game.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// SetLanguage sets the Accept-Language header driving question and
// category translation. Call again whenever the room's language changes.
func (c *Client) SetLanguage(lang string) {
	if lang == "" {
		return
	}
	c.SetHeader(AcceptLanguageHeader, lang)
}
