package room

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/globalquiz/roomclient/internal/game"
)

// ContentAPI is the slice of the game server API the resolver fetches
// question and category content through.
type ContentAPI interface {
	GetQuestion(ctx context.Context, questionID int64) (*game.Question, error)
	GetCategories(ctx context.Context) ([]game.Category, error)
	SetLanguage(lang string)
}

// contentResolver caches the current question and the category name list.
// The question is keyed on (question id, language) and refetched whenever
// either changes; categories are keyed on language alone. A failed fetch is
// logged and retried on the next snapshot rather than surfaced as fatal.
type contentResolver struct {
	api ContentAPI

	question     *game.Question
	questionID   int64
	categories   []game.Category
	categoryByID map[int64]string
	language     string
}

func newContentResolver(api ContentAPI) *contentResolver {
	return &contentResolver{api: api}
}

// resolve brings the cached content in line with the snapshot.
func (r *contentResolver) resolve(ctx context.Context, snap *game.SessionSnapshot) {
	languageChanged := snap.Language != r.language
	if languageChanged {
		r.language = snap.Language
		r.api.SetLanguage(snap.Language)
		r.categories = nil
		r.categoryByID = nil
		r.question = nil
		r.questionID = 0
	}

	if r.categories == nil {
		categories, err := r.api.GetCategories(ctx)
		if err != nil {
			log.Warn().Err(err).Str("language", r.language).Msg("category fetch failed")
		} else {
			r.categories = categories
			r.categoryByID = make(map[int64]string, len(categories))
			for _, c := range categories {
				r.categoryByID[c.ID] = c.Name
			}
		}
	}

	if snap.CurrentQuestionID == nil {
		r.question = nil
		r.questionID = 0
		return
	}
	if r.question != nil && r.questionID == *snap.CurrentQuestionID {
		return
	}
	q, err := r.api.GetQuestion(ctx, *snap.CurrentQuestionID)
	if err != nil {
		// Show no question rather than the previous one; the views
		// must never flag a stale correctAnswer against the current
		// finalOptions.
		r.question = nil
		r.questionID = 0
		log.Warn().Err(err).
			Int64("question_id", *snap.CurrentQuestionID).
			Msg("question fetch failed")
		return
	}
	r.question = q
	r.questionID = *snap.CurrentQuestionID
}

// categoryName resolves a category id to its display name, falling back to
// an empty string when the list has not loaded.
func (r *contentResolver) categoryName(id int64) string {
	return r.categoryByID[id]
}
