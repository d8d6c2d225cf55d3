package game

// QuestionType distinguishes how a question's prompt is presented.
type QuestionType string

const (
	QuestionText  QuestionType = "Text"
	QuestionImage QuestionType = "Image"
	QuestionAudio QuestionType = "Audio"
)

// Question is the content for one round, fetched separately from the
// snapshot and keyed by the snapshot's currentQuestionId. Fields arrive
// already resolved to the room's language.
type Question struct {
	QuestionID    int64            `json:"questionId"`
	ThemeID       int64            `json:"themeId"`
	QuestionType  QuestionType     `json:"questionType"`
	QuestionText  string           `json:"questionText"`
	CorrectAnswer string           `json:"correctAnswer"`
	TrapAnswer    string           `json:"trapAnswer,omitempty"`
	MediaURL      string           `json:"mediaUrl,omitempty"`
	Difficulty    int              `json:"difficulty"`
	Fallbacks     []FallbackOption `json:"fallbackOptions,omitempty"`
}

// FallbackOption is a backend-supplied decoy used to fill out the MCQ
// choice list when too few players submitted wrong answers.
type FallbackOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Category is one trivia category offered during category selection.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
