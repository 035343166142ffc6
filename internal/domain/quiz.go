package domain

import "time"

// QuestionType selects the equivalence rule used when grading.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	FillBlank      QuestionType = "fill_blank"
)

// DefaultQuestionWeight is the number of points a correct answer is worth.
const DefaultQuestionWeight = 5

const (
	DefaultPassScore   = 60
	DefaultMaxAttempts = 3
)

// QuestionSpec is a single gradeable question as stored in the question bank.
type QuestionSpec struct {
	ID            string       `json:"id"`
	SurveyID      string       `json:"surveyId"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	CorrectAnswer any          `json:"correctAnswer"` // raw stored form: letters, JSON text or a list
	Options       []string     `json:"options"`
	Explanation   string       `json:"explanation,omitempty"`
	Order         int          `json:"order"`
	Points        int          `json:"points"` // defaults to DefaultQuestionWeight if zero
}

// Weight returns the points awarded for a correct answer.
func (q QuestionSpec) Weight() int {
	if q.Points > 0 {
		return q.Points
	}
	return DefaultQuestionWeight
}

// Survey is a quiz together with its question bank.
type Survey struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	PassScore   int            `json:"passScore"`
	MaxAttempts int            `json:"maxAttempts"`
	Questions   []QuestionSpec `json:"questions"`
}

// PassThreshold returns the pass percentage, falling back to DefaultPassScore.
func (s Survey) PassThreshold() int {
	if s.PassScore > 0 {
		return s.PassScore
	}
	return DefaultPassScore
}

// AttemptQuota returns the allowed number of attempts, falling back to DefaultMaxAttempts.
func (s Survey) AttemptQuota() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultMaxAttempts
}

// AnswerSubmission is one answer sent by a client. Answer is either a string or a list.
type AnswerSubmission struct {
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

// QuestionResult is the per-question outcome of a grading run.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
	CorrectAnswer any    `json:"correctAnswer,omitempty"`
}

// GradingResult summarises a graded submission.
type GradingResult struct {
	Results      []QuestionResult `json:"results"`
	TotalScore   int              `json:"totalScore"`
	MaxScore     int              `json:"maxScore"`
	CorrectCount int              `json:"correctCount"`
	WrongCount   int              `json:"wrongCount"`
	Percentage   float64          `json:"percentage"`
	Passed       bool             `json:"passed"`
}

// ScoreRecord is an append-only ledger entry for a completed attempt.
type ScoreRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	SurveyID        string    `json:"surveyId"`
	AttemptNumber   int       `json:"attemptNumber"`
	TotalScore      int       `json:"totalScore"`
	MaxScore        int       `json:"maxScore"`
	CorrectCount    int       `json:"correctCount"`
	WrongCount      int       `json:"wrongCount"`
	RetryCount      int       `json:"retryCount"`
	DurationSeconds int       `json:"durationSeconds"`
	CompletedAt     time.Time `json:"completedAt"`
}

// AnswerResponse is one incrementally recorded answer.
type AnswerResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	SurveyID         string    `json:"surveyId"`
	QuestionID       string    `json:"questionId"`
	Answer           string    `json:"answer"`
	Correct          bool      `json:"correct"`
	ScoreEarned      int       `json:"scoreEarned"`
	Attempt          int       `json:"attempt"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}
