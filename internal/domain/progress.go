package domain

import "encoding/json"

// Defaults applied when a user has no stored progress yet.
const (
	DefaultHearts           = 5
	DefaultDailyGoalMinutes = 10
	DefaultChapter          = 1
)

// WrongQuestion is an entry of the per-user wrong-answer log, keyed by ID.
type WrongQuestion struct {
	ID            string `json:"id"`
	SurveyID      string `json:"surveyId,omitempty"`
	Question      string `json:"question,omitempty"`
	UserAnswer    string `json:"userAnswer,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Count         int    `json:"count,omitempty"`
	RecordedAt    string `json:"recordedAt,omitempty"`
	// Extra holds client fields the server does not interpret. They are written back
	// next to the known ones.
	Extra map[string]any `json:"-"`
}

// MarshalJSON inlines Extra; known fields win on a name clash.
func (w WrongQuestion) MarshalJSON() ([]byte, error) {
	type plain WrongQuestion
	base, err := json.Marshal(plain(w))
	if err != nil || len(w.Extra) == 0 {
		return base, err
	}
	fields := make(map[string]any, len(w.Extra)+8)
	for k, v := range w.Extra {
		fields[k] = v
	}
	var known map[string]any
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// UserProgress is the per-user learning snapshot shared by the web and mobile clients.
type UserProgress struct {
	TotalXP          int    `json:"totalXP"`
	TotalReadingTime int    `json:"totalReadingTime"`
	Streak           int    `json:"streak"`
	LastReadDate     string `json:"lastReadDate"`
	Hearts           int    `json:"hearts"`
	MaxHearts        int    `json:"maxHearts"`
	DailyGoalMinutes int    `json:"dailyGoalMinutes"`
	CurrentChapter   int    `json:"currentChapter"`
	CurrentSection   int    `json:"currentSection"`

	ChaptersCompleted  []string `json:"chaptersCompleted"`
	Achievements       []string `json:"achievements"`
	WordsLearned       []string `json:"wordsLearned"`
	CoursesCompleted   []string `json:"coursesCompleted"`
	FirstPassedQuizzes []string `json:"firstPassedQuizzes"`

	XPBySyllabus   map[string]int  `json:"xpBySyllabus"`
	WrongQuestions []WrongQuestion `json:"wrongQuestions"`

	QuizzesPassed       int    `json:"quizzesPassed"`
	QuizStreak          int    `json:"quizStreak"`
	LastLoginRewardDate string `json:"lastLoginRewardDate"`

	OnboardingCompleted     bool `json:"onboardingCompleted"`
	FirstLoginRewardClaimed bool `json:"firstLoginRewardClaimed"`
}

// DefaultProgress is what a user without a stored row starts from.
func DefaultProgress() UserProgress {
	return UserProgress{
		Hearts:           DefaultHearts,
		MaxHearts:        DefaultHearts,
		DailyGoalMinutes: DefaultDailyGoalMinutes,
		CurrentChapter:   DefaultChapter,
	}
}

// HasFirstPassed reports whether surveyID is in the lifetime first-passed set.
func (p UserProgress) HasFirstPassed(surveyID string) bool {
	for _, id := range p.FirstPassedQuizzes {
		if id == surveyID {
			return true
		}
	}
	return false
}

// HasCompletedCourse reports whether courseID was read to completion.
func (p UserProgress) HasCompletedCourse(courseID string) bool {
	for _, id := range p.CoursesCompleted {
		if id == courseID {
			return true
		}
	}
	return false
}

// ProgressRecord pairs a stored snapshot with its owner.
type ProgressRecord struct {
	UserID   string
	Progress UserProgress
}
