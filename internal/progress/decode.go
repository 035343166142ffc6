package progress

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"quiz-reward-service/internal/domain"
)

// FromMap decodes a loosely typed progress document, as sent by clients or read from
// legacy text columns. Numbers may arrive as strings, booleans as "TRUE"/"FALSE" and
// collections as JSON text. Missing or malformed fields decode to their zero value;
// FromMap never fails.
func FromMap(raw map[string]any) domain.UserProgress {
	return domain.UserProgress{
		TotalXP:          toInt(raw["totalXP"]),
		TotalReadingTime: toInt(raw["totalReadingTime"]),
		Streak:           toInt(raw["streak"]),
		LastReadDate:     toString(raw["lastReadDate"]),
		Hearts:           toInt(raw["hearts"]),
		MaxHearts:        toInt(raw["maxHearts"]),
		DailyGoalMinutes: toInt(raw["dailyGoalMinutes"]),
		CurrentChapter:   toInt(raw["currentChapter"]),
		CurrentSection:   toInt(raw["currentSection"]),

		ChaptersCompleted:  toStrings(raw["chaptersCompleted"]),
		Achievements:       toStrings(raw["achievements"]),
		WordsLearned:       toStrings(raw["wordsLearned"]),
		CoursesCompleted:   toStrings(raw["coursesCompleted"]),
		FirstPassedQuizzes: toStrings(raw["firstPassedQuizzes"]),

		XPBySyllabus:   toIntMap(raw["xpBySyllabus"]),
		WrongQuestions: toWrongQuestions(raw["wrongQuestions"]),

		QuizzesPassed:       toInt(raw["quizzesPassed"]),
		QuizStreak:          toInt(raw["quizStreak"]),
		LastLoginRewardDate: toString(raw["lastLoginRewardDate"]),

		OnboardingCompleted:     toBool(raw["onboardingCompleted"]),
		FirstLoginRewardClaimed: toBool(raw["firstLoginRewardClaimed"]),
	}
}

// Decode parses a JSON progress document with FromMap's tolerance.
func Decode(data []byte) (domain.UserProgress, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.UserProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	return FromMap(raw), nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case string:
		v = strings.TrimSpace(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
	}
	if n, err := cast.ToIntE(v); err == nil {
		return n
	}
	// "12.5" and other fractional text truncate like numbers do.
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func toBool(v any) bool {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return cast.ToBool(v)
}

func toString(v any) string {
	switch v.(type) {
	case string, json.Number, float64, int, int64:
		return cast.ToString(v)
	}
	return ""
}

// fromJSONText unpacks collections that were stored as JSON strings.
func fromJSONText(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func toStrings(v any) []string {
	switch list := fromJSONText(v).(type) {
	case []string, []any:
		items, err := cast.ToStringSliceE(list)
		if err != nil {
			return nil
		}
		var out []string
		for _, item := range items {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func toIntMap(v any) map[string]int {
	switch m := fromJSONText(v).(type) {
	case map[string]int, map[string]any:
		out, err := cast.ToStringMapIntE(m)
		if err != nil || len(out) == 0 {
			return nil
		}
		return maps.Clone(out)
	}
	return nil
}

// wrongQuestionFields are the entry keys decoded into WrongQuestion; anything else is
// carried in Extra.
var wrongQuestionFields = map[string]struct{}{
	"id": {}, "surveyId": {}, "question": {}, "userAnswer": {}, "correctAnswer": {}, "count": {}, "recordedAt": {},
}

// toWrongQuestions accepts a list of entries or an object keyed by question id.
func toWrongQuestions(v any) []domain.WrongQuestion {
	var items []any
	switch w := fromJSONText(v).(type) {
	case []domain.WrongQuestion:
		if len(w) == 0 {
			return nil
		}
		return append([]domain.WrongQuestion(nil), w...)
	case []any:
		items = w
	case map[string]any:
		ids := make([]string, 0, len(w))
		for id := range w {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			m, ok := w[id].(map[string]any)
			if !ok {
				continue
			}
			entry := map[string]any{"id": id}
			for k, val := range m {
				entry[k] = val
			}
			if toString(entry["id"]) == "" {
				entry["id"] = id
			}
			items = append(items, entry)
		}
	}

	var out []domain.WrongQuestion
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := toString(m["id"])
		if id == "" {
			id = toString(m["questionId"])
		}
		if id == "" {
			continue
		}
		var extra map[string]any
		for k, val := range m {
			if _, known := wrongQuestionFields[k]; known {
				continue
			}
			if extra == nil {
				extra = make(map[string]any)
			}
			extra[k] = val
		}
		out = append(out, domain.WrongQuestion{
			ID:            id,
			SurveyID:      toString(m["surveyId"]),
			Question:      toString(m["question"]),
			UserAnswer:    toString(m["userAnswer"]),
			CorrectAnswer: toString(m["correctAnswer"]),
			Count:         toInt(m["count"]),
			RecordedAt:    toString(m["recordedAt"]),
			Extra:         extra,
		})
	}
	return out
}
