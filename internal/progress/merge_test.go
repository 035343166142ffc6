package progress

import (
	"reflect"
	"testing"

	"quiz-reward-service/internal/domain"
)

func sampleProgress() domain.UserProgress {
	return domain.UserProgress{
		TotalXP:          320,
		TotalReadingTime: 1800,
		Streak:           4,
		LastReadDate:     "2026-10-14",
		Hearts:           3,
		MaxHearts:        5,
		DailyGoalMinutes: 15,
		CurrentChapter:   2,
		CurrentSection:   1,

		ChaptersCompleted:  []string{"ch1"},
		Achievements:       []string{"first-step", "streak-3"},
		WordsLearned:       []string{"hello"},
		CoursesCompleted:   []string{"course-1"},
		FirstPassedQuizzes: []string{"survey-1"},

		XPBySyllabus: map[string]int{"syl-1": 120},
		WrongQuestions: []domain.WrongQuestion{
			{ID: "q1", SurveyID: "survey-1", UserAnswer: "A", CorrectAnswer: "B", Count: 1},
		},
		QuizzesPassed:       1,
		OnboardingCompleted: true,
	}
}

func TestMergeWithItselfIsIdentity(t *testing.T) {
	p := sampleProgress()
	if got := Merge(p, p); !reflect.DeepEqual(got, p) {
		t.Fatalf("expected merge(p, p) == p\n got: %+v\nwant: %+v", got, p)
	}

	empty := domain.UserProgress{}
	if got := Merge(empty, empty); !reflect.DeepEqual(got, empty) {
		t.Fatalf("expected merge of empty snapshots to stay empty, got %+v", got)
	}
}

func TestMergeIsIdempotentForRepeatedClientDelta(t *testing.T) {
	server := sampleProgress()
	client := domain.UserProgress{
		TotalXP:           200,
		TotalReadingTime:  2400,
		Hearts:            5,
		MaxHearts:         5,
		CurrentChapter:    3,
		ChaptersCompleted: []string{"ch2"},
		XPBySyllabus:      map[string]int{"syl-1": 90, "syl-2": 40},
		WrongQuestions: []domain.WrongQuestion{
			{ID: "q1", UserAnswer: "C", CorrectAnswer: "B", Count: 2},
			{ID: "q7", UserAnswer: "x", CorrectAnswer: "y", Count: 1},
		},
	}

	once := Merge(server, client)
	twice := Merge(once, client)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected repeated merge to be stable\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeFieldRules(t *testing.T) {
	server := sampleProgress()
	client := domain.UserProgress{
		TotalXP:           200,
		TotalReadingTime:  2400,
		Streak:            0,
		Hearts:            1,
		MaxHearts:         6,
		CurrentChapter:    3,
		ChaptersCompleted: []string{"ch2", "ch1"},
		Achievements:      []string{"streak-3"},
		XPBySyllabus:      map[string]int{"syl-1": 90, "syl-2": 40},
		WrongQuestions: []domain.WrongQuestion{
			{ID: "q7", UserAnswer: "x"},
			{ID: "q1", UserAnswer: "C", Count: 2},
		},
		FirstPassedQuizzes: nil,
	}

	got := Merge(server, client)

	if got.TotalXP != 320 || got.TotalReadingTime != 2400 {
		t.Fatalf("expected monotonic counters, got xp=%d reading=%d", got.TotalXP, got.TotalReadingTime)
	}
	if got.Hearts != 1 || got.MaxHearts != 6 || got.CurrentChapter != 3 || got.Streak != 0 || got.LastReadDate != "" || got.DailyGoalMinutes != 0 {
		t.Fatalf("expected session fields from client, got %+v", got)
	}
	if want := []string{"ch1", "ch2"}; !reflect.DeepEqual(got.ChaptersCompleted, want) {
		t.Fatalf("expected chapters %v, got %v", want, got.ChaptersCompleted)
	}
	if want := []string{"first-step", "streak-3"}; !reflect.DeepEqual(got.Achievements, want) {
		t.Fatalf("expected achievements %v, got %v", want, got.Achievements)
	}
	if !got.OnboardingCompleted {
		t.Fatalf("expected onboarding to stay completed")
	}
	if want := map[string]int{"syl-1": 120, "syl-2": 40}; !reflect.DeepEqual(got.XPBySyllabus, want) {
		t.Fatalf("expected syllabus xp %v, got %v", want, got.XPBySyllabus)
	}
	if len(got.WrongQuestions) != 2 || got.WrongQuestions[0].ID != "q1" || got.WrongQuestions[0].UserAnswer != "C" || got.WrongQuestions[1].ID != "q7" {
		t.Fatalf("expected client entry to win for q1 and q7 appended, got %+v", got.WrongQuestions)
	}
	if !reflect.DeepEqual(got.FirstPassedQuizzes, server.FirstPassedQuizzes) || !reflect.DeepEqual(got.CoursesCompleted, server.CoursesCompleted) {
		t.Fatalf("expected server-owned fields untouched, got %+v", got)
	}
}

func TestMergeClientWinsIsNotCommutative(t *testing.T) {
	a := domain.UserProgress{Hearts: 2}
	b := domain.UserProgress{Hearts: 4}
	if Merge(a, b).Hearts == Merge(b, a).Hearts {
		t.Fatalf("expected last writer to decide hearts")
	}
}
