package cli

import (
	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/infra/memory"
)

// Sample content for local runs without Postgres and for the seed command.

func sampleSurveys() map[string]domain.Survey {
	return map[string]domain.Survey{
		"survey-arithmetic": {
			ID:    "survey-arithmetic",
			Title: "Arithmetic basics",
			Questions: []domain.QuestionSpec{
				{
					ID:            "arith-1",
					SurveyID:      "survey-arithmetic",
					Type:          domain.SingleChoice,
					Text:          "What is 2 + 2?",
					CorrectAnswer: "B",
					Options:       []string{"3", "4", "5"},
					Explanation:   "Two plus two is four.",
					Order:         1,
				},
				{
					ID:            "arith-2",
					SurveyID:      "survey-arithmetic",
					Type:          domain.MultipleChoice,
					Text:          "Which numbers are prime?",
					CorrectAnswer: `["A","C"]`,
					Options:       []string{"2", "9", "7"},
					Order:         2,
				},
			},
		},
		"survey-geography": {
			ID:          "survey-geography",
			Title:       "Capitals",
			PassScore:   50,
			MaxAttempts: 2,
			Questions: []domain.QuestionSpec{
				{
					ID:            "geo-1",
					SurveyID:      "survey-geography",
					Type:          domain.FillBlank,
					Text:          "The capital of France is ___.",
					CorrectAnswer: "Paris|paris",
					Order:         1,
				},
			},
		},
	}
}

func sampleCourses() []domain.Course {
	return []domain.Course{
		{ID: "course-arithmetic", Title: "Arithmetic", Quiz: &domain.CourseQuiz{SurveyID: "survey-arithmetic", PassScore: 60}},
		{ID: "course-geography", Title: "Geography", Quiz: &domain.CourseQuiz{SurveyID: "survey-geography", PassScore: 50}},
		{ID: "course-welcome", Title: "Welcome"},
	}
}

func sampleSyllabi() []domain.Syllabus {
	return []domain.Syllabus{{
		ID:   "syllabus-foundations",
		Name: "Foundations",
		CourseSequence: []domain.CourseRef{
			{CourseID: "course-welcome", Order: 1, Optional: true},
			{CourseID: "course-arithmetic", Order: 2},
			{CourseID: "course-geography", Order: 3},
		},
	}}
}

func sampleGroups() []domain.UserGroup {
	return []domain.UserGroup{{ID: "group-evening", Name: "Evening class", MemberIDs: []string{"guest-1", "guest-2"}}}
}

func sampleProfiles() []domain.Profile {
	return []domain.Profile{
		{UserID: "emp_1", Name: "Ana", Company: "Acme", Kind: domain.EmployeeIdentity},
		{UserID: "guest-1", Name: "Bo", Kind: domain.GuestIdentity},
		{UserID: "guest-2", Name: "Cy", Kind: domain.GuestIdentity},
	}
}

func seedMemoryCatalog(c *memory.Catalog) {
	for _, course := range sampleCourses() {
		c.PutCourse(course)
	}
	for _, s := range sampleSyllabi() {
		c.PutSyllabus(s)
	}
	for _, g := range sampleGroups() {
		c.PutGroup(g)
	}
	for _, p := range sampleProfiles() {
		c.PutProfile(p)
	}
}
