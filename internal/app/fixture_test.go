package app_test

import (
	"context"
	"errors"
	"time"

	"quiz-reward-service/internal/app"
	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/infra/memory"
	"quiz-reward-service/internal/metrics"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	catalog      *memory.Catalog
	scores       *memory.ScoreLedger
	responses    *memory.ResponseStore
	progress     *memory.ProgressStore
	badges       *memory.BadgeStore
	certificates *memory.CertificateStore
	metrics      *metrics.Metrics

	quiz         *app.QuizService
	badge        *app.BadgeService
	certificate  *app.CertificateService
	progressSvc  *app.ProgressService
	leaderboards *app.LeaderboardService
}

func newFixture() *fixture {
	return newFixtureWithBadgeStore(nil)
}

// newFixtureWithBadgeStore swaps the badge store, e.g. for one that fails.
func newFixtureWithBadgeStore(badgeStore app.BadgeStore) *fixture {
	f := &fixture{
		catalog:      memory.NewCatalog(),
		scores:       memory.NewScoreLedger(),
		responses:    memory.NewResponseStore(),
		progress:     memory.NewProgressStore(),
		badges:       memory.NewBadgeStore(),
		certificates: memory.NewCertificateStore(),
		metrics:      metrics.New(),
	}
	bank := memory.NewSurveyRepository(memory.NewStaticSurveyLoader(sampleSurveys()), time.Minute)
	locker := memory.NewLocker()
	tel := app.Telemetry{Metrics: f.metrics}

	f.catalog.PutCourse(domain.Course{ID: "course-1", Title: "Arithmetic", Quiz: &domain.CourseQuiz{SurveyID: "survey-1", PassScore: 60}})
	f.catalog.PutCourse(domain.Course{ID: "course-2", Title: "Geography", Quiz: &domain.CourseQuiz{SurveyID: "survey-2", PassScore: 60}})
	f.catalog.PutCourse(domain.Course{ID: "course-3", Title: "Welcome"})
	f.catalog.PutSyllabus(domain.Syllabus{ID: "syl-1", Name: "Foundations", CourseSequence: []domain.CourseRef{
		{CourseID: "course-2", Order: 2},
		{CourseID: "course-1", Order: 1},
		{CourseID: "course-3", Order: 3},
		{CourseID: "course-deleted", Order: 4},
	}})
	f.catalog.PutSyllabus(domain.Syllabus{ID: "syl-empty", Name: "Reading", CourseSequence: []domain.CourseRef{{CourseID: "course-3"}}})
	f.catalog.PutProfile(domain.Profile{UserID: "emp_1", Name: "Ana", Company: "Acme"})
	f.catalog.PutProfile(domain.Profile{UserID: "guest-1", Name: "Bo"})

	if badgeStore == nil {
		badgeStore = f.badges
	}
	f.badge = app.NewBadgeService(badgeStore, f.catalog, f.catalog, locker, tel).WithClock(clock)
	f.quiz = app.NewQuizService(bank, f.scores, f.responses, f.badge, tel).WithClock(clock)
	f.certificate = app.NewCertificateService(app.CertificateDeps{
		Syllabi:      f.catalog,
		Catalog:      f.catalog,
		Bank:         bank,
		Progress:     f.progress,
		Scores:       f.scores,
		Certificates: f.certificates,
		Identities:   f.catalog,
		Locker:       locker,
	}, tel).WithClock(clock)
	f.progressSvc = app.NewProgressService(f.progress, locker, tel)
	f.leaderboards = app.NewLeaderboardService(f.scores, f.progress, f.catalog, f.catalog, f.catalog, 10)
	return f
}

func clock() time.Time { return fixedNow }

func sampleSurveys() map[string]domain.Survey {
	return map[string]domain.Survey{
		"survey-1": {
			ID:        "survey-1",
			PassScore: 60,
			Questions: []domain.QuestionSpec{
				{ID: "q1", SurveyID: "survey-1", Type: domain.SingleChoice, CorrectAnswer: "B", Options: []string{"3", "4", "5"}, Explanation: "2 + 2 = 4"},
				{ID: "q2", SurveyID: "survey-1", Type: domain.MultipleChoice, CorrectAnswer: `["A","C"]`, Options: []string{"2", "9", "7"}},
			},
		},
		"survey-2": {
			ID:          "survey-2",
			PassScore:   50,
			MaxAttempts: 2,
			Questions: []domain.QuestionSpec{
				{ID: "g1", SurveyID: "survey-2", Type: domain.FillBlank, CorrectAnswer: "Paris|paris"},
			},
		},
		"survey-empty": {ID: "survey-empty"},
	}
}

func allCorrect() []domain.AnswerSubmission {
	return []domain.AnswerSubmission{
		{QuestionID: "q1", Answer: "4"},
		{QuestionID: "q2", Answer: []any{"7", "2"}},
	}
}

func halfCorrect() []domain.AnswerSubmission {
	return []domain.AnswerSubmission{
		{QuestionID: "q1", Answer: "4"},
		{QuestionID: "q2", Answer: "2"},
	}
}

var errStoreDown = errors.New("store down")

type brokenBadgeStore struct{}

func (brokenBadgeStore) Apply(context.Context, string, string, func(*domain.CourseBadge) domain.CourseBadge) error {
	return errStoreDown
}

func (brokenBadgeStore) ListByUser(context.Context, string) ([]domain.CourseBadge, error) {
	return nil, errStoreDown
}

func (brokenBadgeStore) Get(context.Context, string) (domain.CourseBadge, error) {
	return domain.CourseBadge{}, errStoreDown
}

func (f *fixture) seedProgress(ctx context.Context, userID string, p domain.UserProgress) {
	_ = f.progress.Save(ctx, userID, p)
}
