package app

import (
	"context"

	"quiz-reward-service/internal/domain"
)

// QuestionBank loads surveys and their questions. Implementations may serve stale
// data from a cache.
type QuestionBank interface {
	GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error)
	QuestionByID(ctx context.Context, questionID, surveyID string) (domain.QuestionSpec, error)
}

// ScoreLedger is the append-only log of completed attempts.
type ScoreLedger interface {
	Append(ctx context.Context, rec domain.ScoreRecord) (string, error)
	AttemptsFor(ctx context.Context, userID, surveyID string) (int, error)
	BestFor(ctx context.Context, userID, surveyID string) (*domain.ScoreRecord, error)
	ForSurvey(ctx context.Context, surveyID string) ([]domain.ScoreRecord, error)
	All(ctx context.Context) ([]domain.ScoreRecord, error)
}

// ResponseStore keeps per-question answers recorded during an attempt.
type ResponseStore interface {
	Save(ctx context.Context, resp domain.AnswerResponse) (string, error)
	ForUserSurvey(ctx context.Context, userID, surveyID string) ([]domain.AnswerResponse, error)
}

// ProgressStore persists one progress snapshot per user.
type ProgressStore interface {
	// Get returns domain.ErrProgressNotFound when the user has no snapshot.
	Get(ctx context.Context, userID string) (domain.UserProgress, error)
	Save(ctx context.Context, userID string, p domain.UserProgress) error
	All(ctx context.Context) ([]domain.ProgressRecord, error)
}

// BadgeStore persists course badges, one per (user, course).
type BadgeStore interface {
	// Apply passes the current (user, course) badge to fn, nil when the pair has none,
	// and stores what fn returns. Applies for one pair never interleave, including
	// across processes sharing the store.
	Apply(ctx context.Context, userID, courseID string, fn func(existing *domain.CourseBadge) domain.CourseBadge) error
	ListByUser(ctx context.Context, userID string) ([]domain.CourseBadge, error)
	Get(ctx context.Context, badgeID string) (domain.CourseBadge, error)
}

// CertificateStore persists syllabus certificates. A syllabus batch is always
// replaced as a whole.
type CertificateStore interface {
	ReplaceForSyllabus(ctx context.Context, syllabusID string, certs []domain.Certificate) (deleted int, err error)
	ListBySyllabus(ctx context.Context, syllabusID string) ([]domain.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Certificate, error)
	Get(ctx context.Context, certificateID string) (domain.Certificate, error)
}

// CourseCatalog resolves courses and the course a survey belongs to.
type CourseCatalog interface {
	Course(ctx context.Context, courseID string) (domain.Course, error)
	CourseForSurvey(ctx context.Context, surveyID string) (domain.Course, error)
}

// SyllabusRepository resolves syllabi.
type SyllabusRepository interface {
	Syllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error)
}

// GroupDirectory lists the user groups a guest belongs to.
type GroupDirectory interface {
	GroupsForUser(ctx context.Context, userID string) ([]domain.UserGroup, error)
}

// IdentityResolver looks up display names for both identity namespaces.
type IdentityResolver interface {
	Profile(ctx context.Context, userID string) (domain.Profile, error)
}

// Locker serialises writes to one entity across callers.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
