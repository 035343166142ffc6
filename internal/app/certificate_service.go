package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/reward"
)

// DefaultIssuer is recorded when a batch is issued without a named operator.
const DefaultIssuer = "admin"

// CertificateDeps are the collaborators of CertificateService.
type CertificateDeps struct {
	Syllabi      SyllabusRepository
	Catalog      CourseCatalog
	Bank         QuestionBank
	Progress     ProgressStore
	Scores       ScoreLedger
	Certificates CertificateStore
	Identities   IdentityResolver
	// Locker serialises batches of one syllabus; nil relies on the store alone.
	Locker Locker
}

// CertificateService regenerates and lists syllabus certificates.
type CertificateService struct {
	deps  CertificateDeps
	tel   Telemetry
	now   func() time.Time
	newID func() string
}

func NewCertificateService(deps CertificateDeps, tel Telemetry) *CertificateService {
	return &CertificateService{deps: deps, tel: tel.withDefaults(), now: time.Now, newID: reward.NewCertificateID}
}

// WithClock is test-only for deterministic timestamps.
func (s *CertificateService) WithClock(now func() time.Time) *CertificateService {
	s.now = now
	return s
}

// Issue replaces every certificate of a syllabus with a freshly ranked batch. Nothing
// is deleted when the syllabus has no quizzes or nobody is eligible.
func (s *CertificateService) Issue(ctx context.Context, syllabusID, issuedBy string) (domain.CertificateBatch, error) {
	ctx, span := s.tel.Tracer.Start(ctx, "certificates.issue", trace.WithAttributes(attribute.String("syllabus.id", syllabusID)))
	defer span.End()

	batch, err := s.issue(ctx, syllabusID, issuedBy)
	if err != nil {
		failSpan(span, err)
		s.tel.Metrics.CertificateBatches.WithLabelValues(batchResult(err)).Inc()
		s.tel.Logger.Warn("certificate batch not issued", zap.String("syllabus_id", syllabusID), zap.Error(err))
		return batch, err
	}

	span.SetAttributes(attribute.Int("participants", batch.TotalParticipants))
	s.tel.Metrics.CertificateBatches.WithLabelValues("issued").Inc()
	s.tel.Logger.Info("certificate batch issued",
		zap.String("syllabus_id", syllabusID),
		zap.Int("participants", batch.TotalParticipants),
		zap.Int("deleted_previous", batch.DeletedPrevious),
		zap.Int("not_passed", batch.NotPassed),
	)
	return batch, nil
}

func (s *CertificateService) issue(ctx context.Context, syllabusID, issuedBy string) (domain.CertificateBatch, error) {
	if issuedBy == "" {
		issuedBy = DefaultIssuer
	}
	if s.deps.Locker != nil {
		unlock, err := s.deps.Locker.Lock(ctx, "certificates:"+syllabusID)
		if err != nil {
			return domain.CertificateBatch{}, fmt.Errorf("lock syllabus: %w", err)
		}
		defer unlock()
	}

	syllabus, err := s.deps.Syllabi.Syllabus(ctx, syllabusID)
	if err != nil {
		return domain.CertificateBatch{}, err
	}
	courses, err := s.courses(ctx, syllabus)
	if err != nil {
		return domain.CertificateBatch{}, err
	}
	quizzes := reward.LinkedQuizzes(courses)
	if len(quizzes) == 0 {
		return domain.CertificateBatch{}, domain.ErrNoLinkedQuizzes
	}

	progress, err := s.deps.Progress.All(ctx)
	if err != nil {
		return domain.CertificateBatch{}, fmt.Errorf("load progress: %w", err)
	}
	records, err := s.deps.Scores.All(ctx)
	if err != nil {
		return domain.CertificateBatch{}, fmt.Errorf("load scores: %w", err)
	}
	best := reward.IndexBestScores(records)

	eligible := reward.RankParticipants(syllabusID, quizzes, progress, best)
	batch := domain.CertificateBatch{SyllabusID: syllabusID, NotPassed: eligible.NotPassed}
	if len(eligible.Ranked) == 0 {
		return batch, domain.ErrNoEligibleParticipants
	}

	counts, err := s.questionCounts(ctx, quizzes)
	if err != nil {
		return batch, err
	}
	profiles := make(map[string]domain.Profile, len(eligible.Ranked))
	for _, p := range eligible.Ranked {
		profiles[p.UserID] = resolveProfile(ctx, s.deps.Identities, p.UserID)
	}

	certs := reward.CertificateBuilder{
		Syllabus:       syllabus,
		Courses:        courses,
		QuestionCounts: counts,
		Profiles:       profiles,
		Best:           best,
		IssuedBy:       issuedBy,
		Now:            s.now(),
		NewID:          s.newID,
	}.Build(eligible.Ranked)

	deleted, err := s.deps.Certificates.ReplaceForSyllabus(ctx, syllabusID, certs)
	if err != nil {
		return batch, fmt.Errorf("replace certificates: %w", err)
	}

	batch.Certificates = certs
	batch.TotalParticipants = len(certs)
	batch.DeletedPrevious = deleted
	return batch, nil
}

// courses resolves the syllabus sequence in order, skipping deleted courses.
func (s *CertificateService) courses(ctx context.Context, syllabus domain.Syllabus) ([]domain.Course, error) {
	refs := append([]domain.CourseRef(nil), syllabus.CourseSequence...)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	courses := make([]domain.Course, 0, len(refs))
	for _, ref := range refs {
		c, err := s.deps.Catalog.Course(ctx, ref.CourseID)
		if errors.Is(err, domain.ErrCourseNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load course %s: %w", ref.CourseID, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (s *CertificateService) questionCounts(ctx context.Context, quizzes []reward.LinkedQuiz) (map[string]int, error) {
	counts := make(map[string]int, len(quizzes))
	for _, q := range quizzes {
		if _, ok := counts[q.SurveyID]; ok {
			continue
		}
		survey, err := s.deps.Bank.GetSurvey(ctx, q.SurveyID)
		if errors.Is(err, domain.ErrSurveyNotFound) {
			counts[q.SurveyID] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load survey %s: %w", q.SurveyID, err)
		}
		counts[q.SurveyID] = len(survey.Questions)
	}
	return counts, nil
}

// UserCertificates lists a user's certificates, newest first.
func (s *CertificateService) UserCertificates(ctx context.Context, userID string) ([]domain.Certificate, error) {
	certs, err := s.deps.Certificates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(certs, func(i, j int) bool { return certs[i].IssuedAt.After(certs[j].IssuedAt) })
	return certs, nil
}

// Certificate returns one certificate by its public id.
func (s *CertificateService) Certificate(ctx context.Context, certificateID string) (domain.Certificate, error) {
	return s.deps.Certificates.Get(ctx, certificateID)
}

// SyllabusStats summarises the current batch of a syllabus.
type SyllabusStats struct {
	TotalCertificates int                  `json:"totalCertificates"`
	Certificates      []domain.Certificate `json:"certificates"`
}

// SyllabusCertificates returns the current batch of a syllabus in rank order.
func (s *CertificateService) SyllabusCertificates(ctx context.Context, syllabusID string) (SyllabusStats, error) {
	certs, err := s.deps.Certificates.ListBySyllabus(ctx, syllabusID)
	if err != nil {
		return SyllabusStats{}, err
	}
	sort.SliceStable(certs, func(i, j int) bool { return certs[i].Rank < certs[j].Rank })
	return SyllabusStats{TotalCertificates: len(certs), Certificates: certs}, nil
}

func batchResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoLinkedQuizzes):
		return "no_quizzes"
	case errors.Is(err, domain.ErrNoEligibleParticipants):
		return "no_participants"
	case errors.Is(err, domain.ErrSyllabusNotFound):
		return "not_found"
	default:
		return "error"
	}
}
