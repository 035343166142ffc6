package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-reward-service/internal/domain"
)

// SurveyLoader fetches surveys and questions from a backing store.
type SurveyLoader interface {
	LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error)
	LoadQuestion(ctx context.Context, questionID string) (domain.QuestionSpec, error)
}

// SurveyRepository caches surveys with TTL to avoid repeated DB hits. Reads within the
// TTL may be stale.
type SurveyRepository struct {
	loader SurveyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSurvey
}

type cachedSurvey struct {
	survey    domain.Survey
	expiresAt time.Time
}

func NewSurveyRepository(loader SurveyLoader, ttl time.Duration) *SurveyRepository {
	return &SurveyRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSurvey),
	}
}

func (r *SurveyRepository) GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[surveyID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.survey, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(surveyID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[surveyID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.survey, nil
		}
		r.mu.RUnlock()

		survey, err := r.loader.LoadSurvey(ctx, surveyID)
		if err != nil {
			return domain.Survey{}, err
		}

		r.mu.Lock()
		r.cache[surveyID] = cachedSurvey{
			survey:    survey,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return survey, nil
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return result.(domain.Survey), nil
}

// QuestionByID looks the question up in its survey when surveyID is known, otherwise
// asks the loader directly.
func (r *SurveyRepository) QuestionByID(ctx context.Context, questionID, surveyID string) (domain.QuestionSpec, error) {
	if surveyID == "" {
		return r.loader.LoadQuestion(ctx, questionID)
	}
	survey, err := r.GetSurvey(ctx, surveyID)
	if err != nil {
		return domain.QuestionSpec{}, err
	}
	for _, q := range survey.Questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return domain.QuestionSpec{}, domain.ErrQuestionNotFound
}

// Invalidate drops a cached survey, e.g. after its questions were edited.
func (r *SurveyRepository) Invalidate(surveyID string) {
	r.mu.Lock()
	delete(r.cache, surveyID)
	r.mu.Unlock()
}

func (r *SurveyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticSurveyLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticSurveyLoader struct {
	surveys map[string]domain.Survey
}

func NewStaticSurveyLoader(surveys map[string]domain.Survey) *StaticSurveyLoader {
	return &StaticSurveyLoader{surveys: surveys}
}

func (l *StaticSurveyLoader) LoadSurvey(_ context.Context, surveyID string) (domain.Survey, error) {
	if survey, ok := l.surveys[surveyID]; ok {
		return survey, nil
	}
	return domain.Survey{}, domain.ErrSurveyNotFound
}

func (l *StaticSurveyLoader) LoadQuestion(_ context.Context, questionID string) (domain.QuestionSpec, error) {
	for _, survey := range l.surveys {
		for _, q := range survey.Questions {
			if q.ID == questionID {
				if q.SurveyID == "" {
					q.SurveyID = survey.ID
				}
				return q, nil
			}
		}
	}
	return domain.QuestionSpec{}, domain.ErrQuestionNotFound
}
