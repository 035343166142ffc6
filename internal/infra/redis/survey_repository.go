package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/infra/memory"
)

// SurveyRepository caches whole surveys in Redis as JSON and falls back to a loader on
// cache miss. Entries live for the TTL plus up to 10% jitter, so reads may be stale
// for that long after an edit unless Invalidate is called.
//
//	SET survey:{surveyID} {json} PX {ttl}
type SurveyRepository struct {
	client *redis.Client
	loader memory.SurveyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewSurveyRepository(client *redis.Client, loader memory.SurveyLoader, ttl time.Duration) *SurveyRepository {
	return &SurveyRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SurveyRepository) GetSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	if survey, ok := r.cached(ctx, surveyID); ok {
		return survey, nil
	}

	result, err, _ := r.sf.Do(surveyID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if survey, ok := r.cached(ctx, surveyID); ok {
			return survey, nil
		}

		survey, err := r.loader.LoadSurvey(ctx, surveyID)
		if err != nil {
			return domain.Survey{}, err
		}
		if data, err := json.Marshal(survey); err == nil {
			// A failed write only costs another load.
			_ = r.client.Set(ctx, r.key(surveyID), data, r.ttlWithJitter()).Err()
		}
		return survey, nil
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return result.(domain.Survey), nil
}

// QuestionByID looks the question up in its cached survey when surveyID is known,
// otherwise asks the loader directly.
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

// Invalidate drops the cached copy of a survey.
func (r *SurveyRepository) Invalidate(ctx context.Context, surveyID string) error {
	return r.client.Del(ctx, r.key(surveyID)).Err()
}

// cached treats Redis errors and undecodable entries as a miss.
func (r *SurveyRepository) cached(ctx context.Context, surveyID string) (domain.Survey, bool) {
	data, err := r.client.Get(ctx, r.key(surveyID)).Bytes()
	if err != nil {
		return domain.Survey{}, false
	}
	var survey domain.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return domain.Survey{}, false
	}
	return survey, true
}

func (r *SurveyRepository) key(surveyID string) string {
	return "survey:" + surveyID
}

func (r *SurveyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
