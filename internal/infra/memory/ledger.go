package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"quiz-reward-service/internal/domain"
)

// ScoreLedger is an in-memory implementation of app.ScoreLedger.
type ScoreLedger struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{}
}

func (l *ScoreLedger) Append(_ context.Context, rec domain.ScoreRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec.ID, nil
}

func (l *ScoreLedger) AttemptsFor(_ context.Context, userID, surveyID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, r := range l.records {
		if r.UserID == userID && r.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

// BestFor returns the highest scoring record; the earliest wins a tie.
func (l *ScoreLedger) BestFor(_ context.Context, userID, surveyID string) (*domain.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var best *domain.ScoreRecord
	for i := range l.records {
		r := l.records[i]
		if r.UserID != userID || r.SurveyID != surveyID {
			continue
		}
		if best == nil || r.TotalScore > best.TotalScore {
			rec := r
			best = &rec
		}
	}
	return best, nil
}

func (l *ScoreLedger) ForSurvey(_ context.Context, surveyID string) ([]domain.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.ScoreRecord
	for _, r := range l.records {
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *ScoreLedger) All(_ context.Context) ([]domain.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), l.records...), nil
}

// ResponseStore is an in-memory implementation of app.ResponseStore.
type ResponseStore struct {
	mu        sync.RWMutex
	responses []domain.AnswerResponse
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{}
}

func (s *ResponseStore) Save(_ context.Context, resp domain.AnswerResponse) (string, error) {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.responses = append(s.responses, resp)
	s.mu.Unlock()
	return resp.ID, nil
}

func (s *ResponseStore) ForUserSurvey(_ context.Context, userID, surveyID string) ([]domain.AnswerResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AnswerResponse
	for _, r := range s.responses {
		if r.UserID == userID && r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}
