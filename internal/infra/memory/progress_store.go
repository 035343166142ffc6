package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-reward-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore. Snapshots are
// copied in and out so callers never share slices or maps with the store.
type ProgressStore struct {
	mu   sync.RWMutex
	rows map[string]domain.UserProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{rows: make(map[string]domain.UserProgress)}
}

func (s *ProgressStore) Get(_ context.Context, userID string) (domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[userID]
	if !ok {
		return domain.UserProgress{}, domain.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (s *ProgressStore) Save(_ context.Context, userID string, p domain.UserProgress) error {
	s.mu.Lock()
	s.rows[userID] = cloneProgress(p)
	s.mu.Unlock()
	return nil
}

// All returns every snapshot ordered by user id.
func (s *ProgressStore) All(_ context.Context) ([]domain.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProgressRecord, 0, len(s.rows))
	for id, p := range s.rows {
		out = append(out, domain.ProgressRecord{UserID: id, Progress: cloneProgress(p)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func cloneProgress(p domain.UserProgress) domain.UserProgress {
	p.ChaptersCompleted = cloneStrings(p.ChaptersCompleted)
	p.Achievements = cloneStrings(p.Achievements)
	p.WordsLearned = cloneStrings(p.WordsLearned)
	p.CoursesCompleted = cloneStrings(p.CoursesCompleted)
	p.FirstPassedQuizzes = cloneStrings(p.FirstPassedQuizzes)
	if p.WrongQuestions != nil {
		p.WrongQuestions = append([]domain.WrongQuestion(nil), p.WrongQuestions...)
	}
	if p.XPBySyllabus != nil {
		m := make(map[string]int, len(p.XPBySyllabus))
		for k, v := range p.XPBySyllabus {
			m[k] = v
		}
		p.XPBySyllabus = m
	}
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
