package memory

import (
	"context"
	"sync"

	"quiz-reward-service/internal/domain"
)

// BadgeStore is an in-memory implementation of app.BadgeStore.
type BadgeStore struct {
	mu     sync.RWMutex
	badges map[string]domain.CourseBadge // by badge id
}

func NewBadgeStore() *BadgeStore {
	return &BadgeStore{badges: make(map[string]domain.CourseBadge)}
}

func (s *BadgeStore) Apply(_ context.Context, userID, courseID string, fn func(*domain.CourseBadge) domain.CourseBadge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing *domain.CourseBadge
	for _, b := range s.badges {
		if b.UserID == userID && b.CourseID == courseID {
			badge := b
			existing = &badge
			break
		}
	}
	next := fn(existing)
	if existing != nil && existing.ID != next.ID {
		delete(s.badges, existing.ID)
	}
	s.badges[next.ID] = next
	return nil
}

func (s *BadgeStore) ListByUser(_ context.Context, userID string) ([]domain.CourseBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.CourseBadge{}
	for _, b := range s.badges {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BadgeStore) Get(_ context.Context, badgeID string) (domain.CourseBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.badges[badgeID]
	if !ok {
		return domain.CourseBadge{}, domain.ErrBadgeNotFound
	}
	return b, nil
}

// CertificateStore is an in-memory implementation of app.CertificateStore. A batch
// replacement happens under one lock, so readers never see a half-written syllabus.
type CertificateStore struct {
	mu         sync.RWMutex
	bySyllabus map[string][]domain.Certificate
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{bySyllabus: make(map[string][]domain.Certificate)}
}

func (s *CertificateStore) ReplaceForSyllabus(_ context.Context, syllabusID string, certs []domain.Certificate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := len(s.bySyllabus[syllabusID])
	s.bySyllabus[syllabusID] = append([]domain.Certificate(nil), certs...)
	return deleted, nil
}

func (s *CertificateStore) ListBySyllabus(_ context.Context, syllabusID string) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Certificate{}, s.bySyllabus[syllabusID]...), nil
}

func (s *CertificateStore) ListByUser(_ context.Context, userID string) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Certificate{}
	for _, certs := range s.bySyllabus {
		for _, c := range certs {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s *CertificateStore) Get(_ context.Context, certificateID string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, certs := range s.bySyllabus {
		for _, c := range certs {
			if c.ID == certificateID {
				return c, nil
			}
		}
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}
