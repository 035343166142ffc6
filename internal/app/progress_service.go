package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/progress"
)

// ProgressService reads, reconciles and updates user progress snapshots.
type ProgressService struct {
	store  ProgressStore
	locker Locker
	tel    Telemetry
}

// NewProgressService wires progress sync. A nil locker leaves concurrent writes for
// one user to the store.
func NewProgressService(store ProgressStore, locker Locker, tel Telemetry) *ProgressService {
	return &ProgressService{store: store, locker: locker, tel: tel.withDefaults()}
}

// Get returns the stored snapshot, or the defaults for a user without one.
func (s *ProgressService) Get(ctx context.Context, userID string) (domain.UserProgress, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return domain.DefaultProgress(), nil
	}
	return p, err
}

// Save overwrites the snapshot of userID.
func (s *ProgressService) Save(ctx context.Context, userID string, p domain.UserProgress) error {
	return s.store.Save(ctx, userID, p)
}

// SyncResult is the stored snapshot after a sync.
type SyncResult struct {
	Progress domain.UserProgress `json:"progress"`
	// Created is set when the client snapshot was stored as the first one.
	Created bool `json:"created"`
}

// Sync reconciles a client snapshot with the stored one. Without a stored snapshot the
// client copy is kept as is.
func (s *ProgressService) Sync(ctx context.Context, userID string, client domain.UserProgress) (SyncResult, error) {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return SyncResult{}, err
	}
	defer unlock()

	server, err := s.store.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrProgressNotFound):
		if err := s.store.Save(ctx, userID, client); err != nil {
			return SyncResult{}, fmt.Errorf("save progress: %w", err)
		}
		s.tel.Metrics.ProgressSyncs.WithLabelValues("created").Inc()
		return SyncResult{Progress: client, Created: true}, nil
	case err != nil:
		return SyncResult{}, fmt.Errorf("load progress: %w", err)
	}

	merged := progress.Merge(server, client)
	if err := s.store.Save(ctx, userID, merged); err != nil {
		return SyncResult{}, fmt.Errorf("save progress: %w", err)
	}
	s.tel.Metrics.ProgressSyncs.WithLabelValues("merged").Inc()
	s.tel.Logger.Debug("progress merged", zap.String("user_id", userID), zap.Int("total_xp", merged.TotalXP))
	return SyncResult{Progress: merged}, nil
}

// AddSyllabusXP credits xp to one syllabus. The account total is left alone; syllabus
// XP is tracked separately.
func (s *ProgressService) AddSyllabusXP(ctx context.Context, userID, syllabusID string, xp int) (domain.UserProgress, error) {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, err
	}
	defer unlock()

	p, err := s.Get(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}
	bySyllabus := make(map[string]int, len(p.XPBySyllabus)+1)
	for k, v := range p.XPBySyllabus {
		bySyllabus[k] = v
	}
	bySyllabus[syllabusID] += xp
	p.XPBySyllabus = bySyllabus

	if err := s.store.Save(ctx, userID, p); err != nil {
		return domain.UserProgress{}, fmt.Errorf("save progress: %w", err)
	}
	return p, nil
}

func (s *ProgressService) lock(ctx context.Context, userID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, "progress:"+userID)
	if err != nil {
		return nil, fmt.Errorf("lock progress: %w", err)
	}
	return unlock, nil
}
