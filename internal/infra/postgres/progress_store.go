package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/progress"
)

// ProgressStore keeps one JSONB snapshot per user. Snapshots are decoded leniently so
// rows written by older clients still load.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) Get(ctx context.Context, userID string) (domain.UserProgress, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM user_progress WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}
	p, err := progress.Decode(raw)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("user %s: %w", userID, err)
	}
	return p, nil
}

func (s *ProgressStore) Save(ctx context.Context, userID string, p domain.UserProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		userID, data)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) All(ctx context.Context) ([]domain.ProgressRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id, data FROM user_progress ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()
	var out []domain.ProgressRecord
	for rows.Next() {
		var (
			userID string
			raw    []byte
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		p, err := progress.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", userID, err)
		}
		out = append(out, domain.ProgressRecord{UserID: userID, Progress: p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return out, nil
}
