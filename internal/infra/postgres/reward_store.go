package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-reward-service/internal/domain"
)

// BadgeStore keeps course_badges, unique per (user_id, course_id).
type BadgeStore struct {
	pool *pgxpool.Pool
}

func NewBadgeStore(pool *pgxpool.Pool) *BadgeStore {
	return &BadgeStore{pool: pool}
}

const badgeColumns = `badge_id, user_id, user_name, course_id, course_title, survey_id, score, max_score, percentage, attempt_count, first_passed_at, last_updated_at`

// Apply reads and writes the (user, course) badge in one transaction. A transaction
// scoped advisory lock on the pair serialises callers, so concurrent first passes
// cannot both insert and attempt counts never lose an increment.
func (s *BadgeStore) Apply(ctx context.Context, userID, courseID string, fn func(*domain.CourseBadge) domain.CourseBadge) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "badge:"+userID+":"+courseID); err != nil {
			return fmt.Errorf("lock badge: %w", err)
		}

		var existing *domain.CourseBadge
		b, err := scanBadge(tx.QueryRow(ctx,
			`SELECT `+badgeColumns+` FROM course_badges WHERE user_id=$1 AND course_id=$2 FOR UPDATE`, userID, courseID))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return err
		default:
			existing = &b
		}

		badge := fn(existing)
		if existing == nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO course_badges (`+badgeColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				badge.ID, badge.UserID, badge.UserName, badge.CourseID, badge.CourseTitle, badge.SurveyID,
				badge.Score, badge.MaxScore, badge.Percentage, badge.AttemptCount, badge.FirstPassedAt, badge.LastUpdatedAt)
			if err != nil {
				return fmt.Errorf("insert badge: %w", err)
			}
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE course_badges SET
				user_name=$2, course_title=$3, attempt_count=$4, last_updated_at=$5,
				score=$6, max_score=$7, percentage=$8
			WHERE badge_id=$1`,
			existing.ID, badge.UserName, badge.CourseTitle, badge.AttemptCount, badge.LastUpdatedAt,
			badge.Score, badge.MaxScore, badge.Percentage)
		if err != nil {
			return fmt.Errorf("update badge: %w", err)
		}
		return nil
	})
}

func (s *BadgeStore) ListByUser(ctx context.Context, userID string) ([]domain.CourseBadge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+badgeColumns+` FROM course_badges WHERE user_id=$1 ORDER BY last_updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()
	out := []domain.CourseBadge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	return out, nil
}

func (s *BadgeStore) Get(ctx context.Context, badgeID string) (domain.CourseBadge, error) {
	b, err := scanBadge(s.pool.QueryRow(ctx, `SELECT `+badgeColumns+` FROM course_badges WHERE badge_id=$1`, badgeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CourseBadge{}, domain.ErrBadgeNotFound
	}
	return b, err
}

func scanBadge(row pgx.Row) (domain.CourseBadge, error) {
	var b domain.CourseBadge
	err := row.Scan(&b.ID, &b.UserID, &b.UserName, &b.CourseID, &b.CourseTitle, &b.SurveyID,
		&b.Score, &b.MaxScore, &b.Percentage, &b.AttemptCount, &b.FirstPassedAt, &b.LastUpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return b, fmt.Errorf("scan badge: %w", err)
	}
	return b, err
}

// CertificateStore keeps certificates; a syllabus batch is replaced in one transaction.
type CertificateStore struct {
	pool *pgxpool.Pool
}

func NewCertificateStore(pool *pgxpool.Pool) *CertificateStore {
	return &CertificateStore{pool: pool}
}

const certificateColumns = `certificate_id, user_id, user_name, user_company, syllabus_id, syllabus_name, score, max_score, percentage, xp_earned, rank, total_participants, course_scores, issued_at, issued_by`

func (s *CertificateStore) ReplaceForSyllabus(ctx context.Context, syllabusID string, certs []domain.Certificate) (int, error) {
	var deleted int
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM certificates WHERE syllabus_id=$1`, syllabusID)
		if err != nil {
			return fmt.Errorf("delete certificates: %w", err)
		}
		deleted = int(tag.RowsAffected())

		batch := &pgx.Batch{}
		for _, c := range certs {
			scores, err := json.Marshal(c.CourseScores)
			if err != nil {
				return fmt.Errorf("encode course scores: %w", err)
			}
			batch.Queue(`
				INSERT INTO certificates (`+certificateColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
				c.ID, c.UserID, c.UserName, c.UserCompany, syllabusID, c.SyllabusName, c.Score, c.MaxScore,
				c.Percentage, c.XPEarned, c.Rank, c.TotalParticipants, scores, c.IssuedAt, c.IssuedBy)
		}
		br := tx.SendBatch(ctx, batch)
		for range certs {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert certificate: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *CertificateStore) ListBySyllabus(ctx context.Context, syllabusID string) ([]domain.Certificate, error) {
	return s.query(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE syllabus_id=$1 ORDER BY rank`, syllabusID)
}

func (s *CertificateStore) ListByUser(ctx context.Context, userID string) ([]domain.Certificate, error) {
	return s.query(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE user_id=$1 ORDER BY issued_at DESC`, userID)
}

func (s *CertificateStore) Get(ctx context.Context, certificateID string) (domain.Certificate, error) {
	c, err := scanCertificate(s.pool.QueryRow(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE certificate_id=$1`, certificateID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	return c, err
}

func (s *CertificateStore) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Certificate, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()
	out := []domain.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	return out, nil
}

func scanCertificate(row pgx.Row) (domain.Certificate, error) {
	var (
		c      domain.Certificate
		scores []byte
	)
	err := row.Scan(&c.ID, &c.UserID, &c.UserName, &c.UserCompany, &c.SyllabusID, &c.SyllabusName,
		&c.Score, &c.MaxScore, &c.Percentage, &c.XPEarned, &c.Rank, &c.TotalParticipants,
		&scores, &c.IssuedAt, &c.IssuedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("scan certificate: %w", err)
	}
	if err := json.Unmarshal(scores, &c.CourseScores); err != nil {
		return c, fmt.Errorf("decode course scores of %s: %w", c.ID, err)
	}
	return c, nil
}
