package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-reward-service/internal/domain"
)

// ScoreLedger stores completed attempts in score_records. Rows are never updated.
type ScoreLedger struct {
	pool *pgxpool.Pool
}

func NewScoreLedger(pool *pgxpool.Pool) *ScoreLedger {
	return &ScoreLedger{pool: pool}
}

const scoreColumns = `id, user_id, survey_id, attempt_number, total_score, max_score, correct_count, wrong_count, retry_count, duration_seconds, completed_at`

func (l *ScoreLedger) Append(ctx context.Context, rec domain.ScoreRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO score_records (`+scoreColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.UserID, rec.SurveyID, rec.AttemptNumber, rec.TotalScore, rec.MaxScore,
		rec.CorrectCount, rec.WrongCount, rec.RetryCount, rec.DurationSeconds, rec.CompletedAt)
	if err != nil {
		return "", fmt.Errorf("append score: %w", err)
	}
	return rec.ID, nil
}

func (l *ScoreLedger) AttemptsFor(ctx context.Context, userID, surveyID string) (int, error) {
	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM score_records WHERE user_id=$1 AND survey_id=$2`, userID, surveyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

// BestFor returns the highest scoring record; the earliest wins a tie.
func (l *ScoreLedger) BestFor(ctx context.Context, userID, surveyID string) (*domain.ScoreRecord, error) {
	rec, err := scanScore(l.pool.QueryRow(ctx, `
		SELECT `+scoreColumns+` FROM score_records WHERE user_id=$1 AND survey_id=$2
		ORDER BY total_score DESC, completed_at ASC LIMIT 1`, userID, surveyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (l *ScoreLedger) ForSurvey(ctx context.Context, surveyID string) ([]domain.ScoreRecord, error) {
	return l.query(ctx, `SELECT `+scoreColumns+` FROM score_records WHERE survey_id=$1 ORDER BY completed_at`, surveyID)
}

func (l *ScoreLedger) All(ctx context.Context) ([]domain.ScoreRecord, error) {
	return l.query(ctx, `SELECT `+scoreColumns+` FROM score_records ORDER BY completed_at`)
}

func (l *ScoreLedger) query(ctx context.Context, sql string, args ...interface{}) ([]domain.ScoreRecord, error) {
	rows, err := l.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()
	var out []domain.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	return out, nil
}

func scanScore(row pgx.Row) (domain.ScoreRecord, error) {
	var r domain.ScoreRecord
	err := row.Scan(&r.ID, &r.UserID, &r.SurveyID, &r.AttemptNumber, &r.TotalScore, &r.MaxScore,
		&r.CorrectCount, &r.WrongCount, &r.RetryCount, &r.DurationSeconds, &r.CompletedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return r, fmt.Errorf("scan score: %w", err)
	}
	return r, err
}

// ResponseStore stores incrementally recorded answers.
type ResponseStore struct {
	pool *pgxpool.Pool
}

func NewResponseStore(pool *pgxpool.Pool) *ResponseStore {
	return &ResponseStore{pool: pool}
}

func (s *ResponseStore) Save(ctx context.Context, resp domain.AnswerResponse) (string, error) {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO answer_responses
			(id, user_id, survey_id, question_id, answer, correct, score_earned, attempt, time_spent_seconds, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		resp.ID, resp.UserID, resp.SurveyID, resp.QuestionID, resp.Answer, resp.Correct,
		resp.ScoreEarned, resp.Attempt, resp.TimeSpentSeconds, resp.SubmittedAt)
	if err != nil {
		return "", fmt.Errorf("save response: %w", err)
	}
	return resp.ID, nil
}

func (s *ResponseStore) ForUserSurvey(ctx context.Context, userID, surveyID string) ([]domain.AnswerResponse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, survey_id, question_id, answer, correct, score_earned, attempt, time_spent_seconds, submitted_at
		FROM answer_responses WHERE user_id=$1 AND survey_id=$2 ORDER BY submitted_at`, userID, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()
	var out []domain.AnswerResponse
	for rows.Next() {
		var r domain.AnswerResponse
		if err := rows.Scan(&r.ID, &r.UserID, &r.SurveyID, &r.QuestionID, &r.Answer, &r.Correct,
			&r.ScoreEarned, &r.Attempt, &r.TimeSpentSeconds, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	return out, nil
}
