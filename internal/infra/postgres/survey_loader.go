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

// SurveyLoader loads surveys and their question bank from Postgres. It is meant to sit
// behind one of the survey caches.
type SurveyLoader struct {
	pool *pgxpool.Pool
}

func NewSurveyLoader(pool *pgxpool.Pool) *SurveyLoader {
	return &SurveyLoader{pool: pool}
}

const questionColumns = `id, survey_id, type, text, correct_answer, options, explanation, sort_order, points`

func (l *SurveyLoader) LoadSurvey(ctx context.Context, surveyID string) (domain.Survey, error) {
	var s domain.Survey
	err := l.pool.QueryRow(ctx,
		`SELECT id, title, pass_score, max_attempts FROM surveys WHERE id=$1`, surveyID,
	).Scan(&s.ID, &s.Title, &s.PassScore, &s.MaxAttempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Survey{}, domain.ErrSurveyNotFound
	}
	if err != nil {
		return domain.Survey{}, fmt.Errorf("load survey: %w", err)
	}

	rows, err := l.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE survey_id=$1 ORDER BY sort_order, id`, surveyID)
	if err != nil {
		return domain.Survey{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return domain.Survey{}, err
		}
		s.Questions = append(s.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Survey{}, fmt.Errorf("load questions: %w", err)
	}
	return s, nil
}

func (l *SurveyLoader) LoadQuestion(ctx context.Context, questionID string) (domain.QuestionSpec, error) {
	q, err := scanQuestion(l.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSpec{}, domain.ErrQuestionNotFound
	}
	return q, err
}

// SaveSurvey writes a survey and replaces its questions.
func (l *SurveyLoader) SaveSurvey(ctx context.Context, s domain.Survey) error {
	return l.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO surveys (id, title, pass_score, max_attempts) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, pass_score=EXCLUDED.pass_score, max_attempts=EXCLUDED.max_attempts`,
			s.ID, s.Title, s.PassThreshold(), s.AttemptQuota())
		if err != nil {
			return fmt.Errorf("save survey: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE survey_id=$1`, s.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		for i, q := range s.Questions {
			answer, err := json.Marshal(q.CorrectAnswer)
			if err != nil {
				return fmt.Errorf("encode answer of %s: %w", q.ID, err)
			}
			order := q.Order
			if order == 0 {
				order = i + 1
			}
			options := q.Options
			if options == nil {
				options = []string{}
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				q.ID, s.ID, string(q.Type), q.Text, answer, options, q.Explanation, order, q.Points)
			if err != nil {
				return fmt.Errorf("save question %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

func scanQuestion(row pgx.Row) (domain.QuestionSpec, error) {
	var (
		q      domain.QuestionSpec
		qType  string
		answer []byte
	)
	err := row.Scan(&q.ID, &q.SurveyID, &qType, &q.Text, &answer, &q.Options, &q.Explanation, &q.Order, &q.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QuestionSpec{}, err
		}
		return domain.QuestionSpec{}, fmt.Errorf("scan question: %w", err)
	}
	q.Type = domain.QuestionType(qType)
	if err := json.Unmarshal(answer, &q.CorrectAnswer); err != nil {
		return domain.QuestionSpec{}, fmt.Errorf("decode answer of %s: %w", q.ID, err)
	}
	return q, nil
}
