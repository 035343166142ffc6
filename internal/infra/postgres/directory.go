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

// Catalog reads courses, syllabi, user groups and profiles. These tables are owned by
// the content side; the service only reads them, apart from the Put helpers used
// for seeding.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) Course(ctx context.Context, courseID string) (domain.Course, error) {
	return scanCourse(c.pool.QueryRow(ctx,
		`SELECT id, title, quiz_survey_id, quiz_pass_score FROM courses WHERE id=$1`, courseID))
}

// CourseForSurvey returns the course whose quiz is surveyID; the smallest id wins.
func (c *Catalog) CourseForSurvey(ctx context.Context, surveyID string) (domain.Course, error) {
	return scanCourse(c.pool.QueryRow(ctx, `
		SELECT id, title, quiz_survey_id, quiz_pass_score FROM courses
		WHERE quiz_survey_id=$1 ORDER BY id LIMIT 1`, surveyID))
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var (
		course    domain.Course
		surveyID  *string
		passScore int
	)
	err := row.Scan(&course.ID, &course.Title, &surveyID, &passScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("load course: %w", err)
	}
	if surveyID != nil && *surveyID != "" {
		course.Quiz = &domain.CourseQuiz{SurveyID: *surveyID, PassScore: passScore}
	}
	return course, nil
}

func (c *Catalog) Syllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error) {
	var (
		s   domain.Syllabus
		raw []byte
	)
	err := c.pool.QueryRow(ctx, `SELECT id, name, course_sequence FROM syllabi WHERE id=$1`, syllabusID).
		Scan(&s.ID, &s.Name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Syllabus{}, domain.ErrSyllabusNotFound
	}
	if err != nil {
		return domain.Syllabus{}, fmt.Errorf("load syllabus: %w", err)
	}
	if err := json.Unmarshal(raw, &s.CourseSequence); err != nil {
		return domain.Syllabus{}, fmt.Errorf("decode course sequence of %s: %w", syllabusID, err)
	}
	return s, nil
}

func (c *Catalog) GroupsForUser(ctx context.Context, userID string) ([]domain.UserGroup, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, name, member_ids FROM user_groups WHERE $1 = ANY(member_ids) ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()
	var out []domain.UserGroup
	for rows.Next() {
		var g domain.UserGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.MemberIDs); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	return out, nil
}

func (c *Catalog) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	p := domain.Profile{UserID: userID, Kind: domain.KindOf(userID)}
	err := c.pool.QueryRow(ctx, `SELECT name, company FROM profiles WHERE user_id=$1`, userID).
		Scan(&p.Name, &p.Company)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (c *Catalog) PutCourse(ctx context.Context, course domain.Course) error {
	var (
		surveyID  *string
		passScore = domain.DefaultPassScore
	)
	if course.Quiz != nil {
		surveyID = &course.Quiz.SurveyID
		if course.Quiz.PassScore > 0 {
			passScore = course.Quiz.PassScore
		}
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO courses (id, title, quiz_survey_id, quiz_pass_score) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, quiz_survey_id=EXCLUDED.quiz_survey_id,
			quiz_pass_score=EXCLUDED.quiz_pass_score`,
		course.ID, course.Title, surveyID, passScore)
	if err != nil {
		return fmt.Errorf("save course: %w", err)
	}
	return nil
}

func (c *Catalog) PutSyllabus(ctx context.Context, s domain.Syllabus) error {
	seq := s.CourseSequence
	if seq == nil {
		seq = []domain.CourseRef{}
	}
	raw, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encode course sequence: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO syllabi (id, name, course_sequence) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, course_sequence=EXCLUDED.course_sequence`,
		s.ID, s.Name, raw)
	if err != nil {
		return fmt.Errorf("save syllabus: %w", err)
	}
	return nil
}

func (c *Catalog) PutGroup(ctx context.Context, g domain.UserGroup) error {
	members := g.MemberIDs
	if members == nil {
		members = []string{}
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO user_groups (id, name, member_ids) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, member_ids=EXCLUDED.member_ids`,
		g.ID, g.Name, members)
	if err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	return nil
}

func (c *Catalog) PutProfile(ctx context.Context, p domain.Profile) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, name, company) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET name=EXCLUDED.name, company=EXCLUDED.company`,
		p.UserID, p.Name, p.Company)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
