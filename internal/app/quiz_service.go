package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"quiz-reward-service/internal/answer"
	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/scoring"
)

// QuizService grades submissions and records attempts.
type QuizService struct {
	bank      QuestionBank
	scores    ScoreLedger
	responses ResponseStore
	badges    *BadgeService
	tel       Telemetry
	now       func() time.Time
}

// NewQuizService wires the grading use cases. badges may be nil, in which case passing
// a quiz never issues a badge.
func NewQuizService(bank QuestionBank, scores ScoreLedger, responses ResponseStore, badges *BadgeService, tel Telemetry) *QuizService {
	return &QuizService{
		bank:      bank,
		scores:    scores,
		responses: responses,
		badges:    badges,
		tel:       tel.withDefaults(),
		now:       time.Now,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// SubmitResult is a graded submission plus what happened to its side effects.
type SubmitResult struct {
	domain.GradingResult
	ScoreID    string             `json:"scoreId,omitempty"`
	Attempt    int                `json:"attempt,omitempty"`
	Badge      *domain.BadgeIssue `json:"badge,omitempty"`
	ScoreError string             `json:"scoreError,omitempty"`
	BadgeError string             `json:"badgeError,omitempty"`
}

// Grade scores answers without persisting anything.
func (s *QuizService) Grade(ctx context.Context, surveyID string, answers []domain.AnswerSubmission) (domain.GradingResult, error) {
	survey, err := s.survey(ctx, surveyID)
	if err != nil {
		return domain.GradingResult{}, err
	}
	return scoring.Grade(survey, answers), nil
}

// Submit grades a whole quiz. When it passes and userID is set, the attempt is
// appended to the score ledger and the course badge is issued. The two writes fail
// independently; their errors are logged and reported on the result.
func (s *QuizService) Submit(ctx context.Context, userID, surveyID string, answers []domain.AnswerSubmission, durationSeconds int) (SubmitResult, error) {
	ctx, span := s.tel.Tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.String("survey.id", surveyID),
		attribute.Int("answers", len(answers)),
	))
	defer span.End()

	survey, err := s.survey(ctx, surveyID)
	if err != nil {
		failSpan(span, err)
		return SubmitResult{}, err
	}

	graded := scoring.Grade(survey, answers)
	s.tel.Metrics.Gradings.WithLabelValues(outcome(graded.Passed)).Inc()
	span.SetAttributes(attribute.Bool("passed", graded.Passed), attribute.Float64("percentage", graded.Percentage))

	out := SubmitResult{GradingResult: graded}
	if !graded.Passed || userID == "" {
		return out, nil
	}

	log := s.tel.Logger.With(zap.String("user_id", userID), zap.String("survey_id", surveyID))

	if id, attempt, err := s.appendScore(ctx, userID, surveyID, graded, durationSeconds); err != nil {
		log.Warn("score append failed", zap.Error(err))
		s.tel.Metrics.SideEffectFailures.WithLabelValues("score").Inc()
		out.ScoreError = err.Error()
	} else {
		out.ScoreID, out.Attempt = id, attempt
	}

	if s.badges != nil {
		issue, err := s.badges.AwardForSurvey(ctx, userID, surveyID, graded)
		switch {
		case err != nil:
			log.Warn("badge issuance failed", zap.Error(err))
			s.tel.Metrics.SideEffectFailures.WithLabelValues("badge").Inc()
			out.BadgeError = err.Error()
		case issue != nil:
			out.Badge = issue
		}
	}
	return out, nil
}

func (s *QuizService) appendScore(ctx context.Context, userID, surveyID string, graded domain.GradingResult, durationSeconds int) (string, int, error) {
	attempts, err := s.scores.AttemptsFor(ctx, userID, surveyID)
	if err != nil {
		return "", 0, fmt.Errorf("count attempts: %w", err)
	}
	rec := domain.ScoreRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		SurveyID:        surveyID,
		AttemptNumber:   attempts + 1,
		TotalScore:      graded.TotalScore,
		MaxScore:        graded.MaxScore,
		CorrectCount:    graded.CorrectCount,
		WrongCount:      graded.WrongCount,
		DurationSeconds: durationSeconds,
		CompletedAt:     s.now(),
	}
	id, err := s.scores.Append(ctx, rec)
	if err != nil {
		return "", 0, fmt.Errorf("append score: %w", err)
	}
	return id, rec.AttemptNumber, nil
}

// AnswerOutcome is the feedback for one incrementally recorded answer. The correct
// answer and explanation are only revealed when the answer was wrong.
type AnswerOutcome struct {
	ResponseID    string `json:"responseId"`
	Correct       bool   `json:"correct"`
	ScoreEarned   int    `json:"scoreEarned"`
	CorrectAnswer any    `json:"correctAnswer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// RecordAnswer checks and stores one answer of an ongoing attempt.
func (s *QuizService) RecordAnswer(ctx context.Context, userID, surveyID, questionID string, raw any, timeSpentSeconds, attempt int) (AnswerOutcome, error) {
	q, err := s.bank.QuestionByID(ctx, questionID, surveyID)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if attempt <= 0 {
		attempt = 1
	}
	if q.SurveyID == "" {
		q.SurveyID = surveyID
	}

	correct, awarded, canonical := scoring.Evaluate(q, raw)
	id, err := s.responses.Save(ctx, domain.AnswerResponse{
		ID:               uuid.NewString(),
		UserID:           userID,
		SurveyID:         q.SurveyID,
		QuestionID:       q.ID,
		Answer:           answer.RawText(raw),
		Correct:          correct,
		ScoreEarned:      awarded,
		Attempt:          attempt,
		TimeSpentSeconds: timeSpentSeconds,
		SubmittedAt:      s.now(),
	})
	if err != nil {
		return AnswerOutcome{}, fmt.Errorf("save response: %w", err)
	}

	out := AnswerOutcome{ResponseID: id, Correct: correct, ScoreEarned: awarded}
	if !correct {
		out.CorrectAnswer = canonical.Interface()
		out.Explanation = q.Explanation
	}
	return out, nil
}

// FinalizeResult is the persisted outcome of an incrementally answered attempt.
type FinalizeResult struct {
	domain.GradingResult
	ScoreID         string `json:"scoreId"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Finalize sums the recorded answers of attempt and appends the ScoreRecord.
// MaxScore covers the survey's full question bank.
func (s *QuizService) Finalize(ctx context.Context, userID, surveyID string, attempt int) (FinalizeResult, error) {
	ctx, span := s.tel.Tracer.Start(ctx, "quiz.finalize", trace.WithAttributes(
		attribute.String("survey.id", surveyID),
		attribute.Int("attempt", attempt),
	))
	defer span.End()

	if attempt <= 0 {
		attempt = 1
	}
	survey, err := s.survey(ctx, surveyID)
	if err != nil {
		failSpan(span, err)
		return FinalizeResult{}, err
	}
	responses, err := s.responses.ForUserSurvey(ctx, userID, surveyID)
	if err != nil {
		failSpan(span, err)
		return FinalizeResult{}, fmt.Errorf("load responses: %w", err)
	}

	tally := scoring.Finalize(survey, responses, attempt)
	s.tel.Metrics.Gradings.WithLabelValues(outcome(tally.Result.Passed)).Inc()

	id, err := s.scores.Append(ctx, domain.ScoreRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		SurveyID:        surveyID,
		AttemptNumber:   attempt,
		TotalScore:      tally.Result.TotalScore,
		MaxScore:        tally.Result.MaxScore,
		CorrectCount:    tally.Result.CorrectCount,
		WrongCount:      tally.Result.WrongCount,
		DurationSeconds: tally.DurationSeconds,
		CompletedAt:     s.now(),
	})
	if err != nil {
		failSpan(span, err)
		return FinalizeResult{}, fmt.Errorf("append score: %w", err)
	}
	return FinalizeResult{GradingResult: tally.Result, ScoreID: id, DurationSeconds: tally.DurationSeconds}, nil
}

// AttemptStatus reports whether a user may start another attempt.
type AttemptStatus struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	// Next is the attempt number the user would start.
	Next int `json:"attemptNumber"`
	// Best is the user's highest scoring attempt so far, nil before the first one.
	Best *domain.ScoreRecord `json:"bestScore"`
}

// CheckAttempts applies the survey's attempt quota.
func (s *QuizService) CheckAttempts(ctx context.Context, userID, surveyID string) (AttemptStatus, error) {
	survey, err := s.bank.GetSurvey(ctx, surveyID)
	if err != nil {
		return AttemptStatus{}, err
	}
	used, err := s.scores.AttemptsFor(ctx, userID, surveyID)
	if err != nil {
		return AttemptStatus{}, fmt.Errorf("count attempts: %w", err)
	}
	best, err := s.scores.BestFor(ctx, userID, surveyID)
	if err != nil {
		return AttemptStatus{}, fmt.Errorf("best attempt: %w", err)
	}
	status := AttemptStatus{Next: used + 1, Best: best}
	if remaining := survey.AttemptQuota() - used; remaining > 0 {
		status.Allowed = true
		status.Remaining = remaining
	}
	return status, nil
}

// WrongQuestions returns the questions answered wrong in the first attempt, in bank
// order, for review.
func (s *QuizService) WrongQuestions(ctx context.Context, userID, surveyID string) ([]domain.QuestionSpec, error) {
	survey, err := s.bank.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ForUserSurvey(ctx, userID, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	wrong := make(map[string]bool)
	for _, r := range responses {
		if r.Attempt == 1 && !r.Correct {
			wrong[r.QuestionID] = true
		}
	}
	out := []domain.QuestionSpec{}
	for _, q := range survey.Questions {
		if wrong[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

// ReviewQuestionIDs lists the questions whose latest recorded answer is wrong.
func (s *QuizService) ReviewQuestionIDs(ctx context.Context, userID, surveyID string) ([]string, error) {
	responses, err := s.responses.ForUserSurvey(ctx, userID, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	latest := make(map[string]domain.AnswerResponse)
	var order []string
	for _, r := range responses {
		cur, seen := latest[r.QuestionID]
		if !seen {
			order = append(order, r.QuestionID)
		}
		if !seen || r.Attempt > cur.Attempt || (r.Attempt == cur.Attempt && !r.SubmittedAt.Before(cur.SubmittedAt)) {
			latest[r.QuestionID] = r
		}
	}

	ids := []string{}
	for _, id := range order {
		if !latest[id].Correct {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// survey loads a survey and refuses to grade against an empty bank.
func (s *QuizService) survey(ctx context.Context, surveyID string) (domain.Survey, error) {
	survey, err := s.bank.GetSurvey(ctx, surveyID)
	if err != nil {
		return domain.Survey{}, err
	}
	if len(survey.Questions) == 0 {
		return domain.Survey{}, domain.ErrNoQuestions
	}
	return survey, nil
}

func outcome(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
