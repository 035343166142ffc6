// Package scoring grades submissions against a survey's question bank.
// Everything here is pure; persistence is the caller's job.
package scoring

import (
	"math"

	"quiz-reward-service/internal/answer"
	"quiz-reward-service/internal/domain"
)

// Evaluate checks one submitted answer and returns the points it earns.
func Evaluate(q domain.QuestionSpec, submitted any) (correct bool, awarded int, canonical answer.Value) {
	canonical = answer.Canonicalize(q.CorrectAnswer, q.Options)
	correct = answer.Equivalent(submitted, canonical, q.Type)
	if correct {
		awarded = q.Weight()
	}
	return correct, awarded, canonical
}

// Grade scores every answer whose question is in the survey. Answers for unknown
// questions are skipped rather than failing the batch. MaxScore covers the whole bank.
func Grade(survey domain.Survey, answers []domain.AnswerSubmission) domain.GradingResult {
	bank := make(map[string]domain.QuestionSpec, len(survey.Questions))
	for _, q := range survey.Questions {
		bank[q.ID] = q
	}

	res := domain.GradingResult{
		Results:  make([]domain.QuestionResult, 0, len(answers)),
		MaxScore: MaxScore(survey.Questions),
	}
	for _, a := range answers {
		q, ok := bank[a.QuestionID]
		if !ok {
			continue
		}
		correct, awarded, canonical := Evaluate(q, a.Answer)
		res.Results = append(res.Results, domain.QuestionResult{
			QuestionID:    q.ID,
			Correct:       correct,
			Score:         awarded,
			CorrectAnswer: canonical.Interface(),
		})
		res.TotalScore += awarded
		if correct {
			res.CorrectCount++
		}
	}
	res.WrongCount = len(res.Results) - res.CorrectCount
	res.Percentage = Percentage(res.TotalScore, res.MaxScore)
	res.Passed = Passed(res.Percentage, res.MaxScore, survey.PassThreshold())
	return res
}

// Tally is the outcome of summing recorded answers for one attempt.
type Tally struct {
	Result          domain.GradingResult
	DurationSeconds int
	Answered        int
}

// Finalize sums previously recorded responses for attempt. MaxScore is taken from the
// full question bank, not from the questions answered in that attempt.
func Finalize(survey domain.Survey, responses []domain.AnswerResponse, attempt int) Tally {
	t := Tally{Result: domain.GradingResult{MaxScore: MaxScore(survey.Questions)}}
	for _, r := range responses {
		if r.Attempt != attempt {
			continue
		}
		t.Answered++
		t.Result.TotalScore += r.ScoreEarned
		t.DurationSeconds += r.TimeSpentSeconds
		if r.Correct {
			t.Result.CorrectCount++
		}
		t.Result.Results = append(t.Result.Results, domain.QuestionResult{
			QuestionID: r.QuestionID,
			Correct:    r.Correct,
			Score:      r.ScoreEarned,
		})
	}
	t.Result.WrongCount = t.Answered - t.Result.CorrectCount
	t.Result.Percentage = Percentage(t.Result.TotalScore, t.Result.MaxScore)
	t.Result.Passed = Passed(t.Result.Percentage, t.Result.MaxScore, survey.PassThreshold())
	return t
}

// MaxScore sums the weights of questions.
func MaxScore(questions []domain.QuestionSpec) int {
	total := 0
	for _, q := range questions {
		total += q.Weight()
	}
	return total
}

// Percentage is total/max*100 rounded to two decimals, or 0 when max is 0.
func Percentage(total, max int) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(max)*100*100) / 100
}

// Passed applies the pass threshold. An empty bank never passes.
func Passed(percentage float64, max, passScore int) bool {
	return max > 0 && percentage >= float64(passScore)
}
