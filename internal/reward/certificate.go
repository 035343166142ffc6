package reward

import (
	"math"
	"sort"
	"time"

	"quiz-reward-service/internal/domain"
)

// XP estimates shown on the per-course certificate breakdown.
const (
	CourseCompletionXP = 50
	QuestionPassXP     = 10
)

// LinkedQuiz is a course in a syllabus that carries a quiz.
type LinkedQuiz struct {
	CourseID    string
	CourseTitle string
	SurveyID    string
	PassScore   int
}

// LinkedQuizzes lists the quizzes of courses, in course order. Courses without a quiz
// are skipped.
func LinkedQuizzes(courses []domain.Course) []LinkedQuiz {
	var out []LinkedQuiz
	for _, c := range courses {
		if c.Quiz == nil || c.Quiz.SurveyID == "" {
			continue
		}
		pass := c.Quiz.PassScore
		if pass <= 0 {
			pass = domain.DefaultPassScore
		}
		out = append(out, LinkedQuiz{CourseID: c.ID, CourseTitle: c.Title, SurveyID: c.Quiz.SurveyID, PassScore: pass})
	}
	return out
}

type attemptKey struct {
	userID   string
	surveyID string
}

// BestScores indexes the highest-scoring record per (user, survey). On equal scores
// the earlier record is kept.
type BestScores map[attemptKey]domain.ScoreRecord

// IndexBestScores builds BestScores from the full score ledger.
func IndexBestScores(records []domain.ScoreRecord) BestScores {
	best := make(BestScores, len(records))
	for _, r := range records {
		k := attemptKey{userID: r.UserID, surveyID: r.SurveyID}
		if cur, ok := best[k]; !ok || r.TotalScore > cur.TotalScore {
			best[k] = r
		}
	}
	return best
}

// Best returns the best record of userID on surveyID.
func (b BestScores) Best(userID, surveyID string) (domain.ScoreRecord, bool) {
	r, ok := b[attemptKey{userID: userID, surveyID: surveyID}]
	return r, ok
}

// Participant is a user eligible for a syllabus certificate.
type Participant struct {
	UserID   string
	Score    int
	MaxScore int
	XP       int
	Progress domain.UserProgress
}

// Eligibility is the ranked participant list plus the number of users with syllabus
// XP who have not first-passed every linked quiz.
type Eligibility struct {
	Ranked    []Participant
	NotPassed int
}

// RankParticipants selects users with syllabus XP who have first-passed every quiz and
// orders them by the sum of their best quiz scores. Equal sums are ordered by user id
// so re-issuing an unchanged set yields the same ranks.
func RankParticipants(syllabusID string, quizzes []LinkedQuiz, progress []domain.ProgressRecord, best BestScores) Eligibility {
	var out Eligibility
	for _, rec := range progress {
		xp := rec.Progress.XPBySyllabus[syllabusID]
		if xp <= 0 {
			continue
		}
		if !passedAll(rec.Progress, quizzes) {
			out.NotPassed++
			continue
		}
		p := Participant{UserID: rec.UserID, XP: xp, Progress: rec.Progress}
		for _, q := range quizzes {
			if r, ok := best.Best(rec.UserID, q.SurveyID); ok {
				p.Score += r.TotalScore
				p.MaxScore += r.MaxScore
			}
		}
		out.Ranked = append(out.Ranked, p)
	}

	sort.SliceStable(out.Ranked, func(i, j int) bool {
		a, b := out.Ranked[i], out.Ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.UserID < b.UserID
	})
	return out
}

func passedAll(p domain.UserProgress, quizzes []LinkedQuiz) bool {
	for _, q := range quizzes {
		if !p.HasFirstPassed(q.SurveyID) {
			return false
		}
	}
	return true
}

// CertificateBuilder turns ranked participants into a certificate batch.
type CertificateBuilder struct {
	Syllabus domain.Syllabus
	// Courses are the resolved courses of the syllabus sequence, in order.
	Courses []domain.Course
	// QuestionCounts maps survey id to the size of its question bank.
	QuestionCounts map[string]int
	Profiles       map[string]domain.Profile
	Best           BestScores
	IssuedBy       string
	Now            time.Time
	NewID          func() string
}

// Build issues one certificate per participant, rank 1 first.
func (b CertificateBuilder) Build(ranked []Participant) []domain.Certificate {
	newID := b.NewID
	if newID == nil {
		newID = NewCertificateID
	}

	certs := make([]domain.Certificate, 0, len(ranked))
	for i, p := range ranked {
		profile, ok := b.Profiles[p.UserID]
		if !ok || profile.Name == "" {
			profile.Name = domain.UnknownUserName
		}
		certs = append(certs, domain.Certificate{
			ID:                newID(),
			UserID:            p.UserID,
			UserName:          profile.Name,
			UserCompany:       profile.Company,
			SyllabusID:        b.Syllabus.ID,
			SyllabusName:      b.Syllabus.Name,
			Score:             p.Score,
			MaxScore:          p.MaxScore,
			Percentage:        roundedPercent(p.Score, p.MaxScore),
			XPEarned:          p.XP,
			Rank:              i + 1,
			TotalParticipants: len(ranked),
			CourseScores:      b.courseScores(p),
			IssuedAt:          b.Now,
			IssuedBy:          b.IssuedBy,
		})
	}
	return certs
}

// courseScores is display-only and never feeds the ranking.
func (b CertificateBuilder) courseScores(p Participant) map[string]domain.CourseScore {
	out := make(map[string]domain.CourseScore, len(b.Courses))
	for _, c := range b.Courses {
		cs := domain.CourseScore{Name: c.Title}
		if p.Progress.HasCompletedCourse(c.ID) {
			cs.XPEarned += CourseCompletionXP
		}
		if c.Quiz != nil && c.Quiz.SurveyID != "" {
			if r, ok := b.Best.Best(p.UserID, c.Quiz.SurveyID); ok {
				cs.Score = r.TotalScore
				cs.MaxScore = r.MaxScore
				cs.Percentage = roundedPercent(r.TotalScore, r.MaxScore)
			}
			if p.Progress.HasFirstPassed(c.Quiz.SurveyID) {
				cs.XPEarned += b.QuestionCounts[c.Quiz.SurveyID] * QuestionPassXP
			}
		}
		out[c.ID] = cs
	}
	return out
}

func roundedPercent(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(max) * 100))
}
