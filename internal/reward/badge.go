// Package reward holds the pure rules for course badges and syllabus certificates.
package reward

import (
	"time"

	"quiz-reward-service/internal/domain"
)

// BadgeAward describes a passed quiz that should be reflected on a course badge.
type BadgeAward struct {
	UserID      string
	UserName    string
	CourseID    string
	CourseTitle string
	SurveyID    string
	Score       int
	MaxScore    int
	Percentage  float64
}

// ApplyBadge folds award into the existing (user, course) badge, or creates one when
// existing is nil. Attempts always count up; the score only moves on strict improvement.
func ApplyBadge(existing *domain.CourseBadge, award BadgeAward, now time.Time, newID func() string) domain.BadgeIssue {
	if existing == nil {
		return domain.BadgeIssue{
			Badge: domain.CourseBadge{
				ID:            newID(),
				UserID:        award.UserID,
				UserName:      award.UserName,
				CourseID:      award.CourseID,
				CourseTitle:   award.CourseTitle,
				SurveyID:      award.SurveyID,
				Score:         award.Score,
				MaxScore:      award.MaxScore,
				Percentage:    award.Percentage,
				AttemptCount:  1,
				FirstPassedAt: now,
				LastUpdatedAt: now,
			},
			IsNew:        true,
			ScoreUpdated: true,
		}
	}

	badge := *existing
	badge.AttemptCount++
	badge.LastUpdatedAt = now

	improved := award.Score > existing.Score
	if improved {
		badge.Score = award.Score
		badge.MaxScore = award.MaxScore
		badge.Percentage = award.Percentage
	}
	return domain.BadgeIssue{Badge: badge, ScoreUpdated: improved}
}
