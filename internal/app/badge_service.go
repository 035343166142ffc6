package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/reward"
)

// BadgeService issues and lists course badges.
type BadgeService struct {
	badges  BadgeStore
	catalog CourseCatalog
	ids     IdentityResolver
	locker  Locker
	tel     Telemetry
	now     func() time.Time
	newID   func() string
}

// NewBadgeService wires badge issuance. A nil locker leaves concurrent updates of the
// same badge to the store.
func NewBadgeService(badges BadgeStore, catalog CourseCatalog, ids IdentityResolver, locker Locker, tel Telemetry) *BadgeService {
	return &BadgeService{
		badges:  badges,
		catalog: catalog,
		ids:     ids,
		locker:  locker,
		tel:     tel.withDefaults(),
		now:     time.Now,
		newID:   reward.NewBadgeID,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *BadgeService) WithClock(now func() time.Time) *BadgeService {
	s.now = now
	return s
}

// AwardForSurvey issues the badge of the course linked to surveyID. Surveys that no
// course links to yield no badge and no error.
func (s *BadgeService) AwardForSurvey(ctx context.Context, userID, surveyID string, graded domain.GradingResult) (*domain.BadgeIssue, error) {
	course, err := s.catalog.CourseForSurvey(ctx, surveyID)
	if errors.Is(err, domain.ErrCourseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve course: %w", err)
	}

	issue, err := s.IssueOrUpdate(ctx, reward.BadgeAward{
		UserID:      userID,
		UserName:    resolveProfile(ctx, s.ids, userID).Name,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		SurveyID:    surveyID,
		Score:       graded.TotalScore,
		MaxScore:    graded.MaxScore,
		Percentage:  graded.Percentage,
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// IssueOrUpdate creates the (user, course) badge or records another passing attempt
// on it. Updates of one badge are serialised.
func (s *BadgeService) IssueOrUpdate(ctx context.Context, award reward.BadgeAward) (domain.BadgeIssue, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "badge:"+award.UserID+":"+award.CourseID)
		if err != nil {
			s.tel.Metrics.BadgeIssuances.WithLabelValues("error").Inc()
			return domain.BadgeIssue{}, fmt.Errorf("lock badge: %w", err)
		}
		defer unlock()
	}

	var issue domain.BadgeIssue
	err := s.badges.Apply(ctx, award.UserID, award.CourseID, func(existing *domain.CourseBadge) domain.CourseBadge {
		issue = reward.ApplyBadge(existing, award, s.now(), s.newID)
		return issue.Badge
	})
	if err != nil {
		s.tel.Metrics.BadgeIssuances.WithLabelValues("error").Inc()
		return domain.BadgeIssue{}, fmt.Errorf("save badge: %w", err)
	}

	result := "unchanged"
	switch {
	case issue.IsNew:
		result = "new"
	case issue.ScoreUpdated:
		result = "improved"
	}
	s.tel.Metrics.BadgeIssuances.WithLabelValues(result).Inc()
	s.tel.Logger.Info("badge issued",
		zap.String("badge_id", issue.Badge.ID),
		zap.String("user_id", award.UserID),
		zap.String("course_id", award.CourseID),
		zap.String("result", result),
		zap.Int("attempts", issue.Badge.AttemptCount),
	)
	return issue, nil
}

// UserBadges lists a user's badges, most recently updated first.
func (s *BadgeService) UserBadges(ctx context.Context, userID string) ([]domain.CourseBadge, error) {
	badges, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(badges, func(i, j int) bool {
		return badges[i].LastUpdatedAt.After(badges[j].LastUpdatedAt)
	})
	return badges, nil
}

// Badge returns one badge by its public id.
func (s *BadgeService) Badge(ctx context.Context, badgeID string) (domain.CourseBadge, error) {
	return s.badges.Get(ctx, badgeID)
}
