package reward

import (
	"testing"
	"time"

	"quiz-reward-service/internal/domain"
)

func fixedID(id string) func() string { return func() string { return id } }

func TestApplyBadgeCreatesNewBadge(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	issue := ApplyBadge(nil, BadgeAward{UserID: "u1", CourseID: "c1", SurveyID: "s1", Score: 8, MaxScore: 10, Percentage: 80}, now, fixedID("badge-00000001"))

	if !issue.IsNew || !issue.ScoreUpdated {
		t.Fatalf("expected new badge with score set, got %+v", issue)
	}
	b := issue.Badge
	if b.ID != "badge-00000001" || b.AttemptCount != 1 || b.Score != 8 || b.Percentage != 80 {
		t.Fatalf("unexpected badge %+v", b)
	}
	if !b.FirstPassedAt.Equal(now) || !b.LastUpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps set to now, got %+v", b)
	}
}

func TestApplyBadgeLowerScoreOnlyCountsAttempt(t *testing.T) {
	first := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	created := ApplyBadge(nil, BadgeAward{UserID: "u1", CourseID: "c1", Score: 8, MaxScore: 10, Percentage: 80}, first, fixedID("badge-a"))

	later := first.Add(time.Hour)
	issue := ApplyBadge(&created.Badge, BadgeAward{UserID: "u1", CourseID: "c1", Score: 6, MaxScore: 10, Percentage: 60}, later, fixedID("unused"))

	if issue.IsNew || issue.ScoreUpdated {
		t.Fatalf("expected existing badge without score change, got %+v", issue)
	}
	if issue.Badge.AttemptCount != created.Badge.AttemptCount+1 {
		t.Fatalf("expected attempt count to grow by one, got %d", issue.Badge.AttemptCount)
	}
	if issue.Badge.Score != 8 || issue.Badge.Percentage != 80 || issue.Badge.ID != "badge-a" {
		t.Fatalf("expected score fields unchanged, got %+v", issue.Badge)
	}
	if !issue.Badge.FirstPassedAt.Equal(first) || !issue.Badge.LastUpdatedAt.Equal(later) {
		t.Fatalf("unexpected timestamps %+v", issue.Badge)
	}
}

func TestApplyBadgeEqualScoreIsNotAnImprovement(t *testing.T) {
	existing := domain.CourseBadge{ID: "badge-a", Score: 8, MaxScore: 10, AttemptCount: 2}
	issue := ApplyBadge(&existing, BadgeAward{Score: 8, MaxScore: 12}, time.Now(), fixedID("unused"))
	if issue.ScoreUpdated || issue.Badge.MaxScore != 10 || issue.Badge.AttemptCount != 3 {
		t.Fatalf("expected only the attempt to count, got %+v", issue)
	}
}

func TestApplyBadgeHigherScoreUpdates(t *testing.T) {
	existing := domain.CourseBadge{ID: "badge-a", Score: 6, MaxScore: 10, Percentage: 60, AttemptCount: 1}
	issue := ApplyBadge(&existing, BadgeAward{Score: 9, MaxScore: 10, Percentage: 90}, time.Now(), fixedID("unused"))

	if issue.IsNew || !issue.ScoreUpdated {
		t.Fatalf("expected score update on existing badge, got %+v", issue)
	}
	if issue.Badge.Score != 9 || issue.Badge.Percentage != 90 || issue.Badge.AttemptCount != 2 {
		t.Fatalf("unexpected badge %+v", issue.Badge)
	}
	if existing.AttemptCount != 1 {
		t.Fatalf("expected input badge left untouched")
	}
}

func TestShortIDs(t *testing.T) {
	b, c := NewBadgeID(), NewCertificateID()
	if len(b) != len("badge-")+8 || b[:6] != "badge-" {
		t.Fatalf("unexpected badge id %q", b)
	}
	if len(c) != len("cert-")+8 || c[:5] != "cert-" {
		t.Fatalf("unexpected certificate id %q", c)
	}
	if NewCertificateID() == c {
		t.Fatalf("expected fresh ids")
	}
}
