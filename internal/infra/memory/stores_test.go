package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quiz-reward-service/internal/domain"
)

func TestScoreLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewScoreLedger()
	for _, rec := range []domain.ScoreRecord{
		{UserID: "u1", SurveyID: "s1", TotalScore: 5},
		{UserID: "u1", SurveyID: "s1", TotalScore: 10},
		{UserID: "u1", SurveyID: "s1", TotalScore: 10},
		{UserID: "u2", SurveyID: "s1", TotalScore: 15},
	} {
		if id, err := ledger.Append(ctx, rec); err != nil || id == "" {
			t.Fatalf("append: %q %v", id, err)
		}
	}

	if n, _ := ledger.AttemptsFor(ctx, "u1", "s1"); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	all, _ := ledger.All(ctx)
	best, _ := ledger.BestFor(ctx, "u1", "s1")
	if best == nil || best.TotalScore != 10 || best.ID != all[1].ID {
		t.Fatalf("expected first 10-point record, got %+v", best)
	}
	if none, _ := ledger.BestFor(ctx, "u3", "s1"); none != nil {
		t.Fatalf("expected nil best for unknown user")
	}
	if recs, _ := ledger.ForSurvey(ctx, "s1"); len(recs) != 4 {
		t.Fatalf("expected 4 survey records, got %d", len(recs))
	}
}

func TestProgressStoreCopiesSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	p := domain.UserProgress{TotalXP: 10, Achievements: []string{"a"}, XPBySyllabus: map[string]int{"s": 1}}
	if err := store.Save(ctx, "u1", p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Achievements[0] = "mutated"
	p.XPBySyllabus["s"] = 99

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Achievements[0] != "a" || got.XPBySyllabus["s"] != 1 {
		t.Fatalf("expected stored copy to be isolated, got %+v", got)
	}
}

func TestBadgeStoreKeepsOnePerUserCourse(t *testing.T) {
	ctx := context.Background()
	store := NewBadgeStore()
	bump := func(existing *domain.CourseBadge) domain.CourseBadge {
		if existing == nil {
			return domain.CourseBadge{ID: "badge-1", UserID: "u1", CourseID: "c1", AttemptCount: 1}
		}
		next := *existing
		next.AttemptCount++
		return next
	}
	_ = store.Apply(ctx, "u1", "c1", bump)
	_ = store.Apply(ctx, "u1", "c1", bump)

	b, err := store.Get(ctx, "badge-1")
	if err != nil || b.AttemptCount != 2 {
		t.Fatalf("expected updated badge, got %+v %v", b, err)
	}
	list, _ := store.ListByUser(ctx, "u1")
	if len(list) != 1 {
		t.Fatalf("expected one badge, got %d", len(list))
	}
	if _, err := store.Get(ctx, "badge-x"); !errors.Is(err, domain.ErrBadgeNotFound) {
		t.Fatalf("expected badge not found, got %v", err)
	}
}

func TestBadgeStoreApplyCountsEveryConcurrentCall(t *testing.T) {
	ctx := context.Background()
	store := NewBadgeStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Apply(ctx, "u1", "c1", func(existing *domain.CourseBadge) domain.CourseBadge {
				if existing == nil {
					return domain.CourseBadge{ID: "badge-1", UserID: "u1", CourseID: "c1", AttemptCount: 1}
				}
				next := *existing
				next.AttemptCount++
				return next
			})
		}()
	}
	wg.Wait()

	b, err := store.Get(ctx, "badge-1")
	if err != nil || b.AttemptCount != 20 {
		t.Fatalf("expected 20 attempts, got %+v %v", b, err)
	}
}

func TestCertificateStoreReplacesWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := NewCertificateStore()
	first := []domain.Certificate{{ID: "cert-a", UserID: "u1", SyllabusID: "syl"}, {ID: "cert-b", UserID: "u2", SyllabusID: "syl"}}
	if n, _ := store.ReplaceForSyllabus(ctx, "syl", first); n != 0 {
		t.Fatalf("expected nothing deleted on first batch, got %d", n)
	}
	if n, _ := store.ReplaceForSyllabus(ctx, "syl", []domain.Certificate{{ID: "cert-c", UserID: "u1", SyllabusID: "syl"}}); n != 2 {
		t.Fatalf("expected two certificates replaced, got %d", n)
	}
	if _, err := store.Get(ctx, "cert-a"); !errors.Is(err, domain.ErrCertificateNotFound) {
		t.Fatalf("expected old certificate gone, got %v", err)
	}
	mine, _ := store.ListByUser(ctx, "u1")
	if len(mine) != 1 || mine[0].ID != "cert-c" {
		t.Fatalf("unexpected certificates %+v", mine)
	}
}

func TestCatalogLookups(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	c.PutCourse(domain.Course{ID: "c2", Quiz: &domain.CourseQuiz{SurveyID: "s1"}})
	c.PutCourse(domain.Course{ID: "c1", Quiz: &domain.CourseQuiz{SurveyID: "s1"}})
	c.PutGroup(domain.UserGroup{ID: "g1", MemberIDs: []string{"u1", "u2"}})
	c.PutProfile(domain.Profile{UserID: "emp_7", Name: "Kim"})

	if course, err := c.CourseForSurvey(ctx, "s1"); err != nil || course.ID != "c1" {
		t.Fatalf("expected c1 for s1, got %+v %v", course, err)
	}
	if _, err := c.CourseForSurvey(ctx, "s9"); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected course not found, got %v", err)
	}
	if groups, _ := c.GroupsForUser(ctx, "u2"); len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if p, _ := c.Profile(ctx, "emp_7"); p.Kind != domain.EmployeeIdentity {
		t.Fatalf("expected employee kind, got %q", p.Kind)
	}
	if _, err := c.Syllabus(ctx, "missing"); !errors.Is(err, domain.ErrSyllabusNotFound) {
		t.Fatalf("expected syllabus not found, got %v", err)
	}
}
