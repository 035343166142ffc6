package app_test

import (
	"context"
	"testing"

	"quiz-reward-service/internal/domain"
)

func TestGetProgressDefaults(t *testing.T) {
	f := newFixture()
	p, err := f.progressSvc.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Hearts != 5 || p.MaxHearts != 5 || p.DailyGoalMinutes != 10 || p.CurrentChapter != 1 || p.TotalXP != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestSyncStoresFirstSnapshotThenMerges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.progressSvc.Sync(ctx, "u1", domain.UserProgress{TotalXP: 40, Hearts: 3, Achievements: []string{"a"}})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !first.Created || first.Progress.TotalXP != 40 {
		t.Fatalf("expected verbatim first snapshot, got %+v", first)
	}

	second, err := f.progressSvc.Sync(ctx, "u1", domain.UserProgress{TotalXP: 10, Hearts: 1, Achievements: []string{"b"}})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	got := second.Progress
	if second.Created || got.TotalXP != 40 || got.Hearts != 1 || len(got.Achievements) != 2 {
		t.Fatalf("unexpected merge %+v", second)
	}

	stored, _ := f.progressSvc.Get(ctx, "u1")
	if stored.TotalXP != 40 || stored.Hearts != 1 {
		t.Fatalf("merged snapshot not stored: %+v", stored)
	}
}

func TestAddSyllabusXPLeavesTotalAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedProgress(ctx, "u1", domain.UserProgress{TotalXP: 200, XPBySyllabus: map[string]int{"syl-1": 5}})

	p, err := f.progressSvc.AddSyllabusXP(ctx, "u1", "syl-1", 20)
	if err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if p.TotalXP != 200 || p.XPBySyllabus["syl-1"] != 25 {
		t.Fatalf("unexpected progress %+v", p)
	}

	fresh, _ := f.progressSvc.AddSyllabusXP(ctx, "u2", "syl-2", 7)
	if fresh.XPBySyllabus["syl-2"] != 7 || fresh.Hearts != 5 {
		t.Fatalf("expected defaults plus syllabus xp, got %+v", fresh)
	}
}
