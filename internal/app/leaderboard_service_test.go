package app_test

import (
	"context"
	"testing"

	"quiz-reward-service/internal/domain"
)

func TestSurveyLeaderboardResolvesNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, rec := range []domain.ScoreRecord{
		{UserID: "emp_1", SurveyID: "survey-1", TotalScore: 10, MaxScore: 10, DurationSeconds: 45},
		{UserID: "guest-1", SurveyID: "survey-1", TotalScore: 10, MaxScore: 10, DurationSeconds: 30},
		{UserID: "ghost", SurveyID: "survey-1", TotalScore: 5, MaxScore: 10, DurationSeconds: 10},
	} {
		_, _ = f.scores.Append(ctx, rec)
	}

	board, err := f.leaderboards.Survey(ctx, "survey-1", 2, "ghost")
	if err != nil {
		t.Fatalf("survey board: %v", err)
	}
	if len(board.Entries) != 2 || board.Entries[0].Name != "Bo" || board.Entries[1].Company != "Acme" {
		t.Fatalf("unexpected entries %+v", board.Entries)
	}
	if board.UserRank == nil || board.UserRank.Rank != 3 || board.UserRank.Name != domain.UnknownUserName {
		t.Fatalf("unexpected requester rank %+v", board.UserRank)
	}
}

func TestXPLeaderboardVariants(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedProgress(ctx, "emp_1", domain.UserProgress{TotalXP: 250, XPBySyllabus: map[string]int{"syl-1": 30}})
	f.seedProgress(ctx, "emp_2", domain.UserProgress{TotalXP: 300})
	f.seedProgress(ctx, "guest-1", domain.UserProgress{TotalXP: 120, XPBySyllabus: map[string]int{"syl-1": 80}})
	f.seedProgress(ctx, "guest-2", domain.UserProgress{TotalXP: 500})
	f.catalog.PutGroup(domain.UserGroup{ID: "g1", Name: "Night class", MemberIDs: []string{"guest-1", "guest-9"}})

	t.Run("employees", func(t *testing.T) {
		board, err := f.leaderboards.XP(ctx, "emp_1", "", 0)
		if err != nil {
			t.Fatalf("xp: %v", err)
		}
		if board.Kind != domain.EmployeesBoard || len(board.Entries) != 2 || board.Entries[0].UserID != "emp_2" {
			t.Fatalf("unexpected board %+v", board)
		}
		if board.Entries[1].Username != "Ana" || board.Entries[0].Username != "emp_2" {
			t.Fatalf("unexpected names %+v", board.Entries)
		}
		if board.CurrentUser.Rank == nil || *board.CurrentUser.Rank != 2 || board.CurrentUser.Level != 3 {
			t.Fatalf("unexpected standing %+v", board.CurrentUser)
		}
	})

	t.Run("guest groups", func(t *testing.T) {
		board, err := f.leaderboards.XP(ctx, "guest-1", "", 0)
		if err != nil {
			t.Fatalf("xp: %v", err)
		}
		if board.Kind != domain.GroupsBoard || len(board.Groups) != 1 {
			t.Fatalf("unexpected board %+v", board)
		}
		entries := board.Groups[0].Entries
		if len(entries) != 2 || entries[0].UserID != "guest-1" || entries[1].TotalXP != 0 {
			t.Fatalf("unexpected group entries %+v", entries)
		}
		if board.CurrentUser.Rank == nil || *board.CurrentUser.Rank != 4 {
			t.Fatalf("expected standing against all users, got %+v", board.CurrentUser)
		}
	})

	t.Run("guest without group", func(t *testing.T) {
		board, err := f.leaderboards.XP(ctx, "guest-2", "", 0)
		if err != nil {
			t.Fatalf("xp: %v", err)
		}
		if board.Kind != domain.SelfOnlyBoard || len(board.Entries) != 0 || board.CurrentUser.TotalXP != 500 {
			t.Fatalf("unexpected board %+v", board)
		}
	})

	t.Run("syllabus", func(t *testing.T) {
		board, err := f.leaderboards.XP(ctx, "emp_2", "syl-1", 0)
		if err != nil {
			t.Fatalf("xp: %v", err)
		}
		if board.Kind != domain.SyllabusBoard || board.SyllabusName != "Foundations" || len(board.Entries) != 2 {
			t.Fatalf("unexpected board %+v", board)
		}
		if board.Entries[0].UserID != "guest-1" || board.Entries[0].SyllabusXP != 80 || board.Entries[0].Level != 2 {
			t.Fatalf("unexpected leader %+v", board.Entries[0])
		}
		if board.CurrentUser.Rank != nil {
			t.Fatalf("expected no rank without syllabus xp, got %d", *board.CurrentUser.Rank)
		}
	})

	t.Run("unknown syllabus", func(t *testing.T) {
		board, _ := f.leaderboards.XP(ctx, "emp_1", "syl-x", 0)
		if board.SyllabusName != "Unknown syllabus" || len(board.Entries) != 0 {
			t.Fatalf("unexpected board %+v", board)
		}
	})
}
