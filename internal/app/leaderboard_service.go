package app

import (
	"context"
	"fmt"
	"strings"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/leaderboard"
)

// UnknownSyllabusName is shown when a syllabus board is requested for a missing syllabus.
const UnknownSyllabusName = "Unknown syllabus"

// LeaderboardService serves survey and XP leaderboards.
type LeaderboardService struct {
	scores   ScoreLedger
	progress ProgressStore
	groups   GroupDirectory
	syllabi  SyllabusRepository
	ids      IdentityResolver
	limit    int
}

// NewLeaderboardService wires the boards. limit is the default page size.
func NewLeaderboardService(scores ScoreLedger, progress ProgressStore, groups GroupDirectory, syllabi SyllabusRepository, ids IdentityResolver, limit int) *LeaderboardService {
	if limit <= 0 {
		limit = 50
	}
	return &LeaderboardService{scores: scores, progress: progress, groups: groups, syllabi: syllabi, ids: ids, limit: limit}
}

// Survey ranks each user's best attempt on a survey.
func (s *LeaderboardService) Survey(ctx context.Context, surveyID string, limit int, requester string) (domain.SurveyLeaderboard, error) {
	records, err := s.scores.ForSurvey(ctx, surveyID)
	if err != nil {
		return domain.SurveyLeaderboard{}, fmt.Errorf("load scores: %w", err)
	}
	return leaderboard.SurveyBoard(surveyID, records, s.pageSize(limit), requester, func(userID string) domain.Profile {
		return resolveProfile(ctx, s.ids, userID)
	}), nil
}

// XP picks the XP board for userID: the syllabus board when syllabusID is set, the
// employee board for employees, and the group boards for guests.
func (s *LeaderboardService) XP(ctx context.Context, userID, syllabusID string, limit int) (domain.XPLeaderboard, error) {
	limit = s.pageSize(limit)
	records, err := s.progress.All(ctx)
	if err != nil {
		return domain.XPLeaderboard{}, fmt.Errorf("load progress: %w", err)
	}

	switch {
	case syllabusID != "":
		return s.syllabusBoard(ctx, records, userID, syllabusID, limit), nil
	case domain.KindOf(userID) == domain.EmployeeIdentity:
		return s.employeeBoard(ctx, records, userID, limit), nil
	default:
		return s.guestBoard(ctx, records, userID, limit)
	}
}

func (s *LeaderboardService) employeeBoard(ctx context.Context, records []domain.ProgressRecord, userID string, limit int) domain.XPLeaderboard {
	var candidates []leaderboard.Candidate
	for _, r := range records {
		if strings.HasPrefix(r.UserID, domain.EmployeePrefix) {
			candidates = append(candidates, leaderboard.Candidate{UserID: r.UserID, TotalXP: r.Progress.TotalXP})
		}
	}
	ranked := leaderboard.RankXP(candidates, leaderboard.ByTotalXP)
	return domain.XPLeaderboard{
		Kind:        domain.EmployeesBoard,
		Entries:     s.named(ctx, leaderboard.Top(ranked, limit)),
		CurrentUser: leaderboard.StandingOf(ranked, userID),
	}
}

func (s *LeaderboardService) guestBoard(ctx context.Context, records []domain.ProgressRecord, userID string, limit int) (domain.XPLeaderboard, error) {
	all := make([]leaderboard.Candidate, 0, len(records))
	xpByUser := make(map[string]int, len(records))
	for _, r := range records {
		all = append(all, leaderboard.Candidate{UserID: r.UserID, TotalXP: r.Progress.TotalXP})
		xpByUser[r.UserID] = r.Progress.TotalXP
	}
	standing := leaderboard.StandingOf(leaderboard.RankXP(all, leaderboard.ByTotalXP), userID)

	var groups []domain.UserGroup
	if s.groups != nil {
		var err error
		groups, err = s.groups.GroupsForUser(ctx, userID)
		if err != nil {
			return domain.XPLeaderboard{}, fmt.Errorf("load groups: %w", err)
		}
	}
	if len(groups) == 0 {
		return domain.XPLeaderboard{Kind: domain.SelfOnlyBoard, CurrentUser: standing}, nil
	}

	boards := make([]domain.GroupBoard, 0, len(groups))
	for _, g := range groups {
		members := make([]leaderboard.Candidate, 0, len(g.MemberIDs))
		for _, id := range g.MemberIDs {
			members = append(members, leaderboard.Candidate{UserID: id, TotalXP: xpByUser[id]})
		}
		ranked := leaderboard.RankXP(members, leaderboard.ByTotalXP)
		boards = append(boards, domain.GroupBoard{
			GroupID:   g.ID,
			GroupName: g.Name,
			Entries:   s.named(ctx, leaderboard.Top(ranked, limit)),
		})
	}
	return domain.XPLeaderboard{Kind: domain.GroupsBoard, Groups: boards, CurrentUser: standing}, nil
}

func (s *LeaderboardService) syllabusBoard(ctx context.Context, records []domain.ProgressRecord, userID, syllabusID string, limit int) domain.XPLeaderboard {
	var candidates []leaderboard.Candidate
	for _, r := range records {
		if xp := r.Progress.XPBySyllabus[syllabusID]; xp > 0 {
			candidates = append(candidates, leaderboard.Candidate{UserID: r.UserID, TotalXP: r.Progress.TotalXP, SyllabusXP: xp})
		}
	}
	ranked := leaderboard.RankXP(candidates, leaderboard.BySyllabusXP)

	name := UnknownSyllabusName
	if s.syllabi != nil {
		if syl, err := s.syllabi.Syllabus(ctx, syllabusID); err == nil {
			name = syl.Name
		}
	}
	return domain.XPLeaderboard{
		Kind:         domain.SyllabusBoard,
		SyllabusID:   syllabusID,
		SyllabusName: name,
		Entries:      s.named(ctx, leaderboard.Top(ranked, limit)),
		CurrentUser:  leaderboard.StandingOf(ranked, userID),
	}
}

// named fills display names for one page; unresolved users keep their id.
func (s *LeaderboardService) named(ctx context.Context, page []domain.XPEntry) []domain.XPEntry {
	out := make([]domain.XPEntry, len(page))
	copy(out, page)
	if s.ids == nil {
		return out
	}
	for i := range out {
		if p, err := s.ids.Profile(ctx, out[i].UserID); err == nil && p.Name != "" {
			out[i].Username = p.Name
		}
	}
	return out
}

func (s *LeaderboardService) pageSize(limit int) int {
	if limit <= 0 {
		return s.limit
	}
	return limit
}
