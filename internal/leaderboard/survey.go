// Package leaderboard ranks quiz attempts and XP totals.
package leaderboard

import (
	"sort"

	"quiz-reward-service/internal/domain"
)

// Better reports whether a beats b: higher score first, then the faster attempt.
func Better(a, b domain.ScoreRecord) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	return a.DurationSeconds < b.DurationSeconds
}

// BestAttempts keeps each user's best record and returns them in ranking order.
// Records that tie on score and duration are ordered by user id.
func BestAttempts(records []domain.ScoreRecord) []domain.ScoreRecord {
	best := make(map[string]domain.ScoreRecord, len(records))
	for _, r := range records {
		if cur, ok := best[r.UserID]; !ok || Better(r, cur) {
			best[r.UserID] = r
		}
	}

	out := make([]domain.ScoreRecord, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if Better(out[i], out[j]) {
			return true
		}
		if Better(out[j], out[i]) {
			return false
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// ProfileFunc resolves the display identity of a user.
type ProfileFunc func(userID string) domain.Profile

// SurveyBoard ranks the best attempt per user and returns the top limit entries.
// The requester's entry, when present, is taken from the full ranking.
func SurveyBoard(surveyID string, records []domain.ScoreRecord, limit int, requester string, profile ProfileFunc) domain.SurveyLeaderboard {
	ranked := BestAttempts(records)
	board := domain.SurveyLeaderboard{SurveyID: surveyID, Entries: make([]domain.ScoreEntry, 0, min(len(ranked), max(limit, 0)))}

	for i, r := range ranked {
		inPage := limit <= 0 || i < limit
		isRequester := requester != "" && r.UserID == requester
		if !inPage && !isRequester {
			continue
		}
		entry := scoreEntry(i+1, r, profile)
		if inPage {
			board.Entries = append(board.Entries, entry)
		}
		if isRequester {
			e := entry
			board.UserRank = &e
		}
	}
	return board
}

func scoreEntry(rank int, r domain.ScoreRecord, profile ProfileFunc) domain.ScoreEntry {
	p := domain.Profile{UserID: r.UserID}
	if profile != nil {
		p = profile(r.UserID)
	}
	if p.Name == "" {
		p.Name = domain.UnknownUserName
	}
	return domain.ScoreEntry{
		Rank:            rank,
		UserID:          r.UserID,
		Name:            p.Name,
		Company:         p.Company,
		Score:           r.TotalScore,
		MaxScore:        r.MaxScore,
		CorrectCount:    r.CorrectCount,
		DurationSeconds: r.DurationSeconds,
	}
}
