package leaderboard

import (
	"sort"

	"quiz-reward-service/internal/domain"
)

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 100

// Level maps total XP to a level starting at 1.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Metric selects the XP figure a board is sorted by.
type Metric int

const (
	ByTotalXP Metric = iota
	BySyllabusXP
)

// Candidate is a user considered for an XP board.
type Candidate struct {
	UserID     string
	Username   string
	TotalXP    int
	SyllabusXP int
}

func (c Candidate) value(m Metric) int {
	if m == BySyllabusXP {
		return c.SyllabusXP
	}
	return c.TotalXP
}

// RankXP sorts the full candidate list by m, descending, and assigns ranks. Equal XP
// is ordered by user id. Level always follows total XP.
func RankXP(candidates []Candidate, m Metric) []domain.XPEntry {
	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].value(m), sorted[j].value(m)
		if a != b {
			return a > b
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]domain.XPEntry, len(sorted))
	for i, c := range sorted {
		name := c.Username
		if name == "" {
			name = c.UserID
		}
		out[i] = domain.XPEntry{
			Rank:     i + 1,
			UserID:   c.UserID,
			Username: name,
			TotalXP:  c.TotalXP,
			Level:    Level(c.TotalXP),
		}
		if m == BySyllabusXP {
			out[i].SyllabusXP = c.SyllabusXP
		}
	}
	return out
}

// Top returns the first limit entries. A non-positive limit returns all of them.
func Top(entries []domain.XPEntry, limit int) []domain.XPEntry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}

// StandingOf locates userID in the full ranked list. Users outside it get a nil rank
// and level 1.
func StandingOf(ranked []domain.XPEntry, userID string) domain.XPStanding {
	for _, e := range ranked {
		if e.UserID == userID {
			rank := e.Rank
			return domain.XPStanding{Rank: &rank, TotalXP: e.TotalXP, SyllabusXP: e.SyllabusXP, Level: e.Level}
		}
	}
	return domain.XPStanding{Level: Level(0)}
}
