package domain

// ScoreEntry is one row of a per-survey leaderboard.
type ScoreEntry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"userId"`
	Name            string `json:"name"`
	Company         string `json:"company"`
	Score           int    `json:"score"`
	MaxScore        int    `json:"maxScore"`
	CorrectCount    int    `json:"correctCount"`
	DurationSeconds int    `json:"durationSeconds"`
}

// SurveyLeaderboard is the top-N view of a survey's best attempts.
type SurveyLeaderboard struct {
	SurveyID string       `json:"surveyId"`
	Entries  []ScoreEntry `json:"entries"`
	UserRank *ScoreEntry  `json:"userRank,omitempty"`
}

// XPEntry is one row of an XP leaderboard.
type XPEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	TotalXP    int    `json:"totalXP"`
	SyllabusXP int    `json:"syllabusXP,omitempty"`
	Level      int    `json:"level"`
}

// XPStanding is the requesting user's position in the full sorted list.
// Rank is nil when the user is not part of the ranked set.
type XPStanding struct {
	Rank       *int `json:"rank"`
	TotalXP    int  `json:"totalXP"`
	SyllabusXP int  `json:"syllabusXP,omitempty"`
	Level      int  `json:"level"`
}

// XPBoardKind tells clients how to render an XP leaderboard response.
type XPBoardKind string

const (
	SelfOnlyBoard  XPBoardKind = "self_only"
	GroupsBoard    XPBoardKind = "groups"
	EmployeesBoard XPBoardKind = "employees"
	SyllabusBoard  XPBoardKind = "syllabus"
)

// GroupBoard is the XP leaderboard of one user group.
type GroupBoard struct {
	GroupID   string    `json:"groupId"`
	GroupName string    `json:"groupName"`
	Entries   []XPEntry `json:"leaderboard"`
}

// XPLeaderboard is the response of every XP leaderboard variant.
type XPLeaderboard struct {
	Kind         XPBoardKind  `json:"type"`
	SyllabusID   string       `json:"syllabusId,omitempty"`
	SyllabusName string       `json:"syllabusName,omitempty"`
	Entries      []XPEntry    `json:"leaderboard,omitempty"`
	Groups       []GroupBoard `json:"groups,omitempty"`
	CurrentUser  XPStanding   `json:"currentUser"`
}
