package domain

import "time"

// CourseBadge is the best-achievement marker for one (user, course) pair.
type CourseBadge struct {
	ID            string    `json:"badgeId"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	CourseID      string    `json:"courseId"`
	CourseTitle   string    `json:"courseTitle"`
	SurveyID      string    `json:"surveyId"`
	Score         int       `json:"score"`
	MaxScore      int       `json:"maxScore"`
	Percentage    float64   `json:"percentage"`
	AttemptCount  int       `json:"attemptCount"`
	FirstPassedAt time.Time `json:"firstPassedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// BadgeIssue is the outcome of IssueOrUpdateBadge.
type BadgeIssue struct {
	Badge        CourseBadge `json:"badge"`
	IsNew        bool        `json:"isNew"`
	ScoreUpdated bool        `json:"scoreUpdated"`
}

// CourseScore is the display-only per-course breakdown on a certificate.
type CourseScore struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Percentage int    `json:"percentage"`
	XPEarned   int    `json:"xpEarned"`
}

// Certificate is a ranked credential for one user within one issuance batch.
type Certificate struct {
	ID                string                 `json:"certificateId"`
	UserID            string                 `json:"userId"`
	UserName          string                 `json:"userName"`
	UserCompany       string                 `json:"userCompany"`
	SyllabusID        string                 `json:"syllabusId"`
	SyllabusName      string                 `json:"syllabusName"`
	Score             int                    `json:"score"`
	MaxScore          int                    `json:"maxScore"`
	Percentage        int                    `json:"percentage"`
	XPEarned          int                    `json:"xpEarned"`
	Rank              int                    `json:"rank"`
	TotalParticipants int                    `json:"totalParticipants"`
	CourseScores      map[string]CourseScore `json:"courseScores"`
	IssuedAt          time.Time              `json:"issuedAt"`
	IssuedBy          string                 `json:"issuedBy"`
}

// CertificateBatch is the result of regenerating a syllabus's certificates.
type CertificateBatch struct {
	SyllabusID        string        `json:"syllabusId"`
	Certificates      []Certificate `json:"certificates"`
	TotalParticipants int           `json:"totalParticipants"`
	DeletedPrevious   int           `json:"deletedPrevious"`
	NotPassed         int           `json:"notPassed"`
}
