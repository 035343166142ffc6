package domain

import "strings"

// CourseQuiz links a course to the survey that tests it.
type CourseQuiz struct {
	SurveyID  string `json:"surveyId"`
	PassScore int    `json:"passScore"`
}

// Course is the subset of course metadata the reward engine needs.
type Course struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Quiz  *CourseQuiz `json:"quiz,omitempty"`
}

// CourseRef is one step in a syllabus course sequence.
type CourseRef struct {
	CourseID string `json:"courseId"`
	Order    int    `json:"order"`
	Optional bool   `json:"optional"`
}

// Syllabus is an ordered sequence of courses that certificates are issued for.
type Syllabus struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	CourseSequence []CourseRef `json:"courseSequence"`
}

// UserGroup scopes guest leaderboards.
type UserGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// IdentityKind distinguishes the two user id namespaces.
type IdentityKind string

const (
	GuestIdentity    IdentityKind = "guest"
	EmployeeIdentity IdentityKind = "employee"
)

// EmployeePrefix marks user ids resolved against the employee directory.
const EmployeePrefix = "emp_"

// KindOf derives the identity namespace from a user id.
func KindOf(userID string) IdentityKind {
	if strings.HasPrefix(userID, EmployeePrefix) {
		return EmployeeIdentity
	}
	return GuestIdentity
}

// UnknownUserName is shown when a profile cannot be resolved.
const UnknownUserName = "Unknown user"

// Profile is the display identity of a user.
type Profile struct {
	UserID  string       `json:"userId"`
	Name    string       `json:"name"`
	Company string       `json:"company"`
	Kind    IdentityKind `json:"kind"`
}
