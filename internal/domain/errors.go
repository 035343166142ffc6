package domain

import "errors"

var (
	// ErrSurveyNotFound is returned when a survey id is unknown to the question bank.
	ErrSurveyNotFound = errors.New("survey not found")
	// ErrNoQuestions indicates a survey exists but has nothing to grade against.
	ErrNoQuestions = errors.New("survey has no questions")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCourseNotFound is returned when no course matches the lookup.
	ErrCourseNotFound = errors.New("course not found")
	// ErrSyllabusNotFound is returned when a syllabus id is unknown.
	ErrSyllabusNotFound = errors.New("syllabus not found")
	// ErrNoLinkedQuizzes means a syllabus has no course carrying a quiz.
	ErrNoLinkedQuizzes = errors.New("syllabus has no linked quizzes")
	// ErrNoEligibleParticipants means nobody qualifies for a certificate batch.
	ErrNoEligibleParticipants = errors.New("no eligible participants")
	ErrBadgeNotFound          = errors.New("badge not found")
	ErrCertificateNotFound    = errors.New("certificate not found")
	ErrProgressNotFound       = errors.New("progress not found")
	ErrProfileNotFound        = errors.New("profile not found")
	// ErrLockHeld is returned when a per-entity lock could not be acquired in time.
	ErrLockHeld = errors.New("lock held by another writer")
)
