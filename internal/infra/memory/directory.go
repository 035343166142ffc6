package memory

import (
	"context"
	"sync"

	"quiz-reward-service/internal/domain"
)

// Catalog serves courses, syllabi and user groups from memory. It implements
// app.CourseCatalog, app.SyllabusRepository and app.GroupDirectory.
type Catalog struct {
	mu       sync.RWMutex
	courses  map[string]domain.Course
	syllabi  map[string]domain.Syllabus
	groups   []domain.UserGroup
	profiles map[string]domain.Profile
}

func NewCatalog() *Catalog {
	return &Catalog{
		courses:  make(map[string]domain.Course),
		syllabi:  make(map[string]domain.Syllabus),
		profiles: make(map[string]domain.Profile),
	}
}

func (c *Catalog) PutCourse(course domain.Course) {
	c.mu.Lock()
	c.courses[course.ID] = course
	c.mu.Unlock()
}

func (c *Catalog) PutSyllabus(s domain.Syllabus) {
	c.mu.Lock()
	c.syllabi[s.ID] = s
	c.mu.Unlock()
}

func (c *Catalog) PutGroup(g domain.UserGroup) {
	c.mu.Lock()
	c.groups = append(c.groups, g)
	c.mu.Unlock()
}

func (c *Catalog) PutProfile(p domain.Profile) {
	if p.Kind == "" {
		p.Kind = domain.KindOf(p.UserID)
	}
	c.mu.Lock()
	c.profiles[p.UserID] = p
	c.mu.Unlock()
}

func (c *Catalog) Course(_ context.Context, courseID string) (domain.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	course, ok := c.courses[courseID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return course, nil
}

// CourseForSurvey returns the course whose quiz is surveyID. With several such courses
// the one with the smallest id wins.
func (c *Catalog) CourseForSurvey(_ context.Context, surveyID string) (domain.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var found *domain.Course
	for _, course := range c.courses {
		if course.Quiz == nil || course.Quiz.SurveyID != surveyID {
			continue
		}
		if found == nil || course.ID < found.ID {
			cc := course
			found = &cc
		}
	}
	if found == nil {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return *found, nil
}

func (c *Catalog) Syllabus(_ context.Context, syllabusID string) (domain.Syllabus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.syllabi[syllabusID]
	if !ok {
		return domain.Syllabus{}, domain.ErrSyllabusNotFound
	}
	return s, nil
}

func (c *Catalog) GroupsForUser(_ context.Context, userID string) ([]domain.UserGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.UserGroup
	for _, g := range c.groups {
		for _, id := range g.MemberIDs {
			if id == userID {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

// Profile implements app.IdentityResolver.
func (c *Catalog) Profile(_ context.Context, userID string) (domain.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}
