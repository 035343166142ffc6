// Package progress reconciles user progress snapshots coming from several clients.
package progress

import "quiz-reward-service/internal/domain"

// Merge folds a client snapshot into the server copy.
//
// Counters that only grow (total XP, reading time, per-syllabus XP) take the maximum,
// collections take the union and onboarding is OR-ed. Live session state (hearts,
// chapter position, streak, daily goal, last read date) is taken from the client as
// is, which makes Merge last-writer-wins for those fields rather than a join: it is
// idempotent and Merge(p, p) == p, but Merge(a, b) and Merge(b, a) may differ.
//
// Fields the client does not own (completed courses, first-passed quizzes, quiz
// counters, login rewards) keep the server value.
func Merge(server, client domain.UserProgress) domain.UserProgress {
	merged := server

	merged.TotalXP = max(server.TotalXP, client.TotalXP)
	merged.TotalReadingTime = max(server.TotalReadingTime, client.TotalReadingTime)

	merged.Hearts = client.Hearts
	merged.MaxHearts = client.MaxHearts
	merged.CurrentChapter = client.CurrentChapter
	merged.CurrentSection = client.CurrentSection
	merged.DailyGoalMinutes = client.DailyGoalMinutes
	merged.Streak = client.Streak
	merged.LastReadDate = client.LastReadDate

	merged.ChaptersCompleted = union(server.ChaptersCompleted, client.ChaptersCompleted)
	merged.Achievements = union(server.Achievements, client.Achievements)
	merged.WordsLearned = union(server.WordsLearned, client.WordsLearned)

	merged.OnboardingCompleted = server.OnboardingCompleted || client.OnboardingCompleted

	merged.WrongQuestions = mergeWrongQuestions(server.WrongQuestions, client.WrongQuestions)
	merged.XPBySyllabus = mergeXP(server.XPBySyllabus, client.XPBySyllabus)

	return merged
}

// union keeps server order, then appends client-only items.
func union(server, client []string) []string {
	if len(server)+len(client) == 0 {
		return server
	}
	seen := make(map[string]struct{}, len(server)+len(client))
	out := make([]string, 0, len(server)+len(client))
	for _, list := range [][]string{server, client} {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// mergeWrongQuestions replaces server entries by client ones in place and appends the
// entries only the client knows about.
func mergeWrongQuestions(server, client []domain.WrongQuestion) []domain.WrongQuestion {
	if len(server)+len(client) == 0 {
		return server
	}
	fromClient := make(map[string]domain.WrongQuestion, len(client))
	for _, q := range client {
		fromClient[q.ID] = q
	}

	out := make([]domain.WrongQuestion, 0, len(server)+len(client))
	emitted := make(map[string]struct{}, len(server)+len(client))
	for _, q := range server {
		if _, ok := emitted[q.ID]; ok {
			continue
		}
		if c, ok := fromClient[q.ID]; ok {
			q = c
		}
		emitted[q.ID] = struct{}{}
		out = append(out, q)
	}
	for _, q := range client {
		if _, ok := emitted[q.ID]; ok {
			continue
		}
		emitted[q.ID] = struct{}{}
		out = append(out, fromClient[q.ID])
	}
	return out
}

func mergeXP(server, client map[string]int) map[string]int {
	if len(server)+len(client) == 0 {
		return server
	}
	out := make(map[string]int, len(server)+len(client))
	for k, v := range server {
		out[k] = v
	}
	for k, v := range client {
		if cur, ok := out[k]; !ok || v > cur {
			out[k] = v
		}
	}
	return out
}
