package answer

import (
	"strings"

	"quiz-reward-service/internal/domain"
)

// Equivalent reports whether a submitted answer matches a canonical answer under the
// rule of the question type. Unknown types never match.
func Equivalent(submitted any, canonical Value, qtype domain.QuestionType) bool {
	if submitted == nil || canonical.Kind == Empty {
		return false
	}

	switch qtype {
	case domain.SingleChoice:
		return strings.EqualFold(strings.TrimSpace(stringify(submitted)), strings.TrimSpace(canonical.String()))

	case domain.MultipleChoice:
		return sameSet(choiceSet(submitted), choiceSet(canonical))

	case domain.FillBlank:
		given := strings.ToLower(strings.TrimSpace(stringify(submitted)))
		variants := canonical.List
		if canonical.Kind != List {
			variants = strings.Split(canonical.String(), "|")
		}
		for _, v := range variants {
			if given == strings.ToLower(strings.TrimSpace(v)) {
				return true
			}
		}
		return false
	}
	return false
}

// choiceSet accepts a list or a comma-joined string. Whitespace is dropped and case folded.
func choiceSet(x any) map[string]struct{} {
	var items []string
	switch t := x.(type) {
	case Value:
		if t.Kind == List {
			items = t.List
		} else {
			items = strings.Split(t.String(), ",")
		}
	case []string:
		items = t
	case []any:
		items = stringList(t)
	default:
		items = strings.Split(stringify(x), ",")
	}

	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToUpper(strings.Join(strings.Fields(item), ""))] = struct{}{}
	}
	return set
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
