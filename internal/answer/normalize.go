package answer

import (
	"encoding/json"
	"strings"
)

// Canonicalize turns a stored correct answer into a directly comparable Value.
//
// The resolution order is fixed and the first match wins:
//  1. structured input (list or map) is returned unchanged;
//  2. text starting with '[' or '{' is parsed as JSON, retrying with single quotes
//     swapped for double quotes; parsed lists have their letters mapped to options;
//  3. a single letter A-Z maps to the option at that index;
//  4. comma-separated parts are trimmed and letters mapped to options;
//  5. a run of letters such as "ABD" is split and each letter mapped;
//  6. anything else is returned as the trimmed string.
//
// Steps 3-5 only apply when options are present. Nothing here fails: malformed input
// degrades to the opaque literal string.
func Canonicalize(raw any, options []string) Value {
	switch r := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return r
	case []string:
		return ListValue(append([]string(nil), r...))
	case []any:
		return ListValue(stringList(r))
	case map[string]any:
		return Value{Kind: Object, Object: r}
	}

	s := strings.TrimSpace(stringify(raw))

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		if v, ok := parseStructured(s, options); ok {
			return v
		}
		if v, ok := parseStructured(strings.ReplaceAll(s, "'", `"`), options); ok {
			return v
		}
	}

	if len(options) > 0 {
		if len(s) == 1 && isLetter(s[0]) {
			return TextValue(letterToOption(s, options))
		}
		if strings.Contains(s, ",") {
			parts := strings.Split(s, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return ListValue(lettersToOptions(parts, options))
		}
		if s != "" && allLetters(s) {
			letters := make([]string, len(s))
			for i := 0; i < len(s); i++ {
				letters[i] = s[i : i+1]
			}
			return ListValue(lettersToOptions(letters, options))
		}
	}

	return TextValue(s)
}

func parseStructured(s string, options []string) (Value, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return Value{}, false
	}
	switch p := parsed.(type) {
	case []any:
		items := stringList(p)
		if len(options) > 0 {
			items = lettersToOptions(items, options)
		}
		return ListValue(items), true
	case map[string]any:
		return Value{Kind: Object, Object: p}, true
	}
	return TextValue(stringify(parsed)), true
}

// letterToOption maps "A" to options[0], "B" to options[1] and so on.
// Letters outside the option range are returned as given.
func letterToOption(letter string, options []string) string {
	if len(options) == 0 || len(letter) != 1 {
		return letter
	}
	idx := int(upper(letter[0]) - 'A')
	if idx >= 0 && idx < len(options) {
		return options[idx]
	}
	return letter
}

func lettersToOptions(parts []string, options []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) == 1 && isLetter(part[0]) {
			out = append(out, letterToOption(part, options))
			continue
		}
		out = append(out, part)
	}
	return out
}

func isLetter(c byte) bool {
	c = upper(c)
	return c >= 'A' && c <= 'Z'
}

func allLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return false
		}
	}
	return true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
