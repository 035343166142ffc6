// Package answer canonicalizes stored correct answers and compares user input against them.
package answer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind tells which field of a Value is populated.
type Kind int

const (
	Empty Kind = iota
	Text
	List
	Object
)

// Value is a canonical answer: a trimmed string, a list of strings or a JSON object.
type Value struct {
	Kind   Kind
	Text   string
	List   []string
	Object map[string]any
}

// TextValue wraps a string.
func TextValue(s string) Value {
	return Value{Kind: Text, Text: s}
}

// ListValue wraps a list of strings.
func ListValue(items []string) Value {
	return Value{Kind: List, List: items}
}

// Interface returns the value as plain data for JSON encoding.
func (v Value) Interface() any {
	switch v.Kind {
	case Text:
		return v.Text
	case List:
		return v.List
	case Object:
		return v.Object
	}
	return nil
}

// String renders the value for string comparison; lists are comma-joined.
func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Text
	case List:
		return strings.Join(v.List, ",")
	case Object:
		b, err := json.Marshal(v.Object)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

// MarshalJSON encodes the value as its plain form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func stringify(x any) string {
	switch t := x.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	case Value:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(x)
}

func stringList(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = stringify(item)
	}
	return out
}

// RawText renders a raw submitted answer for storage.
func RawText(x any) string { return stringify(x) }
