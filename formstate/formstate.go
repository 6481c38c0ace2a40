// Package formstate turns the UI's multi-step form storage into the single
// snapshot the scoring engine reads.
//
// The editor keeps some fields at the top level and others under step
// objects ("step1.title", "step3.content"). A field is read from the top level
// first, then from each step in ascending order; the first non-blank value
// wins.
package formstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/seo-optimizer/contentscore/scoring"
)

// Resolve flattens a raw form state. Unknown keys are ignored and missing
// fields stay empty.
func Resolve(state map[string]any) scoring.FormFieldValues {
	var v scoring.FormFieldValues
	scopes := scopesOf(state)
	for _, f := range scoring.AllFields {
		raw, ok := lookup(scopes, state, string(f))
		if !ok {
			continue
		}
		if f == scoring.FieldSecondaryKeywords {
			v.SecondaryKeywords = keywordList(raw)
			continue
		}
		v = v.With(f, stringOf(raw))
	}
	return v
}

// ResolveJSON decodes a JSON form state and resolves it
func ResolveJSON(data []byte) (scoring.FormFieldValues, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return scoring.FormFieldValues{}, nil
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return scoring.FormFieldValues{}, fmt.Errorf("invalid form state: %w", err)
	}
	return Resolve(state), nil
}

// scopesOf returns the step objects of a state ordered by step number
func scopesOf(state map[string]any) []map[string]any {
	type step struct {
		n     int
		scope map[string]any
	}
	var steps []step
	for key, val := range state {
		if !strings.HasPrefix(key, "step") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, "step"))
		if err != nil {
			continue
		}
		if scope, ok := val.(map[string]any); ok {
			steps = append(steps, step{n, scope})
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].n < steps[j].n })

	out := make([]map[string]any, len(steps))
	for i, s := range steps {
		out[i] = s.scope
	}
	return out
}

// lookup finds the first non-blank value of name. Dotted keys such as
// "step3.content" stored flat at the top level are honored too.
func lookup(scopes []map[string]any, state map[string]any, name string) (any, bool) {
	if val, ok := state[name]; ok && !blank(val) {
		return val, true
	}
	for _, scope := range scopes {
		if val, ok := scope[name]; ok && !blank(val) {
			return val, true
		}
	}
	var dotted []string
	for key := range state {
		if strings.HasSuffix(key, "."+name) && strings.HasPrefix(key, "step") {
			dotted = append(dotted, key)
		}
	}
	sort.Strings(dotted)
	for _, key := range dotted {
		if val := state[key]; !blank(val) {
			return val, true
		}
	}
	return nil, false
}

func blank(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		for _, item := range v {
			if !blank(item) {
				return false
			}
		}
		return true
	case []string:
		return len(scoring.SplitKeywords(strings.Join(v, ","))) == 0
	}
	return false
}

func stringOf(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		return strings.Join(keywordList(v), ", ")
	}
	return fmt.Sprint(val)
}

// keywordList accepts a comma separated string or a JSON array
func keywordList(val any) []string {
	switch v := val.(type) {
	case string:
		return scoring.SplitKeywords(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(stringOf(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return scoring.SplitKeywords(strings.Join(v, ","))
	}
	return scoring.SplitKeywords(stringOf(val))
}
