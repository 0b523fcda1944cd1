package rewriter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"resumetailor/internal/domain"
)

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
	objectRe     = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Suggestion is one positional rewrite proposed by a model.
type Suggestion struct {
	Original  string `json:"original"`
	Suggested string `json:"suggested"`
}

// Suggestions is the JSON document a model is asked to return.
type Suggestions struct {
	MissingSkills []string     `json:"missing_skills"`
	Summary       []Suggestion `json:"summary_suggestions"`
	Experience    []Suggestion `json:"experience_suggestions"`
}

// RewriteSet turns the suggestions into positional replacement lists.
func (s *Suggestions) RewriteSet() domain.RewriteSet {
	rs := domain.RewriteSet{}
	if list := suggested(s.Summary); len(list) > 0 {
		rs[domain.SectionSummary] = list
	}
	if list := suggested(s.Experience); len(list) > 0 {
		rs[domain.SectionExperience] = list
	}
	return rs
}

// suggested keeps positions aligned: an empty suggestion falls back to the
// original text.
func suggested(items []Suggestion) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		text := strings.TrimSpace(it.Suggested)
		if text == "" {
			text = it.Original
		}
		out = append(out, text)
	}
	return out
}

// ParseSuggestions decodes model output. Code fences are stripped, and when
// the remainder is not valid JSON the first {...} block is tried.
func ParseSuggestions(raw string) (*Suggestions, error) {
	text := strings.TrimSpace(raw)
	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")

	var s Suggestions
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return &s, nil
	}
	block := objectRe.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON object in model output (raw: %s)", truncate(raw, 200))
	}
	if err := json.Unmarshal([]byte(block), &s); err != nil {
		return nil, fmt.Errorf("parsing model JSON output: %w (raw: %s)", err, truncate(raw, 200))
	}
	return &s, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
