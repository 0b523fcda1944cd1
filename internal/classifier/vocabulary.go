package classifier

import "strings"

// headingKind is the category a heading's text triggers.
type headingKind int

const (
	kindNone headingKind = iota
	kindSummary
	kindExperience
	kindStop
)

// vocabulary is a closed trigger set for one heading category. Words match
// by membership in the line's word set; phrases match the whole
// normalized line, with or without spaces.
type vocabulary struct {
	words     map[string]struct{}
	phrases   map[string]struct{}
	condensed map[string]struct{}
}

func newVocabulary(words, phrases []string) vocabulary {
	v := vocabulary{
		words:     make(map[string]struct{}, len(words)),
		phrases:   make(map[string]struct{}, len(phrases)),
		condensed: make(map[string]struct{}, len(words)+len(phrases)),
	}
	for _, w := range words {
		v.words[w] = struct{}{}
		v.condensed[w] = struct{}{}
	}
	for _, p := range phrases {
		v.phrases[p] = struct{}{}
		v.condensed[strings.ReplaceAll(p, " ", "")] = struct{}{}
	}
	return v
}

func (v vocabulary) matches(n normalized) bool {
	for _, w := range n.words {
		if _, ok := v.words[w]; ok {
			return true
		}
	}
	if _, ok := v.phrases[n.text]; ok {
		return true
	}
	_, ok := v.condensed[n.condensed]
	return ok
}

var (
	summaryVocabulary = newVocabulary(
		[]string{"summary", "profile", "objective", "overview", "background", "statement"},
		[]string{
			"about me", "professional summary", "executive summary", "career summary",
			"career objective", "professional profile", "personal profile", "personal statement",
		},
	)
	experienceVocabulary = newVocabulary(
		[]string{"experience", "employment", "career"},
		[]string{
			"work experience", "professional experience", "relevant experience", "work history",
			"employment history", "career history", "professional history",
		},
	)
	stopVocabulary = newVocabulary(
		[]string{
			"education", "skills", "certifications", "certificates", "certs", "projects",
			"awards", "references", "languages", "links", "interests", "volunteering",
			"volunteer", "publications", "affiliations", "organizations", "hobbies", "competencies",
		},
		[]string{"technical skills", "core competencies", "additional information"},
	)
)

// match returns the category triggered by n. Summary wins over
// experience, which wins over stop.
func match(n normalized) headingKind {
	switch {
	case summaryVocabulary.matches(n):
		return kindSummary
	case experienceVocabulary.matches(n):
		return kindExperience
	case stopVocabulary.matches(n):
		return kindStop
	}
	return kindNone
}
