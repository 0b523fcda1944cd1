package rewriter

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"resumetailor/internal/port"
)

// MaxTargetChars caps the target description embedded in the prompt.
const MaxTargetChars = 4000

// SystemPrompt sets the rewrite rules for the model.
const SystemPrompt = `You are a professional resume writer and ATS optimization expert.
Your job is to rewrite resume sections so they match a job description.

STRICT RULES:
1. POSITIONAL OUTPUT: Return exactly one suggestion per input block, in the same order. Each suggestion has the "original" text and a "suggested" rewrite.
2. LENGTH: Each suggested rewrite must stay within 5% of the character count of its original. Text over the limit is cut.
3. ANTI-HALLUCINATION: Do NOT add any new employers, job titles, companies, dates or degrees.
4. NATURAL TONE: The suggested text must sound human-written.
5. OUTPUT FORMAT: Return ONLY valid JSON. No explanation, no markdown.
   The JSON must have this structure:
   {
     "missing_skills": ["Skill 1", "Skill 2"],
     "summary_suggestions": [{"original": "...", "suggested": "..."}],
     "experience_suggestions": [{"original": "...", "suggested": "..."}]
   }`

// BuildRewritePrompt returns the user prompt for one rewrite request.
func BuildRewritePrompt(input port.GenerateInput) string {
	var b strings.Builder
	b.WriteString("RESUME SECTIONS:\n\n--- SUMMARY ---\n")
	b.WriteString(jsonList(input.Summary))
	b.WriteString("\n\n--- EXPERIENCE ---\n")
	b.WriteString(jsonList(input.Experience))
	b.WriteString("\n\n--- JOB DESCRIPTION ---\n")
	b.WriteString(TruncateTarget(input.Target))
	b.WriteString(`

TASK:
1. Identify missing skills from the job description.
2. Rewrite every summary and experience block to weave in missing keywords, one suggestion per block, same order.
Return ONLY JSON.
`)
	return b.String()
}

// TruncateTarget cuts s to MaxTargetChars characters.
func TruncateTarget(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxTargetChars {
		return s
	}
	return string([]rune(s)[:MaxTargetChars])
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}
