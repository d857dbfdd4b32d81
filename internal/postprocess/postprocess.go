// Package postprocess turns the free-form answers of the question
// answering stage into the fixed analysis schema. Unparsable fields
// become sentinels instead of errors, so a single garbled answer never
// aborts a batch.
package postprocess

import (
	"strings"
	"unicode"

	"call-insights-go/internal/types"
)

// Analysis is the structured result for one call. Yes/no questions are
// kept as three-valued strings (Yes / No / Unknown); ratings use 0 as
// the unknown sentinel.
type Analysis struct {
	Topic            string
	Summary          string
	ConcernAddressed string
	ClientTone       string
	AgentTone        string
	UpsaleAttempted  string
	UpsaleSuccess    string

	Empathy                int
	Professionalism        int
	Kindness               int
	EffectiveCommunication int
	ActiveListening        int
	Customization          int
}

// Parse reads the two answer blocks for one call: the first covers
// topic, summary, concern and tones; the second upsales and the six
// 1-5 agent ratings.
func Parse(primary, secondary string) Analysis {
	p := splitAnswers(primary, 5)
	s := splitAnswers(secondary, 8)

	return Analysis{
		Topic:            cleanTopic(p[0]),
		Summary:          strings.TrimSpace(p[1]),
		ConcernAddressed: extractYesNo(p[2]),
		ClientTone:       extractTone(p[3]),
		AgentTone:        extractTone(p[4]),

		UpsaleAttempted: extractYesNo(s[0]),
		UpsaleSuccess:   extractYesNo(s[1]),

		Empathy:                extractRating(s[2]),
		Professionalism:        extractRating(s[3]),
		Kindness:               extractRating(s[4]),
		EffectiveCommunication: extractRating(s[5]),
		ActiveListening:        extractRating(s[6]),
		Customization:          extractRating(s[7]),
	}
}

// UpdateFields maps the analysis onto call columns for the final
// database write. Unknown stays nil so the column keeps its null.
func (a Analysis) UpdateFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if a.Topic != "" {
		fields["topic"] = a.Topic
	}
	if a.Summary != "" {
		fields["summary"] = a.Summary
	}
	if b := yesNoBool(a.ConcernAddressed); b != nil {
		fields["concern_addressed"] = *b
	}
	if a.ClientTone != types.UnknownSentinel {
		fields["client_tone"] = a.ClientTone
	}
	if a.AgentTone != types.UnknownSentinel {
		fields["agent_tone"] = a.AgentTone
	}
	if b := yesNoBool(a.UpsaleAttempted); b != nil {
		fields["upsale_attempted"] = *b
	}
	if b := yesNoBool(a.UpsaleSuccess); b != nil {
		fields["upsale_success"] = *b
	}
	for col, v := range map[string]int{
		"empathy":                 a.Empathy,
		"professionalism":         a.Professionalism,
		"kindness":                a.Kindness,
		"effective_communication": a.EffectiveCommunication,
		"active_listening":        a.ActiveListening,
		"customization":           a.Customization,
	} {
		if v != 0 {
			fields[col] = v
		}
	}
	return fields
}

// splitAnswers pulls the numbered answer lines out of a free-form
// block. Missing or extra numbering is tolerated; absent answers come
// back empty.
func splitAnswers(block string, want int) []string {
	out := make([]string, want)
	idx := -1
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if n, rest, ok := numberedLine(trimmed); ok && n >= 1 && n <= want {
			idx = n - 1
			out[idx] = rest
			continue
		}
		// Continuation of the previous answer.
		if idx >= 0 {
			out[idx] += " " + trimmed
		}
	}
	return out
}

func numberedLine(line string) (int, string, bool) {
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}
	if i == 0 || i >= len(line) || (line[i] != '.' && line[i] != ')') {
		return 0, "", false
	}
	n := 0
	for _, r := range line[:i] {
		n = n*10 + int(r-'0')
	}
	return n, strings.TrimSpace(line[i+1:]), true
}

// cleanTopic drops a leftover enumeration prefix and the characters
// the model likes to decorate classifications with.
func cleanTopic(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[1] == '.' {
		s = s[2:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', ':', '"':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// extractYesNo reduces a verbose answer to Yes / No / Unknown.
func extractYesNo(s string) string {
	s = strings.ToLower(s)
	if s == "" || strings.Contains(s, "not explicitly") {
		return types.UnknownSentinel
	}
	if strings.Contains(s, "yes") {
		return "Yes"
	}
	if strings.Contains(s, "no") {
		return "No"
	}
	return types.UnknownSentinel
}

// extractTone reduces a verbose answer to one of the known tones.
// An answer that names no polarity counts as Neutral; an absent
// answer is Unknown.
func extractTone(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.UnknownSentinel
	}
	if strings.Contains(s, "positive") {
		return "Positive"
	}
	if strings.Contains(s, "negative") {
		return "Negative"
	}
	return "Neutral"
}

// extractRating finds the first 1-5 digit in the answer; 0 means the
// rating could not be read.
func extractRating(s string) int {
	for _, r := range s {
		if r >= '1' && r <= '5' {
			return int(r - '0')
		}
		if unicode.IsDigit(r) {
			return 0
		}
	}
	return 0
}

func yesNoBool(s string) *bool {
	switch s {
	case "Yes":
		v := true
		return &v
	case "No":
		v := false
		return &v
	}
	return nil
}
