package analysis

import (
	"encoding/json"
	"strings"
)

// Normalize shapes a raw provider response into a Payload. It never fails:
// when the response is not the expected JSON the original text is kept
// verbatim as the raw fallback, so the user always sees something.
func Normalize(kind Kind, raw string) Payload {
	text := stripFences(raw)

	switch kind {
	case KindPitchDeck:
		var da DeckAnalysis
		if err := json.Unmarshal([]byte(text), &da); err == nil && deckShapeOK(&da) {
			return Payload{Deck: &da}
		}
	case KindDataRoom:
		var doc DocumentAnalysis
		if err := json.Unmarshal([]byte(text), &doc); err == nil && documentShapeOK(&doc) {
			return Payload{Document: &doc}
		}
	}
	return Payload{RawFeedback: raw}
}

// deckShapeOK rejects JSON that parsed but carries none of the anchor
// fields, e.g. an unrelated object or an empty {}.
func deckShapeOK(d *DeckAnalysis) bool {
	return d.OverallScore > 0 || d.ExecutiveSummary != "" || len(d.SectionsAnalysis) > 0
}

func documentShapeOK(d *DocumentAnalysis) bool {
	return d.CompletenessScore > 0 || d.Summary != "" || d.DocumentType != ""
}

// stripFences removes a leading ```json / ``` fence and a trailing ```
// wrapper. Providers wrap JSON in markdown fences even when asked not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}
