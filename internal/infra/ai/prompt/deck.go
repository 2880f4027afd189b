package prompt

import (
	"fmt"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
)

// DeckSystemPrompt provides strict directions and schema for JSON output
// when critiquing a pitch deck.
func DeckSystemPrompt() string {
	return `You are an expert startup pitch deck consultant with experience reviewing thousands of pitch decks for Y Combinator, Sequoia, and other top VCs. You must produce one valid JSON object only (no markdown, no commentary, no code fences).

Requirements:
- Output must be a single JSON object following the schema below.
- Scores are numbers from 1 to 10.
- improvements entries are short imperative sentences.
- Be specific, actionable, and helpful; keep items concise.

Schema (example with empty values):
{
  "overall_score": 0,
  "executive_summary": "<string>",
  "sections_analysis": [
    {
      "section": "<Problem|Solution|Market|Traction|Team|Ask|...>",
      "score": 0,
      "feedback": "<string>",
      "improvements": ["<string>"],
      "example_rewrite": "<string>"
    }
  ],
  "visual_recommendations": {
    "overall_design": "<string>",
    "charts_needed": ["<string>"],
    "images_to_add": ["<string>"],
    "images_to_remove": ["<string>"]
  },
  "content_improvements": [
    {"original_text": "<string>", "suggested_text": "<string>", "reason": "<string>"}
  ],
  "missing_elements": ["<string>"],
  "investor_perspective": "<string>",
  "next_steps": ["<string>"]
}`
}

// UserPrompt builds a compact user message around the uploaded file.
func UserPrompt(req analysis.Request) string {
	subject := "pitch deck"
	if req.Kind == analysis.KindDataRoom {
		subject = fmt.Sprintf("data room document (category: %s)", req.Category)
	}
	msg := fmt.Sprintf("Analyze the %s %q (%s) at this URL and respond with the JSON per schema. URL: %s",
		subject, req.Filename, req.FileType, req.FileURL)
	if req.TextContext != "" {
		msg += "\n\nExtracted text from the file:\n" + req.TextContext
	}
	return msg
}
