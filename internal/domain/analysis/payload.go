package analysis

// Kind selects the prompt template and the response schema.
type Kind string

const (
	KindPitchDeck Kind = "pitch_deck"
	KindDataRoom  Kind = "data_room"
)

// SectionReview is the per-section part of a pitch deck critique.
type SectionReview struct {
	Section        string   `json:"section"`
	Score          float64  `json:"score"`
	Feedback       string   `json:"feedback"`
	Improvements   []string `json:"improvements,omitempty"`
	ExampleRewrite string   `json:"example_rewrite,omitempty"`
}

type VisualRecommendations struct {
	OverallDesign  string   `json:"overall_design,omitempty"`
	ChartsNeeded   []string `json:"charts_needed,omitempty"`
	ImagesToAdd    []string `json:"images_to_add,omitempty"`
	ImagesToRemove []string `json:"images_to_remove,omitempty"`
}

type ContentImprovement struct {
	OriginalText  string `json:"original_text"`
	SuggestedText string `json:"suggested_text"`
	Reason        string `json:"reason,omitempty"`
}

// DeckAnalysis is the structured critique of a pitch deck.
type DeckAnalysis struct {
	OverallScore          float64                `json:"overall_score"`
	ExecutiveSummary      string                 `json:"executive_summary"`
	SectionsAnalysis      []SectionReview        `json:"sections_analysis,omitempty"`
	VisualRecommendations *VisualRecommendations `json:"visual_recommendations,omitempty"`
	ContentImprovements   []ContentImprovement   `json:"content_improvements,omitempty"`
	MissingElements       []string               `json:"missing_elements,omitempty"`
	InvestorPerspective   string                 `json:"investor_perspective,omitempty"`
	NextSteps             []string               `json:"next_steps,omitempty"`
}

type Improvement struct {
	Area           string `json:"area"`
	CurrentState   string `json:"current_state,omitempty"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority,omitempty"` // high | medium | low
}

type ChartSuggestion struct {
	ChartType       string `json:"chart_type"` // pie | bar | line | table
	DataToVisualize string `json:"data_to_visualize"`
	Title           string `json:"title,omitempty"`
}

// DocumentAnalysis is the structured critique of a data-room document.
type DocumentAnalysis struct {
	DocumentType                 string            `json:"document_type"`
	CompletenessScore            float64           `json:"completeness_score"`
	Summary                      string            `json:"summary"`
	KeyFindings                  []string          `json:"key_findings,omitempty"`
	MissingInformation           []string          `json:"missing_information,omitempty"`
	RedFlags                     []string          `json:"red_flags,omitempty"`
	Improvements                 []Improvement     `json:"improvements,omitempty"`
	DataVisualizationSuggestions []ChartSuggestion `json:"data_visualization_suggestions,omitempty"`
	InvestorReadiness            string            `json:"investor_readiness,omitempty"`
	NextSteps                    []string          `json:"next_steps,omitempty"`
}

// Payload is a tagged union: exactly one of Deck, Document or RawFeedback
// is set for a successful analysis; Error carries the diagnostic when the
// provider call itself failed.
type Payload struct {
	Deck        *DeckAnalysis     `json:"deck,omitempty"`
	Document    *DocumentAnalysis `json:"document,omitempty"`
	RawFeedback string            `json:"raw_feedback,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Structured reports whether the payload carries a parsed schema rather
// than the raw-text fallback.
func (p *Payload) Structured() bool {
	return p != nil && (p.Deck != nil || p.Document != nil)
}

// FailurePayload wraps a provider-side diagnostic for records that end in
// the error status.
func FailurePayload(msg string) *Payload {
	return &Payload{Error: msg}
}
