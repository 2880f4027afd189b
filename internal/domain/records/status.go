package records

// Status enum, shared by pitch decks and data-room documents
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusError     Status = "error"
)

// AnalyzableFrom lists the states a record may leave to enter "analyzing".
// A record already in "analyzing" is never in this list, which is what
// makes the double-trigger race safe.
func AnalyzableFrom() []Status {
	return []Status{StatusUploaded, StatusAnalyzed, StatusError}
}
