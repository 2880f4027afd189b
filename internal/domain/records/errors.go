package records

import "errors"

var (
	// ErrNotFound covers both a missing record and a record owned by
	// someone else, so existence never leaks across users.
	ErrNotFound = errors.New("record not found")

	// ErrAnalysisInFlight is returned when analyze is triggered while the
	// record is already in the analyzing state.
	ErrAnalysisInFlight = errors.New("analysis already in progress")

	ErrUnsupportedFileType = errors.New("file type not allowed")
)
