package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

func marshalPayload(p *analysis.Payload) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanPayload(ns sql.NullString) (*analysis.Payload, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var p analysis.Payload
	if err := json.Unmarshal([]byte(ns.String), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// statusArgs expands a status list into "$n,$n+1,..." starting at first.
func statusArgs(from []records.Status, first int) (string, []any) {
	marks := make([]string, len(from))
	args := make([]any, len(from))
	for i, st := range from {
		marks[i] = fmt.Sprintf("$%d", first+i)
		args[i] = string(st)
	}
	return strings.Join(marks, ","), args
}
