package dataroom

import (
	"time"

	"github.com/bryanwahyu/ventur-api/internal/domain/analysis"
	"github.com/bryanwahyu/ventur-api/internal/domain/records"
)

// ID tipe untuk Document
type DocumentID string

// Aggregate Root: data-room Document
type Document struct {
	ID          DocumentID        `json:"id"`
	UserID      string            `json:"user_id"`
	Filename    string            `json:"filename"`
	FileKey     string            `json:"-"`
	FileType    string            `json:"file_type"`
	FileSize    int64             `json:"file_size"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory,omitempty"`
	Status      records.Status    `json:"status"`
	Analysis    *analysis.Payload `json:"analysis,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
