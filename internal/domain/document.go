package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document workflow statuses.
const (
	DocStatusDraft    = "draft"
	DocStatusInReview = "in_review"
	DocStatusApproved = "approved"
	DocStatusArchived = "archived"
)

// Document file types.
const (
	FileTypePDF   = "pdf"
	FileTypeImage = "image"
	FileTypeJSON  = "json"
	FileTypeText  = "text"
	FileTypeOther = "other"
)

// Document is a source file with ground-truth data attached, owned by a
// project.
type Document struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   int64           `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	FileType    string          `json:"file_type"`
	FileSize    int64           `json:"file_size,omitempty"`
	SourceURL   string          `json:"source_file_url,omitempty"`
	StorageKey  string          `json:"storage_key,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GTVersion is one revision of a document's ground-truth payload.
type GTVersion struct {
	ID            uuid.UUID       `json:"id"`
	DocumentID    uuid.UUID       `json:"document_id"`
	VersionNumber int             `json:"version_number"`
	Data          json.RawMessage `json:"gt_data"`
	ChangeSummary string          `json:"change_summary,omitempty"`
	IsApproved    bool            `json:"is_approved"`
	CreatedAt     time.Time       `json:"created_at"`
}
