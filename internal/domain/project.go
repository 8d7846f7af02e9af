package domain

import (
	"encoding/json"
	"time"
)

// Project task types.
const (
	TaskTypeKeyValue       = "key_value"
	TaskTypeTable          = "table"
	TaskTypeClassification = "classification"
	TaskTypeOCR            = "ocr"
	TaskTypeNER            = "ner"
)

// Member roles within a project.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

type Project struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	TaskType    string          `json:"task_type"`
	Settings    json.RawMessage `json:"project_settings,omitempty"`
	Labels      []string        `json:"default_labels,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProjectMember struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ProjectStats struct {
	DocumentCount int `json:"document_count"`
	TaskCount     int `json:"task_count"`
	MemberCount   int `json:"member_count"`
	ApprovedCount int `json:"approved_count"`
}
