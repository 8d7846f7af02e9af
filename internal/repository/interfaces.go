package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

// The client has no database of its own; every entity is owned by the
// backend and reached through these interfaces. The rest subpackage
// implements them over the platform's HTTP API.

type UserRepository interface {
	Me(ctx context.Context) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type RoomRepository interface {
	// GetOrCreatePrivate returns the direct-message room pairing the
	// current user with otherUserID, creating it on first contact.
	// Idempotent: the same pair always maps to the same room.
	GetOrCreatePrivate(ctx context.Context, otherUserID int64) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	MarkRead(ctx context.Context, roomID uuid.UUID) error
	UnreadCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

type HistoryRepository interface {
	// ListMessages returns persisted messages for a room, oldest first,
	// up to limit. A nil before cursor starts from the newest.
	ListMessages(ctx context.Context, roomID uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error)
}

type ProjectRepository interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, id int64) (*domain.ProjectStats, error)
	AddMember(ctx context.Context, id int64, userID int64, role string) error
	RemoveMember(ctx context.Context, id int64, userID int64) error
	ListMembers(ctx context.Context, id int64) ([]domain.ProjectMember, error)
}

type DocumentRepository interface {
	List(ctx context.Context, projectID int64) ([]domain.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	Create(ctx context.Context, d *domain.Document) (*domain.Document, error)
	Update(ctx context.Context, d *domain.Document) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Upload runs the direct-upload flow: request a pre-signed target for
	// the project, PUT the bytes there, then register the document with
	// the resulting storage key.
	Upload(ctx context.Context, projectID int64, name, fileType string, data []byte) (*domain.Document, error)
	ListVersions(ctx context.Context, id uuid.UUID) ([]domain.GTVersion, error)
}

type TaskRepository interface {
	List(ctx context.Context, projectID int64) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Task, error)
}
