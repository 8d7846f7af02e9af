package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/vedran77/gtflow/internal/domain"
)

type DocumentRepo struct {
	c *Client
}

func NewDocumentRepo(c *Client) *DocumentRepo {
	return &DocumentRepo{c: c}
}

func (r *DocumentRepo) List(ctx context.Context, projectID int64) ([]domain.Document, error) {
	return getList[domain.Document](ctx, r.c, "/api/v1/documents/?project="+strconv.FormatInt(projectID, 10))
}

func (r *DocumentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var d domain.Document
	if err := r.c.do(ctx, http.MethodGet, documentPath(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	var created domain.Document
	if err := r.c.do(ctx, http.MethodPost, "/api/v1/documents/", d, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *DocumentRepo) Update(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	var updated domain.Document
	if err := r.c.do(ctx, http.MethodPatch, documentPath(d.ID), d, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.c.do(ctx, http.MethodDelete, documentPath(id), nil, nil)
}

// Upload runs the three-step direct-upload flow: ask the backend for a
// pre-signed target, PUT the file bytes straight to storage, then
// register the document under the returned key. The PUT carries no
// bearer token; the signed URL is the authorization.
func (r *DocumentRepo) Upload(ctx context.Context, projectID int64, name, fileType string, data []byte) (*domain.Document, error) {
	var grant struct {
		UploadURL string `json:"upload_url"`
		Key       string `json:"key"`
	}
	input := map[string]string{"file_name": name, "file_type": fileType}
	path := "/api/v1/projects/" + strconv.FormatInt(projectID, 10) + "/get-upload-url/"
	if err := r.c.do(ctx, http.MethodPost, path, input, &grant); err != nil {
		return nil, fmt.Errorf("requesting upload url: %w", err)
	}

	if err := r.putFile(ctx, grant.UploadURL, data); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	return r.Create(ctx, &domain.Document{
		ProjectID:  projectID,
		Name:       name,
		FileType:   fileType,
		FileSize:   int64(len(data)),
		StorageKey: grant.Key,
	})
}

func (r *DocumentRepo) putFile(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := r.c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("storage answered %d", resp.StatusCode)
	}
	return nil
}

func (r *DocumentRepo) ListVersions(ctx context.Context, id uuid.UUID) ([]domain.GTVersion, error) {
	return getList[domain.GTVersion](ctx, r.c, documentPath(id)+"versions/")
}

func documentPath(id uuid.UUID) string {
	return "/api/v1/documents/" + id.String() + "/"
}
