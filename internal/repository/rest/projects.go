package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vedran77/gtflow/internal/domain"
)

type ProjectRepo struct {
	c *Client
}

func NewProjectRepo(c *Client) *ProjectRepo {
	return &ProjectRepo{c: c}
}

func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	return getList[domain.Project](ctx, r.c, "/api/v1/projects/")
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	if err := r.c.do(ctx, http.MethodGet, projectPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	var created domain.Project
	if err := r.c.do(ctx, http.MethodPost, "/api/v1/projects/", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	var updated domain.Project
	if err := r.c.do(ctx, http.MethodPatch, projectPath(p.ID), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, projectPath(id), nil, nil)
}

func (r *ProjectRepo) Stats(ctx context.Context, id int64) (*domain.ProjectStats, error) {
	var stats domain.ProjectStats
	if err := r.c.do(ctx, http.MethodGet, projectPath(id)+"stats/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ProjectRepo) AddMember(ctx context.Context, id, userID int64, role string) error {
	input := map[string]any{"user_id": userID, "role": role}
	return r.c.do(ctx, http.MethodPost, projectPath(id)+"members/", input, nil)
}

func (r *ProjectRepo) RemoveMember(ctx context.Context, id, userID int64) error {
	return r.c.do(ctx, http.MethodDelete, projectPath(id)+"members/"+strconv.FormatInt(userID, 10)+"/", nil, nil)
}

func (r *ProjectRepo) ListMembers(ctx context.Context, id int64) ([]domain.ProjectMember, error) {
	return getList[domain.ProjectMember](ctx, r.c, projectPath(id)+"members/")
}

func projectPath(id int64) string {
	return "/api/v1/projects/" + strconv.FormatInt(id, 10) + "/"
}
