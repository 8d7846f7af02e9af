package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vedran77/gtflow/internal/domain"
)

type TaskRepo struct {
	c *Client
}

func NewTaskRepo(c *Client) *TaskRepo {
	return &TaskRepo{c: c}
}

func (r *TaskRepo) List(ctx context.Context, projectID int64) ([]domain.Task, error) {
	return getList[domain.Task](ctx, r.c, "/api/v1/tasks/?project="+strconv.FormatInt(projectID, 10))
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	var created domain.Task
	if err := r.c.do(ctx, http.MethodPost, "/api/v1/tasks/", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Task, error) {
	var updated domain.Task
	input := map[string]string{"status": status}
	path := "/api/v1/tasks/" + strconv.FormatInt(id, 10) + "/"
	if err := r.c.do(ctx, http.MethodPatch, path, input, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
