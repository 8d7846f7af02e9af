package rest

import (
	"context"
	"net/http"

	"github.com/vedran77/gtflow/internal/domain"
)

type UserRepo struct {
	c *Client
}

func NewUserRepo(c *Client) *UserRepo {
	return &UserRepo{c: c}
}

// Me returns the authenticated user's profile.
func (r *UserRepo) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := r.c.do(ctx, http.MethodGet, "/api/v1/auth/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all active users except the caller, which is what the
// chat sidebar shows.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	return getList[domain.User](ctx, r.c, "/api/v1/auth/users/")
}
