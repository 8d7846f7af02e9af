package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/gtflow/internal/domain"
)

var ErrInvalidCreds = errors.New("invalid username or password")

// Login exchanges credentials for a token pair, persists it and returns
// the authenticated user. It bypasses do: there is no bearer token yet
// and a 401 here means bad credentials, not an expired session.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	input := map[string]string{"username": username, "password": password}
	resp, raw, err := c.roundTrip(ctx, http.MethodPost, "/api/v1/auth/login/", input, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCreds
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, raw)
	}

	var body struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Access == "" {
		return nil, errors.New("login: malformed token response")
	}

	if err := c.tokens.Update(body.Access, body.Refresh); err != nil {
		return nil, err
	}
	return NewUserRepo(c).Me(ctx)
}
