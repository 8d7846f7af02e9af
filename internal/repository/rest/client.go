package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
)

// ValidationError carries the backend's per-field messages so callers can
// surface them next to the offending input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// TokenStore supplies the bearer tokens and persists rotations.
type TokenStore interface {
	Access() string
	Refresh() string
	Update(access, refresh string) error
}

// Client talks to the platform's REST API. It implements the repository
// interfaces; chat, projects, documents, tasks and users each live in
// their own file.
//
// Authentication: the access token rides as a bearer header. On a
// 401/403 the client silently refreshes once and retries the request;
// if that also fails the caller gets ErrUnauthorized and is expected to
// send the user back to login.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func NewClient(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
}

// do performs one authenticated request, decoding the response into out
// when out is non-nil. The refresh-and-retry happens at most once.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, raw, err := c.roundTrip(ctx, method, path, body, c.tokens.Access())
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		access, refreshErr := c.refreshAccess(ctx)
		if refreshErr != nil {
			return ErrUnauthorized
		}
		resp, raw, err = c.roundTrip(ctx, method, path, body, access)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, access string) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	return resp, raw, nil
}

// refreshAccess trades the refresh token for a new access token. It goes
// around do on purpose: a failing refresh must not recurse.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	refresh := c.tokens.Refresh()
	if refresh == "" {
		return "", ErrUnauthorized
	}

	resp, raw, err := c.roundTrip(ctx, http.MethodPost, "/api/v1/auth/refresh/", map[string]string{"refresh": refresh}, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", ErrUnauthorized
	}

	var body struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Access == "" {
		return "", ErrUnauthorized
	}
	if err := c.tokens.Update(body.Access, body.Refresh); err != nil {
		return "", err
	}
	return body.Access, nil
}

// getList fetches a list endpoint. The backend serves either a bare JSON
// array or a {"results": [...]} paginated envelope depending on the view;
// callers get a slice either way.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return envelope.Results, nil
}

// apiError maps an error response onto the package's sentinels. The
// backend answers either {"error": {"code", "message"}}, {"detail": "..."}
// or a per-field validation map.
func apiError(status int, raw []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}

	var wrapped struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Error.Message != "" {
		return fmt.Errorf("api error %d (%s): %s", status, wrapped.Error.Code, wrapped.Error.Message)
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		return fmt.Errorf("api error %d: %s", status, detail.Detail)
	}

	if status == http.StatusBadRequest {
		var fields map[string][]string
		if err := json.Unmarshal(raw, &fields); err == nil && len(fields) > 0 {
			ve := &ValidationError{Fields: make(map[string]string, len(fields))}
			for field, msgs := range fields {
				if len(msgs) > 0 {
					ve.Fields[field] = msgs[0]
				}
			}
			return ve
		}
	}

	return fmt.Errorf("api error %d: %s", status, strings.TrimSpace(string(raw)))
}
