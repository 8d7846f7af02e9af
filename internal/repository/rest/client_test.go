package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/gtflow/internal/domain"
)

type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	updates int
}

func (m *memTokens) Access() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) Refresh() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) Update(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	if refresh != "" {
		m.refresh = refresh
	}
	m.updates++
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *memTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &memTokens{access: "valid-token", refresh: "refresh-token"}
	return NewClient(srv.URL, tokens), tokens
}

func TestClient_DecodesBareArray(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.User{{ID: 1, Username: "ana"}})
	}))

	users, err := NewUserRepo(c).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)
}

func TestClient_DecodesResultsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"count":   2,
			"results": []domain.User{{ID: 1, Username: "ana"}, {ID: 2, Username: "bob"}},
		})
	}))

	users, err := NewUserRepo(c).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	var refreshCalls int
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh/":
			refreshCalls++
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "refresh-token", body["refresh"])
			json.NewEncoder(w).Encode(map[string]string{"access": "fresh-token"})
		case "/api/v1/auth/me/":
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(domain.User{ID: 7, Username: "ana"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	tokens.access = "stale-token"

	user, err := NewUserRepo(c).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, "fresh-token", tokens.Access())
	assert.Equal(t, "refresh-token", tokens.Refresh(), "refresh token survives an access-only rotation")
}

func TestClient_FailedRefreshIsUnauthorized(t *testing.T) {
	var requests int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := NewUserRepo(c).Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	// One failed call plus one refresh attempt, never a retry loop.
	assert.Equal(t, 2, requests)
}

func TestClient_NoRefreshTokenFailsFast(t *testing.T) {
	var requests int
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	tokens.refresh = ""

	_, err := NewUserRepo(c).Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, requests)
}

func TestClient_NotFoundSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/projects/99/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	_, err := NewProjectRepo(c).Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ValidationErrorCarriesFields(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{
			"name": {"This field is required."},
		})
	}))

	_, err := NewProjectRepo(c).Create(context.Background(), &domain.Project{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "This field is required.", ve.Fields["name"])
}

func TestClient_ErrorEnvelopeMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "conflict", "message": "already exists"},
		})
	}))

	_, err := NewProjectRepo(c).Create(context.Background(), &domain.Project{Name: "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLogin_StoresTokensAndReturnsUser(t *testing.T) {
	c, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login/":
			assert.Empty(t, r.Header.Get("Authorization"), "login must not carry a bearer token")
			var creds map[string]string
			json.NewDecoder(r.Body).Decode(&creds)
			if creds["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access": "acc-1", "refresh": "ref-1"})
		case "/api/v1/auth/me/":
			json.NewEncoder(w).Encode(domain.User{ID: 3, Username: "ana"})
		}
	}))
	tokens.access, tokens.refresh = "", ""

	user, err := c.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "acc-1", tokens.Access())
	assert.Equal(t, "ref-1", tokens.Refresh())
}

func TestLogin_BadCredentials(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Login(context.Background(), "ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}
