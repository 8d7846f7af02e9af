package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/gtflow/internal/domain"
)

func TestDocumentRepo_UploadFlow(t *testing.T) {
	var storagePut []byte
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"), "the signed url is the authorization")
		storagePut, _ = io.ReadAll(r.Body)
	}))
	defer storage.Close()

	docID := uuid.New()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/projects/5/get-upload-url/":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "scan.pdf", body["file_name"])
			json.NewEncoder(w).Encode(map[string]string{
				"upload_url": storage.URL + "/bucket/key-123",
				"key":        "key-123",
			})
		case "/api/v1/documents/":
			var doc domain.Document
			json.NewDecoder(r.Body).Decode(&doc)
			assert.Equal(t, "key-123", doc.StorageKey)
			assert.Equal(t, int64(4), doc.FileSize)
			doc.ID = docID
			json.NewEncoder(w).Encode(doc)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	doc, err := NewDocumentRepo(c).Upload(context.Background(), 5, "scan.pdf", domain.FileTypePDF, []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, docID, doc.ID)
	assert.Equal(t, []byte("%PDF"), storagePut)
}

func TestDocumentRepo_UploadAbortsWhenStorageRejects(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer storage.Close()

	var created bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/projects/5/get-upload-url/":
			json.NewEncoder(w).Encode(map[string]string{
				"upload_url": storage.URL + "/bucket/key-123",
				"key":        "key-123",
			})
		case "/api/v1/documents/":
			created = true
		}
	}))

	_, err := NewDocumentRepo(c).Upload(context.Background(), 5, "scan.pdf", domain.FileTypePDF, []byte("%PDF"))
	require.Error(t, err)
	assert.False(t, created, "document must not be registered when the upload fails")
}

func TestDocumentRepo_ListFiltersByProject(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("project"))
		json.NewEncoder(w).Encode([]domain.Document{{ID: uuid.New(), Name: "a.pdf"}})
	}))

	docs, err := NewDocumentRepo(c).List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}
