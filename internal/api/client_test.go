package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/pkg/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, 5*time.Second), server
}

// TestUploadDocument tests the multipart upload request and response mapping
func TestUploadDocument(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload-doc", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "report.pdf", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(content))

		json.NewEncoder(w).Encode(models.UploadResult{Message: "ok", FileID: 7})
	})
	defer server.Close()

	result, err := client.UploadDocument(context.Background(), "report.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.FileID)
}

// TestListDocuments tests decoding of the document list
func TestListDocuments(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Document{
			{FileID: 1, Filename: "a.pdf", UploadTimestamp: "2025-01-01T00:00:00Z"},
			{FileID: 2, Filename: "b.pdf", UploadTimestamp: "2025-01-02T00:00:00Z"},
		})
	})
	defer server.Close()

	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].FileID)
	assert.Equal(t, "b.pdf", docs[1].Filename)
}

// TestDeleteDocument tests the delete request body
func TestDeleteDocument(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/delete-doc", r.URL.Path)

		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body["file_id"])

		w.Write([]byte(`{"message":"deleted"}`))
	})
	defer server.Close()

	require.NoError(t, client.DeleteDocument(context.Background(), 3))
}

// TestCleanupDocuments tests the cleanup response mapping
func TestCleanupDocuments(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cleanup-documents", r.URL.Path)
		json.NewEncoder(w).Encode(models.CleanupResult{KeptDocument: "latest.pdf", DeletedCount: 4})
	})
	defer server.Close()

	result, err := client.CleanupDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "latest.pdf", result.KeptDocument)
	assert.Equal(t, 4, result.DeletedCount)
}

// TestSendChatMessage tests the chat request shape
func TestSendChatMessage(t *testing.T) {
	var body struct {
		Question  string  `json:"question"`
		SessionID *string `json:"session_id"`
		Model     string  `json:"model"`
	}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(models.ChatResponse{Answer: "hi", Model: body.Model, ProcessingTime: 1.2})
	})
	defer server.Close()

	resp, err := client.SendChatMessage(context.Background(), "what is this?", "session_abc", "gemini-2.0-pro")
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Answer)
	assert.Equal(t, "what is this?", body.Question)
	require.NotNil(t, body.SessionID)
	assert.Equal(t, "session_abc", *body.SessionID)
	assert.Equal(t, "gemini-2.0-pro", body.Model)
}

// TestSendChatMessageNullSession tests that an empty session id is sent as
// JSON null so the backend starts a new conversation
func TestSendChatMessageNullSession(t *testing.T) {
	var raw map[string]json.RawMessage
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		json.NewEncoder(w).Encode(models.ChatResponse{Answer: "hi"})
	})
	defer server.Close()

	_, err := client.SendChatMessage(context.Background(), "question", "", models.DefaultModel)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw["session_id"]))
}

// TestSendChatMessageSubstitutesUnsupportedModel tests the allow-list: an
// unknown model is replaced with the default, never rejected
func TestSendChatMessageSubstitutesUnsupportedModel(t *testing.T) {
	var body struct {
		Model string `json:"model"`
	}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(models.ChatResponse{Answer: "hi"})
	})
	defer server.Close()

	_, err := client.SendChatMessage(context.Background(), "question", "s", "gpt-17")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultModel, body.Model)
}

// TestAnalyzeDocument tests the analyze request and breakdown decoding
func TestAnalyzeDocument(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/document/analyze", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["file_id"])

		json.NewEncoder(w).Encode(models.Breakdown{
			MajorComponents: []models.Component{{Name: "Auth service"}},
			PIIData:         models.PIIData{IdentifiedFields: []string{"email"}},
		})
	})
	defer server.Close()

	result, err := client.AnalyzeDocument(context.Background(), 5, models.DefaultModel)
	require.NoError(t, err)
	require.Len(t, result.MajorComponents, 1)
	assert.Equal(t, "Auth service", result.MajorComponents[0].Name)
	assert.Equal(t, []string{"email"}, result.PIIData.IdentifiedFields)
}

// TestErrorDecoding tests the error message extraction chain
func TestErrorDecoding(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail field", http.StatusBadRequest, `{"detail":"file too large"}`, "file too large"},
		{"message field", http.StatusBadRequest, `{"message":"bad request"}`, "bad request"},
		{"detail preferred over message", http.StatusBadRequest, `{"detail":"detail wins","message":"ignored"}`, "detail wins"},
		{"raw text body", http.StatusInternalServerError, "backend exploded", "backend exploded"},
		{"empty body falls back", http.StatusInternalServerError, "", "Failed to list documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			defer server.Close()

			_, err := client.ListDocuments(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

// TestBaseURLTrailingSlash tests that a trailing slash does not double up
func TestBaseURLTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL+"/", 5*time.Second)
	_, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
}
