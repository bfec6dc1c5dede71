// Package api wraps the document-analysis backend's HTTP surface. Every
// method is a single request/response mapping: no client-side state, no
// retries, failures always propagate as errors carrying a human-readable
// message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/docsentry/docsentry/pkg/models"
)

// Client talks to the analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UploadDocument posts a file as multipart form data to /upload-doc and
// returns the backend's file id for it.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*models.UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-doc", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Upload failed")
	}

	var result models.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

// ListDocuments returns the backend's ordered document list.
func (c *Client) ListDocuments(ctx context.Context) ([]models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list documents request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to list documents")
	}

	var docs []models.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode document list: %w", err)
	}
	return docs, nil
}

// DeleteDocument requests deletion of a document by id. Callers are
// responsible for refreshing any cached list afterwards.
func (c *Client) DeleteDocument(ctx context.Context, fileID int64) error {
	body := struct {
		FileID int64 `json:"file_id"`
	}{FileID: fileID}

	resp, err := c.postJSON(ctx, "/delete-doc", body)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, "Failed to delete document")
	}
	return nil
}

// CleanupDocuments asks the backend to retain only the most recent document.
// Destructive and irreversible; callers must confirm with the user first.
func (c *Client) CleanupDocuments(ctx context.Context) (*models.CleanupResult, error) {
	resp, err := c.postJSON(ctx, "/cleanup-documents", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("cleanup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to clean up documents")
	}

	var result models.CleanupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cleanup response: %w", err)
	}
	return &result, nil
}

// SendChatMessage posts one chat turn. The model is checked against the
// allow-list first; an unsupported value is replaced with the default rather
// than rejected.
func (c *Client) SendChatMessage(ctx context.Context, question, sessionID, model string) (*models.ChatResponse, error) {
	body := struct {
		Question  string  `json:"question"`
		SessionID *string `json:"session_id"`
		Model     string  `json:"model"`
	}{
		Question: question,
		Model:    models.ValidModel(model),
	}
	if sessionID != "" {
		body.SessionID = &sessionID
	}

	resp, err := c.postJSON(ctx, "/chat", body)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to send message")
	}

	var result models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &result, nil
}

// AnalyzeDocument requests the structured security breakdown for a document.
func (c *Client) AnalyzeDocument(ctx context.Context, fileID int64, model string) (*models.Breakdown, error) {
	body := struct {
		FileID int64  `json:"file_id"`
		Model  string `json:"model"`
	}{FileID: fileID, Model: model}

	resp, err := c.postJSON(ctx, "/document/analyze", body)
	if err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to analyze document")
	}

	var result models.Breakdown
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown response: %w", err)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// decodeError turns a non-success response into an error carrying the
// backend's message: the structured "detail" or "message" field when the
// body parses as JSON, the raw body text otherwise, and a per-operation
// fallback when the body is empty.
func decodeError(resp *http.Response, fallback string) error {
	raw, _ := io.ReadAll(resp.Body)

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Detail != "" {
			return errors.New(payload.Detail)
		}
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return errors.New(text)
	}
	return errors.New(fallback)
}
