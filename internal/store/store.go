// Package store provides typed accessors over the local state database:
// projects, cached project documents, chat session ids, and preferences.
//
// The store is a client-side cache and bookkeeping layer. Backend documents,
// addressed by file id, remain the source of truth for analysis; a project's
// file id is a soft link that this layer never repairs.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsentry/docsentry/internal/db"
	"github.com/docsentry/docsentry/pkg/models"
)

// DefaultProjectID identifies the synthetic project that is prepended to
// every project listing and never persisted.
const DefaultProjectID = "default"

const selectedModelKey = "selected_model"

// Store wraps the state database with typed read/write accessors.
type Store struct {
	db *sql.DB
}

// New wraps an already opened state database.
func New(database *sql.DB) *Store {
	return &Store{db: database}
}

// Open opens the shared state database at path.
func Open(path string) (*Store, error) {
	database, err := db.Get(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: database}, nil
}

func defaultProject() models.Project {
	return models.Project{
		ID:        DefaultProjectID,
		Name:      "Default Project",
		Code:      "DEFAULT",
		Owner:     "You",
		Summary:   "Scratch space for documents that belong to no project",
		Synthetic: true,
	}
}

// ListProjects returns the synthetic default project followed by all stored
// projects in creation order.
func (s *Store) ListProjects() ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, code, owner, summary, file_id, created_at
		FROM projects
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{defaultProject()}
	for rows.Next() {
		var project models.Project
		var createdAt string
		if err := rows.Scan(&project.ID, &project.Name, &project.Code, &project.Owner,
			&project.Summary, &project.FileID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			project.CreatedAt = t.Local()
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Project returns the project with the given id, the synthetic default for
// DefaultProjectID, or (nil, nil) when no such project exists.
func (s *Store) Project(id string) (*models.Project, error) {
	if id == DefaultProjectID {
		p := defaultProject()
		return &p, nil
	}

	var project models.Project
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, name, code, owner, summary, file_id, created_at
		FROM projects WHERE id = ?
	`, id).Scan(&project.ID, &project.Name, &project.Code, &project.Owner,
		&project.Summary, &project.FileID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		project.CreatedAt = t.Local()
	}
	return &project, nil
}

// CreateProject persists a new project. Name, code and owner are required.
// Projects are never mutated after creation (other than document attachment)
// and never deleted by this layer.
func (s *Store) CreateProject(name, code, owner, summary string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	owner = strings.TrimSpace(owner)
	if name == "" || code == "" || owner == "" {
		return nil, fmt.Errorf("project name, code and owner are required")
	}

	project := models.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Code:      code,
		Owner:     owner,
		Summary:   strings.TrimSpace(summary),
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, code, owner, summary, file_id, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, project.ID, project.Name, project.Code, project.Owner, project.Summary,
		project.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// AttachDocument records a successful upload for a project: the cached
// document blob and the project's file id are written in one transaction so
// a reload never observes half the upload. Callers invoke this only after
// the backend accepted the file; on upload failure nothing is written.
//
// The synthetic default project has no persisted row, so only the blob is
// stored for it.
func (s *Store) AttachDocument(projectID string, doc models.ProjectDocument) error {
	if doc.FileID <= 0 {
		return fmt.Errorf("invalid file ID %d", doc.FileID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	uploadedAt := doc.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO project_documents
			(project_id, file_id, name, mime_type, data, last_modified, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, projectID, doc.FileID, doc.Name, doc.MimeType, doc.Data, doc.LastModified,
		uploadedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store project document: %w", err)
	}

	// No row exists for the synthetic default project; the update is a no-op.
	if _, err := tx.Exec(`UPDATE projects SET file_id = ? WHERE id = ?`, doc.FileID, projectID); err != nil {
		return fmt.Errorf("failed to update project file id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document attachment: %w", err)
	}
	return nil
}

// ProjectDocument returns the cached document for a project, or (nil, nil)
// when none has been uploaded yet.
func (s *Store) ProjectDocument(projectID string) (*models.ProjectDocument, error) {
	var doc models.ProjectDocument
	var uploadedAt string
	err := s.db.QueryRow(`
		SELECT file_id, name, mime_type, data, last_modified, uploaded_at
		FROM project_documents WHERE project_id = ?
	`, projectID).Scan(&doc.FileID, &doc.Name, &doc.MimeType, &doc.Data, &doc.LastModified, &uploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project document: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, uploadedAt); err == nil {
		doc.UploadedAt = t.Local()
	}
	return &doc, nil
}

// LastUploadedFileID returns the file id of the most recent upload across
// all projects, or 0 when nothing has been uploaded. Views with no better
// resolution target fall back to it.
func (s *Store) LastUploadedFileID() (int64, error) {
	var fileID int64
	err := s.db.QueryRow(`
		SELECT file_id FROM project_documents
		ORDER BY uploaded_at DESC
		LIMIT 1
	`).Scan(&fileID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find last uploaded file: %w", err)
	}
	return fileID, nil
}

// SessionID returns the chat session id for a project, creating and
// persisting one on first use. Repeated calls return the same id until
// ClearSession.
func (s *Store) SessionID(projectID string) (string, error) {
	var sessionID string
	err := s.db.QueryRow(`SELECT session_id FROM chat_sessions WHERE project_id = ?`, projectID).Scan(&sessionID)
	if err == nil {
		return sessionID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to load chat session: %w", err)
	}

	sessionID = "session_" + uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO chat_sessions (project_id, session_id, created_at)
		VALUES (?, ?, ?)
	`, projectID, sessionID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to create chat session: %w", err)
	}
	return sessionID, nil
}

// ClearSession forgets a project's chat session id. The next SessionID call
// starts a fresh conversation on the backend.
func (s *Store) ClearSession(projectID string) error {
	if _, err := s.db.Exec(`DELETE FROM chat_sessions WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear chat session: %w", err)
	}
	return nil
}

// SelectedModel returns the stored model preference, defaulting to
// models.DefaultModel.
func (s *Store) SelectedModel() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, selectedModelKey).Scan(&value)
	if err == sql.ErrNoRows {
		return models.DefaultModel, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load model preference: %w", err)
	}
	return value, nil
}

// SetSelectedModel stores the model preference.
func (s *Store) SetSelectedModel(model string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)
	`, selectedModelKey, model)
	if err != nil {
		return fmt.Errorf("failed to store model preference: %w", err)
	}
	return nil
}
