package tui

import (
	"bytes"
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docsentry/docsentry/internal/api"
	"github.com/docsentry/docsentry/internal/breakdown"
	"github.com/docsentry/docsentry/internal/store"
	"github.com/docsentry/docsentry/pkg/models"
)

// Message types for async operations. Messages produced for a workspace
// carry the generation they were issued under; the model drops results
// whose generation no longer matches, so a slow response never updates a
// view the user has already left.
type (
	// ProjectsLoadedMsg contains the stored project list.
	ProjectsLoadedMsg struct {
		Projects []models.Project
		Error    error
	}

	// ProjectCreatedMsg reports the outcome of the create-project flow.
	ProjectCreatedMsg struct {
		Project *models.Project
		Error   error
	}

	// DocumentsLoadedMsg contains the backend document list for a workspace.
	DocumentsLoadedMsg struct {
		Generation int
		Documents  []models.Document
		Error      error
	}

	// RegistryLoadedMsg contains the backend document list for the registry.
	RegistryLoadedMsg struct {
		Documents []models.Document
		Error     error
	}

	// ProjectUploadedMsg reports a document upload into a project.
	ProjectUploadedMsg struct {
		Generation int
		Document   *models.ProjectDocument
		Error      error
	}

	// RegistryUploadedMsg reports a registry upload (no project attached).
	RegistryUploadedMsg struct {
		Error error
	}

	// ChatReplyMsg carries the backend's answer to a chat turn.
	ChatReplyMsg struct {
		Generation int
		Answer     string
		Error      error
	}

	// BreakdownLoadedMsg carries a fetched breakdown.
	BreakdownLoadedMsg struct {
		Generation int
		Breakdown  *models.Breakdown
		Error      error
	}

	// DocumentDeletedMsg reports a delete request.
	DocumentDeletedMsg struct {
		Error error
	}

	// CleanupFinishedMsg reports a cleanup request.
	CleanupFinishedMsg struct {
		Result *models.CleanupResult
		Error  error
	}

	// TickMsg is sent periodically for spinner animation.
	TickMsg time.Time
)

// Commands for async operations. None of them is cancellable once issued;
// staleness is handled on arrival through the generation counters.

func loadProjectsCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		projects, err := st.ListProjects()
		return ProjectsLoadedMsg{Projects: projects, Error: err}
	}
}

// createProjectCmd runs the project-creation sequence: upload first, and
// only on success create the project and cache the document. A failed
// upload leaves no local state behind.
func createProjectCmd(client *api.Client, st *store.Store, name, code, owner, summary, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := store.LoadDocumentFile(path)
		if err != nil {
			return ProjectCreatedMsg{Error: err}
		}

		result, err := client.UploadDocument(context.Background(), file.Name, bytes.NewReader(file.Content))
		if err != nil {
			return ProjectCreatedMsg{Error: err}
		}

		project, err := st.CreateProject(name, code, owner, summary)
		if err != nil {
			return ProjectCreatedMsg{Error: err}
		}

		doc := models.ProjectDocument{
			FileID:       result.FileID,
			Name:         file.Name,
			MimeType:     file.MimeType,
			Data:         file.DataURI,
			LastModified: file.LastModified,
		}
		if err := st.AttachDocument(project.ID, doc); err != nil {
			return ProjectCreatedMsg{Error: err}
		}
		project.FileID = result.FileID

		return ProjectCreatedMsg{Project: project}
	}
}

func loadDocumentsCmd(client *api.Client, gen int) tea.Cmd {
	return func() tea.Msg {
		docs, err := client.ListDocuments(context.Background())
		return DocumentsLoadedMsg{Generation: gen, Documents: docs, Error: err}
	}
}

func loadRegistryCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		docs, err := client.ListDocuments(context.Background())
		return RegistryLoadedMsg{Documents: docs, Error: err}
	}
}

// uploadProjectDocumentCmd uploads a file and, only when the backend
// accepted it, caches the blob and file id under the project in one
// transaction.
func uploadProjectDocumentCmd(client *api.Client, st *store.Store, gen int, projectID, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := store.LoadDocumentFile(path)
		if err != nil {
			return ProjectUploadedMsg{Generation: gen, Error: err}
		}

		result, err := client.UploadDocument(context.Background(), file.Name, bytes.NewReader(file.Content))
		if err != nil {
			return ProjectUploadedMsg{Generation: gen, Error: err}
		}

		doc := models.ProjectDocument{
			FileID:       result.FileID,
			Name:         file.Name,
			MimeType:     file.MimeType,
			Data:         file.DataURI,
			LastModified: file.LastModified,
		}
		if err := st.AttachDocument(projectID, doc); err != nil {
			return ProjectUploadedMsg{Generation: gen, Error: err}
		}

		return ProjectUploadedMsg{Generation: gen, Document: &doc}
	}
}

func uploadRegistryDocumentCmd(client *api.Client, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := store.LoadDocumentFile(path)
		if err != nil {
			return RegistryUploadedMsg{Error: err}
		}
		_, err = client.UploadDocument(context.Background(), file.Name, bytes.NewReader(file.Content))
		return RegistryUploadedMsg{Error: err}
	}
}

func sendChatCmd(client *api.Client, gen int, question, sessionID, model string) tea.Cmd {
	return func() tea.Msg {
		response, err := client.SendChatMessage(context.Background(), question, sessionID, model)
		if err != nil {
			return ChatReplyMsg{Generation: gen, Error: err}
		}
		return ChatReplyMsg{Generation: gen, Answer: response.Answer}
	}
}

func fetchBreakdownCmd(client *api.Client, gen int, fileID int64, model string) tea.Cmd {
	return func() tea.Msg {
		result, err := breakdown.Fetch(context.Background(), client, fileID, model)
		return BreakdownLoadedMsg{Generation: gen, Breakdown: result, Error: err}
	}
}

func deleteDocumentCmd(client *api.Client, fileID int64) tea.Cmd {
	return func() tea.Msg {
		return DocumentDeletedMsg{Error: client.DeleteDocument(context.Background(), fileID)}
	}
}

func cleanupDocumentsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		result, err := client.CleanupDocuments(context.Background())
		return CleanupFinishedMsg{Result: result, Error: err}
	}
}

// tickCmd creates a ticker for spinner animation.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
