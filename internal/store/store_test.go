package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/db"
	"github.com/docsentry/docsentry/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return New(database)
}

// TestListProjectsIncludesDefault tests that the synthetic default project
// is always first
func TestListProjectsIncludesDefault(t *testing.T) {
	st := newTestStore(t)

	projects, err := st.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, DefaultProjectID, projects[0].ID)
	assert.True(t, projects[0].Synthetic)

	_, err = st.CreateProject("Payments", "PAY-1", "Alex", "")
	require.NoError(t, err)

	projects, err = st.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, DefaultProjectID, projects[0].ID)
	assert.Equal(t, "Payments", projects[1].Name)
}

// TestCreateProjectValidation tests the required fields
func TestCreateProjectValidation(t *testing.T) {
	st := newTestStore(t)

	_, err := st.CreateProject("", "CODE", "Owner", "")
	assert.Error(t, err)
	_, err = st.CreateProject("Name", "  ", "Owner", "")
	assert.Error(t, err)
	_, err = st.CreateProject("Name", "CODE", "", "")
	assert.Error(t, err)
}

// TestProjectRoundtrip tests loading a created project by id
func TestProjectRoundtrip(t *testing.T) {
	st := newTestStore(t)

	created, err := st.CreateProject("Payments", "PAY-1", "Alex", "Card flows")
	require.NoError(t, err)

	loaded, err := st.Project(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Payments", loaded.Name)
	assert.Equal(t, "PAY-1", loaded.Code)
	assert.Equal(t, "Card flows", loaded.Summary)
	assert.EqualValues(t, 0, loaded.FileID)
	assert.False(t, loaded.CreatedAt.IsZero())
}

// TestProjectMissing tests the (nil, nil) contract for unknown ids
func TestProjectMissing(t *testing.T) {
	st := newTestStore(t)

	project, err := st.Project("nope")
	require.NoError(t, err)
	assert.Nil(t, project)
}

// TestProjectDefault tests that the synthetic project resolves by id
func TestProjectDefault(t *testing.T) {
	st := newTestStore(t)

	project, err := st.Project(DefaultProjectID)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.True(t, project.Synthetic)
}

// TestAttachDocument tests the blob-plus-file-id write
func TestAttachDocument(t *testing.T) {
	st := newTestStore(t)
	project, err := st.CreateProject("Payments", "PAY-1", "Alex", "")
	require.NoError(t, err)

	doc := models.ProjectDocument{
		FileID:       7,
		Name:         "design.pdf",
		MimeType:     "application/pdf",
		Data:         "data:application/pdf;base64,aGk=",
		LastModified: 1700000000000,
	}
	require.NoError(t, st.AttachDocument(project.ID, doc))

	cached, err := st.ProjectDocument(project.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.EqualValues(t, 7, cached.FileID)
	assert.Equal(t, "design.pdf", cached.Name)
	assert.False(t, cached.UploadedAt.IsZero())

	reloaded, err := st.Project(project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, reloaded.FileID)
}

// TestAttachDocumentReplaces tests that a re-upload overwrites the cache
func TestAttachDocumentReplaces(t *testing.T) {
	st := newTestStore(t)
	project, err := st.CreateProject("Payments", "PAY-1", "Alex", "")
	require.NoError(t, err)

	require.NoError(t, st.AttachDocument(project.ID, models.ProjectDocument{FileID: 1, Name: "old.pdf"}))
	require.NoError(t, st.AttachDocument(project.ID, models.ProjectDocument{FileID: 2, Name: "new.pdf"}))

	cached, err := st.ProjectDocument(project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cached.FileID)
	assert.Equal(t, "new.pdf", cached.Name)

	reloaded, err := st.Project(project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, reloaded.FileID)
}

// TestAttachDocumentRejectsInvalidID tests the file id guard
func TestAttachDocumentRejectsInvalidID(t *testing.T) {
	st := newTestStore(t)

	err := st.AttachDocument(DefaultProjectID, models.ProjectDocument{FileID: 0})
	assert.Error(t, err)
	err = st.AttachDocument(DefaultProjectID, models.ProjectDocument{FileID: -3})
	assert.Error(t, err)
}

// TestAttachDocumentDefaultProject tests attaching to the synthetic project,
// which has no persisted row to update
func TestAttachDocumentDefaultProject(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.AttachDocument(DefaultProjectID, models.ProjectDocument{FileID: 3, Name: "scratch.pdf"}))

	cached, err := st.ProjectDocument(DefaultProjectID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.EqualValues(t, 3, cached.FileID)
}

// TestProjectDocumentMissing tests the (nil, nil) contract
func TestProjectDocumentMissing(t *testing.T) {
	st := newTestStore(t)

	doc, err := st.ProjectDocument("nope")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

// TestLastUploadedFileID tests the most-recent-upload fallback query
func TestLastUploadedFileID(t *testing.T) {
	st := newTestStore(t)

	fileID, err := st.LastUploadedFileID()
	require.NoError(t, err)
	assert.EqualValues(t, 0, fileID)

	p1, err := st.CreateProject("One", "ONE", "Alex", "")
	require.NoError(t, err)
	p2, err := st.CreateProject("Two", "TWO", "Alex", "")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, st.AttachDocument(p1.ID, models.ProjectDocument{
		FileID: 1, Name: "a.pdf", UploadedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, st.AttachDocument(p2.ID, models.ProjectDocument{
		FileID: 2, Name: "b.pdf", UploadedAt: now,
	}))

	fileID, err = st.LastUploadedFileID()
	require.NoError(t, err)
	assert.EqualValues(t, 2, fileID)
}

// TestSessionIDStableUntilCleared tests session id creation and reset
func TestSessionIDStableUntilCleared(t *testing.T) {
	st := newTestStore(t)

	first, err := st.SessionID(DefaultProjectID)
	require.NoError(t, err)
	assert.Contains(t, first, "session_")

	again, err := st.SessionID(DefaultProjectID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := st.SessionID("another-project")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	require.NoError(t, st.ClearSession(DefaultProjectID))
	fresh, err := st.SessionID(DefaultProjectID)
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
}

// TestSelectedModel tests the preference default and persistence
func TestSelectedModel(t *testing.T) {
	st := newTestStore(t)

	model, err := st.SelectedModel()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultModel, model)

	require.NoError(t, st.SetSelectedModel("gemini-2.0-pro"))
	model, err = st.SelectedModel()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-pro", model)

	require.NoError(t, st.SetSelectedModel(models.DefaultModel))
	model, err = st.SelectedModel()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultModel, model)
}
