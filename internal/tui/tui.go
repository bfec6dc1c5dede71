// Package tui implements the interactive terminal front end: project
// browsing, per-project workspaces with chat and breakdown tabs, the
// backend document registry, and settings.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsentry/docsentry/internal/api"
	"github.com/docsentry/docsentry/internal/breakdown"
	"github.com/docsentry/docsentry/internal/chat"
	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/store"
	"github.com/docsentry/docsentry/internal/workspace"
	"github.com/docsentry/docsentry/pkg/models"
)

type viewMode int

const (
	projectsView viewMode = iota
	newProjectView
	workspaceView
	registryView
	settingsView
)

type workspaceTab int

const (
	tabUpload workspaceTab = iota
	tabChat
	tabComponents
	tabStride
	tabAttackTree
	tabTrustBoundaries
	tabDataFlow
)

var tabTitles = []string{
	"Upload Document",
	"Chat Section",
	"List of Components",
	"Generate - STRIDE",
	"Attack Tree",
	"Trust Boundaries",
	"Data Flow Diagrams",
}

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmDelete
	confirmCleanup
)

const (
	formFieldName = iota
	formFieldCode
	formFieldOwner
	formFieldSummary
	formFieldDocument
	formFieldCount
)

type model struct {
	cfg    config.Config
	store  *store.Store
	client *api.Client

	mode    viewMode
	width   int
	height  int
	ready   bool
	loading *LoadingIndicator
	status  string
	err     error

	// projects view
	projects      []models.Project
	projectCursor int

	// new project form
	form      []textinput.Model
	formFocus int
	formErr   string
	creating  bool

	// workspace
	project      *models.Project
	tab          workspaceTab
	generation   int // workspace context; stale responses are dropped against it
	docs         []models.Document
	docsLoaded   bool
	resolution   *workspace.Resolution
	resolveErr   error
	localDoc     *models.ProjectDocument
	orchestrator *chat.Orchestrator
	chatInput    textinput.Model
	chatViewport viewport.Model
	loader       *breakdown.Loader
	chatModel    string
	pathInput    textinput.Model
	promptPath   bool
	uploading    bool

	// registry
	registryDocs    []models.Document
	registryCursor  int
	registryLoading bool
	confirm         confirmAction

	// settings
	settingsCursor int
}

func newModel(cfg config.Config, st *store.Store, client *api.Client) model {
	form := make([]textinput.Model, formFieldCount)
	placeholders := []string{"Project name", "e.g. PROJ-1", "Owner name", "Short summary (optional)", "Path to PDF document"}
	for i := range form {
		form[i] = textinput.New()
		form[i].Placeholder = placeholders[i]
		form[i].CharLimit = 256
		form[i].Width = 48
	}
	form[0].Focus()

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about this document..."
	chatInput.CharLimit = 2000
	chatInput.Width = 60

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to PDF document"
	pathInput.CharLimit = 512
	pathInput.Width = 60

	return model{
		cfg:          cfg,
		store:        st,
		client:       client,
		mode:         projectsView,
		loading:      NewLoadingIndicator("Loading..."),
		form:         form,
		chatInput:    chatInput,
		pathInput:    pathInput,
		orchestrator: chat.New(""),
		loader:       breakdown.NewLoader(),
		chatModel:    models.DefaultModel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(loadProjectsCmd(m.store), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewHeight := msg.Height - 6
		if viewHeight < 4 {
			viewHeight = 4
		}
		if !m.ready {
			m.chatViewport = viewport.New(msg.Width-2, viewHeight)
			m.ready = true
		} else {
			m.chatViewport.Width = msg.Width - 2
			m.chatViewport.Height = viewHeight
		}
		m.refreshChatViewport()
		return m, nil

	case TickMsg:
		m.loading.Tick()
		return m, tickCmd()

	case ProjectsLoadedMsg:
		if msg.Error != nil {
			m.err = msg.Error
			return m, nil
		}
		m.projects = msg.Projects
		if m.projectCursor >= len(m.projects) {
			m.projectCursor = 0
		}
		return m, nil

	case ProjectCreatedMsg:
		m.creating = false
		if msg.Error != nil {
			m.formErr = msg.Error.Error()
			return m, nil
		}
		cmd := m.openWorkspace(*msg.Project)
		return m, tea.Batch(cmd, loadProjectsCmd(m.store))

	case DocumentsLoadedMsg:
		if msg.Generation != m.generation {
			return m, nil // response outlived the workspace it was issued for
		}
		m.docsLoaded = true
		if msg.Error != nil {
			m.resolveErr = msg.Error
			return m, nil
		}
		m.docs = msg.Documents
		m.resolution, m.resolveErr = workspace.Resolve("", m.project, m.docs)
		return m, nil

	case ProjectUploadedMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.uploading = false
		if msg.Error != nil {
			m.status = "Upload failed: " + msg.Error.Error()
			return m, nil
		}
		m.localDoc = msg.Document
		if m.project != nil && !m.project.Synthetic {
			m.project.FileID = msg.Document.FileID
		}
		m.status = "Document uploaded successfully!"
		return m, loadDocumentsCmd(m.client, m.generation)

	case ChatReplyMsg:
		m.orchestrator.Finish(msg.Generation, msg.Answer, msg.Error)
		m.refreshChatViewport()
		return m, nil

	case BreakdownLoadedMsg:
		m.loader.Finish(msg.Generation, msg.Breakdown, msg.Error)
		return m, nil

	case RegistryLoadedMsg:
		m.registryLoading = false
		if msg.Error != nil {
			m.status = msg.Error.Error()
			return m, nil
		}
		m.registryDocs = msg.Documents
		if m.registryCursor >= len(m.registryDocs) {
			m.registryCursor = 0
		}
		return m, nil

	case RegistryUploadedMsg:
		m.uploading = false
		if msg.Error != nil {
			m.status = "Upload failed: " + msg.Error.Error()
			return m, nil
		}
		m.status = "Document uploaded successfully!"
		m.registryLoading = true
		return m, loadRegistryCmd(m.client)

	case DocumentDeletedMsg:
		if msg.Error != nil {
			m.status = "Delete failed: " + msg.Error.Error()
			return m, nil
		}
		m.status = "Document deleted"
		m.registryLoading = true
		return m, loadRegistryCmd(m.client)

	case CleanupFinishedMsg:
		if msg.Error != nil {
			m.status = "Cleanup failed: " + msg.Error.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Cleanup complete: kept %s, deleted %d document(s)",
			msg.Result.KeptDocument, msg.Result.DeletedCount)
		m.registryLoading = true
		return m, loadRegistryCmd(m.client)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case projectsView:
		return m.handleProjectsKey(msg)
	case newProjectView:
		return m.handleFormKey(msg)
	case workspaceView:
		return m.handleWorkspaceKey(msg)
	case registryView:
		return m.handleRegistryKey(msg)
	case settingsView:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

func (m model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.projectCursor > 0 {
			m.projectCursor--
		}
	case "down", "j":
		if m.projectCursor < len(m.projects)-1 {
			m.projectCursor++
		}
	case "enter":
		if m.projectCursor < len(m.projects) {
			cmd := m.openWorkspace(m.projects[m.projectCursor])
			return m, cmd
		}
	case "n":
		m.mode = newProjectView
		m.formErr = ""
		m.formFocus = 0
		for i := range m.form {
			m.form[i].SetValue("")
			m.form[i].Blur()
		}
		m.form[0].Focus()
	case "d":
		m.mode = registryView
		m.status = ""
		m.confirm = confirmNone
		m.registryLoading = true
		return m, loadRegistryCmd(m.client)
	case "s":
		m.mode = settingsView
		m.settingsCursor = 0
		if saved, err := m.store.SelectedModel(); err == nil {
			for i, name := range models.SupportedModels {
				if name == saved {
					m.settingsCursor = i
				}
			}
		}
	}
	return m, nil
}

func (m model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = projectsView
		return m, nil
	case "tab", "down":
		m.form[m.formFocus].Blur()
		m.formFocus = (m.formFocus + 1) % formFieldCount
		m.form[m.formFocus].Focus()
		return m, nil
	case "shift+tab", "up":
		m.form[m.formFocus].Blur()
		m.formFocus = (m.formFocus + formFieldCount - 1) % formFieldCount
		m.form[m.formFocus].Focus()
		return m, nil
	case "enter":
		if m.creating {
			return m, nil
		}
		name := m.form[formFieldName].Value()
		code := m.form[formFieldCode].Value()
		owner := m.form[formFieldOwner].Value()
		if strings.TrimSpace(name) == "" || strings.TrimSpace(code) == "" || strings.TrimSpace(owner) == "" {
			m.formErr = "Please fill in all required fields"
			return m, nil
		}
		path := strings.TrimSpace(m.form[formFieldDocument].Value())
		if path == "" {
			m.formErr = "Please select a document to upload"
			return m, nil
		}
		m.formErr = ""
		m.creating = true
		m.loading.SetMessage("Creating project...")
		return m, createProjectCmd(m.client, m.store, name, code, owner, m.form[formFieldSummary].Value(), path)
	}

	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

func (m model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The path prompt captures keys while open.
	if m.promptPath {
		switch msg.String() {
		case "esc":
			m.promptPath = false
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return m, nil
			}
			m.promptPath = false
			m.uploading = true
			m.loading.SetMessage("Uploading...")
			return m, uploadProjectDocumentCmd(m.client, m.store, m.generation, m.project.ID, path)
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.mode = projectsView
		m.project = nil
		m.generation++ // anything still in flight for this workspace is stale now
		return m, nil
	case "tab", "]", "right":
		return m.switchTab((m.tab + 1) % workspaceTab(len(tabTitles)))
	case "shift+tab", "[", "left":
		return m.switchTab((m.tab + workspaceTab(len(tabTitles)) - 1) % workspaceTab(len(tabTitles)))
	case "1", "2", "3", "4", "5", "6", "7":
		return m.switchTab(workspaceTab(msg.String()[0] - '1'))
	}

	switch m.tab {
	case tabUpload:
		if msg.String() == "u" && !m.uploading {
			m.promptPath = true
			m.pathInput.SetValue("")
			m.pathInput.Focus()
			return m, nil
		}
	case tabChat:
		switch msg.String() {
		case "enter":
			gen, ok := m.orchestrator.Begin(m.chatInput.Value())
			if !ok {
				return m, nil
			}
			question := strings.TrimSpace(m.chatInput.Value())
			m.chatInput.SetValue("")
			m.refreshChatViewport()
			return m, sendChatCmd(m.client, gen, question, m.orchestrator.SessionID(), m.chatModel)
		case "ctrl+l":
			m.orchestrator.Clear()
			m.refreshChatViewport()
			return m, nil
		}
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) switchTab(tab workspaceTab) (tea.Model, tea.Cmd) {
	m.tab = tab
	m.status = ""
	switch tab {
	case tabChat:
		m.chatInput.Focus()
		m.refreshChatViewport()
	case tabComponents:
		m.chatInput.Blur()
		cmd := m.startBreakdown()
		return m, cmd
	default:
		m.chatInput.Blur()
	}
	return m, nil
}

func (m model) handleRegistryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending destructive action must be confirmed or cancelled first.
	if m.confirm != confirmNone {
		switch msg.String() {
		case "y", "enter":
			action := m.confirm
			m.confirm = confirmNone
			if action == confirmDelete && m.registryCursor < len(m.registryDocs) {
				return m, deleteDocumentCmd(m.client, m.registryDocs[m.registryCursor].FileID)
			}
			if action == confirmCleanup {
				return m, cleanupDocumentsCmd(m.client)
			}
		case "n", "esc":
			m.confirm = confirmNone
		}
		return m, nil
	}

	if m.promptPath {
		switch msg.String() {
		case "esc":
			m.promptPath = false
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return m, nil
			}
			m.promptPath = false
			m.uploading = true
			m.loading.SetMessage("Uploading...")
			return m, uploadRegistryDocumentCmd(m.client, path)
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = projectsView
	case "up", "k":
		if m.registryCursor > 0 {
			m.registryCursor--
		}
	case "down", "j":
		if m.registryCursor < len(m.registryDocs)-1 {
			m.registryCursor++
		}
	case "r":
		m.registryLoading = true
		return m, loadRegistryCmd(m.client)
	case "u":
		if !m.uploading {
			m.promptPath = true
			m.pathInput.SetValue("")
			m.pathInput.Focus()
		}
	case "x":
		if m.registryCursor < len(m.registryDocs) {
			m.confirm = confirmDelete
		}
	case "c":
		if len(m.registryDocs) <= 1 {
			m.status = "Cleanup needs more than one document"
			return m, nil
		}
		m.confirm = confirmCleanup
	}
	return m, nil
}

func (m model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = projectsView
	case "up", "k":
		if m.settingsCursor > 0 {
			m.settingsCursor--
		}
	case "down", "j":
		if m.settingsCursor < len(models.SupportedModels)-1 {
			m.settingsCursor++
		}
	case "enter":
		selected := models.SupportedModels[m.settingsCursor]
		if err := m.store.SetSelectedModel(selected); err != nil {
			m.status = "Failed to save settings: " + err.Error()
			return m, nil
		}
		m.chatModel = selected
		m.status = "Settings saved"
	}
	return m, nil
}

// openWorkspace switches to a project's workspace: a fresh generation, the
// project's chat session and cached document, and a document list fetch
// for resolution.
func (m *model) openWorkspace(project models.Project) tea.Cmd {
	p := project
	m.mode = workspaceView
	m.project = &p
	m.tab = tabUpload
	m.generation++
	m.docs = nil
	m.docsLoaded = false
	m.resolution = nil
	m.resolveErr = nil
	m.localDoc = nil
	m.status = ""
	m.promptPath = false
	m.uploading = false

	sessionID, err := m.store.SessionID(p.ID)
	if err != nil {
		m.status = err.Error()
	}
	m.orchestrator.Reset(sessionID)
	m.refreshChatViewport()

	if selected, err := m.store.SelectedModel(); err == nil {
		m.chatModel = selected
	}
	if doc, err := m.store.ProjectDocument(p.ID); err == nil {
		m.localDoc = doc
	}

	return loadDocumentsCmd(m.client, m.generation)
}

func (m *model) startBreakdown() tea.Cmd {
	gen := m.loader.Begin()
	if m.resolveErr != nil || m.resolution == nil {
		err := m.resolveErr
		if err == nil {
			err = workspace.ErrNoDocument
		}
		m.loader.Finish(gen, nil, err)
		return nil
	}
	return fetchBreakdownCmd(m.client, gen, m.resolution.FileID, m.chatModel)
}

func (m *model) refreshChatViewport() {
	if !m.ready {
		return
	}
	m.chatViewport.SetContent(m.renderTranscript())
	m.chatViewport.GotoBottom()
}

func Run(cfg config.Config, st *store.Store, client *api.Client) error {
	p := tea.NewProgram(newModel(cfg, st, client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
