package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/docsentry/docsentry/internal/breakdown"
	"github.com/docsentry/docsentry/internal/chat"
	"github.com/docsentry/docsentry/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	var content string
	switch m.mode {
	case projectsView:
		content = m.renderProjects()
	case newProjectView:
		content = m.renderForm()
	case workspaceView:
		content = m.renderWorkspace()
	case registryView:
		content = m.renderRegistry()
	case settingsView:
		content = m.renderSettings()
	}

	parts := []string{m.renderHeader(), content}
	if m.status != "" {
		parts = append(parts, dimStyle.Render(m.status))
	}
	parts = append(parts, m.renderFooter())
	return strings.Join(parts, "\n")
}

func (m model) renderHeader() string {
	title := "docsentry - Projects"
	switch m.mode {
	case newProjectView:
		title = "docsentry - New Project"
	case workspaceView:
		if m.project != nil {
			title = fmt.Sprintf("docsentry - %s (%s)", m.project.Name, m.project.Code)
		}
	case registryView:
		title = "docsentry - Documents"
	case settingsView:
		title = "docsentry - Settings"
	}
	return headerStyle.Render(title)
}

func (m model) renderFooter() string {
	var info string
	switch m.mode {
	case projectsView:
		info = "↑/↓: navigate • enter: open • n: new project • d: documents • s: settings • q: quit"
	case newProjectView:
		info = "tab: next field • enter: create • esc: cancel"
	case workspaceView:
		info = "tab/[/]: switch tab • 1-7: jump • esc: back"
		if m.tab == tabUpload {
			info = "u: upload document • " + info
		}
		if m.tab == tabChat {
			info = "enter: send • ctrl+l: clear chat • " + info
		}
	case registryView:
		info = "u: upload • x: delete • c: clean up • r: refresh • esc: back"
		if len(m.registryDocs) <= 1 {
			info = strings.Replace(info, "c: clean up", dimStyle.Render("c: clean up (needs >1)"), 1)
		}
	case settingsView:
		info = "↑/↓: choose model • enter: save • esc: back"
	}
	return dimStyle.Render(info)
}

func (m model) renderProjects() string {
	var s strings.Builder
	for i, project := range m.projects {
		cursor := "  "
		if i == m.projectCursor {
			cursor = "> "
		}

		style := lipgloss.NewStyle()
		if i == m.projectCursor {
			style = selectedStyle
		}

		line := fmt.Sprintf("%s%s (%s) - %s", cursor, project.Name, project.Code, project.Owner)
		if project.FileID > 0 {
			line += fmt.Sprintf(" [doc #%d]", project.FileID)
		}
		s.WriteString(style.Render(line) + "\n")
		if project.Summary != "" {
			s.WriteString(dimStyle.Render("    "+project.Summary) + "\n")
		}
	}
	return s.String()
}

func (m model) renderForm() string {
	labels := []string{"Project Name *", "Project Code *", "Project Owner *", "Project Summary", "Document (PDF) *"}

	var s strings.Builder
	for i, input := range m.form {
		label := labels[i]
		if i == m.formFocus {
			s.WriteString(selectedStyle.Render(label) + "\n")
		} else {
			s.WriteString(dimStyle.Render(label) + "\n")
		}
		s.WriteString(input.View() + "\n\n")
	}

	if m.creating {
		s.WriteString(m.loading.View() + "\n")
	}
	if m.formErr != "" {
		s.WriteString(errorStyle.Render(m.formErr) + "\n")
	}
	return s.String()
}

func (m model) renderWorkspace() string {
	var tabs []string
	for i, title := range tabTitles {
		if workspaceTab(i) == m.tab {
			tabs = append(tabs, selectedStyle.Render(title))
		} else {
			tabs = append(tabs, dimStyle.Render(title))
		}
	}
	bar := strings.Join(tabs, dimStyle.Render(" │ "))

	var body string
	switch m.tab {
	case tabUpload:
		body = m.renderUploadTab()
	case tabChat:
		body = m.renderChatTab()
	case tabComponents:
		body = m.renderBreakdownTab()
	default:
		body = emptyStyle.Render(tabTitles[m.tab] + " is not available yet.")
	}
	return bar + "\n\n" + body
}

func (m model) renderUploadTab() string {
	var s strings.Builder
	s.WriteString(sectionStyle.Render("Document") + "\n\n")

	if m.localDoc != nil {
		s.WriteString(fmt.Sprintf("  %s (backend id #%d)\n", m.localDoc.Name, m.localDoc.FileID))
		s.WriteString(dimStyle.Render(fmt.Sprintf("  uploaded %s", m.localDoc.UploadedAt.Format("2006-01-02 15:04"))) + "\n")
	} else {
		s.WriteString(emptyStyle.Render("  No document uploaded for this project yet.") + "\n")
	}

	s.WriteString("\n" + sectionStyle.Render("Active backend document") + "\n\n")
	switch {
	case !m.docsLoaded:
		s.WriteString("  " + m.loading.View() + "\n")
	case m.resolveErr != nil:
		s.WriteString(emptyStyle.Render("  "+m.resolveErr.Error()) + "\n")
	case m.resolution != nil && m.resolution.Document != nil:
		s.WriteString(fmt.Sprintf("  #%d %s\n", m.resolution.Document.FileID, m.resolution.Document.Filename))
	case m.resolution != nil:
		s.WriteString(fmt.Sprintf("  #%d\n", m.resolution.FileID))
	}

	if m.uploading {
		s.WriteString("\n" + m.loading.View() + "\n")
	}
	if m.promptPath {
		s.WriteString("\n" + sectionStyle.Render("Upload PDF") + "\n" + m.pathInput.View() + "\n")
	}
	return s.String()
}

func (m model) renderChatTab() string {
	var s strings.Builder
	s.WriteString(m.chatViewport.View() + "\n")
	if m.orchestrator.State() == chat.StateSending {
		s.WriteString(m.loading.View() + "\n")
	} else {
		s.WriteString(m.chatInput.View() + "\n")
	}
	return s.String()
}

func (m model) renderTranscript() string {
	transcript := m.orchestrator.Transcript()
	if len(transcript) == 0 {
		return emptyStyle.Render("No messages yet. Ask something about the document.")
	}

	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	assistantStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	width := m.chatViewport.Width - 4
	if width < 20 {
		width = 20
	}

	var s strings.Builder
	for i, msg := range transcript {
		if msg.Role == chat.RoleUser {
			s.WriteString(userStyle.Render("You") + "\n")
		} else {
			s.WriteString(assistantStyle.Render("Assistant") + "\n")
		}
		for _, line := range wrapText(msg.Content, width) {
			s.WriteString("  " + line + "\n")
		}
		if i < len(transcript)-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

func (m model) renderBreakdownTab() string {
	switch m.loader.State() {
	case breakdown.StateLoading:
		return m.loading.View()
	case breakdown.StateError:
		return errorStyle.Render("Error: " + m.loader.Err().Error())
	}

	data := m.loader.Result()
	if data == nil {
		return emptyStyle.Render("No breakdown available.")
	}

	var s strings.Builder

	s.WriteString(sectionStyle.Render("Major Components") + "\n")
	if len(data.MajorComponents) == 0 {
		s.WriteString(emptyStyle.Render("  none identified") + "\n")
	}
	for _, component := range data.MajorComponents {
		s.WriteString(selectedStyle.Render("  "+component.Name) + "\n")
		s.WriteString("    " + component.Description + "\n")
		for _, fn := range component.KeyFunctions {
			s.WriteString(dimStyle.Render("    - "+fn) + "\n")
		}
	}

	s.WriteString("\n" + sectionStyle.Render("Diagrams") + "\n")
	if len(data.Diagrams) == 0 {
		s.WriteString(emptyStyle.Render("  none identified") + "\n")
	}
	for _, diagram := range data.Diagrams {
		s.WriteString(selectedStyle.Render("  "+diagram.Type) + "\n")
		s.WriteString("    Purpose: " + diagram.Purpose + "\n")
		s.WriteString("    Relation to system: " + diagram.RelationToSystem + "\n")
		for _, element := range diagram.KeyElements {
			s.WriteString(dimStyle.Render("    - "+element) + "\n")
		}
	}

	s.WriteString("\n" + sectionStyle.Render("API Contracts") + "\n")
	if len(data.APIContracts) == 0 {
		s.WriteString(emptyStyle.Render("  none identified") + "\n")
	}
	for _, contract := range data.APIContracts {
		s.WriteString(selectedStyle.Render(fmt.Sprintf("  %s %s", contract.Method, contract.Endpoint)) + "\n")
		for _, param := range contract.Parameters {
			s.WriteString(fmt.Sprintf("    %s (%s): %s\n", param.Name, param.Type, param.Description))
		}
		if contract.SuccessResponse != "" {
			s.WriteString("    Success: " + contract.SuccessResponse + "\n")
		}
		if len(contract.ErrorCodes) > 0 {
			s.WriteString(dimStyle.Render("    Errors: "+strings.Join(contract.ErrorCodes, ", ")) + "\n")
		}
	}

	s.WriteString("\n" + sectionStyle.Render("PII Data / Sensitive Information") + "\n")
	if len(data.PIIData.IdentifiedFields) == 0 {
		s.WriteString(emptyStyle.Render("  no PII fields identified") + "\n")
	}
	for _, field := range data.PIIData.IdentifiedFields {
		s.WriteString("  - " + field + "\n")
	}
	if data.PIIData.HandlingProcedures != "" {
		s.WriteString("  Handling: " + data.PIIData.HandlingProcedures + "\n")
	}
	if len(data.PIIData.ComplianceStandards) > 0 {
		s.WriteString(dimStyle.Render("  Compliance: "+strings.Join(data.PIIData.ComplianceStandards, ", ")) + "\n")
	}

	return s.String()
}

func (m model) renderRegistry() string {
	var s strings.Builder

	if m.confirm == confirmDelete && m.registryCursor < len(m.registryDocs) {
		doc := m.registryDocs[m.registryCursor]
		s.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q (#%d)? y/n", doc.Filename, doc.FileID)) + "\n\n")
	}
	if m.confirm == confirmCleanup {
		s.WriteString(errorStyle.Render("This will delete all documents except the most recent one. Continue? y/n") + "\n\n")
	}

	if m.registryLoading {
		s.WriteString(m.loading.View() + "\n")
		return s.String()
	}

	if len(m.registryDocs) == 0 {
		s.WriteString(emptyStyle.Render("No documents on the backend.") + "\n")
	}
	for i, doc := range m.registryDocs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.registryCursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(style.Render(fmt.Sprintf("%s#%d %s", cursor, doc.FileID, doc.Filename)) + "\n")
		s.WriteString(dimStyle.Render("    uploaded "+doc.UploadTimestamp) + "\n")
	}

	if m.uploading {
		s.WriteString("\n" + m.loading.View() + "\n")
	}
	if m.promptPath {
		s.WriteString("\n" + sectionStyle.Render("Upload document") + "\n" + m.pathInput.View() + "\n")
	}
	return s.String()
}

func (m model) renderSettings() string {
	var s strings.Builder
	s.WriteString(sectionStyle.Render("Model Selection") + "\n\n")
	s.WriteString("Select the AI model to use for chat interactions:\n\n")

	for i, name := range models.SupportedModels {
		marker := "( )"
		style := lipgloss.NewStyle()
		if name == m.chatModel {
			marker = "(•)"
		}
		if i == m.settingsCursor {
			style = selectedStyle
		}
		label := name
		if name == models.DefaultModel {
			label += " (recommended)"
		}
		s.WriteString(style.Render(fmt.Sprintf("  %s %s", marker, label)) + "\n")
	}
	return s.String()
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) > width {
				lines = append(lines, currentLine)
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		lines = append(lines, currentLine)
	}
	return lines
}
