package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/workspace"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show projects or a project's document state without TUI",
		Long: `Show projects or a single project in a non-interactive format.
Without arguments: lists all projects
With a project id: shows the project's cached document and which backend
document resolves as active for it`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	_, st, client, err := setup()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		projects, err := st.ListProjects()
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		fmt.Println("Projects:")
		fmt.Println("=========")
		for i, project := range projects {
			fmt.Printf("%d. %s (%s)\n", i+1, project.Name, project.Code)
			fmt.Printf("   ID: %s\n", project.ID)
			fmt.Printf("   Owner: %s\n", project.Owner)
			if project.FileID > 0 {
				fmt.Printf("   Document: #%d\n", project.FileID)
			}
			if !project.CreatedAt.IsZero() {
				fmt.Printf("   Created: %s\n", project.CreatedAt.Format("2006-01-02 15:04"))
			}
			fmt.Println()
		}
		return nil
	}

	projectID := args[0]
	project, err := st.Project(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project '%s' not found", projectID)
	}

	fmt.Printf("Project: %s (%s)\n", project.Name, project.Code)
	fmt.Printf("Owner: %s\n", project.Owner)
	if project.Summary != "" {
		fmt.Printf("Summary: %s\n", project.Summary)
	}

	doc, err := st.ProjectDocument(project.ID)
	if err != nil {
		return err
	}
	if doc == nil {
		fmt.Println("Cached document: none")
	} else {
		fmt.Printf("Cached document: %s (#%d, uploaded %s)\n",
			doc.Name, doc.FileID, doc.UploadedAt.Format("2006-01-02 15:04"))
	}

	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list backend documents: %w", err)
	}

	resolution, err := workspace.Resolve("", project, docs)
	if err == workspace.ErrNoDocument {
		fmt.Println("Active backend document: none")
		return nil
	}
	if err != nil {
		return err
	}

	if resolution.Document != nil {
		fmt.Printf("Active backend document: #%d %s\n", resolution.FileID, resolution.Document.Filename)
	} else {
		fmt.Printf("Active backend document: #%d\n", resolution.FileID)
	}
	return nil
}
