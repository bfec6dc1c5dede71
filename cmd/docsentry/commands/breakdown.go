package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/breakdown"
	"github.com/docsentry/docsentry/internal/workspace"
	"github.com/docsentry/docsentry/pkg/models"
)

var (
	breakdownProjectID string
	breakdownModel     string
)

// NewBreakdownCommand creates the breakdown command
func NewBreakdownCommand() *cobra.Command {
	breakdownCmd := &cobra.Command{
		Use:   "breakdown [file-id]",
		Short: "Print the security breakdown for a document",
		Long: `Fetch and print the structured security breakdown for a document.
The document is chosen from, in order: an explicit file id argument, the
project given with --project, and the most recently uploaded document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBreakdown,
	}
	breakdownCmd.Flags().StringVar(&breakdownProjectID, "project", "", "Resolve the document from this project")
	breakdownCmd.Flags().StringVar(&breakdownModel, "model", "", "Model to analyze with (defaults to the stored preference)")
	return breakdownCmd
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	_, st, client, err := setup()
	if err != nil {
		return err
	}

	navID := ""
	if len(args) == 1 {
		navID = args[0]
	}

	var project *models.Project
	if breakdownProjectID != "" {
		project, err = st.Project(breakdownProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("project '%s' not found", breakdownProjectID)
		}
	}

	ctx := context.Background()

	var fileID int64
	if navID != "" || project != nil {
		docs, err := client.ListDocuments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		resolution, err := workspace.Resolve(navID, project, docs)
		if err != nil {
			return err
		}
		fileID = resolution.FileID
	} else {
		fileID, err = st.LastUploadedFileID()
		if err != nil {
			return err
		}
		if fileID == 0 {
			return fmt.Errorf("no document to analyze: upload one first")
		}
	}

	model := breakdownModel
	if model == "" {
		model, err = st.SelectedModel()
		if err != nil {
			return err
		}
	}

	result, err := breakdown.Fetch(ctx, client, fileID, model)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printBreakdown(fileID, result)
	return nil
}

func printBreakdown(fileID int64, b *models.Breakdown) {
	fmt.Printf("Security breakdown for document #%d\n", fileID)
	fmt.Println("===================================")

	fmt.Printf("\nMajor Components (%d)\n", len(b.MajorComponents))
	for _, component := range b.MajorComponents {
		fmt.Printf("- %s: %s\n", component.Name, component.Description)
		if len(component.KeyFunctions) > 0 {
			fmt.Printf("  Key functions: %s\n", strings.Join(component.KeyFunctions, ", "))
		}
	}

	fmt.Printf("\nDiagrams (%d)\n", len(b.Diagrams))
	for _, diagram := range b.Diagrams {
		fmt.Printf("- %s: %s\n", diagram.Type, diagram.Purpose)
		if diagram.RelationToSystem != "" {
			fmt.Printf("  Relation: %s\n", diagram.RelationToSystem)
		}
		if len(diagram.KeyElements) > 0 {
			fmt.Printf("  Elements: %s\n", strings.Join(diagram.KeyElements, ", "))
		}
	}

	fmt.Printf("\nAPI Contracts (%d)\n", len(b.APIContracts))
	for _, contract := range b.APIContracts {
		fmt.Printf("- %s %s\n", contract.Method, contract.Endpoint)
		for _, param := range contract.Parameters {
			fmt.Printf("  %s (%s): %s\n", param.Name, param.Type, param.Description)
		}
		if contract.SuccessResponse != "" {
			fmt.Printf("  Success: %s\n", contract.SuccessResponse)
		}
		if len(contract.ErrorCodes) > 0 {
			fmt.Printf("  Errors: %s\n", strings.Join(contract.ErrorCodes, ", "))
		}
	}

	fmt.Println("\nPII Data")
	if len(b.PIIData.IdentifiedFields) > 0 {
		fmt.Printf("- Identified fields: %s\n", strings.Join(b.PIIData.IdentifiedFields, ", "))
	} else {
		fmt.Println("- Identified fields: none")
	}
	if b.PIIData.HandlingProcedures != "" {
		fmt.Printf("- Handling: %s\n", b.PIIData.HandlingProcedures)
	}
	if len(b.PIIData.ComplianceStandards) > 0 {
		fmt.Printf("- Compliance: %s\n", strings.Join(b.PIIData.ComplianceStandards, ", "))
	}
}
