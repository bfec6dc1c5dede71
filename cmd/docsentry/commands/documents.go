package commands

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/store"
	"github.com/docsentry/docsentry/pkg/models"
)

var (
	uploadProjectID string
	assumeYes       bool
)

// NewDocumentsCommand creates the documents command group
func NewDocumentsCommand() *cobra.Command {
	documentsCmd := &cobra.Command{
		Use:   "documents",
		Short: "List, upload, delete or clean up backend documents",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all documents known to the backend",
		RunE:  runDocumentsList,
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a document, optionally attaching it to a project",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocumentsUpload,
	}
	uploadCmd.Flags().StringVar(&uploadProjectID, "project", "", "Project id to attach the uploaded document to")

	deleteCmd := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a document by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocumentsDelete,
	}
	deleteCmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete all documents except the most recent one",
		RunE:  runDocumentsCleanup,
	}
	cleanupCmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")

	documentsCmd.AddCommand(listCmd)
	documentsCmd.AddCommand(uploadCmd)
	documentsCmd.AddCommand(deleteCmd)
	documentsCmd.AddCommand(cleanupCmd)
	return documentsCmd
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found")
		return nil
	}

	fmt.Println("Documents:")
	fmt.Println("==========")
	for _, doc := range docs {
		fmt.Printf("#%d %s\n", doc.FileID, doc.Filename)
		fmt.Printf("   Uploaded: %s\n", doc.UploadTimestamp)
	}
	return nil
}

func runDocumentsUpload(cmd *cobra.Command, args []string) error {
	_, st, client, err := setup()
	if err != nil {
		return err
	}

	if uploadProjectID != "" {
		project, err := st.Project(uploadProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return fmt.Errorf("project '%s' not found", uploadProjectID)
		}
	}

	file, err := store.LoadDocumentFile(args[0])
	if err != nil {
		return err
	}

	result, err := client.UploadDocument(context.Background(), file.Name, bytes.NewReader(file.Content))
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Printf("Uploaded %s as document #%d\n", file.Name, result.FileID)

	// Local state is written only after the backend accepted the file.
	if uploadProjectID != "" {
		doc := models.ProjectDocument{
			FileID:       result.FileID,
			Name:         file.Name,
			MimeType:     file.MimeType,
			Data:         file.DataURI,
			LastModified: file.LastModified,
		}
		if err := st.AttachDocument(uploadProjectID, doc); err != nil {
			return err
		}
		fmt.Printf("Attached to project %s\n", uploadProjectID)
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || fileID <= 0 {
		return fmt.Errorf("invalid file id '%s'", args[0])
	}

	_, _, client, err := setup()
	if err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Delete document #%d? This cannot be undone.", fileID)) {
		fmt.Println("Aborted")
		return nil
	}

	if err := client.DeleteDocument(context.Background(), fileID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	fmt.Printf("Document #%d deleted\n", fileID)
	return nil
}

func runDocumentsCleanup(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) <= 1 {
		fmt.Println("Nothing to clean up: the backend holds one document or fewer")
		return nil
	}

	if !confirm(fmt.Sprintf("This will delete %d of %d documents, keeping only the most recent one.", len(docs)-1, len(docs))) {
		fmt.Println("Aborted")
		return nil
	}

	result, err := client.CleanupDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Printf("Cleanup complete: kept %s, deleted %d document(s)\n", result.KeptDocument, result.DeletedCount)
	return nil
}

// confirm asks on stdin unless --yes was given.
func confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s Continue? [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
