package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/chat"
	"github.com/docsentry/docsentry/internal/store"
)

var (
	chatProjectID string
	chatModel     string
	chatClear     bool
)

// NewChatCommand creates the chat command
func NewChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the assistant one question about the active document",
		Long: `Send a single question to the AI assistant and print the reply.
The conversation continues across invocations through the project's stored
session id; use --clear to forget it and start fresh.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}
	chatCmd.Flags().StringVar(&chatProjectID, "project", store.DefaultProjectID, "Project whose chat session to use")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "Model to answer with (defaults to the stored preference)")
	chatCmd.Flags().BoolVar(&chatClear, "clear", false, "Forget the project's chat session instead of asking")
	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	_, st, client, err := setup()
	if err != nil {
		return err
	}

	project, err := st.Project(chatProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project '%s' not found", chatProjectID)
	}

	if chatClear {
		if err := st.ClearSession(project.ID); err != nil {
			return err
		}
		fmt.Printf("Chat session for project %s cleared\n", project.ID)
		return nil
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("a question is required (or pass --clear)")
	}

	sessionID, err := st.SessionID(project.ID)
	if err != nil {
		return err
	}

	model := chatModel
	if model == "" {
		model, err = st.SelectedModel()
		if err != nil {
			return err
		}
	}

	orchestrator := chat.New(sessionID)
	gen, ok := orchestrator.Begin(args[0])
	if !ok {
		return fmt.Errorf("a question is required (or pass --clear)")
	}

	resp, err := client.SendChatMessage(context.Background(), args[0], sessionID, model)
	if err != nil {
		orchestrator.Finish(gen, "", err)
	} else {
		orchestrator.Finish(gen, resp.Answer, nil)
	}

	for _, turn := range orchestrator.Transcript() {
		switch turn.Role {
		case chat.RoleUser:
			fmt.Printf("You: %s\n\n", turn.Content)
		case chat.RoleAssistant:
			fmt.Printf("Assistant: %s\n", turn.Content)
		}
	}
	if resp != nil && resp.ProcessingTime > 0 {
		fmt.Printf("\n(%s, %.1fs)\n", resp.Model, resp.ProcessingTime)
	}
	return nil
}
