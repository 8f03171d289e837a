package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

func newHistoryCommand(s *session) *cobra.Command {
	var conversationID int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the messages of a conversation",
		Args:  cobra.NoArgs,
		RunE: s.withStore(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := s.conversations.GetConversation(ctx, s.user, conversationID); err != nil {
				return fmt.Errorf("conversation %d: %w", conversationID, err)
			}

			messages, err := s.conversations.ListMessages(ctx, s.user, conversationID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, message := range messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", message.CreatedAt.Local().Format("2006-01-02 15:04"), message.Role, message.Content)
			}
			return nil
		}),
	}
	cmd.Flags().Int64VarP(&conversationID, "conversation", "c", 0, "conversation id")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}

func newConversationsCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List your conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: s.withStore(func(cmd *cobra.Command, _ []string) error {
			conversations, err := s.conversations.ListConversations(cmd.Context(), s.user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(conversations) == 0 {
				fmt.Fprintln(out, "No conversations yet.")
				return nil
			}
			for _, conversation := range conversations {
				fmt.Fprintf(out, "#%d  last active %s\n", conversation.ID, conversation.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		}),
	}
}

func newTasksCommand(s *session) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List your tasks",
		Args:  cobra.NoArgs,
		RunE: s.withStore(func(cmd *cobra.Command, _ []string) error {
			taskStatus, err := models.ParseTaskStatus(status)
			if err != nil {
				return err
			}

			tasks, err := s.tasks.ListTasks(cmd.Context(), s.user, taskStatus)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintf(out, "No %s tasks.\n", taskStatus)
				return nil
			}
			for _, task := range tasks {
				mark := " "
				if task.Completed {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] #%d %s\n", mark, task.ID, task.Title)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, pending or completed")
	return cmd
}
