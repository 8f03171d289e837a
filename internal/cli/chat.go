package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/todo-chatbot/internal/assistant"
)

const prompt = "you> "

func newChatCommand(s *session) *cobra.Command {
	var conversationID int64

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long:  "Start an interactive conversation. Type exit or quit, or send EOF, to leave.",
		Args:  cobra.NoArgs,
		RunE: s.withStore(func(cmd *cobra.Command, _ []string) error {
			var current *int64
			if conversationID > 0 {
				current = &conversationID
			}
			return s.repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), current)
		}),
	}
	cmd.Flags().Int64VarP(&conversationID, "conversation", "c", 0, "continue the conversation with this id")
	return cmd
}

func (s *session) repl(ctx context.Context, in io.Reader, out io.Writer, conversationID *int64) error {
	fmt.Fprintln(out, "Hi! Tell me what to do with your todos. Type 'exit' to leave.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := s.assistant.Chat(ctx, assistant.ChatParams{
			UserID:         s.user,
			ConversationID: conversationID,
			Message:        line,
		})
		if err != nil {
			return err
		}
		conversationID = &result.ConversationID
		s.printReply(out, result)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Goodbye!")
	return nil
}

func newSayCommand(s *session) *cobra.Command {
	var conversationID int64

	cmd := &cobra.Command{
		Use:   "say <message...>",
		Short: "Send a single message",
		Args:  cobra.MinimumNArgs(1),
		RunE: s.withStore(func(cmd *cobra.Command, args []string) error {
			params := assistant.ChatParams{
				UserID:  s.user,
				Message: strings.Join(args, " "),
			}
			if conversationID > 0 {
				params.ConversationID = &conversationID
			}

			result, err := s.assistant.Chat(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s.printReply(out, result)
			if conversationID == 0 {
				fmt.Fprintf(out, "(conversation %d)\n", result.ConversationID)
			}
			return nil
		}),
	}
	cmd.Flags().Int64VarP(&conversationID, "conversation", "c", 0, "continue the conversation with this id")
	return cmd
}

func (s *session) printReply(out io.Writer, result *assistant.ChatResult) {
	fmt.Fprintln(out, result.Response)
	if !s.verbose {
		return
	}
	for _, call := range result.ToolCalls {
		arguments, err := json.Marshal(call.Arguments)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "  -> %s %s\n", call.Name, arguments)
	}
}
