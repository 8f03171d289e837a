package assistant

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/services"
)

// Agent answers the latest user turn of a history.
type Agent struct {
	logger      zerolog.Logger
	interpreter *Interpreter
	dispatcher  *Dispatcher
}

func NewAgent(logger zerolog.Logger, tasks services.TaskService) *Agent {
	return &Agent{
		logger:      logger,
		interpreter: NewInterpreter(),
		dispatcher:  NewDispatcher(logger, tasks),
	}
}

func (a *Agent) Respond(ctx context.Context, userID string, history []Turn) Reply {
	cmd, err := a.interpreter.Interpret(history)
	if err != nil {
		var extractionErr *ExtractionError
		if errors.As(err, &extractionErr) {
			a.logger.Info().
				Str("user_id", userID).
				Str("intent", string(extractionErr.Intent)).
				Msg("missing command parameters")
			return Reply{Response: extractionErr.Guidance, ToolCalls: []ToolCall{}}
		}
		return Reply{Response: apology(err.Error()), ToolCalls: []ToolCall{}}
	}

	a.logger.Debug().
		Str("user_id", userID).
		Str("intent", string(cmd.Intent())).
		Msg("interpreted message")
	return a.dispatcher.Dispatch(ctx, userID, cmd)
}

type ChatParams struct {
	UserID string
	// ConversationID is nil to start a new conversation.
	ConversationID *int64
	Message        string
}

type ChatResult struct {
	ConversationID int64
	Reply
}

// Assistant runs one chat turn: log the user message, answer it from the
// full history and log the answer.
type Assistant struct {
	logger        zerolog.Logger
	conversations services.ConversationService
	agent         *Agent
}

func New(
	logger zerolog.Logger,
	tasks services.TaskService,
	conversations services.ConversationService,
) *Assistant {
	return &Assistant{
		logger:        logger,
		conversations: conversations,
		agent:         NewAgent(logger, tasks),
	}
}

// Chat returns services.ErrConversationNotFound when params.ConversationID
// does not name a conversation of params.UserID.
func (a *Assistant) Chat(ctx context.Context, params ChatParams) (*ChatResult, error) {
	conversationID, err := a.resolveConversation(ctx, params)
	if err != nil {
		return nil, err
	}

	_, err = a.conversations.AppendMessage(ctx, services.AppendMessageParams{
		UserID:         params.UserID,
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        params.Message,
	})
	if err != nil {
		return nil, err
	}

	messages, err := a.conversations.ListMessages(ctx, params.UserID, conversationID)
	if err != nil {
		return nil, err
	}

	history := make([]Turn, 0, len(messages))
	for _, message := range messages {
		history = append(history, Turn{Role: message.Role, Content: message.Content})
	}

	reply := a.agent.Respond(ctx, params.UserID, history)

	_, err = a.conversations.AppendMessage(ctx, services.AppendMessageParams{
		UserID:         params.UserID,
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        reply.Response,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("user_id", params.UserID).
		Int64("conversation_id", conversationID).
		Int("tool_calls", len(reply.ToolCalls)).
		Msg("answered message")
	return &ChatResult{ConversationID: conversationID, Reply: reply}, nil
}

func (a *Assistant) resolveConversation(ctx context.Context, params ChatParams) (int64, error) {
	if params.ConversationID == nil {
		conversation, err := a.conversations.CreateConversation(ctx, params.UserID)
		if err != nil {
			return 0, err
		}
		return conversation.ID, nil
	}

	conversation, err := a.conversations.GetConversation(ctx, params.UserID, *params.ConversationID)
	if err != nil {
		return 0, err
	}
	return conversation.ID, nil
}
