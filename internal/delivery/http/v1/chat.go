package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-chatbot/internal/assistant"
	"github.com/adanyl0v/todo-chatbot/internal/models"
)

type chatRequest struct {
	ConversationID *int64 `json:"conversation_id,omitempty"`
	Message        string `json:"message" binding:"required"`
}

type chatResponse struct {
	ConversationID int64                `json:"conversation_id"`
	Response       string               `json:"response"`
	ToolCalls      []assistant.ToolCall `json:"tool_calls"`
}

type conversationResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        int64       `json:"id"`
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func (h *handlerImpl) HandleChat(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req chatRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.chatter.Chat(c, assistant.ChatParams{
		UserID:         userID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		h.abortServiceError(c, err, "conversation operation failed")
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		ConversationID: result.ConversationID,
		Response:       result.Response,
		ToolCalls:      result.ToolCalls,
	})
}

func (h *handlerImpl) HandleGetConversations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	conversations, err := h.conversations.ListConversations(c, userID)
	if err != nil {
		h.abortServiceError(c, err, "conversation operation failed")
		return
	}

	response := make([]conversationResponse, len(conversations))
	for i, conversation := range conversations {
		response[i] = conversationResponse{
			ID:        conversation.ID,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetMessages(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	conversationID, ok := h.pathID(c)
	if !ok {
		return
	}

	_, err := h.conversations.GetConversation(c, userID, conversationID)
	if err != nil {
		h.abortServiceError(c, err, "conversation operation failed")
		return
	}

	messages, err := h.conversations.ListMessages(c, userID, conversationID)
	if err != nil {
		h.abortServiceError(c, err, "conversation operation failed")
		return
	}

	response := make([]messageResponse, len(messages))
	for i, message := range messages {
		response[i] = messageResponse{
			ID:        message.ID,
			Role:      message.Role,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
