package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

type conversationServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewConversationService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) ConversationService {
	return &conversationServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *conversationServiceImpl) CreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	now := time.Now().UTC()
	conversation := &models.Conversation{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertConversationQuery = `
INSERT INTO conversations (user_id, created_at, updated_at)
VALUES ($1, $2, $3)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertConversationQuery,
		conversation.UserID,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	).Scan(&conversation.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to insert conversation")
		return nil, err
	}

	s.logger.Info().
		Int64("conversation_id", conversation.ID).
		Str("user_id", userID).
		Msg("created conversation")
	return conversation, nil
}

func (s *conversationServiceImpl) GetConversation(ctx context.Context, userID string, conversationID int64) (*models.Conversation, error) {
	conversation := &models.Conversation{
		ID:     conversationID,
		UserID: userID,
	}

	const selectConversationQuery = `
SELECT created_at, updated_at
FROM conversations
WHERE id = $1 AND user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectConversationQuery,
		conversationID,
		userID,
	).Scan(
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("conversation_id", conversationID).
				Str("user_id", userID).
				Msg("conversation not found")
			return nil, ErrConversationNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("conversation_id", conversationID).
			Msg("failed to select conversation")
		return nil, err
	}
	return conversation, nil
}

func (s *conversationServiceImpl) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	const selectConversationsQuery = `
SELECT id, created_at, updated_at
FROM conversations
WHERE user_id = $1
ORDER BY updated_at DESC, id DESC
`
	rows, err := s.pgPool.Query(ctx, selectConversationsQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select conversations")
		return nil, err
	}

	conversations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Conversation, error) {
		conversation := &models.Conversation{UserID: userID}
		err := row.Scan(&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt)
		return conversation, err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to scan conversations")
		return nil, err
	}
	return conversations, nil
}

func (s *conversationServiceImpl) AppendMessage(ctx context.Context, params AppendMessageParams) (*models.Message, error) {
	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	message := &models.Message{
		UserID:         params.UserID,
		ConversationID: params.ConversationID,
		Role:           params.Role,
		Content:        params.Content,
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const touchConversationQuery = `
UPDATE conversations SET updated_at = $1
WHERE id = $2 AND user_id = $3
`
	tag, err := tx.Exec(
		ctx,
		touchConversationQuery,
		message.CreatedAt,
		message.ConversationID,
		message.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("conversation_id", message.ConversationID).
			Msg("failed to update conversation")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Int64("conversation_id", message.ConversationID).
			Str("user_id", message.UserID).
			Msg("conversation not found")
		return nil, ErrConversationNotFound
	}

	const insertMessageQuery = `
INSERT INTO messages (user_id, conversation_id, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	err = tx.QueryRow(
		ctx,
		insertMessageQuery,
		message.UserID,
		message.ConversationID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrConversationNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("conversation_id", message.ConversationID).
			Msg("failed to insert message")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Debug().
		Int64("message_id", message.ID).
		Int64("conversation_id", message.ConversationID).
		Str("role", string(message.Role)).
		Msg("appended message")
	return message, nil
}

func (s *conversationServiceImpl) ListMessages(ctx context.Context, userID string, conversationID int64) ([]*models.Message, error) {
	const selectMessagesQuery = `
SELECT id, role, content, created_at
FROM messages
WHERE conversation_id = $1 AND user_id = $2
ORDER BY created_at, id
`
	rows, err := s.pgPool.Query(ctx, selectMessagesQuery, conversationID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("conversation_id", conversationID).
			Msg("failed to select messages")
		return nil, err
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Message, error) {
		message := &models.Message{UserID: userID, ConversationID: conversationID}
		var role string
		err := row.Scan(&message.ID, &role, &message.Content, &message.CreatedAt)
		message.Role = models.Role(role)
		return message, err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to scan messages")
		return nil, err
	}
	return messages, nil
}
