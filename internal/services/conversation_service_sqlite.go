package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/storage"
)

type sqliteConversationServiceImpl struct {
	logger zerolog.Logger
	db     *sql.DB
}

func NewSQLiteConversationService(
	logger zerolog.Logger,
	db *sql.DB,
) ConversationService {
	return &sqliteConversationServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *sqliteConversationServiceImpl) CreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	now := time.Now().UnixNano()
	conversation := &models.Conversation{
		UserID:    userID,
		CreatedAt: storage.UnixTime(now),
		UpdatedAt: storage.UnixTime(now),
	}

	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO conversations (user_id, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`,
		userID,
		now,
		now,
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

func (s *sqliteConversationServiceImpl) GetConversation(ctx context.Context, userID string, conversationID int64) (*models.Conversation, error) {
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT created_at, updated_at FROM conversations WHERE id = ? AND user_id = ?`,
		conversationID,
		userID,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	return &models.Conversation{
		ID:        conversationID,
		UserID:    userID,
		CreatedAt: storage.UnixTime(createdAt),
		UpdatedAt: storage.UnixTime(updatedAt),
	}, nil
}

func (s *sqliteConversationServiceImpl) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select conversations")
		return nil, err
	}
	defer rows.Close()

	conversations := make([]*models.Conversation, 0)
	for rows.Next() {
		var createdAt, updatedAt int64
		conversation := &models.Conversation{UserID: userID}
		if err := rows.Scan(&conversation.ID, &createdAt, &updatedAt); err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan conversation")
			return nil, err
		}
		conversation.CreatedAt = storage.UnixTime(createdAt)
		conversation.UpdatedAt = storage.UnixTime(updatedAt)
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

func (s *sqliteConversationServiceImpl) AppendMessage(ctx context.Context, params AppendMessageParams) (*models.Message, error) {
	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UnixNano()
	message := &models.Message{
		UserID:         params.UserID,
		ConversationID: params.ConversationID,
		Role:           params.Role,
		Content:        params.Content,
		CreatedAt:      storage.UnixTime(now),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ? AND user_id = ?`,
		now,
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
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		s.logger.Warn().
			Int64("conversation_id", message.ConversationID).
			Str("user_id", message.UserID).
			Msg("conversation not found")
		return nil, ErrConversationNotFound
	}

	err = tx.QueryRowContext(
		ctx,
		`INSERT INTO messages (user_id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		message.UserID,
		message.ConversationID,
		string(message.Role),
		message.Content,
		now,
	).Scan(&message.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("conversation_id", message.ConversationID).
			Msg("failed to insert message")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
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

func (s *sqliteConversationServiceImpl) ListMessages(ctx context.Context, userID string, conversationID int64) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = ? AND user_id = ? ORDER BY created_at, id`,
		conversationID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("conversation_id", conversationID).
			Msg("failed to select messages")
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var (
			role      string
			createdAt int64
		)
		message := &models.Message{UserID: userID, ConversationID: conversationID}
		if err := rows.Scan(&message.ID, &role, &message.Content, &createdAt); err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan message")
			return nil, err
		}
		message.Role = models.Role(role)
		message.CreatedAt = storage.UnixTime(createdAt)
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
