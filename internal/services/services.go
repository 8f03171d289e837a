package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")

	ErrTaskNotFound         = errors.New("task not found")
	ErrEmptyTitle           = errors.New("task title is empty")
	ErrInvalidTaskStatus    = models.ErrInvalidTaskStatus
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidRole          = errors.New("invalid message role")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token of the session bound to
	// the given fingerprint.
	//
	// It returns ErrSessionNotFound if no such session exists
	// or ErrSessionExpired if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user and its first session.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or an error wrapping jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

// TaskService is the per-user task store. Every operation addressing a
// task by ID returns ErrTaskNotFound when the task is missing or belongs
// to another user.
type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// ListTasks never returns ErrTaskNotFound; an empty list is valid.
	ListTasks(ctx context.Context, userID string, status models.TaskStatus) ([]*models.Task, error)

	// CompleteTask is idempotent.
	CompleteTask(ctx context.Context, params TaskParams) (*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask physically removes the task and returns its last state.
	DeleteTask(ctx context.Context, params TaskParams) (*models.Task, error)
}

// ConversationService is the append-only message log.
type ConversationService interface {
	CreateConversation(ctx context.Context, userID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, userID string, conversationID int64) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
	AppendMessage(ctx context.Context, params AppendMessageParams) (*models.Message, error)
	ListMessages(ctx context.Context, userID string, conversationID int64) ([]*models.Message, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
}

type TaskParams struct {
	UserID string
	ID     int64
}

// UpdateTaskParams leaves nil fields untouched.
type UpdateTaskParams struct {
	UserID      string
	ID          int64
	Title       *string
	Description *string
}

type AppendMessageParams struct {
	UserID         string
	ConversationID int64
	Role           models.Role
	Content        string
}

// completedFilter returns nil when the status does not constrain the
// completed column.
func completedFilter(status models.TaskStatus) *bool {
	var completed bool
	switch status {
	case models.TaskStatusPending:
		completed = false
	case models.TaskStatusCompleted:
		completed = true
	default:
		return nil
	}
	return &completed
}

func normalizeTitle(title *string) error {
	if title == nil {
		return nil
	}
	*title = strings.TrimSpace(*title)
	if *title == "" {
		return ErrEmptyTitle
	}
	return nil
}
