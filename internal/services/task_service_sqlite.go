package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/models"
	"github.com/adanyl0v/todo-chatbot/internal/storage"
)

type sqliteTaskServiceImpl struct {
	logger zerolog.Logger
	db     *sql.DB
}

// NewSQLiteTaskService returns a TaskService backed by a database opened
// with storage.OpenSQLite.
func NewSQLiteTaskService(
	logger zerolog.Logger,
	db *sql.DB,
) TaskService {
	return &sqliteTaskServiceImpl{
		logger: logger,
		db:     db,
	}
}

const sqliteTaskColumns = `id, user_id, title, description, completed, created_at, updated_at`

func (s *sqliteTaskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if err := normalizeTitle(&params.Title); err != nil {
		return nil, err
	}

	now := time.Now().UnixNano()
	const insertTaskQuery = `
INSERT INTO tasks (user_id, title, description, completed, created_at, updated_at)
VALUES (?, ?, ?, 0, ?, ?)
RETURNING ` + sqliteTaskColumns

	task, err := scanSQLiteTask(s.db.QueryRowContext(
		ctx,
		insertTaskQuery,
		params.UserID,
		params.Title,
		strings.TrimSpace(params.Description),
		now,
		now,
	))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *sqliteTaskServiceImpl) ListTasks(ctx context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if completed := completedFilter(status); completed != nil {
		query += ` AND completed = ?`
		args = append(args, *completed)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Str("status", string(status)).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *sqliteTaskServiceImpl) CompleteTask(ctx context.Context, params TaskParams) (*models.Task, error) {
	const completeTaskQuery = `
UPDATE tasks SET completed = 1, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + sqliteTaskColumns

	task, err := scanSQLiteTask(s.db.QueryRowContext(
		ctx,
		completeTaskQuery,
		time.Now().UnixNano(),
		params.ID,
		params.UserID,
	))
	if err != nil {
		return nil, s.mapTaskError(err, params, "failed to complete task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("completed task")
	return task, nil
}

func (s *sqliteTaskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if err := normalizeTitle(params.Title); err != nil {
		return nil, err
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE(?, title),
    description = COALESCE(?, description),
    updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + sqliteTaskColumns

	task, err := scanSQLiteTask(s.db.QueryRowContext(
		ctx,
		updateTaskQuery,
		nullString(params.Title),
		nullString(params.Description),
		time.Now().UnixNano(),
		params.ID,
		params.UserID,
	))
	if err != nil {
		return nil, s.mapTaskError(err, TaskParams{UserID: params.UserID, ID: params.ID}, "failed to update task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *sqliteTaskServiceImpl) DeleteTask(ctx context.Context, params TaskParams) (*models.Task, error) {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = ? AND user_id = ?
RETURNING ` + sqliteTaskColumns

	task, err := scanSQLiteTask(s.db.QueryRowContext(
		ctx,
		deleteTaskQuery,
		params.ID,
		params.UserID,
	))
	if err != nil {
		return nil, s.mapTaskError(err, params, "failed to delete task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("deleted task")
	return task, nil
}

func (s *sqliteTaskServiceImpl) mapTaskError(err error, params TaskParams, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn().
			Int64("task_id", params.ID).
			Str("user_id", params.UserID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Error().
		Err(err).
		Int64("task_id", params.ID).
		Msg(msg)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*models.Task, error) {
	var (
		task                 models.Task
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = storage.UnixTime(createdAt)
	task.UpdatedAt = storage.UnixTime(updatedAt)
	return &task, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
