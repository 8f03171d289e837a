package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if err := normalizeTitle(&params.Title); err != nil {
		return nil, err
	}

	// Matches the precision of timestamptz.
	now := time.Now().UTC().Truncate(time.Microsecond)
	task := &models.Task{
		UserID:      params.UserID,
		Title:       params.Title,
		Description: strings.TrimSpace(params.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   title,
                   description,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, FALSE, $4, $5)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.Title,
		task.Description,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       title,
       description,
       completed,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
  AND ($2::boolean IS NULL OR completed = $2)
ORDER BY id
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByUserIDQuery,
		userID,
		completedFilter(status),
	)
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
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
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

func (s *taskServiceImpl) CompleteTask(ctx context.Context, params TaskParams) (*models.Task, error) {
	const completeTaskQuery = `
UPDATE tasks
SET completed = TRUE,
    updated_at = $1
WHERE id = $2 AND user_id = $3
RETURNING title, description, completed, created_at, updated_at
`
	task := &models.Task{ID: params.ID, UserID: params.UserID}
	err := s.pgPool.QueryRow(
		ctx,
		completeTaskQuery,
		time.Now().UTC(),
		params.ID,
		params.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapTaskError(err, params, "failed to complete task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("completed task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if err := normalizeTitle(params.Title); err != nil {
		return nil, err
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($1::text, title),
    description = COALESCE($2::text, description),
    updated_at = $3
WHERE id = $4 AND user_id = $5
RETURNING title, description, completed, created_at, updated_at
`
	task := &models.Task{ID: params.ID, UserID: params.UserID}
	err := s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		params.Title,
		params.Description,
		time.Now().UTC(),
		params.ID,
		params.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapTaskError(err, TaskParams{UserID: params.UserID, ID: params.ID}, "failed to update task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params TaskParams) (*models.Task, error) {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
RETURNING title, description, completed, created_at, updated_at
`
	task := &models.Task{ID: params.ID, UserID: params.UserID}
	err := s.pgPool.QueryRow(
		ctx,
		deleteTaskQuery,
		params.ID,
		params.UserID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapTaskError(err, params, "failed to delete task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("deleted task")
	return task, nil
}

func (s *taskServiceImpl) mapTaskError(err error, params TaskParams, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
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
